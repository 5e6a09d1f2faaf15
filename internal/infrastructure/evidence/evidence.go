// Package evidence stores screenshots of confirmed submissions.
package evidence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const maxNameLen = 60

var _ output.EvidenceStore = (*Store)(nil)

type Store struct {
	now func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Check(settings entity.EvidenceSettings) error {
	return Validate(filepath.Join(settings.Dir, "check"+settings.Format.Ext()))
}

// PathFor names the screenshot <timestamp>_<applicant email>_<suffix>.<ext> inside the
// configured directory. The random suffix keeps concurrent captures apart.
func (s *Store) PathFor(profile *entity.ApplicantProfile, settings entity.EvidenceSettings) string {
	return filepath.Join(settings.Dir, FileName(profile.Email, settings.Format, s.now()))
}

func FileName(name string, format entity.ImageFormat, at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s%s", at.Format("2006-01-02_15-04-05"), sanitize(name), suffix, format.Ext())
}

// Validate checks that path can receive a screenshot: its directory must exist and its
// extension must name a supported image format.
func Validate(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory %s does not exist", dir)
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if _, err := entity.ImageFormatFromPath(path); err != nil {
		return err
	}
	return nil
}

type WriteOptions struct {
	// Quality applies to JPEG output only.
	Quality int
	// MaxWidth downsizes wider screenshots, keeping the aspect ratio. Zero keeps the size.
	MaxWidth int
}

// Write decodes a raw screenshot and encodes it at path in the format named by the
// path's extension.
func Write(path string, raw []byte, opts WriteOptions) error {
	if err := Validate(path); err != nil {
		return err
	}
	format, _ := entity.ImageFormatFromPath(path)

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}
	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot file: %w", err)
	}
	defer f.Close()

	encodeOpts := []imaging.EncodeOption{}
	target := imaging.PNG
	if format == entity.ImageJPEG {
		target = imaging.JPEG
		if opts.Quality > 0 {
			encodeOpts = append(encodeOpts, imaging.JPEGQuality(opts.Quality))
		}
	}
	if err := imaging.Encode(f, img, target, encodeOpts...); err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}
	return f.Close()
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' || r == '@' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "applicant"
	}
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return s
}
