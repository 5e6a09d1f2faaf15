package entity

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NavigationResult describes the main document response of a navigation.
type NavigationResult struct {
	RequestedURL string
	FinalURL     string
	Status       int
}

func (r *NavigationResult) Redirected() bool {
	return r.FinalURL != "" && r.FinalURL != r.RequestedURL
}

type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

func (f ImageFormat) Ext() string {
	if f == ImageJPEG {
		return ".jpeg"
	}
	return "." + string(f)
}

func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return ImagePNG, nil
	case "jpeg", "jpg":
		return ImageJPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (supported: png, jpeg)", s)
	}
}

// ImageFormatFromPath infers the format from the file extension.
func ImageFormatFromPath(path string) (ImageFormat, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("missing file extension in %q (supported: .png, .jpeg, .jpg)", path)
	}
	return ParseImageFormat(ext)
}
