package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"form-applier/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*ZapAdapter)(nil)

type Config struct {
	Level  string
	Format string
	// Dir receives a JSON copy of every entry in <timestamp>_<Name>.log when set.
	Dir  string
	Name string
}

type ZapAdapter struct {
	l    *zap.Logger
	file *os.File
}

func New(cfg Config) (*ZapAdapter, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	case "", "console", "text":
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q (supported: console, json)", cfg.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)}

	var file *os.File
	if cfg.Dir != "" {
		file, err = openLogFile(cfg.Dir, cfg.Name)
		if err != nil {
			return nil, err
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.RFC3339TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	return &ZapAdapter{l: zap.New(zapcore.NewTee(cores...)), file: file}, nil
}

func NewZapAdapter(l *zap.Logger) *ZapAdapter {
	return &ZapAdapter{l: l}
}

func NewNop() *ZapAdapter {
	return &ZapAdapter{l: zap.NewNop()}
}

func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

func openLogFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), sanitize(name))
	file, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	return file, nil
}

func (z *ZapAdapter) Debug(msg string, args ...any) { z.l.Debug(msg, toFields(args)...) }
func (z *ZapAdapter) Info(msg string, args ...any)  { z.l.Info(msg, toFields(args)...) }
func (z *ZapAdapter) Warn(msg string, args ...any)  { z.l.Warn(msg, toFields(args)...) }
func (z *ZapAdapter) Error(msg string, args ...any) { z.l.Error(msg, toFields(args)...) }

func (z *ZapAdapter) WithField(key string, value any) output.LoggerPort {
	return &ZapAdapter{l: z.l.With(field(key, value)), file: z.file}
}

func (z *ZapAdapter) WithFields(fields map[string]any) output.LoggerPort {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, field(k, v))
	}
	return &ZapAdapter{l: z.l.With(out...), file: z.file}
}

// Zap exposes the underlying logger for libraries that take one directly.
func (z *ZapAdapter) Zap() *zap.Logger {
	return z.l
}

func (z *ZapAdapter) Close() error {
	err := z.l.Sync()
	// Syncing a terminal fails on most platforms.
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF) {
		err = nil
	}
	if z.file != nil {
		err = errors.Join(err, z.file.Close())
		z.file = nil
	}
	return err
}

// toFields turns alternating key/value args into zap fields. A trailing key without a
// value is kept under "!BADKEY".
func toFields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 >= len(args) {
			out = append(out, zap.Any("!BADKEY", args[i]))
			break
		}
		out = append(out, field(key, args[i+1]))
	}
	return out
}

func field(key string, value any) zap.Field {
	if err, ok := value.(error); ok {
		return zap.NamedError(key, err)
	}
	return zap.Any(key, value)
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
