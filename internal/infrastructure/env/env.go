// Package env reads process configuration from the environment, seeded from .env files.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"form-applier/internal/application/port/output"

	"github.com/joho/godotenv"
)

const (
	AppEnvKey     = "APP_ENV"
	LogsDirKey    = "LOGS_DIR"
	LogLevelKey   = "APPLIER_LOG_LEVEL"
	LogFormatKey  = "APPLIER_LOG_FORMAT"
	BrowserOptKey = "APPLIER_BROWSER_OPTIONS"
	HeadlessKey   = "APPLIER_HEADLESS"
	BatchSizeKey  = "APPLIER_BATCH_SIZE"
	RetryKey      = "APPLIER_RETRY"
	BackoffKey    = "APPLIER_RETRY_BACKOFF"

	defaultAppEnv = "dev"
)

var _ output.ConfigPort = (*EnvService)(nil)

type EnvService struct {
	appEnv string
	loaded []string
}

// NewEnvService loads .env files from the working directory.
func NewEnvService() (*EnvService, error) {
	return Load(".")
}

// Load reads dir/.env and then dir/.env.$APP_ENV, the latter overriding the former.
// Variables already set in the process win over .env but not over .env.$APP_ENV.
// Missing files are not an error.
func Load(dir string) (*EnvService, error) {
	appEnv := os.Getenv(AppEnvKey)
	if appEnv == "" {
		appEnv = defaultAppEnv
	}
	e := &EnvService{appEnv: appEnv}

	base := filepath.Join(dir, ".env")
	if err := godotenv.Load(base); err == nil {
		e.loaded = append(e.loaded, base)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", base, err)
	}

	envFile := filepath.Join(dir, ".env."+appEnv)
	if err := godotenv.Overload(envFile); err == nil {
		e.loaded = append(e.loaded, envFile)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	return e, nil
}

func (e *EnvService) AppEnv() string { return e.appEnv }

// Loaded lists the .env files that were read.
func (e *EnvService) Loaded() []string { return append([]string(nil), e.loaded...) }

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) GetWithDefault(key, defaultValue string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
