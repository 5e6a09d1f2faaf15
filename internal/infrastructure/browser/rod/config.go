package rod

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultIdleWait = 5 * time.Second
	defaultLocale   = "en-US"
	defaultUA       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36 Edg/132.0.0.0"
)

type Engine string

const (
	EngineChromium Engine = "chromium"
	EngineChrome   Engine = "chrome"
	EngineEdge     Engine = "msedge"
)

// ParseEngine accepts the Chromium family only. Firefox and WebKit cannot be driven over
// the DevTools protocol.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EngineChromium, nil
	case EngineChromium, EngineChrome, EngineEdge:
		return e, nil
	case "firefox", "webkit":
		return "", fmt.Errorf("browser %q is not supported: only chromium, chrome and msedge can be driven over the DevTools protocol", s)
	default:
		return "", fmt.Errorf("unknown browser %q (supported: chromium, chrome, msedge)", s)
	}
}

type Config struct {
	Engine     Engine        `mapstructure:"engine"`
	BinPath    string        `mapstructure:"bin_path"`
	Headless   bool          `mapstructure:"headless"`
	NoSandbox  bool          `mapstructure:"no_sandbox"`
	DevTools   bool          `mapstructure:"devtools"`
	SlowMotion time.Duration `mapstructure:"slow_motion"`
	// Timeout bounds every page operation. Zero disables it.
	Timeout  time.Duration `mapstructure:"timeout"`
	IdleWait time.Duration `mapstructure:"idle_wait"`
	// Args are extra command line switches, with or without the leading dashes.
	Args         []string          `mapstructure:"args"`
	UserAgent    string            `mapstructure:"user_agent"`
	Locale       string            `mapstructure:"locale"`
	ExtraHeaders map[string]string `mapstructure:"extra_headers"`
	// BlockedResourceTypes are aborted for every page, e.g. image, font, stylesheet.
	BlockedResourceTypes []string `mapstructure:"blocked_resource_types"`
	BlockAds             bool     `mapstructure:"block_ads"`
}

func DefaultConfig() Config {
	return Config{
		Engine:    EngineChromium,
		Headless:  true,
		NoSandbox: true,
		Timeout:   defaultTimeout,
		IdleWait:  defaultIdleWait,
		Args: []string{
			"disable-setuid-sandbox",
			"start-maximized",
			"disable-dev-shm-usage",
			"disable-extensions",
			"disable-infobars",
			"disable-notifications",
			"disable-popup-blocking",
			"disable-background-networking",
			"disable-sync",
			"disable-translate",
			"no-first-run",
			"ignore-certificate-errors",
		},
		UserAgent: defaultUA,
		Locale:    defaultLocale,
		ExtraHeaders: map[string]string{
			"Upgrade-Insecure-Requests": "1",
			"sec-ch-ua":                 `"Not A(Brand";v="8", "Chromium";v="132", "Microsoft Edge";v="132"`,
			"sec-ch-ua-mobile":          "?0",
			"sec-ch-ua-platform":        `"Windows"`,
		},
		BlockAds: true,
	}
}

// LoadConfig overlays the options document at path (YAML, JSON or TOML) on base.
// Keys missing from the document keep their base values.
func LoadConfig(path string, base Config) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return base, fmt.Errorf("read browser options %s: %w", path, err)
	}

	cfg := base
	if base.ExtraHeaders != nil {
		cfg.ExtraHeaders = make(map[string]string, len(base.ExtraHeaders))
		for k, val := range base.ExtraHeaders {
			cfg.ExtraHeaders[k] = val
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return base, fmt.Errorf("decode browser options %s: %w", path, err)
	}

	engine, err := ParseEngine(string(cfg.Engine))
	if err != nil {
		return base, err
	}
	cfg.Engine = engine
	return cfg, nil
}

// binary resolves the executable to launch. An empty result lets the launcher find or
// download a Chromium build.
func (c Config) binary() (string, error) {
	if c.BinPath != "" {
		if _, err := os.Stat(c.BinPath); err != nil {
			return "", fmt.Errorf("browser binary %s: %w", c.BinPath, err)
		}
		return c.BinPath, nil
	}

	var candidates []string
	switch c.Engine {
	case EngineChrome:
		candidates = []string{"google-chrome", "google-chrome-stable", "chrome"}
		if runtime.GOOS == "darwin" {
			candidates = append(candidates, "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome")
		}
	case EngineEdge:
		candidates = []string{"microsoft-edge", "microsoft-edge-stable", "msedge"}
		if runtime.GOOS == "darwin" {
			candidates = append(candidates, "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge")
		}
	default:
		return "", nil
	}

	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no %s executable found (tried %s); set bin_path in the browser options", c.Engine, strings.Join(candidates, ", "))
}

// splitFlag turns "--name=value" or "name" into a launcher flag name and its values.
func splitFlag(arg string) (string, []string) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	name, value, found := strings.Cut(arg, "=")
	if !found {
		return name, nil
	}
	return name, []string{value}
}

// NormalizeURL adds a missing scheme and collapses doubled slashes in the path.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Path = strings.ReplaceAll(u.Path, "//", "/")
	u.RawPath = ""
	return u.String()
}
