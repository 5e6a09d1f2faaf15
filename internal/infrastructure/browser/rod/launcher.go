// Package rod implements the browser ports on top of go-rod. Every run gets one
// Chromium process with one incognito context; pages of the run are opened from it.
package rod

import (
	"context"
	"fmt"
	"sync"

	"form-applier/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

var (
	_ output.BrowserLauncher = (*Launcher)(nil)
	_ output.BrowserPort     = (*Browser)(nil)
)

type Launcher struct {
	cfg    Config
	logger output.LoggerPort
}

func NewLauncher(cfg Config, logger output.LoggerPort) (*Launcher, error) {
	engine, err := ParseEngine(string(cfg.Engine))
	if err != nil {
		return nil, err
	}
	cfg.Engine = engine
	return &Launcher{cfg: cfg, logger: logger.WithField("component", "browser")}, nil
}

func (l *Launcher) Launch(ctx context.Context) (output.BrowserPort, error) {
	bin, err := l.cfg.binary()
	if err != nil {
		return nil, err
	}

	ln := launcher.New().
		Headless(l.cfg.Headless).
		Devtools(l.cfg.DevTools).
		NoSandbox(l.cfg.NoSandbox).
		Delete("use-mock-keychain")
	if bin != "" {
		ln = ln.Bin(bin)
	}
	for _, arg := range l.cfg.Args {
		name, values := splitFlag(arg)
		if name == "" {
			continue
		}
		ln = ln.Set(flags.Flag(name), values...)
	}
	if l.cfg.Locale != "" {
		ln = ln.Set("lang", l.cfg.Locale)
	}

	l.logger.Debug("Launching browser", "engine", string(l.cfg.Engine), "headless", l.cfg.Headless, "bin", bin)
	controlURL, err := ln.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(l.cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	incognito, err := browser.Incognito()
	if err != nil {
		_ = browser.Close()
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = browser.Close()
		ln.Kill()
		ln.Cleanup()
		return nil, err
	}

	l.logger.Info("Browser started", "engine", string(l.cfg.Engine))
	return &Browser{
		root:      browser,
		incognito: incognito,
		launcher:  ln,
		cfg:       l.cfg,
		logger:    l.logger,
	}, nil
}

// Browser is one launched browser process. NewPage is safe for concurrent use.
type Browser struct {
	root      *rod.Browser
	incognito *rod.Browser
	launcher  *launcher.Launcher
	cfg       Config
	logger    output.LoggerPort

	closeOnce sync.Once
	closeErr  error
}

func (b *Browser) NewPage(ctx context.Context) (output.PagePort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := b.incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	p := &Page{page: page, cfg: b.cfg, logger: b.logger}
	if err := p.setup(); err != nil {
		_ = page.Close()
		return nil, err
	}
	return p, nil
}

// Close shuts the browser down and removes its profile directory. Only the first call
// does any work.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		if err := b.root.Close(); err != nil {
			b.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		b.launcher.Kill()
		b.launcher.Cleanup()
		b.logger.Debug("Browser closed")
	})
	return b.closeErr
}
