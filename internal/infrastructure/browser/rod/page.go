package rod

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.PagePort = (*Page)(nil)

var adURLRe = regexp.MustCompile(`(?i)ads|googleadservices|doubleclick|googlesyndication|googletagservices`)

// Page wraps one tab of the run's incognito context.
type Page struct {
	page   *rod.Page
	router *rod.HijackRouter
	cfg    Config
	logger output.LoggerPort

	closeOnce sync.Once
	closeErr  error
}

func (p *Page) setup() error {
	if p.cfg.UserAgent != "" || p.cfg.Locale != "" {
		err := p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      p.cfg.UserAgent,
			AcceptLanguage: p.cfg.Locale,
		})
		if err != nil {
			return fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	if len(p.cfg.ExtraHeaders) > 0 {
		pairs := make([]string, 0, 2*len(p.cfg.ExtraHeaders))
		for k, v := range p.cfg.ExtraHeaders {
			pairs = append(pairs, k, v)
		}
		if _, err := p.page.SetExtraHeaders(pairs); err != nil {
			return fmt.Errorf("failed to set extra headers: %w", err)
		}
	}

	if p.cfg.BlockAds || len(p.cfg.BlockedResourceTypes) > 0 {
		blocked := blockedTypes(p.cfg.BlockedResourceTypes)
		router := p.page.HijackRequests()
		err := router.Add("*", "", func(h *rod.Hijack) {
			if shouldBlock(h.Request.Type(), h.Request.URL().String(), blocked, p.cfg.BlockAds) {
				h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
			h.ContinueRequest(&proto.FetchContinueRequest{})
		})
		if err != nil {
			return fmt.Errorf("failed to install request filter: %w", err)
		}
		go router.Run()
		p.router = router
	}
	return nil
}

func blockedTypes(types []string) map[proto.NetworkResourceType]bool {
	out := make(map[proto.NetworkResourceType]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out[proto.NetworkResourceType(strings.ToUpper(t[:1])+t[1:])] = true
	}
	return out
}

// shouldBlock never blocks the document itself, so a form URL that happens to contain
// "ads" still loads.
func shouldBlock(typ proto.NetworkResourceType, url string, blocked map[proto.NetworkResourceType]bool, blockAds bool) bool {
	if typ == proto.NetworkResourceTypeDocument {
		return false
	}
	if blocked[typ] {
		return true
	}
	return blockAds && adURLRe.MatchString(url)
}

// scoped binds ctx and the configured operation timeout.
func (p *Page) scoped(ctx context.Context) *rod.Page {
	pg := p.page.Context(ctx)
	if p.cfg.Timeout > 0 {
		pg = pg.Timeout(p.cfg.Timeout)
	}
	return pg
}

func (p *Page) Navigate(ctx context.Context, rawURL string) (*entity.NavigationResult, error) {
	target := NormalizeURL(rawURL)

	evCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		response *proto.NetworkResponse
	)
	wait := p.page.Context(evCtx).EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument || e.FrameID != p.page.FrameID {
			return false
		}
		mu.Lock()
		response = e.Response
		mu.Unlock()
		return true
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	pg := p.scoped(ctx)
	err := pg.Navigate(target)
	if err == nil {
		err = pg.WaitLoad()
	}
	cancel()
	<-done

	if err != nil {
		var navErr *rod.NavigationError
		if errors.As(err, &navErr) {
			p.logger.Debug("Navigation got no response", "url", target, "reason", navErr.Reason)
			return nil, nil
		}
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if response == nil {
		return nil, nil
	}
	return &entity.NavigationResult{
		RequestedURL: target,
		FinalURL:     NormalizeURL(response.URL),
		Status:       response.Status,
	}, nil
}

func (p *Page) Query(ctx context.Context, selector string) (output.ElementPort, bool, error) {
	found, el, err := p.scoped(ctx).Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", selector, err)
	}
	if !found {
		return nil, false, nil
	}
	return &Element{el: el, cfg: p.cfg}, true, nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	html, err := p.scoped(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (p *Page) WaitStable(ctx context.Context) error {
	pg := p.scoped(ctx)
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("wait for load: %w", err)
	}
	if p.cfg.IdleWait > 0 {
		if err := pg.WaitIdle(p.cfg.IdleWait); err != nil {
			return fmt.Errorf("wait for idle: %w", err)
		}
	}
	return nil
}

func (p *Page) Screenshot(ctx context.Context, format entity.ImageFormat, quality int) ([]byte, error) {
	req := &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng}
	if format == entity.ImageJPEG {
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		if quality > 0 {
			req.Quality = gson.Int(quality)
		}
	}

	raw, err := p.scoped(ctx).Screenshot(true, req)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return raw, nil
}

func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		if p.router != nil {
			if err := p.router.Stop(); err != nil {
				p.logger.Debug("Stopping request filter failed", "error", err)
			}
		}
		if err := p.page.Close(); err != nil {
			p.closeErr = fmt.Errorf("failed to close page: %w", err)
		}
	})
	return p.closeErr
}
