package output

import (
	"context"

	"form-applier/internal/domain/entity"
)

// BrowserLauncher acquires one browser context per run.
type BrowserLauncher interface {
	Launch(ctx context.Context) (BrowserPort, error)
}

// BrowserPort is a browser context shared by all pages of a run. NewPage must be safe
// for concurrent use; pages never share DOM state.
type BrowserPort interface {
	NewPage(ctx context.Context) (PagePort, error)
	Close() error
}

type PagePort interface {
	// Navigate returns a nil result when the browser received no response.
	Navigate(ctx context.Context, url string) (*entity.NavigationResult, error)
	// Query returns the first element matching selector without waiting for it.
	Query(ctx context.Context, selector string) (ElementPort, bool, error)
	HTML(ctx context.Context) (string, error)
	// WaitStable blocks until network activity settles or the page timeout elapses.
	WaitStable(ctx context.Context) error
	Screenshot(ctx context.Context, format entity.ImageFormat, quality int) ([]byte, error)
	URL() string
	Close() error
}

type ElementPort interface {
	Query(ctx context.Context, selector string) (ElementPort, bool, error)
	QueryAll(ctx context.Context, selector string) ([]ElementPort, error)
	// Eval runs a function expression with the element bound to `this` and decodes its
	// JSON result into out.
	Eval(ctx context.Context, js string, out any) error
	Click(ctx context.Context) error
	Fill(ctx context.Context, text string) error
	Text(ctx context.Context) (string, error)
}
