package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/apperr"
	"form-applier/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                          {}
func (nopLogger) Info(string, ...any)                           {}
func (nopLogger) Warn(string, ...any)                           {}
func (nopLogger) Error(string, ...any)                          {}
func (l nopLogger) WithField(string, any) output.LoggerPort     { return l }
func (l nopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error                                  { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordOutcome(string, entity.Status)   {}
func (nopMetrics) ObserveDuration(string, time.Duration) {}
func (nopMetrics) IncRetry(string)                       {}
func (nopMetrics) AddInFlight(int)                       {}

type fakeEvidence struct {
	checkErr error
}

func (f fakeEvidence) Check(entity.EvidenceSettings) error { return f.checkErr }

func (f fakeEvidence) PathFor(p *entity.ApplicantProfile, s entity.EvidenceSettings) string {
	return fmt.Sprintf("%s/%s%s", s.Dir, p.Email, s.Format.Ext())
}

// fakeLauncher hands out a single fakeBrowser and counts launches.
type fakeLauncher struct {
	browser   *fakeBrowser
	launchErr error
	launches  int
}

func (l *fakeLauncher) Launch(context.Context) (output.BrowserPort, error) {
	l.launches++
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	return l.browser, nil
}

type fakeBrowser struct {
	mu sync.Mutex

	// failNavigation decides per navigation call (1-based, in call order) whether
	// the browser gets no response.
	failNavigation func(call int) bool
	status         int
	navDelay       time.Duration

	navCalls    int
	opened      int
	closedPages int
	inFlight    int
	maxInFlight int
	// closedAtOpen[i] is how many pages were already closed when page i+1 opened.
	closedAtOpen []int
	closed       bool
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{status: 200}
}

func (b *fakeBrowser) NewPage(context.Context) (output.PagePort, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened++
	b.inFlight++
	b.maxInFlight = max(b.maxInFlight, b.inFlight)
	b.closedAtOpen = append(b.closedAtOpen, b.closedPages)
	return &fakePage{browser: b}, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBrowser) snapshot() (opened, closedPages, maxInFlight, navCalls int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened, b.closedPages, b.maxInFlight, b.navCalls
}

type fakePage struct {
	browser *fakeBrowser
	url     string
}

func (p *fakePage) Navigate(ctx context.Context, url string) (*entity.NavigationResult, error) {
	b := p.browser
	b.mu.Lock()
	b.navCalls++
	call := b.navCalls
	fail := b.failNavigation != nil && b.failNavigation(call)
	status := b.status
	delay := b.navDelay
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if fail {
		return nil, nil
	}
	p.url = url
	return &entity.NavigationResult{RequestedURL: url, FinalURL: url, Status: status}, nil
}

func (p *fakePage) Query(context.Context, string) (output.ElementPort, bool, error) {
	return fakeElement{}, true, nil
}
func (p *fakePage) HTML(context.Context) (string, error) { return "<html></html>", nil }
func (p *fakePage) WaitStable(context.Context) error     { return nil }
func (p *fakePage) URL() string                          { return p.url }
func (p *fakePage) Screenshot(context.Context, entity.ImageFormat, int) ([]byte, error) {
	return []byte("img"), nil
}

func (p *fakePage) Close() error {
	b := p.browser
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFlight--
	b.closedPages++
	return nil
}

type fakeElement struct{}

func (fakeElement) Query(context.Context, string) (output.ElementPort, bool, error) {
	return fakeElement{}, true, nil
}
func (fakeElement) QueryAll(context.Context, string) ([]output.ElementPort, error) { return nil, nil }
func (fakeElement) Eval(context.Context, string, any) error                        { return nil }
func (fakeElement) Click(context.Context) error                                    { return nil }
func (fakeElement) Fill(context.Context, string) error                             { return nil }
func (fakeElement) Text(context.Context) (string, error)                           { return "", nil }

// fakeAgent fails FillForm for emails in failFill. With noConfirm set the form never
// shows a confirmation message.
type fakeAgent struct {
	name      string
	supports  bool
	failFill  map[string]bool
	noConfirm bool

	mu     sync.Mutex
	filled []string
}

func newFakeAgent() *fakeAgent {
	return &fakeAgent{name: "fake", supports: true}
}

func (a *fakeAgent) Name() string            { return a.name }
func (a *fakeAgent) Description() string     { return "fake form agent" }
func (a *fakeAgent) SupportsURL(string) bool { return a.supports }

func (a *fakeAgent) LocateForm(ctx context.Context, page output.PagePort) (output.ElementPort, error) {
	el, _, err := page.Query(ctx, "form")
	return el, err
}

func (a *fakeAgent) FillForm(_ context.Context, _ output.ElementPort, data entity.FormData) error {
	v, _ := data.Get("email")
	email, _ := v.(string)

	a.mu.Lock()
	a.filled = append(a.filled, email)
	a.mu.Unlock()

	if a.failFill[email] {
		return apperr.NewAgentError(a.name, "could not resolve a value for required question %q", "Favourite colour")
	}
	return nil
}

func (a *fakeAgent) SubmitForm(context.Context, output.ElementPort) error { return nil }

func (a *fakeAgent) ConfirmSubmission(context.Context, output.PagePort) (bool, error) {
	return !a.noConfirm, nil
}

func (a *fakeAgent) filledEmails() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.filled...)
}

// capturingAgent adds the evidence capability to fakeAgent.
type capturingAgent struct {
	*fakeAgent
	captureErr error
	captured   []string
	mu         sync.Mutex
}

func (a *capturingAgent) CaptureEvidence(_ context.Context, _ output.PagePort, path string, _ entity.EvidenceSettings) error {
	if a.captureErr != nil {
		return a.captureErr
	}
	a.mu.Lock()
	a.captured = append(a.captured, path)
	a.mu.Unlock()
	return nil
}

var errBoom = errors.New("boom")

func records(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]any{
			"name":       fmt.Sprintf("Applicant %02d", i),
			"email":      fmt.Sprintf("applicant%02d@example.com", i),
			"country":    "us",
			"experience": "2-4",
		})
	}
	return out
}

func newTestService(l *fakeLauncher, opts Options) *Service {
	s := New(l, fakeEvidence{}, nopMetrics{}, nopLogger{}, opts)
	s.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return s
}
