// Package submission runs applicant records through a form agent: batching, per-record
// orchestration, outcome classification and the retry loop.
package submission

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"form-applier/internal/application/port/input"
	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/apperr"
	"form-applier/internal/domain/applicant"
	"form-applier/internal/domain/entity"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var _ input.ApplicationSubmitter = (*Service)(nil)

type Service struct {
	launcher output.BrowserLauncher
	evidence output.EvidenceStore
	metrics  output.MetricsPort
	logger   output.LoggerPort
	opts     Options

	sleep func(ctx context.Context, d time.Duration) error
}

func New(
	launcher output.BrowserLauncher,
	evidence output.EvidenceStore,
	metrics output.MetricsPort,
	logger output.LoggerPort,
	opts Options,
) *Service {
	return &Service{
		launcher: launcher,
		evidence: evidence,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
		sleep:    sleepContext,
	}
}

// SubmitAll validates every record, then submits them in sequential batches of
// concurrently processed records and retries the unconfirmed ones. Configuration,
// compatibility and validation problems are reported before a browser is launched.
// Failures of individual records are stored on their details and never returned.
func (s *Service) SubmitAll(
	ctx context.Context,
	url string,
	agent output.FormAgent,
	records []map[string]any,
) (*input.SubmitResult, error) {
	if err := s.checkOptions(); err != nil {
		return nil, err
	}
	if !agent.SupportsURL(url) {
		return nil, &apperr.CompatibilityError{Agent: agent.Name(), URL: url}
	}
	if err := s.checkEvidence(agent); err != nil {
		return nil, err
	}

	profiles, err := validateRecords(records)
	if err != nil {
		return nil, err
	}

	result := &input.SubmitResult{RunID: uuid.NewString()}
	log := s.logger.WithFields(map[string]any{
		"run_id": result.RunID,
		"agent":  agent.Name(),
	})
	if len(profiles) == 0 {
		log.Warn("No applicant records to submit")
		return result, nil
	}

	log.Info("Launching browser", "records", len(profiles), "batch_size", s.opts.BatchSize)
	browser, err := s.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Warn("Failed to close browser", "error", err)
		}
	}()

	infos := make([]input.ApplicationInfo, 0, len(profiles))
	for _, p := range profiles {
		infos = append(infos, input.ApplicationInfo{
			URL:      url,
			Profile:  p,
			Agent:    agent,
			Evidence: s.opts.Evidence,
		})
	}

	details, err := s.runBatches(ctx, browser, infos, 0, log)
	confirmed, unconfirmed := Partition(details)
	result.Confirmed = confirmed
	result.Unconfirmed = unconfirmed
	if err != nil {
		return result, err
	}
	log.Info("First pass finished", "confirmed", len(confirmed), "unconfirmed", len(unconfirmed))

	retried, remaining, attempts, err := s.RetryLoop(ctx, browser, agent, unconfirmed, log)
	result.Confirmed = append(result.Confirmed, retried...)
	result.Unconfirmed = remaining
	result.Attempts = attempts
	if err != nil {
		return result, err
	}

	log.Info("Run finished",
		"confirmed", len(result.Confirmed),
		"unconfirmed", len(result.Unconfirmed),
		"retry_attempts", attempts,
	)
	return result, nil
}

func (s *Service) checkOptions() error {
	if s.opts.BatchSize < 1 {
		return &apperr.ConfigError{Message: fmt.Sprintf("batch size must be at least 1, got %d", s.opts.BatchSize)}
	}
	if s.opts.RetryLimit < 0 {
		return &apperr.ConfigError{Message: fmt.Sprintf("retry limit must not be negative, got %d", s.opts.RetryLimit)}
	}
	if s.opts.RetryBackoff < 0 {
		return &apperr.ConfigError{Message: "retry backoff must not be negative"}
	}
	return nil
}

func (s *Service) checkEvidence(agent output.FormAgent) error {
	if !s.opts.Evidence.Enabled {
		return nil
	}
	if _, ok := agent.(output.EvidenceCapturer); !ok {
		return &apperr.ConfigError{Message: fmt.Sprintf("form agent %q cannot capture screenshots", agent.Name())}
	}
	if err := s.evidence.Check(s.opts.Evidence); err != nil {
		return &apperr.ConfigError{Message: "invalid screenshot settings", Cause: err}
	}
	return nil
}

func validateRecords(records []map[string]any) ([]*entity.ApplicantProfile, error) {
	profiles := make([]*entity.ApplicantProfile, 0, len(records))
	var errs []error

	for i, raw := range records {
		p, err := applicant.NewProfile(raw)
		if err != nil {
			var verr *apperr.ValidationError
			if errors.As(err, &verr) {
				verr.Record = i
				errs = append(errs, verr)
			} else {
				errs = append(errs, &apperr.ValidationError{Record: i, Cause: err})
			}
			continue
		}
		profiles = append(profiles, p)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return profiles, nil
}

// Partition splits details into confirmed and unconfirmed, keeping relative order.
func Partition(details []input.ApplicationDetail) (confirmed, unconfirmed []input.ApplicationDetail) {
	for _, d := range details {
		if d.Confirmed() {
			confirmed = append(confirmed, d)
		} else {
			unconfirmed = append(unconfirmed, d)
		}
	}
	return confirmed, unconfirmed
}

// runBatches processes infos batch after batch. When ctx is cancelled the records that
// never ran are reported as pending with the cancellation cause.
func (s *Service) runBatches(
	ctx context.Context,
	browser output.BrowserPort,
	infos []input.ApplicationInfo,
	attempt int,
	log output.LoggerPort,
) ([]input.ApplicationDetail, error) {
	batches := Batches(infos, s.opts.BatchSize)
	details := make([]input.ApplicationDetail, 0, len(infos))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			for _, rest := range batches[i:] {
				details = append(details, skipped(rest, attempt, err)...)
			}
			return details, err
		}

		log.Debug("Processing batch", "batch", i+1, "of", len(batches), "size", len(batch))
		got, err := s.runBatch(ctx, browser, batch, attempt, log)
		details = append(details, got...)
		if err != nil {
			for _, rest := range batches[i+1:] {
				details = append(details, skipped(rest, attempt, err)...)
			}
			return details, err
		}
	}
	return details, nil
}

// runBatch processes every record of batch concurrently and returns the details in
// completion order.
func (s *Service) runBatch(
	ctx context.Context,
	browser output.BrowserPort,
	batch []input.ApplicationInfo,
	attempt int,
	log output.LoggerPort,
) ([]input.ApplicationDetail, error) {
	var (
		mu      sync.Mutex
		details = make([]input.ApplicationDetail, 0, len(batch))
		done    = make([]bool, len(batch))
	)

	// Plain group: one record's failure must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(len(batch))
	for i, info := range batch {
		i, info := i, info
		g.Go(func() error {
			d := s.processOne(ctx, browser, info, attempt, log)
			mu.Lock()
			details = append(details, d)
			done[i] = true
			mu.Unlock()
			return nil
		})
	}

	finished := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		drain := time.NewTimer(s.opts.DrainTimeout)
		select {
		case <-finished:
		case <-drain.C:
			log.Warn("In-flight applications did not finish before drain timeout", "timeout", s.opts.DrainTimeout.String())
		}
		drain.Stop()
	}

	err := ctx.Err()
	mu.Lock()
	defer mu.Unlock()
	out := append([]input.ApplicationDetail(nil), details...)
	if err != nil {
		for i, info := range batch {
			if !done[i] {
				out = append(out, skipped([]input.ApplicationInfo{info}, attempt, err)...)
			}
		}
	}
	return out, err
}

func skipped(infos []input.ApplicationInfo, attempt int, cause error) []input.ApplicationDetail {
	out := make([]input.ApplicationDetail, 0, len(infos))
	for _, info := range infos {
		d := input.NewApplicationDetail(info, attempt)
		d.Err = cause
		out = append(out, d)
	}
	return out
}

func (s *Service) processOne(
	ctx context.Context,
	browser output.BrowserPort,
	info input.ApplicationInfo,
	attempt int,
	log output.LoggerPort,
) input.ApplicationDetail {
	start := time.Now()
	detail := input.NewApplicationDetail(info, attempt)
	log = log.WithFields(map[string]any{
		"applicant": info.Profile.FullName,
		"email":     info.Profile.Email,
	})

	s.metrics.AddInFlight(1)
	err := s.apply(ctx, browser, &detail, log)
	s.metrics.AddInFlight(-1)

	detail.Duration = time.Since(start)
	if err != nil {
		detail.Err = err
		log.Error("Application failed", "status", detail.Status.String(), "error", err)
	} else {
		log.Info("Application processed", "status", detail.Status.String(), "duration", detail.Duration.String())
	}

	s.metrics.RecordOutcome(info.Agent.Name(), detail.Status)
	s.metrics.ObserveDuration(info.Agent.Name(), detail.Duration)
	return detail
}

func (s *Service) apply(
	ctx context.Context,
	browser output.BrowserPort,
	detail *input.ApplicationDetail,
	log output.LoggerPort,
) error {
	info := detail.Info
	agent := info.Agent

	page, err := browser.NewPage(ctx)
	if err != nil {
		return &apperr.NavigationError{URL: info.URL, Reason: "failed to open page", Cause: err}
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("Failed to close page", "error", err)
		}
	}()

	nav, err := page.Navigate(ctx, info.URL)
	if err != nil {
		return &apperr.NavigationError{URL: info.URL, Cause: err}
	}
	if nav == nil {
		return &apperr.NavigationError{URL: info.URL, Reason: "no response received"}
	}
	if nav.Status == http.StatusNotFound {
		return apperr.NewPageNotFound(info.URL)
	}
	if nav.Redirected() {
		log.Warn("Navigation was redirected", "requested", nav.RequestedURL, "final", nav.FinalURL)
	}
	if nav.Status >= http.StatusBadRequest {
		log.Warn("Form page answered with an error status", "status", nav.Status)
	}

	form, err := agent.LocateForm(ctx, page)
	if err != nil {
		return err
	}
	if err := agent.FillForm(ctx, form, info.Profile.FormData()); err != nil {
		return err
	}
	if err := agent.SubmitForm(ctx, form); err != nil {
		return err
	}
	detail.Advance(entity.StatusSubmitted)

	confirmed, err := agent.ConfirmSubmission(ctx, page)
	if err != nil {
		return err
	}
	if !confirmed {
		log.Warn("Submission was not confirmed by the form")
		return nil
	}
	detail.Advance(entity.StatusConfirmed)

	if info.Evidence.Enabled {
		capturer, ok := agent.(output.EvidenceCapturer)
		if !ok {
			return nil
		}
		path := s.evidence.PathFor(info.Profile, info.Evidence)
		if err := capturer.CaptureEvidence(ctx, page, path, info.Evidence); err != nil {
			log.Warn("Failed to capture evidence", "path", path, "error", err)
			return nil
		}
		detail.Evidence = path
		log.Debug("Evidence saved", "path", path)
	}
	return nil
}
