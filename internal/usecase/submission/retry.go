package submission

import (
	"context"
	"time"

	"form-applier/internal/application/port/input"
	"form-applier/internal/application/port/output"
)

// Backoff is the wait before retry attempt n (1-based): base, 2*base, 3*base...
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return base * time.Duration(attempt)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryLoop resubmits unconfirmed applications until they are all confirmed or the
// retry limit is reached. Every attempt builds fresh ApplicationInfo values from the
// surviving profiles and runs them through the regular batch pipeline.
func (s *Service) RetryLoop(
	ctx context.Context,
	browser output.BrowserPort,
	agent output.FormAgent,
	unconfirmed []input.ApplicationDetail,
	log output.LoggerPort,
) (confirmed, remaining []input.ApplicationDetail, attempts int, err error) {
	remaining = unconfirmed

	for attempt := 1; attempt <= s.opts.RetryLimit && len(remaining) > 0; attempt++ {
		wait := Backoff(s.opts.RetryBackoff, attempt)
		log.Info("Retrying unconfirmed applications",
			"attempt", attempt,
			"limit", s.opts.RetryLimit,
			"count", len(remaining),
			"backoff", wait.String(),
		)
		if err := s.sleep(ctx, wait); err != nil {
			return confirmed, remaining, attempts, err
		}

		infos := make([]input.ApplicationInfo, 0, len(remaining))
		for _, d := range remaining {
			infos = append(infos, input.ApplicationInfo{
				URL:      d.Info.URL,
				Profile:  d.Info.Profile,
				Agent:    agent,
				Evidence: d.Info.Evidence,
			})
			s.metrics.IncRetry(agent.Name())
		}

		attempts = attempt
		details, runErr := s.runBatches(ctx, browser, infos, attempt, log.WithField("attempt", attempt))
		ok, failed := Partition(details)
		confirmed = append(confirmed, ok...)
		remaining = failed
		if runErr != nil {
			return confirmed, remaining, attempts, runErr
		}
	}
	return confirmed, remaining, attempts, nil
}
