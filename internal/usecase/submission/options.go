package submission

import (
	"time"

	"form-applier/internal/domain/entity"
)

const (
	defaultBatchSize    = 10
	defaultRetryBackoff = 3 * time.Second
	defaultDrainTimeout = 2 * time.Second
)

type Options struct {
	// BatchSize bounds how many records are in flight at once.
	BatchSize    int
	RetryLimit   int
	RetryBackoff time.Duration
	Evidence     entity.EvidenceSettings
	// DrainTimeout is how long a cancelled batch waits for in-flight records.
	DrainTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		BatchSize:    defaultBatchSize,
		RetryLimit:   0,
		RetryBackoff: defaultRetryBackoff,
		DrainTimeout: defaultDrainTimeout,
	}
}
