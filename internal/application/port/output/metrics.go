package output

import (
	"time"

	"form-applier/internal/domain/entity"
)

type MetricsPort interface {
	RecordOutcome(agent string, status entity.Status)
	ObserveDuration(agent string, d time.Duration)
	IncRetry(agent string)
	AddInFlight(delta int)
}
