package input

import (
	"context"
	"time"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/entity"
)

// ApplicationInfo is one unit of work: a validated profile bound to a target form.
type ApplicationInfo struct {
	URL      string
	Profile  *entity.ApplicantProfile
	Agent    output.FormAgent
	Evidence entity.EvidenceSettings
}

// ApplicationDetail is the outcome of one attempt at an ApplicationInfo.
type ApplicationDetail struct {
	Info     ApplicationInfo
	Status   entity.Status
	Evidence string
	Err      error
	Duration time.Duration
	Attempt  int
}

func NewApplicationDetail(info ApplicationInfo, attempt int) ApplicationDetail {
	return ApplicationDetail{Info: info, Status: entity.StatusPending, Attempt: attempt}
}

// Advance moves the status forward. Lower or equal statuses are ignored.
func (d *ApplicationDetail) Advance(s entity.Status) {
	if s > d.Status {
		d.Status = s
	}
}

func (d ApplicationDetail) Confirmed() bool {
	return d.Status == entity.StatusConfirmed
}

type SubmitResult struct {
	RunID       string
	Confirmed   []ApplicationDetail
	Unconfirmed []ApplicationDetail
	Attempts    int
}

func (r *SubmitResult) Total() int {
	return len(r.Confirmed) + len(r.Unconfirmed)
}

// All returns confirmed details followed by unconfirmed ones.
func (r *SubmitResult) All() []ApplicationDetail {
	out := make([]ApplicationDetail, 0, r.Total())
	out = append(out, r.Confirmed...)
	return append(out, r.Unconfirmed...)
}

type ApplicationSubmitter interface {
	SubmitAll(ctx context.Context, url string, agent output.FormAgent, records []map[string]any) (*SubmitResult, error)
}
