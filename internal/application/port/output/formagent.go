package output

import (
	"context"

	"form-applier/internal/domain/entity"
)

// FormAgent drives one family of web forms. Implementations hold no per-call state and
// are shared by concurrent record tasks.
type FormAgent interface {
	Name() string
	Description() string
	SupportsURL(url string) bool
	LocateForm(ctx context.Context, page PagePort) (ElementPort, error)
	FillForm(ctx context.Context, form ElementPort, data entity.FormData) error
	SubmitForm(ctx context.Context, form ElementPort) error
	ConfirmSubmission(ctx context.Context, page PagePort) (bool, error)
}

// EvidenceCapturer is the extended capability of agents that can record a screenshot of
// a confirmed submission. Callers discover it with a type assertion on FormAgent.
type EvidenceCapturer interface {
	CaptureEvidence(ctx context.Context, page PagePort, path string, settings entity.EvidenceSettings) error
}

type FormAgentRegistry interface {
	Register(agent FormAgent, names ...string)
	Get(name string) (FormAgent, error)
	Default() (FormAgent, error)
	Names() []string
}
