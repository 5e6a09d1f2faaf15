package entity

import "fmt"

type Status int

const (
	StatusPending Status = iota
	StatusSubmitted
	StatusConfirmed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSubmitted:
		return "submitted"
	case StatusConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// EvidenceSettings controls screenshot capture on confirmed submissions.
type EvidenceSettings struct {
	Enabled bool
	Dir     string
	Format  ImageFormat
	Quality int
	// MaxWidth downsizes wider screenshots. Zero keeps the captured size.
	MaxWidth int
}
