package output

import "form-applier/internal/domain/entity"

// EvidenceStore decides where screenshots go and checks that they can be written there.
type EvidenceStore interface {
	Check(settings entity.EvidenceSettings) error
	PathFor(profile *entity.ApplicantProfile, settings entity.EvidenceSettings) string
}
