package google

import "form-applier/internal/application/port/output"

const (
	JobFormAgentName       = "google"
	StrictJobFormAgentName = "google-strict"
)

// NewJobFormAgent builds the Google Forms agent for job applications. With
// FailOnNoOverlap it is registered as the strict variant.
func NewJobFormAgent(policy NoOverlapPolicy, logger output.LoggerPort) *FormAgent {
	name := JobFormAgentName
	description := "Fills and submits Google Forms job applications. Experience questions fall back to the first option when no bracket fits."
	if policy == FailOnNoOverlap {
		name = StrictJobFormAgentName
		description = "Fills and submits Google Forms job applications. Experience questions fail when no bracket fits."
	}
	return NewFormAgent(name, description, NewJobFormAnswerer(policy), logger)
}

// RegisterAgents adds both job form agent variants to registry, lenient one first.
func RegisterAgents(registry output.FormAgentRegistry, logger output.LoggerPort) {
	registry.Register(NewJobFormAgent(FallbackFirstOption, logger))
	registry.Register(NewJobFormAgent(FailOnNoOverlap, logger))
}
