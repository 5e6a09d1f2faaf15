package service

import (
	"sync"

	"form-applier/internal/application/port/output"
	"form-applier/internal/domain/apperr"
)

var _ output.FormAgentRegistry = (*FormAgentRegistryImpl)(nil)

// FormAgentRegistryImpl keeps form agents in registration order. It is filled once at
// startup and only read afterwards.
type FormAgentRegistryImpl struct {
	mu     sync.RWMutex
	agents map[string]output.FormAgent
	order  []string
}

func NewFormAgentRegistry() *FormAgentRegistryImpl {
	return &FormAgentRegistryImpl{
		agents: make(map[string]output.FormAgent),
	}
}

// Register stores agent under its own name, or under each of names when given.
// Re-registering a name replaces the agent but keeps its position.
func (r *FormAgentRegistryImpl) Register(agent output.FormAgent, names ...string) {
	if len(names) == 0 {
		names = []string{agent.Name()}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.agents[name]; !ok {
			r.order = append(r.order, name)
		}
		r.agents[name] = agent
	}
}

func (r *FormAgentRegistryImpl) Get(name string) (output.FormAgent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[name]
	if !ok {
		return nil, &apperr.UnknownAgentError{Name: name, Available: append([]string(nil), r.order...)}
	}
	return agent, nil
}

func (r *FormAgentRegistryImpl) Default() (output.FormAgent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, apperr.ErrNoAgents
	}
	return r.agents[r.order[0]], nil
}

func (r *FormAgentRegistryImpl) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
