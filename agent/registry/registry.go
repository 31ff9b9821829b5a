// Package registry holds the static capability catalog built once at
// process start. It is read-only afterwards and needs no locking.
package registry

import (
	"fmt"
	"strings"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

type Registry struct {
	order  []string
	agents map[string]contractx.Agent
	descs  []contractx.Descriptor
}

// New builds a registry from the given agents in registration order.
// Two agents declaring the same capability id is a configuration error
// and fails startup.
func New(agents ...contractx.Agent) (*Registry, error) {
	r := &Registry{
		agents: make(map[string]contractx.Agent, len(agents)),
	}

	for _, ag := range agents {
		if ag == nil {
			return nil, fmt.Errorf("%w: nil agent", contractx.ErrValidation)
		}
		desc := ag.Describe()
		id := strings.TrimSpace(desc.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: agent capability id is empty", contractx.ErrValidation)
		}
		if _, exists := r.agents[id]; exists {
			return nil, fmt.Errorf("%w: %s", contractx.ErrDuplicateAgent, id)
		}

		r.agents[id] = ag
		r.order = append(r.order, id)
		r.descs = append(r.descs, desc)
	}

	return r, nil
}

// All returns the capability descriptors in registration order.
func (r *Registry) All() []contractx.Descriptor {
	out := make([]contractx.Descriptor, len(r.descs))
	copy(out, r.descs)
	return out
}

// Get returns the agent registered under id.
func (r *Registry) Get(id string) (contractx.Agent, bool) {
	ag, ok := r.agents[id]
	return ag, ok
}
