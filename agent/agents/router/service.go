// Package router is the control surface of the system: it classifies an
// inbound query, fans it out to the matching agents and aggregates
// their responses into one deterministic result.
package router

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

const defaultDispatchTimeout = 30 * time.Second

// Registry is the read side of the agent registry the router needs.
type Registry interface {
	All() []contractx.Descriptor
	Get(id string) (contractx.Agent, bool)
}

type Config struct {
	// DispatchTimeout bounds the whole fan-out phase, not each agent
	// individually.
	DispatchTimeout time.Duration `envconfig:"DISPATCH_TIMEOUT" split_words:"true" default:"30s"`
}

type Router struct {
	registry   Registry
	classifier contractx.Classifier

	graphRunner compose.Runnable[contractx.Query, contractx.RouteResponse]

	dispatchTimeout time.Duration

	now func() time.Time
}

func New(registry Registry, classifier contractx.Classifier, cfg Config) (*Router, error) {
	if registry == nil {
		return nil, errors.New("agent registry is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}

	timeout := cfg.DispatchTimeout
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}

	r := &Router{
		registry:        registry,
		classifier:      classifier,
		dispatchTimeout: timeout,
		now:             time.Now,
	}

	graphRunner, err := r.compileRouteGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

// Route runs one query through the full pipeline. Validation problems
// surface as an error wrapping contract.ErrValidation; everything past
// validation lands in the RouteResponse status instead.
func (r *Router) Route(ctx context.Context, query contractx.Query) (contractx.RouteResponse, error) {
	return r.graphRunner.Invoke(ctx, query)
}
