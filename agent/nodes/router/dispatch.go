package routernode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

// AgentSource resolves a capability id to a registered agent.
type AgentSource interface {
	Get(id string) (contractx.Agent, bool)
}

// DispatchAgents fans the decision out to the selected agents, one
// goroutine per entry, all under a single deadline. Results land in
// decision order regardless of completion order. One slow or failing
// agent never blocks the others past the deadline.
func DispatchAgents(
	ctx context.Context,
	in *GraphState,
	agents AgentSource,
	timeout time.Duration,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Decision.Unhandled() {
		return in, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	call := contractx.CallContext{SessionID: in.Query.SessionID}

	results := make([]contractx.AgentResult, len(in.Decision.Entries))
	var wg sync.WaitGroup
	for i, entry := range in.Decision.Entries {
		wg.Add(1)
		go func(i int, entry contractx.DecisionEntry) {
			defer wg.Done()
			results[i] = contractx.AgentResult{
				Capability: entry.Capability,
				Response:   invokeAgent(ctx, agents, entry, call),
			}
		}(i, entry)
	}
	wg.Wait()

	log.Debug().
		Str("session_id", in.Query.SessionID).
		Int("agents", len(results)).
		Msg("dispatch complete")

	in.Results = results
	return in, nil
}

// invokeAgent runs one agent call and normalizes whatever comes back.
// The inner goroutine shields the dispatcher from agents that panic or
// ignore context cancellation.
func invokeAgent(
	ctx context.Context,
	agents AgentSource,
	entry contractx.DecisionEntry,
	call contractx.CallContext,
) contractx.Response {
	agent, ok := agents.Get(entry.Capability)
	if !ok {
		return contractx.Failure(fmt.Sprintf("capability %q is not registered", entry.Capability))
	}

	done := make(chan contractx.Response, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("capability", entry.Capability).
					Interface("panic", r).
					Msg("agent panicked")
				done <- contractx.Failure(fmt.Sprintf("capability %q panicked", entry.Capability))
			}
		}()
		done <- agent.Handle(ctx, entry.SubQuery, call)
	}()

	select {
	case resp := <-done:
		return normalize(entry.Capability, resp)
	case <-ctx.Done():
		return contractx.Failure(fmt.Sprintf("capability %q timed out", entry.Capability))
	}
}

// normalize enforces the response contract: a success carries a
// payload, a failure carries only a diagnostic, a partial may carry both.
func normalize(capability string, resp contractx.Response) contractx.Response {
	switch resp.Status {
	case contractx.StatusSuccess:
		if resp.Payload == nil {
			return contractx.Failure(fmt.Sprintf("capability %q returned success without payload", capability))
		}
		resp.Diagnostic = ""
		return resp
	case contractx.StatusPartial:
		return resp
	case contractx.StatusFailure:
		resp.Payload = nil
		if resp.Diagnostic == "" {
			resp.Diagnostic = fmt.Sprintf("capability %q failed", capability)
		}
		return resp
	}
	return contractx.Failure(fmt.Sprintf("capability %q returned invalid status %q", capability, resp.Status))
}
