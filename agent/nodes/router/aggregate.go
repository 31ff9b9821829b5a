package routernode

import (
	"fmt"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

// UnhandledMessage is returned when no capability matched the query.
const UnhandledMessage = "no registered agent can handle this query"

// AggregateResults folds the per-agent responses into a single outcome.
// All succeeded means success, all failed means failure, anything in
// between is partial. An empty decision short-circuits to unhandled.
func AggregateResults(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.Decision.Unhandled() {
		in.Status = contractx.StatusUnhandled
		in.Message = UnhandledMessage
		return in, nil
	}

	succeeded, partials := 0, 0
	for _, result := range in.Results {
		switch result.Response.Status {
		case contractx.StatusSuccess:
			succeeded++
		case contractx.StatusPartial:
			partials++
		}
	}

	switch {
	case succeeded == len(in.Results):
		in.Status = contractx.StatusSuccess
	case succeeded == 0 && partials == 0:
		in.Status = contractx.StatusFailure
		in.Message = "all agents failed"
	default:
		in.Status = contractx.StatusPartial
	}
	return in, nil
}

func FinalizeResponse(in *GraphState) (contractx.RouteResponse, error) {
	if in == nil {
		return contractx.RouteResponse{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return contractx.RouteResponse{
		Status:  in.Status,
		Results: in.Results,
		Message: in.Message,
	}, nil
}
