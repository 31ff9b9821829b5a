package routernode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

// GraphState carries one query through the routing pipeline:
// received, classifying, dispatching, aggregating, responded.
type GraphState struct {
	Query contractx.Query
	Now   time.Time

	Decision contractx.Decision
	Results  []contractx.AgentResult

	Status  contractx.Status
	Message string
}

func ValidateRequest(in contractx.Query, nowFn func() time.Time) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", contractx.ErrValidation)
	}

	in.Text = text
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.AgentHint = strings.TrimSpace(in.AgentHint)

	return &GraphState{
		Query: in,
		Now:   nowFn().UTC(),
	}, nil
}
