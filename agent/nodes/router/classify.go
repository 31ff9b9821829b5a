package routernode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

func ClassifyQuery(
	ctx context.Context,
	in *GraphState,
	classifier contractx.Classifier,
	capabilities []contractx.Descriptor,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	decision, err := classifier.Classify(ctx, in.Query, capabilities)
	if err != nil {
		return nil, fmt.Errorf("classify query: %w", err)
	}

	log.Debug().
		Str("session_id", in.Query.SessionID).
		Int("intents", len(decision.Entries)).
		Msg("query classified")

	in.Decision = decision
	return in, nil
}
