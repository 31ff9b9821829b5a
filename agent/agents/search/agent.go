// Package search exposes web lookups as a routable capability backed by
// a SearXNG instance.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kridsada/agentdesk/agent/contract"
	"github.com/kridsada/agentdesk/pkg/websearch"
)

const CapabilityID = "search"

// Searcher is what the agent needs from a search backend.
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

type Agent struct {
	client Searcher
}

func New(client Searcher) (*Agent, error) {
	if client == nil {
		return nil, errors.New("search agent requires a search client")
	}
	return &Agent{client: client}, nil
}

func (a *Agent) Describe() contractx.Descriptor {
	return contractx.Descriptor{
		ID:          CapabilityID,
		Keywords:    []string{"search", "find", "lookup", "web", "google"},
		Description: "Searches the web and returns the top matching results.",
	}
}

func (a *Agent) Handle(ctx context.Context, subQuery string, call contractx.CallContext) contractx.Response {
	query := stripSearchPrefix(subQuery)
	if query == "" {
		return contractx.Failure("search query must not be empty")
	}

	results, err := a.client.Search(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("session_id", call.SessionID).Msg("web search failed")
		return contractx.Failure("web search is unavailable")
	}

	payload := map[string]any{
		"query":   query,
		"results": results,
		"count":   len(results),
	}
	if len(results) == 0 {
		payload["message"] = "no results found"
	}
	return contractx.Success(payload)
}

// stripSearchPrefix drops a leading search verb so the backend sees the
// subject, not the instruction.
func stripSearchPrefix(text string) string {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	switch lower {
	case "search", "find", "lookup", "look up":
		return ""
	}
	for _, prefix := range []string{"search for ", "search ", "find ", "look up ", "lookup "} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(text[len(prefix):])
		}
	}
	return text
}
