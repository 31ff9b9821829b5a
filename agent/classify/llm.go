package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

const llmScorerSystemPrompt = `You score how well each capability matches a user query.
You receive a JSON object with "query" and "capabilities" (each with id, keywords, description).
Reply with ONLY a JSON array of numbers between 0 and 10, one per capability in the given order.
0 means the capability is irrelevant to the query. Do not add any other text.`

// LLMScorer delegates capability scoring to a chat model speaking the
// OpenAI protocol. Temperature is pinned to 0 so identical inputs score
// identically.
type LLMScorer struct {
	client *openaisdk.Client
	model  string
}

func NewLLMScorer(client *openaisdk.Client, model string) (*LLMScorer, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: llm client is required", contractx.ErrValidation)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("%w: llm model is required", contractx.ErrValidation)
	}
	return &LLMScorer{client: client, model: model}, nil
}

func (s *LLMScorer) Score(ctx context.Context, segment string, caps []contractx.Descriptor) ([]float64, error) {
	payload, err := json.Marshal(map[string]any{
		"query":        segment,
		"capabilities": caps,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal scorer payload: %v", contractx.ErrValidation, err)
	}

	resp, err := s.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(s.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(llmScorerSystemPrompt),
			openaisdk.UserMessage(string(payload)),
		},
		Temperature: openaisdk.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", contractx.ErrModelInvoke)
	}

	return parseScores(resp.Choices[0].Message.Content, len(caps))
}

func parseScores(content string, want int) ([]float64, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var scores []float64
	if err := json.Unmarshal([]byte(content), &scores); err != nil {
		return nil, fmt.Errorf("%w: decode scores: %v", contractx.ErrSchemaViolation, err)
	}
	if len(scores) != want {
		return nil, fmt.Errorf("%w: got %d scores, want %d", contractx.ErrSchemaViolation, len(scores), want)
	}
	for i, sc := range scores {
		if sc < 0 {
			scores[i] = 0
		}
	}
	return scores, nil
}
