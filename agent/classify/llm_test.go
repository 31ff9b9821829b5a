package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

func newCompletionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "upstream error", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		})
	}))
}

func newTestScorer(t *testing.T, baseURL string) *LLMScorer {
	t.Helper()
	client := openaisdk.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(baseURL),
	)
	scorer, err := NewLLMScorer(&client, "test-model")
	if err != nil {
		t.Fatalf("NewLLMScorer: %v", err)
	}
	return scorer
}

func TestLLMScorerScore(t *testing.T) {
	t.Parallel()

	srv := newCompletionServer(t, "[0, 7.5, 3]", http.StatusOK)
	defer srv.Close()

	scores, err := newTestScorer(t, srv.URL).Score(context.Background(), "weather in Tokyo",
		[]contractx.Descriptor{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	want := []float64{0, 7.5, 3}
	for i := range want {
		if scores[i] != want[i] {
			t.Fatalf("expected scores %v, got %v", want, scores)
		}
	}
}

func TestLLMScorerUpstreamError(t *testing.T) {
	t.Parallel()

	srv := newCompletionServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	_, err := newTestScorer(t, srv.URL).Score(context.Background(), "anything",
		[]contractx.Descriptor{{ID: "a"}})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestLLMScorerLengthMismatch(t *testing.T) {
	t.Parallel()

	srv := newCompletionServer(t, "[1, 2]", http.StatusOK)
	defer srv.Close()

	_, err := newTestScorer(t, srv.URL).Score(context.Background(), "anything",
		[]contractx.Descriptor{{ID: "a"}})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestLLMScorerRequiresClientAndModel(t *testing.T) {
	t.Parallel()

	if _, err := NewLLMScorer(nil, "m"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for nil client, got %v", err)
	}

	client := openaisdk.NewClient(option.WithAPIKey("k"))
	if _, err := NewLLMScorer(&client, "  "); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank model, got %v", err)
	}
}

func TestParseScores(t *testing.T) {
	t.Parallel()

	scores, err := parseScores("```json\n[1, -2, 3]\n```", 3)
	if err != nil {
		t.Fatalf("parseScores: %v", err)
	}
	if scores[0] != 1 || scores[1] != 0 || scores[2] != 3 {
		t.Fatalf("expected fenced parse with negative clamp, got %v", scores)
	}

	if _, err := parseScores("not json", 1); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation for garbage, got %v", err)
	}
}
