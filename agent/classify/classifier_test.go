package classify

import (
	"context"
	"errors"
	"reflect"
	"testing"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

type fakeScorer struct {
	scores   map[string][]float64
	err      error
	segments []string
}

func (f *fakeScorer) Score(_ context.Context, segment string, caps []contractx.Descriptor) ([]float64, error) {
	f.segments = append(f.segments, segment)
	if f.err != nil {
		return nil, f.err
	}
	if scores, ok := f.scores[segment]; ok {
		return scores, nil
	}
	return make([]float64, len(caps)), nil
}

func testCapabilities() []contractx.Descriptor {
	return []contractx.Descriptor{
		{ID: "search", Keywords: []string{"search", "find", "lookup", "web", "google"}},
		{ID: "weather-time", Keywords: []string{"weather", "time", "temperature", "forecast", "clock"}},
		{ID: "inventory", Keywords: []string{"inventory", "item", "stock", "add", "create", "update", "delete", "remove", "quantity"}},
	}
}

func TestClassifySingleMatch(t *testing.T) {
	t.Parallel()

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "search for golang tutorials"}, testCapabilities())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(decision.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(decision.Entries))
	}
	if decision.Entries[0].Capability != "search" {
		t.Fatalf("expected search, got %q", decision.Entries[0].Capability)
	}
	if decision.Entries[0].SubQuery != "search for golang tutorials" {
		t.Fatalf("unexpected sub-query %q", decision.Entries[0].SubQuery)
	}
}

func TestClassifyNoMatchIsUnhandled(t *testing.T) {
	t.Parallel()

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "tell me a joke"}, testCapabilities())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !decision.Unhandled() {
		t.Fatalf("expected unhandled decision, got %+v", decision)
	}
}

func TestClassifyEmptyInputs(t *testing.T) {
	t.Parallel()

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "   "}, testCapabilities())
	if err != nil || !decision.Unhandled() {
		t.Fatalf("expected unhandled for blank text, got %+v err=%v", decision, err)
	}

	decision, err = c.Classify(context.Background(),
		contractx.Query{Text: "search something"}, nil)
	if err != nil || !decision.Unhandled() {
		t.Fatalf("expected unhandled for empty catalog, got %+v err=%v", decision, err)
	}
}

func TestClassifyAgentHint(t *testing.T) {
	t.Parallel()

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// The hint wins even when the text points elsewhere.
	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "search the web", AgentHint: "inventory"}, testCapabilities())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(decision.Entries) != 1 || decision.Entries[0].Capability != "inventory" {
		t.Fatalf("expected hinted inventory entry, got %+v", decision.Entries)
	}
	if decision.Entries[0].Confidence != 1 {
		t.Fatalf("expected confidence 1 for hint, got %v", decision.Entries[0].Confidence)
	}

	decision, err = c.Classify(context.Background(),
		contractx.Query{Text: "search the web", AgentHint: "nope"}, testCapabilities())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !decision.Unhandled() {
		t.Fatalf("expected unhandled for unknown hint, got %+v", decision)
	}
}

func TestClassifyTieBreakNarrowerDescriptor(t *testing.T) {
	t.Parallel()

	caps := []contractx.Descriptor{
		{ID: "broad", Keywords: []string{"report", "data"}},
		{ID: "narrow", Keywords: []string{"report"}},
	}

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "show report"}, caps)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(decision.Entries) != 1 || decision.Entries[0].Capability != "narrow" {
		t.Fatalf("expected narrow to win the tie, got %+v", decision.Entries)
	}
}

func TestClassifyTieBreakRegistrationOrder(t *testing.T) {
	t.Parallel()

	caps := []contractx.Descriptor{
		{ID: "first", Keywords: []string{"alpha"}},
		{ID: "second", Keywords: []string{"beta"}},
	}

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "alpha beta"}, caps)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(decision.Entries) != 1 || decision.Entries[0].Capability != "first" {
		t.Fatalf("expected first-registered to win the tie, got %+v", decision.Entries)
	}
}

func TestClassifyMultiIntent(t *testing.T) {
	t.Parallel()

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "what's the weather in Tokyo and add 3 apples to inventory"},
		testCapabilities())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(decision.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", decision.Entries)
	}
	// "add ... inventory" matches two keywords, so inventory ranks first.
	if decision.Entries[0].Capability != "inventory" || decision.Entries[1].Capability != "weather-time" {
		t.Fatalf("unexpected order: %+v", decision.Entries)
	}
	if decision.Entries[0].SubQuery != "add 3 apples to inventory" {
		t.Fatalf("unexpected inventory sub-query %q", decision.Entries[0].SubQuery)
	}
	if decision.Entries[1].SubQuery != "what's the weather in Tokyo" {
		t.Fatalf("unexpected weather sub-query %q", decision.Entries[1].SubQuery)
	}
}

func TestClassifyWholeTextFallback(t *testing.T) {
	t.Parallel()

	caps := []contractx.Descriptor{
		{ID: "pair", Keywords: []string{"alpha", "beta"}},
	}

	// Threshold 2 means neither clause scores alone; the whole text does.
	c, err := New(NewKeywordScorer(), Config{Threshold: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "alpha and beta"}, caps)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(decision.Entries) != 1 || decision.Entries[0].Capability != "pair" {
		t.Fatalf("expected whole-text fallback entry, got %+v", decision.Entries)
	}
	if decision.Entries[0].SubQuery != "alpha and beta" {
		t.Fatalf("expected whole text as sub-query, got %q", decision.Entries[0].SubQuery)
	}
}

func TestClassifyMergesRepeatedCapability(t *testing.T) {
	t.Parallel()

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision, err := c.Classify(context.Background(),
		contractx.Query{Text: "add 2 pens and remove item abc"}, testCapabilities())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(decision.Entries) != 1 {
		t.Fatalf("expected merged single entry, got %+v", decision.Entries)
	}
	entry := decision.Entries[0]
	if entry.Capability != "inventory" {
		t.Fatalf("expected inventory, got %q", entry.Capability)
	}
	if entry.SubQuery != "add 2 pens; remove item abc" {
		t.Fatalf("unexpected merged sub-query %q", entry.SubQuery)
	}
}

func TestClassifyMaxIntentsCapsSegments(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{}
	c, err := New(scorer, Config{MaxIntents: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	caps := testCapabilities()
	if _, err := c.Classify(context.Background(),
		contractx.Query{Text: "one and two and three"}, caps); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	// Two split segments, then the whole-text fallback.
	want := []string{"one", "two and three", "one and two and three"}
	if !reflect.DeepEqual(scorer.segments, want) {
		t.Fatalf("expected segments %v, got %v", want, scorer.segments)
	}
}

func TestClassifySingleClauseScoresOnce(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{}
	c, err := New(scorer, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// No separators: a no-match must not rescore the identical text.
	if _, err := c.Classify(context.Background(),
		contractx.Query{Text: "tell me a joke"}, testCapabilities()); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := []string{"tell me a joke"}
	if !reflect.DeepEqual(scorer.segments, want) {
		t.Fatalf("expected one scoring pass %v, got %v", want, scorer.segments)
	}
}

func TestClassifyOverflowKeepsOriginalSeparators(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{}
	c, err := New(scorer, Config{MaxIntents: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	query := "alpha; beta, then gamma"
	if _, err := c.Classify(context.Background(),
		contractx.Query{Text: query}, testCapabilities()); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	// The capped tail is the user's text verbatim, then the whole-text
	// fallback after nothing matched.
	want := []string{"alpha", "beta, then gamma", query}
	if !reflect.DeepEqual(scorer.segments, want) {
		t.Fatalf("expected segments %v, got %v", want, scorer.segments)
	}
}

func TestClassifyScorerErrorPropagates(t *testing.T) {
	t.Parallel()

	scoreErr := errors.New("model down")
	c, err := New(&fakeScorer{err: scoreErr}, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Classify(context.Background(),
		contractx.Query{Text: "search something"}, testCapabilities())
	if !errors.Is(err, scoreErr) {
		t.Fatalf("expected scorer error, got %v", err)
	}
}

func TestClassifyScorerLengthMismatch(t *testing.T) {
	t.Parallel()

	scorer := &fakeScorer{scores: map[string][]float64{
		"search something": {1},
	}}
	c, err := New(scorer, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Classify(context.Background(),
		contractx.Query{Text: "search something"}, testCapabilities())
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	c, err := New(NewKeywordScorer(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	query := contractx.Query{Text: "find the weather forecast and update stock quantity"}
	first, err := c.Classify(context.Background(), query, testCapabilities())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := c.Classify(context.Background(), query, testCapabilities())
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("classification not deterministic: %+v vs %+v", first, again)
		}
	}
}
