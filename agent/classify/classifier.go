// Package classify turns a query and the capability catalog into a
// ranked dispatch decision. The scoring strategy is pluggable; the
// threshold, tie-break, and multi-intent policies live here.
package classify

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

type Config struct {
	// Threshold is the minimum confidence a capability must reach to be
	// dispatched. With the keyword scorer this is a matched-keyword count.
	Threshold float64 `split_words:"true" default:"1"`
	// MaxIntents caps how many sub-queries a multi-intent query fans out to.
	MaxIntents int `split_words:"true" default:"3"`
}

type Classifier struct {
	scorer     Scorer
	threshold  float64
	maxIntents int
}

func New(scorer Scorer, cfg Config) (*Classifier, error) {
	if scorer == nil {
		return nil, fmt.Errorf("%w: scorer is required", contractx.ErrValidation)
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 1
	}
	maxIntents := cfg.MaxIntents
	if maxIntents <= 0 {
		maxIntents = 3
	}

	return &Classifier{
		scorer:     scorer,
		threshold:  threshold,
		maxIntents: maxIntents,
	}, nil
}

// segmentSplitPattern separates coordinated clauses of a multi-intent
// query ("what's the weather and add 5 widgets to inventory").
var segmentSplitPattern = regexp.MustCompile(`(?i)\s*(?:;|,?\s+and\s+|,?\s+then\s+)\s*`)

func (c *Classifier) Classify(ctx context.Context, q contractx.Query, caps []contractx.Descriptor) (contractx.Decision, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" || len(caps) == 0 {
		return contractx.Decision{}, nil
	}

	// An explicit hint pins the whole query to one capability.
	if hint := strings.TrimSpace(q.AgentHint); hint != "" {
		for _, desc := range caps {
			if desc.ID == hint {
				return contractx.Decision{Entries: []contractx.DecisionEntry{
					{Capability: hint, Confidence: 1, SubQuery: text},
				}}, nil
			}
		}
		// Unknown hint is an unhandled query, not a fault.
		return contractx.Decision{}, nil
	}

	segments := splitSegments(text, c.maxIntents)
	entries, err := c.classifySegments(ctx, segments, caps)
	if err != nil {
		return contractx.Decision{}, err
	}
	if len(entries) == 0 && !(len(segments) == 1 && segments[0] == text) {
		// Clause splitting can separate keywords that only score together.
		entries, err = c.classifySegments(ctx, []string{text}, caps)
		if err != nil {
			return contractx.Decision{}, err
		}
	}

	entries = mergeByCapability(entries)
	c.rank(entries, caps)

	return contractx.Decision{Entries: entries}, nil
}

func (c *Classifier) classifySegments(ctx context.Context, segments []string, caps []contractx.Descriptor) ([]contractx.DecisionEntry, error) {
	var entries []contractx.DecisionEntry
	for _, segment := range segments {
		scores, err := c.scorer.Score(ctx, segment, caps)
		if err != nil {
			return nil, err
		}
		if len(scores) != len(caps) {
			return nil, fmt.Errorf("%w: scorer returned %d scores for %d capabilities",
				contractx.ErrSchemaViolation, len(scores), len(caps))
		}

		best := c.pickBest(scores, caps)
		if best < 0 {
			continue
		}
		entries = append(entries, contractx.DecisionEntry{
			Capability: caps[best].ID,
			Confidence: scores[best],
			SubQuery:   segment,
		})
	}
	return entries, nil
}

// pickBest returns the index of the winning capability for one segment,
// or -1 when nothing clears the threshold. Ties prefer the narrower
// descriptor (fewer keywords), then registration order.
func (c *Classifier) pickBest(scores []float64, caps []contractx.Descriptor) int {
	best := -1
	for i := range caps {
		if scores[i] < c.threshold {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		switch {
		case scores[i] > scores[best]:
			best = i
		case scores[i] == scores[best] && len(caps[i].Keywords) < len(caps[best].Keywords):
			best = i
		}
	}
	return best
}

// mergeByCapability folds repeated picks of the same capability into one
// entry, keeping first position, highest confidence, and joined sub-queries.
func mergeByCapability(entries []contractx.DecisionEntry) []contractx.DecisionEntry {
	if len(entries) < 2 {
		return entries
	}

	index := make(map[string]int, len(entries))
	merged := entries[:0]
	for _, e := range entries {
		if at, ok := index[e.Capability]; ok {
			if e.Confidence > merged[at].Confidence {
				merged[at].Confidence = e.Confidence
			}
			merged[at].SubQuery += "; " + e.SubQuery
			continue
		}
		index[e.Capability] = len(merged)
		merged = append(merged, e)
	}
	return merged
}

// rank orders entries by confidence, then narrower descriptor, then
// registration order. Stable and deterministic.
func (c *Classifier) rank(entries []contractx.DecisionEntry, caps []contractx.Descriptor) {
	keywordCount := make(map[string]int, len(caps))
	regOrder := make(map[string]int, len(caps))
	for i, desc := range caps {
		keywordCount[desc.ID] = len(desc.Keywords)
		regOrder[desc.ID] = i
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if keywordCount[a.Capability] != keywordCount[b.Capability] {
			return keywordCount[a.Capability] < keywordCount[b.Capability]
		}
		return regOrder[a.Capability] < regOrder[b.Capability]
	})
}

// splitSegments cuts text at coordinating separators. When the clause
// count exceeds max, the tail clauses stay one segment spelled exactly
// as the user wrote them, separators included.
func splitSegments(text string, max int) []string {
	seps := segmentSplitPattern.FindAllStringIndex(text, -1)

	var segments []string
	var starts []int
	prev := 0
	cut := func(start, end int) {
		if seg := strings.TrimSpace(text[start:end]); seg != "" {
			segments = append(segments, seg)
			starts = append(starts, start)
		}
	}
	for _, sep := range seps {
		cut(prev, sep[0])
		prev = sep[1]
	}
	cut(prev, len(text))

	if len(segments) == 0 {
		return []string{text}
	}
	if len(segments) > max {
		segments[max-1] = strings.TrimSpace(text[starts[max-1]:])
		segments = segments[:max]
	}
	return segments
}
