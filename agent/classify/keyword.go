package classify

import (
	"context"
	"strings"
	"unicode"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

// Scorer scores one query segment against every registered capability.
// The returned slice is index-aligned with caps. A capability's score
// must depend only on the segment and its own descriptor so that adding
// an unrelated capability never changes another capability's score.
type Scorer interface {
	Score(ctx context.Context, segment string, caps []contractx.Descriptor) ([]float64, error)
}

// KeywordScorer scores a capability by the number of its intent keywords
// present in the segment. Deterministic and offline.
type KeywordScorer struct{}

func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{}
}

func (s *KeywordScorer) Score(_ context.Context, segment string, caps []contractx.Descriptor) ([]float64, error) {
	tokens := tokenSet(segment)

	scores := make([]float64, len(caps))
	for i, desc := range caps {
		matched := 0
		for _, kw := range desc.Keywords {
			if _, ok := tokens[fold(kw)]; ok {
				matched++
			}
		}
		scores[i] = float64(matched)
	}
	return scores, nil
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[fold(f)] = struct{}{}
	}
	return set
}

// fold lowercases and strips a plural trailing "s" so "apples" matches
// the keyword "apple" and vice versa.
func fold(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		word = strings.TrimSuffix(word, "s")
	}
	return word
}
