// Package semantic scores how close two short job-title or skill texts
// are. The production matcher embeds both texts through an
// OpenAI-compatible endpoint and compares the vectors; an exact matcher
// covers tests and deterministic comparisons.
package semantic

import (
	"context"
	"regexp"
	"strings"
)

// Matcher scores two texts in [0, 1]. Implementations must be safe for
// concurrent use.
type Matcher interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

var reSpaces = regexp.MustCompile(`\s+`)

func normalizeKey(s string) string {
	return reSpaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// ExactMatcher scores 1 for texts that are equal after lowercasing and
// whitespace collapsing, 0 otherwise.
type ExactMatcher struct{}

func (ExactMatcher) Similarity(_ context.Context, a, b string) (float64, error) {
	if normalizeKey(a) == normalizeKey(b) {
		return 1.0, nil
	}
	return 0.0, nil
}
