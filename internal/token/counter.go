// Package token provides the token accounting used for usage metering.
// Counts from one Counter instance are summed across pipeline stages, so the
// same counter must be shared wherever counts are combined.
package token

import (
	"strings"
	"unicode/utf8"
)

// Counter reports how many tokens a piece of text costs.
type Counter interface {
	Count(text string) int
}

// Heuristic approximates a BPE tokenizer without pulling in model data:
// the larger of the whitespace-separated field count and runes/4.
// Deterministic, zero for empty input, and never decreasing under
// string concatenation.
type Heuristic struct{}

func NewHeuristic() Heuristic { return Heuristic{} }

func (Heuristic) Count(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	chars := (utf8.RuneCountInString(text) + 3) / 4
	if words > chars {
		return words
	}
	return chars
}
