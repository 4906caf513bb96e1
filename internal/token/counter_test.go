package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountEmpty(t *testing.T) {
	c := NewHeuristic()
	assert.Equal(t, 0, c.Count(""))
}

func TestCountDeterministic(t *testing.T) {
	c := NewHeuristic()
	s := "Amsterdam is known for canals."
	assert.Equal(t, c.Count(s), c.Count(s))
	assert.Greater(t, c.Count(s), 0)
}

func TestCountMonotonicUnderConcat(t *testing.T) {
	c := NewHeuristic()
	samples := []string{
		"", "a", "hello world", "User: hi\nBot: hello\n",
		strings.Repeat("lorem ipsum ", 50),
		"punctuation, too! and unicode: é ü ß",
	}
	for _, a := range samples {
		for _, b := range samples {
			got := c.Count(a + b)
			min := c.Count(a)
			if n := c.Count(b); n > min {
				min = n
			}
			assert.GreaterOrEqual(t, got, min, "count(%q+%q)", a, b)
		}
	}
}

func TestCountScalesWithLength(t *testing.T) {
	c := NewHeuristic()
	short := "word"
	long := strings.Repeat("word ", 100)
	assert.Greater(t, c.Count(long), c.Count(short))
}
