package prompt

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func encoder() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			// Offline environments fall back to the word heuristic below.
			return
		}
		tk = enc
	})
	return tk
}

// countTokens estimates the token count of s. Uses cl100k_base when the
// encoding is available, otherwise a word count.
func countTokens(s string) int {
	if enc := encoder(); enc != nil {
		return len(enc.Encode(s, nil, nil))
	}
	return len(strings.Fields(s))
}

// truncateTokens cuts s to at most max tokens.
func truncateTokens(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if enc := encoder(); enc != nil {
		ids := enc.Encode(s, nil, nil)
		if len(ids) <= max {
			return s
		}
		return enc.Decode(ids[:max])
	}
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ")
}
