package feedback

import (
	"regexp"
	"strings"
)

// Placeholder tokens used in normalized question patterns.
const (
	numToken    = "<num>"
	personToken = "<person>"
	orgToken    = "<org>"
)

var (
	numRe = regexp.MustCompile(`[0-9]+`)
	// Organization marker plus the word that follows it ("công ty FPT",
	// "organization X") collapses to one token.
	orgRe = regexp.MustCompile(`(công ty|tổ chức|doanh nghiệp|company|organization)\s+\S+`)
	// Multi-word pronouns are replaced before tokenization.
	pluralPronounRe = regexp.MustCompile(`chúng (tôi|ta|mình|em)`)

	pronouns = map[string]bool{
		"tôi": true, "tớ": true, "mình": true, "anh": true, "chị": true,
		"em": true, "bạn": true, "bác": true, "cô": true, "chú": true,
		"cậu": true, "i": true, "me": true, "my": true, "you": true,
		"your": true, "we": true, "our": true, "us": true,
	}
)

// Normalize derives the reuse key for a question: lower-cased, with digit
// runs, first/second-person pronouns, and organization references replaced
// by placeholder tokens. Superficially different but structurally identical
// questions collapse to the same pattern.
func Normalize(question string) string {
	s := strings.ToLower(strings.TrimSpace(question))
	s = orgRe.ReplaceAllString(s, orgToken)
	s = pluralPronounRe.ReplaceAllString(s, personToken)

	tokens := strings.Fields(s)
	for i, tok := range tokens {
		core := strings.Trim(tok, ".,!?;:\"'()")
		if pronouns[core] {
			tokens[i] = personToken
		}
	}
	s = strings.Join(tokens, " ")
	return numRe.ReplaceAllString(s, numToken)
}
