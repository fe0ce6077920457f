// Package explain renders the human-readable reasoning attached to each
// verdict. Explanations are pure functions of the final label, the
// corroboration evidence, and the lexical markers found in the text.
package explain

import (
	"fmt"
	"strings"

	"github.com/credgate/credgate/pkg/verdict"
)

// maxReportedKeywords bounds how many sensational terms one explanation cites.
const maxReportedKeywords = 3

const (
	styleConsistent = "The language patterns and writing style match those typically found in credible news reporting."
	noTrustedSource = "Could not find this story on any trusted news source."
	genericFallback = "The content matches patterns often associated with misinformation or unreliable news sources."
)

// clickbaitKeywords are the sensational markers cited in FAKE explanations,
// in reporting order.
var clickbaitKeywords = []string{
	"shocking", "secret", "banned", "censored", "miracle", "you won't believe",
	"mind-blowing", "exposed", "hidden truth", "conspiracy", "illuminati",
	"deep state", "hoax", "fake news", "mainstream media lies", "viral",
	"destroy", "obliterate", "shreds", "bombshell",
}

// Explain builds the explanation for an arbitrated label. REAL cites the
// evidence when there is any, otherwise the classifier's stylistic signal.
// FAKE accumulates fragments: the absence of trusted coverage and any
// sensational language found, with a generic fallback when neither applies.
func Explain(text, label string, evidence []verdict.SourceMatch) string {
	if label == verdict.LabelReal {
		if len(evidence) > 0 {
			return fmt.Sprintf("Verified by %d trusted source(s) including %s.", len(evidence), evidence[0].Domain)
		}
		return styleConsistent
	}

	var fragments []string
	if len(evidence) == 0 {
		fragments = append(fragments, noTrustedSource)
	}
	if keywords := MatchedKeywords(text); len(keywords) > 0 {
		fragments = append(fragments, fmt.Sprintf("Contains sensational language: %s.", strings.Join(keywords, ", ")))
	}
	if len(fragments) == 0 {
		return genericFallback
	}
	return strings.Join(fragments, " ")
}

// MatchedKeywords reports up to three sensational terms present in the
// text, case-insensitively, in keyword-list order.
func MatchedKeywords(text string) []string {
	lowered := strings.ToLower(text)
	var found []string
	for _, keyword := range clickbaitKeywords {
		if strings.Contains(lowered, keyword) {
			found = append(found, keyword)
			if len(found) == maxReportedKeywords {
				break
			}
		}
	}
	return found
}
