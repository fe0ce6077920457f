// Package gate rejects structurally invalid input before any classifier or
// search call is made. All checks are pure and synchronous.
package gate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rejection codes, used as metric labels.
const (
	CodeGreeting  = "greeting"
	CodeQuestion  = "question"
	CodeEquation  = "equation"
	CodeGibberish = "gibberish"
	CodeTooShort  = "too_short"
)

// Rejection reasons returned to the caller.
const (
	ReasonGreeting  = "This appears to be a conversational greeting, not a news headline."
	ReasonQuestion  = "This looks like a personal question or conversation, not a news article."
	ReasonEquation  = "This looks like a mathematical equation, not a news article."
	ReasonGibberish = "The text appears to be random characters or gibberish."
	ReasonTooShort  = "Input is too short to be a news article. Please enter a full headline or sentence."
)

// minInputLength is the shortest trimmed input accepted as a headline.
const minInputLength = 15

var (
	greetingPattern = regexp.MustCompile(`^(hi|hello|hey|greetings|good morning|good evening)\b`)
	questionPattern = regexp.MustCompile(`^(how|what|who|why|when|where) (are|is|do|does|can|will) (you|i|we|it)\b`)
	equationPattern = regexp.MustCompile(`\d+\s*[+\-*/=]\s*\d+`)

	consonantPattern = regexp.MustCompile(`[bcdfghjklmnpqrstvwxyz]`)
	vowelPattern     = regexp.MustCompile(`[aeiou]`)
)

// Rejection describes why input was refused before classification.
type Rejection struct {
	// Code is a short stable identifier for metrics and tests.
	Code string

	// Reason is the human-readable message returned to the caller.
	Reason string
}

// Validate applies the ordered heuristics; the first match wins and
// short-circuits the rest. A nil result means the input is acceptable.
// Ordering is part of the contract: an all-consonant short string reports
// gibberish, not length.
func Validate(text string) *Rejection {
	clean := strings.ToLower(strings.TrimSpace(text))

	if greetingPattern.MatchString(clean) {
		return &Rejection{Code: CodeGreeting, Reason: ReasonGreeting}
	}

	if questionPattern.MatchString(clean) {
		return &Rejection{Code: CodeQuestion, Reason: ReasonQuestion}
	}

	if equationPattern.MatchString(text) {
		return &Rejection{Code: CodeEquation, Reason: ReasonEquation}
	}

	consonants := len(consonantPattern.FindAllString(clean, -1))
	vowels := len(vowelPattern.FindAllString(clean, -1))
	if vowels == 0 && consonants > 3 {
		return &Rejection{Code: CodeGibberish, Reason: ReasonGibberish}
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < minInputLength {
		return &Rejection{Code: CodeTooShort, Reason: ReasonTooShort}
	}

	return nil
}
