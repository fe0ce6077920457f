// Package lexical computes auxiliary signals from the input text: a
// lexicon-based sentiment score and the detected language. Both are
// advisory; neither ever gates the decision pipeline.
package lexical

import (
	"strings"
	"unicode"
)

// Sentiment labels.
const (
	LabelPositive = "Positive"
	LabelNegative = "Negative"
	LabelNeutral  = "Neutral"
)

// labelThreshold separates Positive/Negative from Neutral on polarity.
const labelThreshold = 0.1

// Score is the sentiment signal for one text.
type Score struct {
	// Polarity is (positive - negative) / opinionated, in [-1,1].
	Polarity float64

	// Subjectivity is the share of opinionated tokens, in [0,1].
	Subjectivity float64

	// Label is Positive above +0.1, Negative below -0.1, else Neutral.
	Label string
}

var positiveWords = wordSet(
	"good", "great", "excellent", "positive", "success", "successful",
	"win", "wins", "won", "growth", "improve", "improved", "improves",
	"strong", "stronger", "boost", "boosts", "gain", "gains", "benefit",
	"benefits", "hope", "hopeful", "celebrate", "celebrated", "praise",
	"praised", "breakthrough", "recovery", "recover", "safe", "safer",
	"progress", "agree", "agreed", "support", "supports", "supported",
	"thriving", "stable", "calm", "relief", "promising",
)

var negativeWords = wordSet(
	"bad", "worse", "worst", "negative", "fail", "failed", "failure",
	"crisis", "collapse", "crash", "fear", "fears", "threat", "threatens",
	"threatened", "war", "death", "deaths", "dead", "kill", "killed",
	"loss", "losses", "lose", "weak", "weaker", "decline", "declined",
	"drop", "dropped", "scandal", "corrupt", "corruption", "fraud",
	"panic", "chaos", "disaster", "catastrophe", "warning", "warns",
	"danger", "dangerous", "risk", "risky", "attack", "attacked",
	"violence", "violent", "angry", "anger", "outrage", "shocking",
	"terrible", "horrific", "grim",
)

// subjectiveMarkers are opinionated without carrying polarity; they raise
// subjectivity only.
var subjectiveMarkers = wordSet(
	"clearly", "obviously", "definitely", "certainly", "undoubtedly",
	"allegedly", "reportedly", "arguably", "truly", "believe", "believes",
	"think", "thinks", "feel", "feels", "amazing", "incredible",
	"unbelievable", "must", "should",
)

var negations = wordSet(
	"not", "no", "never", "nothing", "neither", "nor", "cannot",
	"isn't", "wasn't", "aren't", "weren't", "don't", "doesn't", "didn't",
	"won't", "can't", "couldn't", "wouldn't", "shouldn't",
)

func wordSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// AnalyzeSentiment scores text with the built-in lexicon. A negation token
// flips the polarity of the next opinionated token.
func AnalyzeSentiment(text string) Score {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Score{Label: LabelNeutral}
	}

	var positive, negative, opinionated int
	negated := false
	for _, tok := range tokens {
		if _, ok := negations[tok]; ok {
			negated = true
			continue
		}

		_, isPos := positiveWords[tok]
		_, isNeg := negativeWords[tok]
		_, isSubj := subjectiveMarkers[tok]

		switch {
		case isPos:
			opinionated++
			if negated {
				negative++
			} else {
				positive++
			}
			negated = false
		case isNeg:
			opinionated++
			if negated {
				positive++
			} else {
				negative++
			}
			negated = false
		case isSubj:
			opinionated++
		}
	}

	score := Score{Label: LabelNeutral}
	if polar := positive + negative; polar > 0 {
		score.Polarity = float64(positive-negative) / float64(polar)
	}
	score.Subjectivity = float64(opinionated) / float64(len(tokens))

	switch {
	case score.Polarity > labelThreshold:
		score.Label = LabelPositive
	case score.Polarity < -labelThreshold:
		score.Label = LabelNegative
	}
	return score
}

// tokenize lowercases and splits on anything that is not a letter or an
// in-word apostrophe, so contractions stay whole.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
