package lexical

import (
	"github.com/abadojack/whatlanggo"
)

// minLanguageConfidence is the floor below which detection falls back to
// English rather than reporting an unreliable guess.
const minLanguageConfidence = 0.3

// LanguageResult is the detected language of one text.
type LanguageResult struct {
	// Name is the English language name, e.g. "English", "Spanish".
	Name string

	// Code is the ISO 639-1 code, e.g. "en", "es".
	Code string

	// Confidence is the detector's confidence, clamped to [0,1].
	Confidence float64
}

// DetectLanguage identifies the language of text. Empty input and
// low-confidence detections default to English.
func DetectLanguage(text string) LanguageResult {
	if text == "" {
		return LanguageResult{Name: "English", Code: "en", Confidence: 0.5}
	}

	info := whatlanggo.Detect(text)

	confidence := info.Confidence
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.0 {
		confidence = 0.0
	}

	code := info.Lang.Iso6391()
	if confidence < minLanguageConfidence || !info.IsReliable() || code == "" {
		return LanguageResult{Name: "English", Code: "en", Confidence: 0.5}
	}

	return LanguageResult{
		Name:       info.Lang.String(),
		Code:       code,
		Confidence: confidence,
	}
}
