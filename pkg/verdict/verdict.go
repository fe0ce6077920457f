// Package verdict defines the decision types exchanged between the pipeline
// stages, the source verifier, and the API surface.
package verdict

import (
	"time"

	"github.com/google/uuid"
)

// Labels a decision can carry.
const (
	// LabelReal marks content corroborated by a trusted source or judged
	// credible by the classifier.
	LabelReal = "REAL"

	// LabelFake marks content the classifier rejected with no trusted
	// corroboration.
	LabelFake = "FAKE"

	// LabelInvalid marks input that never reached the classifier.
	LabelInvalid = "INVALID"
)

// Confidence descriptions with fixed wording.
const (
	// ConfidenceNotApplicable is used for INVALID verdicts.
	ConfidenceNotApplicable = "N/A"

	// ConfidenceVerified is the maximal-confidence description applied when
	// trusted corroboration overrides the classifier.
	ConfidenceVerified = "100% (Verified Source)"
)

// Prediction is the raw classifier output before arbitration.
type Prediction struct {
	// Label is REAL or FAKE.
	Label string `json:"label"`

	// Confidence is the classifier's probability for Label, in [0,1].
	Confidence float64 `json:"confidence"`
}

// SourceMatch is one trusted-outlet hit from the corroboration search.
// Ordering follows the search engine's relevance order.
type SourceMatch struct {
	// Domain is the allowlist entry the result URL matched.
	Domain string `json:"domain"`

	// URL is the full result URL.
	URL string `json:"url"`

	// Title is the result title as returned by the search provider.
	Title string `json:"title"`
}

// Correction points a rejected story at a fact-check source.
// Same shape as SourceMatch but produced by the fact-check query.
type Correction struct {
	Domain string `json:"domain"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

// Sentiment is the auxiliary lexical signal attached to a verdict.
type Sentiment struct {
	// Label is Positive, Negative, or Neutral.
	Label string `json:"label"`

	// Polarity is in [-1,1]; above 0.1 is Positive, below -0.1 Negative.
	Polarity float64 `json:"polarity"`

	// Subjectivity is the opinionated-token share, in [0,1].
	Subjectivity float64 `json:"subjectivity"`
}

// Verdict is the terminal decision record returned to the caller and handed
// to the audit store. Constructed once per request; immutable afterwards.
type Verdict struct {
	// ID is a UUIDv4 assigned when the verdict is emitted.
	ID string `json:"id"`

	// Prediction is the arbitrated label: REAL, FAKE, or INVALID.
	Prediction string `json:"prediction"`

	// Confidence is the human-readable confidence description, e.g.
	// "87.3% (remote)" or "100% (Verified Source)"; "N/A" for INVALID.
	Confidence string `json:"confidence"`

	// Sources is the corroboration evidence, at most three matches.
	// Non-empty sources imply Prediction == REAL.
	Sources []SourceMatch `json:"sources"`

	// Explanation is the synthesized human-readable reasoning.
	Explanation string `json:"explanation"`

	// Correction is the suggested fact-check source; FAKE verdicts only.
	Correction *Correction `json:"correction,omitempty"`

	// Sentiment carries the lexical signal; omitted for INVALID verdicts.
	Sentiment *Sentiment `json:"sentiment,omitempty"`

	// Language is the detected language name, when detection succeeded.
	Language string `json:"language,omitempty"`

	// OriginalText is the pre-normalization input, present only when
	// normalization changed the text.
	OriginalText string `json:"original_text,omitempty"`

	// CorrectedText is the post-normalization input, present only when
	// normalization changed the text.
	CorrectedText string `json:"corrected_text,omitempty"`

	// InvalidReason is the gatekeeper or extraction failure reason;
	// INVALID verdicts only.
	InvalidReason string `json:"invalid_reason,omitempty"`

	// CreatedAt is when the verdict was emitted.
	CreatedAt time.Time `json:"created_at"`
}

// NewID returns a fresh verdict ID.
func NewID() string {
	return uuid.New().String()
}

// Invalid builds an INVALID verdict with the given reason. The reason doubles
// as the explanation so minimal clients need only one field.
func Invalid(reason string) *Verdict {
	return &Verdict{
		ID:            NewID(),
		Prediction:    LabelInvalid,
		Confidence:    ConfidenceNotApplicable,
		Sources:       []SourceMatch{},
		Explanation:   reason,
		InvalidReason: reason,
		CreatedAt:     time.Now().UTC(),
	}
}

// Overridden reports whether corroboration forced this verdict to REAL.
func (v *Verdict) Overridden() bool {
	return v != nil && v.Prediction == LabelReal && len(v.Sources) > 0
}

// IsInvalid reports whether the input never reached the classifier.
func (v *Verdict) IsInvalid() bool {
	return v != nil && v.Prediction == LabelInvalid
}
