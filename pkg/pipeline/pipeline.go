// Package pipeline orchestrates a credibility decision: extraction,
// gatekeeping, normalization, classification, corroboration, arbitration,
// and explanation, emitting one immutable verdict per request.
package pipeline

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/credgate/credgate/pkg/classification"
	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/explain"
	"github.com/credgate/credgate/pkg/gate"
	"github.com/credgate/credgate/pkg/lexical"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/observability/tracing"
	"github.com/credgate/credgate/pkg/textops"
	"github.com/credgate/credgate/pkg/verdict"
)

// extractionFailedReason is returned when a URL-only request cannot be
// turned into article text.
const extractionFailedReason = "Could not extract text from the provided URL. Please paste the text manually."

// storeTimeout bounds the asynchronous audit write.
const storeTimeout = 5 * time.Second

// Request is one credibility check.
type Request struct {
	// Text is the headline or article text to judge.
	Text string `json:"text"`

	// URL is fetched and extracted when Text is absent or shorter than the
	// configured minimum.
	URL string `json:"url,omitempty"`
}

// Classifier produces the model prediction for one text.
type Classifier interface {
	Classify(ctx context.Context, text string) (verdict.Prediction, error)
	Name() string
}

// Corroborator looks up trusted-source evidence and fact-check corrections.
// Lookup failures degrade to empty results, never to errors.
type Corroborator interface {
	FindSources(ctx context.Context, text string) []verdict.SourceMatch
	FindCorrection(ctx context.Context, text string) *verdict.Correction
}

// Extractor turns an article URL into text.
type Extractor interface {
	Text(ctx context.Context, pageURL string) (string, error)
}

// Recorder persists emitted verdicts for audit.
type Recorder interface {
	Record(ctx context.Context, v *verdict.Verdict) error
}

// Options collects the collaborators wired into an Engine.
type Options struct {
	// Classifier judges the text. Required.
	Classifier Classifier

	// Verifier provides corroboration and corrections. Required.
	Verifier Corroborator

	// Extractor resolves URLs to text. Nil disables URL extraction.
	Extractor Extractor

	// Store receives emitted verdicts asynchronously. Nil disables auditing.
	Store Recorder

	// MinTextLength below which supplied text triggers URL extraction.
	MinTextLength int
}

// Engine runs the decision stages in order. Safe for concurrent use; all
// collaborators are selected at startup and shared read-only.
type Engine struct {
	classifier    Classifier
	verifier      Corroborator
	extractor     Extractor
	store         Recorder
	normalizer    *textops.Normalizer
	minTextLength int
}

// NewEngine builds an Engine from its collaborators.
func NewEngine(opts Options) *Engine {
	minTextLength := opts.MinTextLength
	if minTextLength <= 0 {
		minTextLength = config.DefaultMinTextLength
	}
	return &Engine{
		classifier:    opts.Classifier,
		verifier:      opts.Verifier,
		extractor:     opts.Extractor,
		store:         opts.Store,
		normalizer:    textops.NewNormalizer(),
		minTextLength: minTextLength,
	}
}

// Decide runs the full pipeline for one request. Structurally invalid input
// produces a normal INVALID verdict; the only error returned is classifier
// unavailability, wrapped in classification.ErrUnavailable.
func (e *Engine) Decide(ctx context.Context, req Request) (*verdict.Verdict, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracing.SpanRequestReceived)
	defer span.End()

	v, err := e.run(ctx, req)

	elapsed := time.Since(start).Seconds()
	metrics.RecordDecisionDuration(elapsed)

	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordDecision(metrics.DecisionRecord{
			Timestamp:      time.Now(),
			LatencySeconds: elapsed,
			Failed:         true,
		})
		return nil, err
	}

	tracing.SetSpanAttributes(span,
		attribute.String(tracing.AttrVerdictLabel, v.Prediction),
		attribute.String(tracing.AttrVerdictConfidence, v.Confidence),
		attribute.Int(tracing.AttrEvidenceCount, len(v.Sources)),
		attribute.Bool(tracing.AttrOverrideApplied, v.Overridden()),
	)
	metrics.RecordVerdict(v.Prediction)
	metrics.RecordDecision(metrics.DecisionRecord{
		Timestamp:      time.Now(),
		Label:          v.Prediction,
		LatencySeconds: elapsed,
		Overridden:     v.Overridden(),
	})
	logging.LogEvent("verdict_emitted", map[string]interface{}{
		"verdict_id": v.ID,
		"label":      v.Prediction,
		"confidence": v.Confidence,
		"sources":    len(v.Sources),
		"overridden": v.Overridden(),
		"latency_ms": int64(elapsed * 1000),
	})

	e.audit(v)

	return v, nil
}

func (e *Engine) run(ctx context.Context, req Request) (*verdict.Verdict, error) {
	text := req.Text

	// A URL is only consulted when the supplied text is too short to judge
	// on its own.
	if e.extractor != nil && req.URL != "" && utf8.RuneCountInString(text) < e.minTextLength {
		stageCtx, done := startStage(ctx, "extract")
		extracted, err := e.extractor.Text(stageCtx, req.URL)
		if err != nil {
			done("error")
			logging.Infof("pipeline: extraction failed for %s: %v", req.URL, err)
			return verdict.Invalid(extractionFailedReason), nil
		}
		done("success")
		text = extracted
	}

	_, done := startStage(ctx, "gate")
	rejection := gate.Validate(text)
	if rejection != nil {
		done("rejected")
		metrics.RecordGateRejection(rejection.Code)
		logging.Debugf("pipeline: input rejected (%s)", rejection.Code)
		return verdict.Invalid(rejection.Reason), nil
	}
	done("accepted")

	_, done = startStage(ctx, "normalize")
	original := text
	text = e.normalizer.Normalize(text)
	done("success")

	stageCtx, done := startStage(ctx, "classify")
	prediction, err := e.classifier.Classify(stageCtx, text)
	if err != nil {
		done("error")
		return nil, fmt.Errorf("%w: %v", classification.ErrUnavailable, err)
	}
	done("success")

	stageCtx, done = startStage(ctx, "corroborate")
	sources := e.verifier.FindSources(stageCtx, text)
	if sources == nil {
		sources = []verdict.SourceMatch{}
	}
	metrics.RecordCorroborationMatches(len(sources))
	done("success")

	_, done = startStage(ctx, "arbitrate")
	label, confidence := e.arbitrate(prediction, sources)
	done(label)

	var correction *verdict.Correction
	if label == verdict.LabelFake {
		stageCtx, done = startStage(ctx, "correct")
		correction = e.verifier.FindCorrection(stageCtx, text)
		metrics.RecordCorrectionLookup(correction != nil)
		done("success")
	}

	_, done = startStage(ctx, "signals")
	score := lexical.AnalyzeSentiment(text)
	language := lexical.DetectLanguage(text)
	done("success")

	_, done = startStage(ctx, "explain")
	explanation := explain.Explain(text, label, sources)
	done("success")

	v := &verdict.Verdict{
		ID:          verdict.NewID(),
		Prediction:  label,
		Confidence:  confidence,
		Sources:     sources,
		Explanation: explanation,
		Correction:  correction,
		Sentiment: &verdict.Sentiment{
			Label:        score.Label,
			Polarity:     score.Polarity,
			Subjectivity: score.Subjectivity,
		},
		Language:  language.Name,
		CreatedAt: time.Now().UTC(),
	}
	if original != text {
		v.OriginalText = original
		v.CorrectedText = text
	}
	return v, nil
}

// arbitrate resolves the final label. Non-empty corroboration evidence
// forces REAL at the fixed verified-source confidence regardless of the
// classifier's answer; otherwise the classifier's prediction stands.
func (e *Engine) arbitrate(prediction verdict.Prediction, sources []verdict.SourceMatch) (string, string) {
	if len(sources) > 0 {
		metrics.RecordEvidenceOverride()
		if prediction.Label != verdict.LabelReal {
			logging.Infof("pipeline: %d trusted source(s) overrode classifier label %s",
				len(sources), prediction.Label)
		}
		return verdict.LabelReal, verdict.ConfidenceVerified
	}
	return prediction.Label, fmt.Sprintf("%.1f%% (%s)", prediction.Confidence*100, e.classifier.Name())
}

// audit hands the verdict to the store without blocking the response.
// A failed write is logged and dropped.
func (e *Engine) audit(v *verdict.Verdict) {
	if e.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		ctx, span := tracing.StartSpan(ctx, tracing.SpanStoreRecord)
		defer span.End()
		if err := e.store.Record(ctx, v); err != nil {
			tracing.RecordError(span, err)
			logging.Warnf("pipeline: failed to record verdict %s: %v", v.ID, err)
		}
	}()
}

// startStage opens a span for one pipeline stage and returns the stage
// context plus a completion callback that records latency and outcome.
func startStage(ctx context.Context, name string) (context.Context, func(outcome string)) {
	stageCtx, span := tracing.StartStageSpan(ctx, name)
	start := time.Now()
	return stageCtx, func(outcome string) {
		elapsed := time.Since(start)
		metrics.RecordStageDuration(name, elapsed.Seconds())
		tracing.EndStageSpan(span, outcome, elapsed.Milliseconds())
	}
}
