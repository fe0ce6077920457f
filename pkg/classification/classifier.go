// Package classification provides the classifier capability used to judge
// whether a piece of text reads like credible reporting. The concrete
// backend is selected once at startup and shared read-only by every
// request.
package classification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/verdict"
)

// Backend names accepted in config.
const (
	BackendRemote = "remote"
	BackendLLM    = "llm"
	BackendChain  = "chain"
)

// ErrUnavailable marks a request that failed because no classifier backend
// could produce a prediction. Callers map it to a 503-class response.
var ErrUnavailable = errors.New("classification unavailable")

// Classifier judges text credibility.
type Classifier interface {
	// Classify returns a REAL/FAKE prediction with confidence in [0,1].
	// Any error means the classifier could not produce a prediction.
	Classify(ctx context.Context, text string) (verdict.Prediction, error)
	// Name identifies the backend in logs, metrics and health output.
	Name() string
}

// NewFromConfig builds the configured classifier backend.
func NewFromConfig(cfg *config.Config) (Classifier, error) {
	backend := cfg.GetClassifierBackend()
	switch strings.ToLower(backend) {
	case BackendRemote:
		return NewRemoteClassifier(cfg.Classifier.Remote), nil
	case BackendLLM:
		return NewLLMClassifier(cfg.Classifier.LLM), nil
	case BackendChain:
		return NewChainClassifier(
			NewRemoteClassifier(cfg.Classifier.Remote),
			NewLLMClassifier(cfg.Classifier.LLM),
			cfg.Classifier.MinConfidence,
		), nil
	default:
		return nil, fmt.Errorf("unsupported classifier backend: %q", backend)
	}
}

// normalizePrediction validates a raw backend answer. Labels are
// case-insensitive REAL/FAKE; confidence is clamped into [0,1].
func normalizePrediction(label string, confidence float64) (verdict.Prediction, error) {
	normalized := strings.ToUpper(strings.TrimSpace(label))
	if normalized != verdict.LabelReal && normalized != verdict.LabelFake {
		return verdict.Prediction{}, fmt.Errorf("unexpected classification label: %q", label)
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return verdict.Prediction{Label: normalized, Confidence: confidence}, nil
}
