package classification

import (
	"context"
	"fmt"

	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/verdict"
)

// ChainClassifier tries a primary backend and consults a fallback when the
// primary errors or answers below the configured confidence floor. Both
// backends failing is a classification failure.
type ChainClassifier struct {
	primary       Classifier
	fallback      Classifier
	minConfidence float64
}

// NewChainClassifier creates a primary-with-fallback classifier. A
// minConfidence of zero disables the low-confidence consultation.
func NewChainClassifier(primary, fallback Classifier, minConfidence float64) *ChainClassifier {
	return &ChainClassifier{
		primary:       primary,
		fallback:      fallback,
		minConfidence: minConfidence,
	}
}

// Name identifies the backend.
func (c *ChainClassifier) Name() string { return BackendChain }

// Classify runs the primary backend, falling back per the chain rules.
// When both backends answer, the more confident prediction wins.
func (c *ChainClassifier) Classify(ctx context.Context, text string) (verdict.Prediction, error) {
	primary, primaryErr := c.primary.Classify(ctx, text)
	if primaryErr == nil && (c.minConfidence <= 0 || primary.Confidence >= c.minConfidence) {
		return primary, nil
	}

	if primaryErr != nil {
		logging.Warnf("chain classification: %s failed, consulting %s: %v", c.primary.Name(), c.fallback.Name(), primaryErr)
	} else {
		logging.Debugf("chain classification: %s confidence %.4f below %.4f, consulting %s",
			c.primary.Name(), primary.Confidence, c.minConfidence, c.fallback.Name())
	}

	fallback, fallbackErr := c.fallback.Classify(ctx, text)
	if fallbackErr != nil {
		if primaryErr != nil {
			return verdict.Prediction{}, fmt.Errorf("all classifier backends failed: %s: %v; %s: %v",
				c.primary.Name(), primaryErr, c.fallback.Name(), fallbackErr)
		}
		// A low-confidence answer still beats no answer.
		return primary, nil
	}
	if primaryErr == nil && primary.Confidence >= fallback.Confidence {
		return primary, nil
	}
	return fallback, nil
}
