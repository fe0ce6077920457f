package classification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/verdict"
)

type stubClassifier struct {
	name       string
	prediction verdict.Prediction
	err        error
	calls      int
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (verdict.Prediction, error) {
	s.calls++
	return s.prediction, s.err
}

func (s *stubClassifier) Name() string { return s.name }

func TestChainClassifyPrimaryWins(t *testing.T) {
	primary := &stubClassifier{name: "primary", prediction: verdict.Prediction{Label: verdict.LabelReal, Confidence: 0.95}}
	fallback := &stubClassifier{name: "fallback", prediction: verdict.Prediction{Label: verdict.LabelFake, Confidence: 0.99}}
	chain := NewChainClassifier(primary, fallback, 0.6)

	prediction, err := chain.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if prediction.Label != verdict.LabelReal {
		t.Errorf("Expected primary prediction, got %+v", prediction)
	}
	if fallback.calls != 0 {
		t.Errorf("Expected fallback to stay idle, got %d calls", fallback.calls)
	}
}

func TestChainClassifyFallbackOnError(t *testing.T) {
	primary := &stubClassifier{name: "primary", err: errors.New("connection refused")}
	fallback := &stubClassifier{name: "fallback", prediction: verdict.Prediction{Label: verdict.LabelFake, Confidence: 0.8}}
	chain := NewChainClassifier(primary, fallback, 0)

	prediction, err := chain.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if prediction.Label != verdict.LabelFake || prediction.Confidence != 0.8 {
		t.Errorf("Expected fallback prediction, got %+v", prediction)
	}
}

func TestChainClassifyBothFail(t *testing.T) {
	primary := &stubClassifier{name: "primary", err: errors.New("connection refused")}
	fallback := &stubClassifier{name: "fallback", err: errors.New("quota exceeded")}
	chain := NewChainClassifier(primary, fallback, 0)

	_, err := chain.Classify(context.Background(), "text")
	if err == nil {
		t.Fatal("Expected error when both backends fail")
	}
	for _, fragment := range []string{"connection refused", "quota exceeded"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("Expected both failures in error, got %v", err)
		}
	}
}

func TestChainClassifyLowConfidenceConsultsFallback(t *testing.T) {
	tests := []struct {
		name     string
		fallback *stubClassifier
		want     verdict.Prediction
	}{
		{
			name:     "more confident fallback wins",
			fallback: &stubClassifier{name: "fallback", prediction: verdict.Prediction{Label: verdict.LabelFake, Confidence: 0.9}},
			want:     verdict.Prediction{Label: verdict.LabelFake, Confidence: 0.9},
		},
		{
			name:     "less confident fallback loses",
			fallback: &stubClassifier{name: "fallback", prediction: verdict.Prediction{Label: verdict.LabelFake, Confidence: 0.3}},
			want:     verdict.Prediction{Label: verdict.LabelReal, Confidence: 0.4},
		},
		{
			name:     "failing fallback keeps the low-confidence answer",
			fallback: &stubClassifier{name: "fallback", err: errors.New("quota exceeded")},
			want:     verdict.Prediction{Label: verdict.LabelReal, Confidence: 0.4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &stubClassifier{name: "primary", prediction: verdict.Prediction{Label: verdict.LabelReal, Confidence: 0.4}}
			chain := NewChainClassifier(primary, tt.fallback, 0.6)

			prediction, err := chain.Classify(context.Background(), "text")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if prediction != tt.want {
				t.Errorf("Got %+v, want %+v", prediction, tt.want)
			}
			if tt.fallback.calls != 1 {
				t.Errorf("Expected fallback consultation, got %d calls", tt.fallback.calls)
			}
		})
	}
}

func TestChainClassifyZeroFloorDisablesConsultation(t *testing.T) {
	primary := &stubClassifier{name: "primary", prediction: verdict.Prediction{Label: verdict.LabelReal, Confidence: 0.1}}
	fallback := &stubClassifier{name: "fallback", prediction: verdict.Prediction{Label: verdict.LabelFake, Confidence: 0.9}}
	chain := NewChainClassifier(primary, fallback, 0)

	prediction, err := chain.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if prediction.Label != verdict.LabelReal {
		t.Errorf("Expected primary prediction, got %+v", prediction)
	}
	if fallback.calls != 0 {
		t.Errorf("Expected no fallback consultation, got %d calls", fallback.calls)
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		backend  string
		wantName string
		wantErr  bool
	}{
		{backend: "remote", wantName: BackendRemote},
		{backend: "llm", wantName: BackendLLM},
		{backend: "chain", wantName: BackendChain},
		{backend: "", wantName: BackendRemote}, // config default
		{backend: "magic", wantErr: true},
	}

	for _, tt := range tests {
		cfg := &config.Config{}
		cfg.Classifier.Backend = tt.backend

		classifier, err := NewFromConfig(cfg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Backend %q: expected error", tt.backend)
			}
			continue
		}
		if err != nil {
			t.Errorf("Backend %q: unexpected error: %v", tt.backend, err)
			continue
		}
		if classifier.Name() != tt.wantName {
			t.Errorf("Backend %q: got %q, want %q", tt.backend, classifier.Name(), tt.wantName)
		}
	}
}
