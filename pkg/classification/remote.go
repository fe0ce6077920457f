package classification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/observability/tracing"
	"github.com/credgate/credgate/pkg/verdict"
)

// RemoteClassifier calls a purpose-built model server over HTTP.
type RemoteClassifier struct {
	httpClient *http.Client
	endpoint   string
	model      string
	accessKey  string
}

// classifyRequest is the model server's request body.
type classifyRequest struct {
	Model string `json:"model,omitempty"`
	Text  string `json:"text"`
}

// classifyResponse is the model server's response body.
type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// NewRemoteClassifier creates a classifier for a model-serving endpoint.
// The bearer token, if any, is read from the environment variable named in
// the config.
func NewRemoteClassifier(cfg config.RemoteClassifierConfig) *RemoteClassifier {
	var accessKey string
	if cfg.APIKeyEnv != "" {
		accessKey = os.Getenv(cfg.APIKeyEnv)
	}
	return &RemoteClassifier{
		httpClient: &http.Client{Timeout: config.GetClassifierTimeout(cfg.TimeoutSeconds)},
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		model:      cfg.Model,
		accessKey:  accessKey,
	}
}

// Name identifies the backend.
func (r *RemoteClassifier) Name() string { return BackendRemote }

// Classify posts the text to the model server and validates its answer.
func (r *RemoteClassifier) Classify(ctx context.Context, text string) (verdict.Prediction, error) {
	body, err := json.Marshal(classifyRequest{Model: r.model, Text: text})
	if err != nil {
		return verdict.Prediction{}, fmt.Errorf("failed to marshal classify request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/classify", r.endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return verdict.Prediction{}, fmt.Errorf("failed to create classify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if r.accessKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.accessKey)
	}
	tracing.InjectHTTPTraceContext(ctx, httpReq.Header)

	start := time.Now()
	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordClassifierRequest(r.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("classify request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordClassifierLatency(r.Name(), time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordClassifierRequest(r.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("failed to read classify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordClassifierRequest(r.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var answer classifyResponse
	if err := json.Unmarshal(respBody, &answer); err != nil {
		metrics.RecordClassifierRequest(r.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("failed to parse classify response: %w", err)
	}

	prediction, err := normalizePrediction(answer.Label, answer.Confidence)
	if err != nil {
		metrics.RecordClassifierRequest(r.Name(), "error")
		return verdict.Prediction{}, err
	}

	metrics.RecordClassifierRequest(r.Name(), "success")
	logging.Debugf("remote classification: label=%s confidence=%.4f", prediction.Label, prediction.Confidence)
	return prediction, nil
}
