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

	"github.com/openai/openai-go"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/verdict"
)

const (
	defaultLLMBaseURL = "https://api.openai.com/v1"
	defaultLLMModel   = "gpt-4o-mini"

	// DefaultLLMAPIKeyEnv is consulted when llm.api_key_env is not set.
	DefaultLLMAPIKeyEnv = "OPENAI_API_KEY"

	// llmMaxTokens bounds the answer; the contract is one small JSON object.
	llmMaxTokens = 64
)

const llmSystemPrompt = `You are a news credibility classifier. Judge whether the text reads like credible news reporting or like misinformation. Answer with a single JSON object and nothing else: {"label": "REAL" or "FAKE", "confidence": <number between 0 and 1>}`

// LLMClassifier classifies through an OpenAI-compatible chat completion
// endpoint. Requests use the SDK's wire types but go through our own HTTP
// client so the endpoint, auth and timeout stay under config control.
type LLMClassifier struct {
	httpClient *http.Client
	endpoint   string
	model      string
	accessKey  string
}

// NewLLMClassifier creates a prompt-based classifier. The API key is read
// from the environment variable named in the config.
func NewLLMClassifier(cfg config.LLMClassifierConfig) *LLMClassifier {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultLLMBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultLLMModel
	}
	apiKeyEnv := cfg.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = DefaultLLMAPIKeyEnv
	}
	return &LLMClassifier{
		httpClient: &http.Client{Timeout: config.GetClassifierTimeout(cfg.TimeoutSeconds)},
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/chat/completions",
		model:      model,
		accessKey:  os.Getenv(apiKeyEnv),
	}
}

// Name identifies the backend.
func (l *LLMClassifier) Name() string { return BackendLLM }

// Classify prompts the model and parses its JSON answer.
func (l *LLMClassifier) Classify(ctx context.Context, text string) (verdict.Prediction, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(l.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(llmSystemPrompt),
				},
			}},
			{OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(text),
				},
			}},
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(llmMaxTokens),
	}

	body, err := json.Marshal(params)
	if err != nil {
		return verdict.Prediction{}, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return verdict.Prediction{}, fmt.Errorf("failed to create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if l.accessKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+l.accessKey)
	}

	start := time.Now()
	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordClassifierRequest(l.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordClassifierLatency(l.Name(), time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordClassifierRequest(l.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("failed to read completion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordClassifierRequest(l.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("completion endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var completion openai.ChatCompletion
	if err := json.Unmarshal(respBody, &completion); err != nil {
		metrics.RecordClassifierRequest(l.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("failed to parse completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		metrics.RecordClassifierRequest(l.Name(), "error")
		return verdict.Prediction{}, fmt.Errorf("completion response contained no choices")
	}

	prediction, err := parseLLMAnswer(completion.Choices[0].Message.Content)
	if err != nil {
		metrics.RecordClassifierRequest(l.Name(), "error")
		return verdict.Prediction{}, err
	}

	metrics.RecordClassifierRequest(l.Name(), "success")
	logging.Debugf("llm classification: model=%s label=%s confidence=%.4f", l.model, prediction.Label, prediction.Confidence)
	return prediction, nil
}

// parseLLMAnswer decodes the model's JSON answer. Models occasionally wrap
// the object in prose or a code fence, so a failed strict parse retries on
// the outermost brace span before giving up.
func parseLLMAnswer(content string) (verdict.Prediction, error) {
	var answer classifyResponse
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return verdict.Prediction{}, fmt.Errorf("classification answer is not JSON: %q", content)
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &answer); err != nil {
			return verdict.Prediction{}, fmt.Errorf("failed to parse classification answer %q: %w", content, err)
		}
	}
	return normalizePrediction(answer.Label, answer.Confidence)
}
