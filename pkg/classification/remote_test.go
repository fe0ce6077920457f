package classification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/verdict"
)

func TestRemoteClassify(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody classifyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(classifyResponse{Label: "FAKE", Confidence: 0.91})
	}))
	defer server.Close()

	t.Setenv("TEST_CLASSIFY_KEY", "secret-token")
	classifier := NewRemoteClassifier(config.RemoteClassifierConfig{
		Endpoint:  server.URL,
		Model:     "credbert-base",
		APIKeyEnv: "TEST_CLASSIFY_KEY",
	})

	prediction, err := classifier.Classify(context.Background(), "Some headline to judge")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotPath != "/v1/classify" {
		t.Errorf("Expected /v1/classify path, got %q", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if gotBody.Model != "credbert-base" || gotBody.Text != "Some headline to judge" {
		t.Errorf("Unexpected request body: %+v", gotBody)
	}
	if prediction.Label != verdict.LabelFake || prediction.Confidence != 0.91 {
		t.Errorf("Unexpected prediction: %+v", prediction)
	}
}

func TestRemoteClassifyNormalizesAnswer(t *testing.T) {
	tests := []struct {
		name           string
		response       classifyResponse
		wantLabel      string
		wantConfidence float64
		wantErr        bool
	}{
		{
			name:           "lowercase label is accepted",
			response:       classifyResponse{Label: "real", Confidence: 0.74},
			wantLabel:      verdict.LabelReal,
			wantConfidence: 0.74,
		},
		{
			name:           "confidence above one is clamped",
			response:       classifyResponse{Label: "FAKE", Confidence: 1.7},
			wantLabel:      verdict.LabelFake,
			wantConfidence: 1,
		},
		{
			name:           "negative confidence is clamped",
			response:       classifyResponse{Label: "REAL", Confidence: -0.2},
			wantLabel:      verdict.LabelReal,
			wantConfidence: 0,
		},
		{
			name:     "unexpected label is an error",
			response: classifyResponse{Label: "MAYBE", Confidence: 0.5},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			classifier := NewRemoteClassifier(config.RemoteClassifierConfig{Endpoint: server.URL})
			prediction, err := classifier.Classify(context.Background(), "text")
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if prediction.Label != tt.wantLabel || prediction.Confidence != tt.wantConfidence {
				t.Errorf("Got %+v, want label=%s confidence=%v", prediction, tt.wantLabel, tt.wantConfidence)
			}
		})
	}
}

func TestRemoteClassifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	classifier := NewRemoteClassifier(config.RemoteClassifierConfig{Endpoint: server.URL})
	_, err := classifier.Classify(context.Background(), "text")
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestRemoteClassifyMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	classifier := NewRemoteClassifier(config.RemoteClassifierConfig{Endpoint: server.URL})
	if _, err := classifier.Classify(context.Background(), "text"); err == nil {
		t.Error("Expected error for malformed response")
	}
}
