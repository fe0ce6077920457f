package cli

import (
	"strings"
	"testing"

	"github.com/credgate/credgate/pkg/config"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name: "simple error",
			err: ValidationError{
				Field:   "test_field",
				Message: "test message",
			},
			expected: "test_field: test message",
		},
		{
			name: "nested field error",
			err: ValidationError{
				Field:   "store.mysql.dsn_env",
				Message: "environment variable CG_MYSQL_DSN is not set",
			},
			expected: "store.mysql.dsn_env: environment variable CG_MYSQL_DSN is not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestValidateListenAddresses(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantField string
	}{
		{
			name: "defaults are valid",
			cfg:  &config.Config{},
		},
		{
			name: "address without port",
			cfg: &config.Config{
				Server: config.ServerConfig{Address: "localhost"},
			},
			wantField: "server.address",
		},
		{
			name: "metrics address without port",
			cfg: &config.Config{
				Server: config.ServerConfig{MetricsAddress: "localhost"},
			},
			wantField: "server.metrics_address",
		},
		{
			name: "colliding listeners",
			cfg: &config.Config{
				Server: config.ServerConfig{Address: ":8080", MetricsAddress: ":8080"},
			},
			wantField: "server.metrics_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.HasPrefix(err.Error(), tt.wantField+":") {
				t.Errorf("expected error on %s, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateClassifierCredentials(t *testing.T) {
	t.Run("remote key env not set", func(t *testing.T) {
		t.Setenv("CG_TEST_REMOTE_KEY", "")
		cfg := &config.Config{
			Classifier: config.ClassifierConfig{
				Backend: "remote",
				Remote:  config.RemoteClassifierConfig{APIKeyEnv: "CG_TEST_REMOTE_KEY"},
			},
		}
		err := ValidateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), "CG_TEST_REMOTE_KEY") {
			t.Errorf("expected missing env error, got %v", err)
		}
	})

	t.Run("remote key env set", func(t *testing.T) {
		t.Setenv("CG_TEST_REMOTE_KEY", "secret")
		cfg := &config.Config{
			Classifier: config.ClassifierConfig{
				Backend: "remote",
				Remote:  config.RemoteClassifierConfig{APIKeyEnv: "CG_TEST_REMOTE_KEY"},
			},
		}
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("remote without key env is fine", func(t *testing.T) {
		cfg := &config.Config{
			Classifier: config.ClassifierConfig{Backend: "remote"},
		}
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("llm backend requires the default key env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := &config.Config{
			Classifier: config.ClassifierConfig{Backend: "llm"},
		}
		err := ValidateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
			t.Errorf("expected missing env error, got %v", err)
		}

		t.Setenv("OPENAI_API_KEY", "secret")
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("unexpected error with key set: %v", err)
		}
	})
}

func TestValidateStoreCredentials(t *testing.T) {
	t.Run("disabled store skips checks", func(t *testing.T) {
		cfg := &config.Config{
			Store: config.StoreConfig{Backend: "mysql", Enabled: false},
		}
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("redis requires an address", func(t *testing.T) {
		cfg := &config.Config{
			Store: config.StoreConfig{Backend: "redis", Enabled: true},
		}
		err := ValidateConfig(cfg)
		if err == nil || !strings.HasPrefix(err.Error(), "store.redis.address:") {
			t.Errorf("expected address error, got %v", err)
		}
	})

	t.Run("mysql falls back to the default dsn env", func(t *testing.T) {
		t.Setenv("CG_MYSQL_DSN", "")
		cfg := &config.Config{
			Store: config.StoreConfig{Backend: "mysql", Enabled: true},
		}
		err := ValidateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), "CG_MYSQL_DSN") {
			t.Errorf("expected missing env error, got %v", err)
		}
	})

	t.Run("mysql requires the dsn env to be set", func(t *testing.T) {
		t.Setenv("CG_TEST_MYSQL_DSN", "")
		cfg := &config.Config{
			Store: config.StoreConfig{
				Backend: "mysql",
				Enabled: true,
				MySQL:   config.MySQLStoreConfig{DSNEnv: "CG_TEST_MYSQL_DSN"},
			},
		}
		err := ValidateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), "CG_TEST_MYSQL_DSN") {
			t.Errorf("expected missing env error, got %v", err)
		}

		t.Setenv("CG_TEST_MYSQL_DSN", "user:pass@tcp(127.0.0.1:3306)/credgate")
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("unexpected error with dsn set: %v", err)
		}
	})
}
