package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/credgate/credgate/pkg/classification"
	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/store"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig performs semantic validation on the configuration.
// Structural checks (value ranges, known backend names) already happen
// when the file is parsed; this layer checks what parsing cannot: that
// listener addresses are usable and referenced credentials exist in the
// environment.
func ValidateConfig(cfg *config.Config) error {
	var validationErrors []ValidationError

	checks := []func(*config.Config) error{
		validateListenAddresses,
		validateClassifierCredentials,
		validateStoreCredentials,
	}

	for _, check := range checks {
		if err := check(cfg); err != nil {
			var target ValidationError
			if errors.As(err, &target) {
				validationErrors = append(validationErrors, target)
			}
		}
	}

	if len(validationErrors) > 0 {
		return validationErrors[0] // Return first error
	}

	return nil
}

func validateListenAddresses(cfg *config.Config) error {
	addr := cfg.GetServerAddress()
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return ValidationError{
			Field:   "server.address",
			Message: fmt.Sprintf("'%s' is not a valid host:port address", addr),
		}
	}

	metricsAddr := cfg.GetMetricsAddress()
	if _, _, err := net.SplitHostPort(metricsAddr); err != nil {
		return ValidationError{
			Field:   "server.metrics_address",
			Message: fmt.Sprintf("'%s' is not a valid host:port address", metricsAddr),
		}
	}

	if addr == metricsAddr {
		return ValidationError{
			Field:   "server.metrics_address",
			Message: fmt.Sprintf("metrics address '%s' collides with the API address", metricsAddr),
		}
	}

	return nil
}

func validateClassifierCredentials(cfg *config.Config) error {
	backend := cfg.GetClassifierBackend()

	if backend == classification.BackendRemote || backend == classification.BackendChain {
		if env := cfg.Classifier.Remote.APIKeyEnv; env != "" && os.Getenv(env) == "" {
			return ValidationError{
				Field:   "classifier.remote.api_key_env",
				Message: fmt.Sprintf("environment variable %s is not set", env),
			}
		}
	}

	if backend == classification.BackendLLM || backend == classification.BackendChain {
		env := cfg.Classifier.LLM.APIKeyEnv
		if env == "" {
			env = classification.DefaultLLMAPIKeyEnv
		}
		if os.Getenv(env) == "" {
			return ValidationError{
				Field:   "classifier.llm.api_key_env",
				Message: fmt.Sprintf("environment variable %s is not set", env),
			}
		}
	}

	return nil
}

func validateStoreCredentials(cfg *config.Config) error {
	if !cfg.Store.Enabled {
		return nil
	}

	switch strings.ToLower(cfg.Store.Backend) {
	case store.BackendRedis:
		if cfg.Store.Redis.Address == "" {
			return ValidationError{
				Field:   "store.redis.address",
				Message: "address must be defined when the redis backend is enabled",
			}
		}
		if env := cfg.Store.Redis.PasswordEnv; env != "" && os.Getenv(env) == "" {
			return ValidationError{
				Field:   "store.redis.password_env",
				Message: fmt.Sprintf("environment variable %s is not set", env),
			}
		}
	case store.BackendMySQL:
		env := cfg.Store.MySQL.DSNEnv
		if env == "" {
			env = store.DefaultMySQLDSNEnv
		}
		if os.Getenv(env) == "" {
			return ValidationError{
				Field:   "store.mysql.dsn_env",
				Message: fmt.Sprintf("environment variable %s is not set", env),
			}
		}
	}

	return nil
}
