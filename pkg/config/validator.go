package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validEvictionPolicies = map[string]bool{
	"": true, "lru": true, "lfu": true, "fifo": true,
}

var validClassifierBackends = map[string]bool{
	"": true, "remote": true, "llm": true, "chain": true,
}

var validStoreBackends = map[string]bool{
	"": true, "memory": true, "redis": true, "mysql": true,
}

var validSearchProviders = map[string]bool{
	"": true, "duckduckgo": true,
}

// validateConfigStructure performs additional validation on the parsed config
func validateConfigStructure(cfg *Config) error {
	if !validClassifierBackends[cfg.Classifier.Backend] {
		return fmt.Errorf("classifier backend '%s' is not supported (remote, llm, chain)", cfg.Classifier.Backend)
	}
	if cfg.Classifier.MinConfidence < 0 || cfg.Classifier.MinConfidence > 1 {
		return fmt.Errorf("classifier min_confidence must be within [0,1], got %f", cfg.Classifier.MinConfidence)
	}

	backend := cfg.GetClassifierBackend()
	if backend == "remote" || backend == "chain" {
		if err := validateEndpointURL("classifier remote endpoint", cfg.Classifier.Remote.Endpoint, true); err != nil {
			return err
		}
	}
	if backend == "llm" || backend == "chain" {
		if cfg.Classifier.LLM.Model == "" {
			return fmt.Errorf("classifier backend '%s' requires llm.model to be set", backend)
		}
	}

	if !validSearchProviders[cfg.Verifier.Search.Provider] {
		return fmt.Errorf("search provider '%s' is not supported", cfg.Verifier.Search.Provider)
	}
	if cfg.Verifier.Search.MaxResults < 0 {
		return fmt.Errorf("search max_results cannot be negative, got %d", cfg.Verifier.Search.MaxResults)
	}
	if cfg.Verifier.Search.Endpoint != "" {
		if err := validateEndpointURL("search endpoint", cfg.Verifier.Search.Endpoint, false); err != nil {
			return err
		}
	}

	for _, domain := range cfg.Verifier.TrustedDomains {
		if err := validateDomain("trusted_domains", domain); err != nil {
			return err
		}
	}
	for _, domain := range cfg.Verifier.FactCheckDomains {
		if err := validateDomain("fact_check_domains", domain); err != nil {
			return err
		}
	}

	if cfg.Verifier.Feeds.Enabled && len(cfg.Verifier.Feeds.URLs) == 0 {
		return fmt.Errorf("feeds are enabled but no feed urls are configured")
	}
	for _, feedURL := range cfg.Verifier.Feeds.URLs {
		if err := validateEndpointURL("feed url", feedURL, true); err != nil {
			return err
		}
	}

	if !validEvictionPolicies[strings.ToLower(cfg.Cache.Corroboration.EvictionPolicy)] {
		return fmt.Errorf("corroboration cache eviction_policy '%s' is not supported (lru, lfu, fifo)", cfg.Cache.Corroboration.EvictionPolicy)
	}
	if !validEvictionPolicies[strings.ToLower(cfg.Cache.Correction.EvictionPolicy)] {
		return fmt.Errorf("correction cache eviction_policy '%s' is not supported (lru, lfu, fifo)", cfg.Cache.Correction.EvictionPolicy)
	}
	if cfg.Cache.Corroboration.Capacity < 0 || cfg.Cache.Correction.Capacity < 0 {
		return fmt.Errorf("cache capacity cannot be negative")
	}

	if !validStoreBackends[cfg.Store.Backend] {
		return fmt.Errorf("store backend '%s' is not supported (memory, redis, mysql)", cfg.Store.Backend)
	}
	if cfg.Store.Enabled && cfg.Store.Backend == "" {
		return fmt.Errorf("store is enabled but no backend is configured")
	}
	if cfg.Store.Retention.Days < 0 {
		return fmt.Errorf("store retention days cannot be negative, got %d", cfg.Store.Retention.Days)
	}

	if cfg.Server.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate limit requests_per_minute cannot be negative, got %d", cfg.Server.RateLimit.RequestsPerMinute)
	}

	if cfg.Observability.Tracing.Enabled {
		exporterType := cfg.Observability.Tracing.Exporter.Type
		if exporterType != "" && exporterType != "stdout" && exporterType != "otlp" {
			return fmt.Errorf("tracing exporter type '%s' is not supported (stdout, otlp)", exporterType)
		}
		if exporterType == "otlp" && cfg.Observability.Tracing.Exporter.Endpoint == "" {
			return fmt.Errorf("tracing exporter type otlp requires an endpoint")
		}
		rate := cfg.Observability.Tracing.Sampling.Rate
		if rate < 0 || rate > 1 {
			return fmt.Errorf("tracing sampling rate must be within [0,1], got %f", rate)
		}
	}

	return nil
}

// validateEndpointURL checks that a URL parses and uses http or https.
// required rejects the empty string.
func validateEndpointURL(field, raw string, required bool) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if required {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got: %s", field, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host, got: %s", field, raw)
	}
	return nil
}

// validateDomain checks that an allowlist entry is a bare domain fragment,
// not a URL. Matching is by substring, so fragments like "bbc." are allowed.
func validateDomain(field, domain string) error {
	trimmed := strings.TrimSpace(domain)
	if trimmed == "" {
		return fmt.Errorf("%s entries cannot be empty", field)
	}
	if strings.Contains(trimmed, "://") {
		return fmt.Errorf("%s entries must be bare domains without a scheme, got: %s", field, domain)
	}
	if strings.ContainsAny(trimmed, " \t") {
		return fmt.Errorf("%s entries cannot contain whitespace, got: %s", field, domain)
	}
	return nil
}
