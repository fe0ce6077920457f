package config

import (
	"strings"
	"time"
)

// Config represents the main configuration for the CredGate service
type Config struct {
	// Server configuration for the public API and metrics listeners
	Server ServerConfig `yaml:"server"`

	// Classifier configuration for the learned fake/real classifier
	Classifier ClassifierConfig `yaml:"classifier"`

	// Verifier configuration for source corroboration and correction lookups
	Verifier VerifierConfig `yaml:"verifier"`

	// Cache configuration for the corroboration and correction lookup caches
	Cache CacheConfig `yaml:"cache"`

	// Extraction configuration for URL article extraction
	Extraction ExtractionConfig `yaml:"extraction"`

	// Store configuration for verdict audit persistence
	Store StoreConfig `yaml:"store"`

	// Observability configuration for tracing and rolling statistics
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig represents configuration for the HTTP listeners
type ServerConfig struct {
	// Address the API server listens on (default ":8080")
	Address string `yaml:"address,omitempty"`

	// MetricsAddress the Prometheus listener listens on (default ":9190")
	MetricsAddress string `yaml:"metrics_address,omitempty"`

	// RateLimit configures the per-client request limiter
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// CORSAllowedOrigins lists origins allowed by the CORS middleware
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins,omitempty"`

	// ReadTimeoutSeconds bounds how long reading a request may take
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds,omitempty"`

	// WriteTimeoutSeconds bounds how long writing a response may take
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds,omitempty"`
}

// RateLimitConfig represents configuration for API rate limiting
type RateLimitConfig struct {
	// Enable the per-client rate limiter
	Enabled bool `yaml:"enabled"`

	// RequestsPerMinute allowed per client (default 20)
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty"`

	// Burst allowed above the steady rate (default 5)
	Burst int `yaml:"burst,omitempty"`
}

// ClassifierConfig represents configuration for the classifier capability
type ClassifierConfig struct {
	// Backend selects the classifier implementation: "remote", "llm" or "chain"
	Backend string `yaml:"backend,omitempty"`

	// MinConfidence below which the chain consults its fallback (0 disables)
	MinConfidence float64 `yaml:"min_confidence,omitempty"`

	// Remote configures the model-server HTTP classifier
	Remote RemoteClassifierConfig `yaml:"remote,omitempty"`

	// LLM configures the OpenAI-compatible prompt classifier
	LLM LLMClassifierConfig `yaml:"llm,omitempty"`
}

// RemoteClassifierConfig represents configuration for the model-server classifier
type RemoteClassifierConfig struct {
	// Endpoint base URL of the classification server, e.g. "http://127.0.0.1:8901"
	Endpoint string `yaml:"endpoint,omitempty"`

	// Model name passed to the classification server
	Model string `yaml:"model,omitempty"`

	// APIKeyEnv names the environment variable holding the bearer token
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// TimeoutSeconds bounds one classification call (default 30)
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// LLMClassifierConfig represents configuration for the prompt-based classifier
type LLMClassifierConfig struct {
	// BaseURL of the OpenAI-compatible endpoint; empty uses the platform default
	BaseURL string `yaml:"base_url,omitempty"`

	// Model to prompt, e.g. "gpt-4o-mini"
	Model string `yaml:"model,omitempty"`

	// APIKeyEnv names the environment variable holding the API key (default "OPENAI_API_KEY")
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// TimeoutSeconds bounds one classification call (default 30)
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// VerifierConfig represents configuration for source corroboration
type VerifierConfig struct {
	// TrustedDomains overrides the compiled-in trusted news outlet allowlist
	TrustedDomains []string `yaml:"trusted_domains,omitempty"`

	// FactCheckDomains overrides the compiled-in fact-checking outlet allowlist
	FactCheckDomains []string `yaml:"fact_check_domains,omitempty"`

	// Search configures the web search provider
	Search SearchConfig `yaml:"search"`

	// Feeds configures the optional trusted-outlet feed snapshot
	Feeds FeedsConfig `yaml:"feeds,omitempty"`
}

// SearchConfig represents configuration for the web search provider
type SearchConfig struct {
	// Provider selects the search implementation (default "duckduckgo")
	Provider string `yaml:"provider,omitempty"`

	// Endpoint overrides the provider's default endpoint (used in tests)
	Endpoint string `yaml:"endpoint,omitempty"`

	// TimeoutSeconds bounds one search call (default 10)
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// MaxResults caps how many results one search may return (default 10)
	MaxResults int `yaml:"max_results,omitempty"`

	// UserAgent sent with search requests
	UserAgent string `yaml:"user_agent,omitempty"`
}

// FeedsConfig represents configuration for the trusted-outlet feed snapshot
type FeedsConfig struct {
	// Enable the feed snapshot provider
	Enabled bool `yaml:"enabled"`

	// URLs of the RSS/Atom feeds to pull
	URLs []string `yaml:"urls,omitempty"`

	// RefreshSchedule is a cron expression for snapshot refreshes (default "@every 15m")
	RefreshSchedule string `yaml:"refresh_schedule,omitempty"`

	// MaxAgeHours drops headlines older than this from the snapshot (default 48)
	MaxAgeHours int `yaml:"max_age_hours,omitempty"`
}

// CacheConfig represents configuration for the two lookup caches
type CacheConfig struct {
	// Corroboration cache settings (default capacity 128)
	Corroboration CacheSettings `yaml:"corroboration,omitempty"`

	// Correction cache settings (default capacity 64)
	Correction CacheSettings `yaml:"correction,omitempty"`
}

// CacheSettings represents settings for one lookup cache
type CacheSettings struct {
	// Capacity is the maximum number of entries before eviction
	Capacity int `yaml:"capacity,omitempty"`

	// EvictionPolicy selects the victim strategy: "lru" (default), "lfu" or "fifo"
	EvictionPolicy string `yaml:"eviction_policy,omitempty"`
}

// ExtractionConfig represents configuration for URL article extraction
type ExtractionConfig struct {
	// TimeoutSeconds bounds one page fetch (default 10)
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// MinTextLength below which supplied text triggers URL extraction (default 50)
	MinTextLength int `yaml:"min_text_length,omitempty"`

	// UserAgent sent with page fetches
	UserAgent string `yaml:"user_agent,omitempty"`
}

// StoreConfig represents configuration for verdict audit persistence
type StoreConfig struct {
	// Backend selects the store implementation: "memory", "redis", "mysql".
	// Empty disables persistence entirely.
	Backend string `yaml:"backend,omitempty"`

	// Enabled toggles persistence without removing backend settings
	Enabled bool `yaml:"enabled"`

	// ConfigPath optionally points at a standalone store config file
	ConfigPath string `yaml:"config_path,omitempty"`

	// Memory backend settings
	Memory MemoryStoreConfig `yaml:"memory,omitempty"`

	// Redis backend settings
	Redis RedisStoreConfig `yaml:"redis,omitempty"`

	// MySQL backend settings
	MySQL MySQLStoreConfig `yaml:"mysql,omitempty"`

	// Retention configures periodic purging of old records
	Retention RetentionConfig `yaml:"retention,omitempty"`
}

// MemoryStoreConfig represents settings for the in-memory store backend
type MemoryStoreConfig struct {
	// MaxRecords before the oldest records are dropped (default 1000)
	MaxRecords int `yaml:"max_records,omitempty"`
}

// RedisStoreConfig represents settings for the Redis store backend
type RedisStoreConfig struct {
	// Address of the Redis server, e.g. "127.0.0.1:6379"
	Address string `yaml:"address,omitempty"`

	// PasswordEnv names the environment variable holding the password
	PasswordEnv string `yaml:"password_env,omitempty"`

	// DB index to use
	DB int `yaml:"db,omitempty"`

	// TTLHours after which records expire (0 keeps them forever)
	TTLHours int `yaml:"ttl_hours,omitempty"`

	// KeyPrefix namespaces all keys (default "credgate")
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// MySQLStoreConfig represents settings for the MySQL store backend
type MySQLStoreConfig struct {
	// DSNEnv names the environment variable holding the DSN
	DSNEnv string `yaml:"dsn_env,omitempty"`

	// TablePrefix prepended to table names
	TablePrefix string `yaml:"table_prefix,omitempty"`
}

// RetentionConfig represents configuration for periodic record purging
type RetentionConfig struct {
	// Enable the retention sweep
	Enabled bool `yaml:"enabled"`

	// Days a record is kept before the sweep removes it (default 30)
	Days int `yaml:"days,omitempty"`

	// Schedule is a cron expression for the sweep (default "0 3 * * *")
	Schedule string `yaml:"schedule,omitempty"`
}

// ObservabilityConfig represents configuration for observability features
type ObservabilityConfig struct {
	// Tracing configuration for distributed tracing
	Tracing TracingConfig `yaml:"tracing"`

	// RollingStats configuration for windowed decision statistics
	RollingStats RollingStatsConfig `yaml:"rolling_stats,omitempty"`
}

// TracingConfig represents configuration for distributed tracing
type TracingConfig struct {
	// Enable distributed tracing
	Enabled bool `yaml:"enabled"`

	// Exporter configuration
	Exporter TracingExporterConfig `yaml:"exporter"`

	// Sampling configuration
	Sampling TracingSamplingConfig `yaml:"sampling"`

	// Resource attributes
	Resource TracingResourceConfig `yaml:"resource"`
}

// TracingExporterConfig represents exporter settings
type TracingExporterConfig struct {
	// Type of exporter: "stdout" (default) or "otlp"
	Type string `yaml:"type,omitempty"`

	// Endpoint of the OTLP collector, e.g. "127.0.0.1:4317"
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure disables TLS towards the collector
	Insecure bool `yaml:"insecure,omitempty"`
}

// TracingSamplingConfig represents sampling settings
type TracingSamplingConfig struct {
	// Type of sampler: "always_on" (default), "always_off" or "probabilistic"
	Type string `yaml:"type,omitempty"`

	// Rate for probabilistic sampling (0.0-1.0)
	Rate float64 `yaml:"rate,omitempty"`
}

// TracingResourceConfig represents resource attributes
type TracingResourceConfig struct {
	ServiceName           string `yaml:"service_name,omitempty"`
	ServiceVersion        string `yaml:"service_version,omitempty"`
	DeploymentEnvironment string `yaml:"deployment_environment,omitempty"`
}

// RollingStatsConfig represents configuration for windowed decision statistics
type RollingStatsConfig struct {
	// Enable rolling statistics
	Enabled bool `yaml:"enabled"`

	// TimeWindows to aggregate over, e.g. ["1m", "5m", "1h"]
	TimeWindows []string `yaml:"time_windows,omitempty"`

	// UpdateInterval between recomputations, e.g. "10s"
	UpdateInterval string `yaml:"update_interval,omitempty"`
}

// Defaults mirrored where zero values need substitution.
const (
	DefaultServerAddress     = ":8080"
	DefaultMetricsAddress    = ":9190"
	DefaultRequestsPerMinute = 20
	DefaultRateLimitBurst    = 5

	DefaultCorroborationCacheCapacity = 128
	DefaultCorrectionCacheCapacity    = 64
	DefaultEvictionPolicy             = "lru"

	DefaultSearchProvider   = "duckduckgo"
	DefaultSearchTimeout    = 10 * time.Second
	DefaultSearchMaxResults = 10

	DefaultExtractionTimeout = 10 * time.Second
	DefaultMinTextLength     = 50

	DefaultClassifierTimeout = 30 * time.Second

	DefaultFeedRefreshSchedule = "@every 15m"
	DefaultFeedMaxAgeHours     = 48

	DefaultMemoryMaxRecords   = 1000
	DefaultRedisKeyPrefix     = "credgate"
	DefaultRetentionDays      = 30
	DefaultRetentionSchedule  = "0 3 * * *"
	DefaultCORSAllowedOrigin  = "http://localhost:3000"
	DefaultSearchUserAgent    = "Mozilla/5.0 (compatible; CredGate/1.0; +https://github.com/credgate/credgate)"
	DefaultClassifierBackend  = "remote"
)

// GetServerAddress returns the API listen address, defaulted.
func (c *Config) GetServerAddress() string {
	if c == nil || c.Server.Address == "" {
		return DefaultServerAddress
	}
	return c.Server.Address
}

// GetMetricsAddress returns the metrics listen address, defaulted.
func (c *Config) GetMetricsAddress() string {
	if c == nil || c.Server.MetricsAddress == "" {
		return DefaultMetricsAddress
	}
	return c.Server.MetricsAddress
}

// GetRequestsPerMinute returns the per-client rate limit, defaulted.
func (c *Config) GetRequestsPerMinute() int {
	if c == nil || c.Server.RateLimit.RequestsPerMinute <= 0 {
		return DefaultRequestsPerMinute
	}
	return c.Server.RateLimit.RequestsPerMinute
}

// GetRateLimitBurst returns the rate limiter burst, defaulted.
func (c *Config) GetRateLimitBurst() int {
	if c == nil || c.Server.RateLimit.Burst <= 0 {
		return DefaultRateLimitBurst
	}
	return c.Server.RateLimit.Burst
}

// GetCORSAllowedOrigins returns the CORS allowlist, defaulted.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c == nil || len(c.Server.CORSAllowedOrigins) == 0 {
		return []string{DefaultCORSAllowedOrigin}
	}
	return c.Server.CORSAllowedOrigins
}

// GetClassifierBackend returns the configured classifier backend, defaulted.
func (c *Config) GetClassifierBackend() string {
	if c == nil || c.Classifier.Backend == "" {
		return DefaultClassifierBackend
	}
	return c.Classifier.Backend
}

// GetSearchProvider returns the configured search provider, defaulted.
func (c *Config) GetSearchProvider() string {
	if c == nil || c.Verifier.Search.Provider == "" {
		return DefaultSearchProvider
	}
	return c.Verifier.Search.Provider
}

// GetSearchTimeout returns the search call timeout, defaulted.
func (c *Config) GetSearchTimeout() time.Duration {
	if c == nil || c.Verifier.Search.TimeoutSeconds <= 0 {
		return DefaultSearchTimeout
	}
	return time.Duration(c.Verifier.Search.TimeoutSeconds) * time.Second
}

// GetSearchMaxResults returns the search result cap, defaulted.
func (c *Config) GetSearchMaxResults() int {
	if c == nil || c.Verifier.Search.MaxResults <= 0 {
		return DefaultSearchMaxResults
	}
	return c.Verifier.Search.MaxResults
}

// GetSearchUserAgent returns the search user agent, defaulted.
func (c *Config) GetSearchUserAgent() string {
	if c == nil || c.Verifier.Search.UserAgent == "" {
		return DefaultSearchUserAgent
	}
	return c.Verifier.Search.UserAgent
}

// GetCorroborationCacheCapacity returns the corroboration cache size, defaulted.
func (c *Config) GetCorroborationCacheCapacity() int {
	if c == nil || c.Cache.Corroboration.Capacity <= 0 {
		return DefaultCorroborationCacheCapacity
	}
	return c.Cache.Corroboration.Capacity
}

// GetCorrectionCacheCapacity returns the correction cache size, defaulted.
func (c *Config) GetCorrectionCacheCapacity() int {
	if c == nil || c.Cache.Correction.Capacity <= 0 {
		return DefaultCorrectionCacheCapacity
	}
	return c.Cache.Correction.Capacity
}

// GetExtractionTimeout returns the page fetch timeout, defaulted.
func (c *Config) GetExtractionTimeout() time.Duration {
	if c == nil || c.Extraction.TimeoutSeconds <= 0 {
		return DefaultExtractionTimeout
	}
	return time.Duration(c.Extraction.TimeoutSeconds) * time.Second
}

// GetMinTextLength returns the extraction trigger length, defaulted.
func (c *Config) GetMinTextLength() int {
	if c == nil || c.Extraction.MinTextLength <= 0 {
		return DefaultMinTextLength
	}
	return c.Extraction.MinTextLength
}

// GetClassifierTimeout returns the classifier call timeout for a backend config.
func GetClassifierTimeout(timeoutSeconds int) time.Duration {
	if timeoutSeconds <= 0 {
		return DefaultClassifierTimeout
	}
	return time.Duration(timeoutSeconds) * time.Second
}

// IsStoreEnabled reports whether verdict persistence is on.
func (c *Config) IsStoreEnabled() bool {
	return c != nil && c.Store.Enabled && c.Store.Backend != ""
}

// GetStoreBackend returns the configured store backend, lowercased; empty
// when no backend is configured.
func (c *Config) GetStoreBackend() string {
	if c == nil {
		return ""
	}
	return strings.ToLower(c.Store.Backend)
}

// GetFeedRefreshSchedule returns the feed refresh cron expression, defaulted.
func (c *Config) GetFeedRefreshSchedule() string {
	if c == nil || c.Verifier.Feeds.RefreshSchedule == "" {
		return DefaultFeedRefreshSchedule
	}
	return c.Verifier.Feeds.RefreshSchedule
}

// GetFeedMaxAge returns the feed headline max age, defaulted.
func (c *Config) GetFeedMaxAge() time.Duration {
	if c == nil || c.Verifier.Feeds.MaxAgeHours <= 0 {
		return time.Duration(DefaultFeedMaxAgeHours) * time.Hour
	}
	return time.Duration(c.Verifier.Feeds.MaxAgeHours) * time.Hour
}
