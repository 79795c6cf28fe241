package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout. Zero keeps each source's own default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the descriptive client identifier sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// CacheBackend selects the cache implementation.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

// CacheConfig holds settings for the research cache.
type CacheConfig struct {
	// Backend is memory or redis.
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// TTL is how long a cached value stays fresh (default 1h).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	// Capacity bounds the number of in-memory entries (default 1024).
	Capacity int `json:"capacity" yaml:"capacity" mapstructure:"capacity"`

	// RedisAddr is host:port of the Redis server when Backend is redis.
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`

	// RedisPassword is optional; it is usually loaded from .secrets/redis-password.
	RedisPassword string `json:"-" yaml:"-" mapstructure:"redis_password"`

	// RedisPrefix namespaces keys in a shared Redis (default "learnbuddy:").
	RedisPrefix string `json:"redis_prefix,omitempty" yaml:"redis_prefix,omitempty" mapstructure:"redis_prefix"`
}

// ResearchConfig holds settings for the research stage.
type ResearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Cache CacheConfig `json:"cache" yaml:"cache" mapstructure:"cache"`

	// MaxResults is how many Wikipedia search hits are requested (default 3).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// Deadline bounds a whole aggregation; zero disables it.
	Deadline time.Duration `json:"deadline" yaml:"deadline" mapstructure:"deadline"`

	// Sequential runs sources one at a time in priority order.
	Sequential bool `json:"sequential" yaml:"sequential" mapstructure:"sequential"`

	// DedupeInflight collapses concurrent aggregations of the same query.
	DedupeInflight bool `json:"dedupe_inflight" yaml:"dedupe_inflight" mapstructure:"dedupe_inflight"`

	// Workers bounds the async bridge pool (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// DisableNews turns off the news feed source, as when no feed parser is deployed.
	DisableNews bool `json:"disable_news" yaml:"disable_news" mapstructure:"disable_news"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// MaxTokens caps the completion length (default 1024).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Timeout is the completion request timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ChatConfig holds settings for the chat-turn stage.
type ChatConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// HistoryDB is the SQLite file holding conversation history.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`

	// HistoryTurns is how many previous messages are sent with a prompt (default 10).
	HistoryTurns int `json:"history_turns" yaml:"history_turns" mapstructure:"history_turns"`

	// ResearchTimeout bounds the research step of a chat turn (default 30s).
	ResearchTimeout time.Duration `json:"research_timeout" yaml:"research_timeout" mapstructure:"research_timeout"`

	// SystemContext replaces the default system prompt when set.
	SystemContext string `json:"system_context,omitempty" yaml:"system_context,omitempty" mapstructure:"system_context"`
}

// LogConfig selects the logger flavor.
type LogConfig struct {
	// Mode is "dev" or "prod".
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Level is debug, info, warn, or error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all stage configurations.
type Config struct {
	Research ResearchConfig `json:"research" yaml:"research" mapstructure:"research"`
	Chat     ChatConfig     `json:"chat" yaml:"chat" mapstructure:"chat"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// Default values used when configuration leaves a field zero.
const (
	DefaultUserAgent       = "LearnBuddy/1.0 (Educational AI Assistant)"
	DefaultCacheTTL        = time.Hour
	DefaultCacheCapacity   = 1024
	DefaultMaxResults      = 3
	DefaultDeadline        = 25 * time.Second
	DefaultWorkers         = 4
	DefaultModel           = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens       = 1024
	DefaultHistoryTurns    = 10
	DefaultResearchTimeout = 30 * time.Second
	DefaultHistoryDB       = ".learnbuddy/history.db"
)

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Research: ResearchConfig{
			HTTPConfig: HTTPConfig{
				UserAgent:  DefaultUserAgent,
				MaxRetries: 2,
			},
			Cache: CacheConfig{
				Backend:     CacheMemory,
				TTL:         DefaultCacheTTL,
				Capacity:    DefaultCacheCapacity,
				RedisPrefix: "learnbuddy:",
			},
			MaxResults: DefaultMaxResults,
			Deadline:   DefaultDeadline,
			Workers:    DefaultWorkers,
		},
		Chat: ChatConfig{
			AIConfig: AIConfig{
				Model:      DefaultModel,
				MaxTokens:  DefaultMaxTokens,
				MaxRetries: 3,
				Timeout:    60 * time.Second,
			},
			HistoryDB:       DefaultHistoryDB,
			HistoryTurns:    DefaultHistoryTurns,
			ResearchTimeout: DefaultResearchTimeout,
		},
		Log: LogConfig{
			Mode:  "dev",
			Level: "info",
		},
	}
}

// WithDefaults fills zero fields of c from DefaultConfig.
func (c ResearchConfig) WithDefaults() ResearchConfig {
	d := DefaultConfig().Research
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = d.Cache.TTL
	}
	if c.Cache.Capacity <= 0 {
		c.Cache.Capacity = d.Cache.Capacity
	}
	if c.Cache.RedisPrefix == "" {
		c.Cache.RedisPrefix = d.Cache.RedisPrefix
	}
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}
