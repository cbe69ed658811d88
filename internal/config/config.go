package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/observability"
	"github.com/davidbz/judgepanel/internal/provider/chat"
	"github.com/davidbz/judgepanel/internal/provider/openai"
)

// Config represents the service configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       observability.LogConfig
	Generator openai.Config
	History   HistoryConfig
	Rating    RatingConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"180"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// RateLimitConfig limits inbound requests per client IP. A zero rate disables it.
// Limiters of clients idle for IdleTimeout are evicted every CleanupInterval.
type RateLimitConfig struct {
	RequestsPerSecond float64       `env:"RATE_LIMIT_RPS"              envDefault:"2"`
	Burst             int           `env:"RATE_LIMIT_BURST"            envDefault:"5"`
	IdleTimeout       time.Duration `env:"RATE_LIMIT_IDLE_TIMEOUT"     envDefault:"10m"`
	CleanupInterval   time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"1m"`
}

// HistoryConfig selects and tunes the evaluation history backend.
type HistoryConfig struct {
	Backend       string `env:"HISTORY_BACKEND"     envDefault:"memory"`
	MaxEntries    int    `env:"HISTORY_MAX_ENTRIES" envDefault:"1000"`
	RedisAddr     string `env:"REDIS_ADDR"          envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"            envDefault:"0"`
	RedisKey      string `env:"HISTORY_REDIS_KEY"   envDefault:"judgepanel:evaluations"`
}

// ProviderSettings holds the credential and overrides of one rating provider.
type ProviderSettings struct {
	APIKey   string `env:"API_KEY"`
	Endpoint string `env:"ENDPOINT"`
	Model    string `env:"MODEL"`
	Enabled  bool   `env:"ENABLED"  envDefault:"true"`
}

// RatingConfig lists the rating providers.
type RatingConfig struct {
	Sonar  ProviderSettings `envPrefix:"SONAR_"`
	R1     ProviderSettings `envPrefix:"R1_"`
	Llama  ProviderSettings `envPrefix:"LLAMA_"`
	DryRun bool             `env:"RATING_DRY_RUN" envDefault:"false"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*RateLimitConfig
	*observability.LogConfig
	*openai.Config
	*HistoryConfig
	*RatingConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.RateLimit,
		&cfg.Log,
		&cfg.Generator,
		&cfg.History,
		&cfg.Rating,
	}
}

// Providers resolves every enabled rating provider against its built-in
// endpoint and model defaults and validates it. Providers that fail
// validation are reported in the second return value and left out of the
// first; the caller decides whether that is fatal.
func (c *RatingConfig) Providers() ([]domain.ProviderConfig, []error) {
	settings := map[string]ProviderSettings{
		chat.ProviderSonar: c.Sonar,
		chat.ProviderR1:    c.R1,
		chat.ProviderLlama: c.Llama,
	}

	var (
		valid   []domain.ProviderConfig
		invalid []error
	)
	for _, id := range chat.KnownProviders() {
		s := settings[id]
		if !s.Enabled {
			continue
		}

		defaults, _ := chat.DefaultsFor(id)
		pc := domain.ProviderConfig{
			ID:       id,
			Endpoint: firstNonEmpty(s.Endpoint, defaults.Endpoint),
			Model:    firstNonEmpty(s.Model, defaults.Model),
			APIKey:   s.APIKey,
		}
		if err := pc.Validate(); err != nil {
			invalid = append(invalid, err)
			continue
		}
		valid = append(valid, pc)
	}

	return valid, invalid
}

// EnabledIDs returns the identifiers of all enabled providers regardless of credentials.
func (c *RatingConfig) EnabledIDs() []string {
	enabled := map[string]bool{
		chat.ProviderSonar: c.Sonar.Enabled,
		chat.ProviderR1:    c.R1.Enabled,
		chat.ProviderLlama: c.Llama.Enabled,
	}

	ids := make([]string, 0, len(enabled))
	for _, id := range chat.KnownProviders() {
		if enabled[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
