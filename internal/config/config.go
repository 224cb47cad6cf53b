package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	LogLevel             string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	NATSSubjectBase      string
	JWTSecret            string
	JWTTTL               time.Duration
	SimilarityProvider   string
	SimilarityURL        string
	SimilarityAPIKey     string
	SimilarityTimeout    time.Duration
	OpenAIAPIKey         string
	OpenAIEmbeddingModel string
	OrthancURL           string
	OrthancUser          string
	OrthancPassword      string
	ProgressCacheTTL     time.Duration
	StudiesCacheTTL      time.Duration
	BadgeDispatch        string
	BadgeTimeout         time.Duration
	GradingRateLimit     int
	GradingRateWindow    time.Duration
}

// Badge dispatch modes.
const (
	BadgeDispatchGoroutine = "goroutine"
	BadgeDispatchNATS      = "nats"
)

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MEA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Medical e-Academy API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("log_level", "info")
	v.SetDefault("nats.subject_base", "mea")
	v.SetDefault("jwt.ttl", "1h")
	v.SetDefault("similarity.provider", "huggingface")
	v.SetDefault("similarity.timeout", "10s")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("cache.progress_ttl", "5m")
	v.SetDefault("cache.studies_ttl", "1m")
	v.SetDefault("badge.dispatch", BadgeDispatchGoroutine)
	v.SetDefault("badge.timeout", "15s")
	v.SetDefault("rate_limit.grading_max", 30)
	v.SetDefault("rate_limit.grading_window", "1m")

	durations := map[string]time.Duration{}
	for _, key := range []string{"jwt.ttl", "similarity.timeout", "cache.progress_ttl", "cache.studies_ttl", "badge.timeout", "rate_limit.grading_window"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		LogLevel:             strings.ToLower(v.GetString("log_level")),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		NATSSubjectBase:      v.GetString("nats.subject_base"),
		JWTSecret:            v.GetString("jwt.secret"),
		JWTTTL:               durations["jwt.ttl"],
		SimilarityProvider:   strings.ToLower(v.GetString("similarity.provider")),
		SimilarityURL:        v.GetString("similarity.url"),
		SimilarityAPIKey:     v.GetString("similarity.api_key"),
		SimilarityTimeout:    durations["similarity.timeout"],
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		OpenAIEmbeddingModel: v.GetString("openai.embedding_model"),
		OrthancURL:           strings.TrimRight(v.GetString("orthanc.url"), "/"),
		OrthancUser:          v.GetString("orthanc.user"),
		OrthancPassword:      v.GetString("orthanc.password"),
		ProgressCacheTTL:     durations["cache.progress_ttl"],
		StudiesCacheTTL:      durations["cache.studies_ttl"],
		BadgeDispatch:        strings.ToLower(v.GetString("badge.dispatch")),
		BadgeTimeout:         durations["badge.timeout"],
		GradingRateLimit:     v.GetInt("rate_limit.grading_max"),
		GradingRateWindow:    durations["rate_limit.grading_window"],
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SimilarityTimeout <= 0 || cfg.SimilarityTimeout > 10*time.Second {
		cfg.SimilarityTimeout = 10 * time.Second
	}

	switch cfg.BadgeDispatch {
	case BadgeDispatchGoroutine, BadgeDispatchNATS:
	default:
		return Config{}, fmt.Errorf("unsupported badge dispatch mode %q", cfg.BadgeDispatch)
	}

	if cfg.BadgeDispatch == BadgeDispatchNATS && cfg.NATSURL == "" {
		return Config{}, fmt.Errorf("nats url is required for nats badge dispatch")
	}

	return cfg, nil
}
