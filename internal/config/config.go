// Package config loads application settings from environment variables,
// applying defaults, normalization and validation in one place.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects the GORM dialect and connection string.
type DBConfig struct {
	Driver  string // sqlite|postgres|mysql
	DSN     string // file path for sqlite, URL/DSN otherwise
	Tracing bool   // attach the GORM OpenTelemetry plugin
}

// SeedConfig controls first-start population of the scheme catalogue.
type SeedConfig struct {
	OnStart bool   // SEED_ON_START
	Path    string // optional YAML file; empty uses the embedded catalogue
}

// ChatConfig tunes the response composer.
type ChatConfig struct {
	MaxInline       int           // schemes returned inline per reply
	MaxMessageRunes int           // longest accepted chat message
	LogTimeout      time.Duration // per chat-log append
}

// RedisConfig enables the scheme listing cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
	// MemorySize enables an in-process listing cache of that many entries
	// when Redis is not in use. Only safe for single-instance deployments.
	MemorySize int
}

// RabbitConfig enables chat-log event publishing when URL is set.
type RabbitConfig struct {
	URL   string
	Queue string
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	// Store
	DB   DBConfig
	Seed SeedConfig

	// StateAlwaysInclude lists jurisdictions a state filter never excludes.
	StateAlwaysInclude []string

	Chat ChatConfig

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	// Optional infrastructure
	Redis  RedisConfig
	Rabbit RabbitConfig

	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		DB: DBConfig{
			Driver:  strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			DSN:     getenv("DB_DSN", "schemes.db"),
			Tracing: getbool("DB_TRACING", false),
		},
		Seed: SeedConfig{
			OnStart: getbool("SEED_ON_START", true),
			Path:    getenv("SEED_PATH", ""),
		},
		StateAlwaysInclude: splitCSV(getenv("STATE_ALWAYS_INCLUDE", "Pan India,Karnataka")),

		Chat: ChatConfig{
			MaxInline:       getint("CHAT_MAX_INLINE", 3),
			MaxMessageRunes: getint("CHAT_MAX_MESSAGE_RUNES", 2000),
			LogTimeout:      getdur("CHATLOG_TIMEOUT", 5*time.Second),
		},

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
			Prefix:   getenv("REDIS_PREFIX", "schemebot:"),
			TTL:      getdur("CACHE_TTL", 5*time.Minute),

			MemorySize: getint("CACHE_MEMORY_SIZE", 0),
		},
		Rabbit: RabbitConfig{
			URL:   getenv("RABBIT_URL", ""),
			Queue: getenv("RABBIT_QUEUE", "chat_logs"),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "scheme-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if len(cfg.StateAlwaysInclude) == 1 && strings.EqualFold(cfg.StateAlwaysInclude[0], "none") {
		cfg.StateAlwaysInclude = nil
	}
	switch cfg.DB.Driver {
	case "sqlite3":
		cfg.DB.Driver = "sqlite"
	case "postgresql", "pg":
		cfg.DB.Driver = "postgres"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres, mysql")
	}
	if strings.TrimSpace(cfg.DB.DSN) == "" {
		return cfg, errors.New("DB_DSN must not be empty")
	}
	if cfg.Chat.MaxInline < 1 || cfg.Chat.MaxInline > 3 {
		return cfg, errors.New("CHAT_MAX_INLINE must be between 1 and 3")
	}
	if cfg.Chat.MaxMessageRunes < 1 {
		return cfg, errors.New("CHAT_MAX_MESSAGE_RUNES must be >= 1")
	}
	if cfg.Chat.LogTimeout <= 0 {
		return cfg, errors.New("CHATLOG_TIMEOUT must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if (cfg.Redis.Addr != "" || cfg.Redis.MemorySize > 0) && cfg.Redis.TTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0 when a cache is enabled")
	}
	if cfg.Redis.MemorySize < 0 {
		return cfg, errors.New("CACHE_MEMORY_SIZE must be >= 0")
	}
	if cfg.Rabbit.URL != "" && strings.TrimSpace(cfg.Rabbit.Queue) == "" {
		return cfg, errors.New("RABBIT_QUEUE must not be empty when RABBIT_URL is set")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
