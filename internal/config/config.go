// Package config provides application configuration loaded from environment
// variables with defaults and validation: server timeouts, logging, storage,
// upload limits, rate limiting, observability, and the transcription and
// analysis providers.
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

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-call-analysis")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Store backends accepted by STORE_BACKEND.
const (
	StoreSQLite = "sqlite"
	StoreBadger = "badger"
	StoreMemory = "memory"
	StoreNone   = "none"
)

// Analysis providers accepted by ANALYSIS_PROVIDER.
const (
	ProviderAuto      = "auto"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderSample    = "sample"
)

// TranscribeConfig selects and configures the speech-to-text provider.
// An empty APIKey selects the built-in sample transcriber.
type TranscribeConfig struct {
	APIKey       string        // ASSEMBLYAI_API_KEY
	BaseURL      string        // ASSEMBLYAI_BASE_URL
	PollInterval time.Duration // TRANSCRIBE_POLL_INTERVAL
}

// AnalysisConfig selects and configures the transcript analysis provider.
type AnalysisConfig struct {
	Provider       string // ANALYSIS_PROVIDER: auto|anthropic|gemini|sample
	AnthropicKey   string // ANTHROPIC_API_KEY
	AnthropicModel string // ANTHROPIC_MODEL
	GeminiKey      string // GEMINI_API_KEY
	GeminiModel    string // GEMINI_MODEL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 5m
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBPath       string // SQLite path (kv_entries + idempotency)
	StoreBackend string // sqlite|badger|memory|none
	BadgerPath   string // Badger directory when StoreBackend=badger

	// Uploads
	UploadDir      string // where uploaded audio is written
	MaxUploadBytes int64  // request body cap for uploads
	DemoSeed       uint64 // 0 = random demo data

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig

	// Collaborators
	Transcribe TranscribeConfig
	Analysis   AnalysisConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 5*time.Minute), // uploads wait for the whole pipeline
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DBPath:       getenv("DB_PATH", "app.db"),
		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", StoreSQLite)),
		BadgerPath:   getenv("BADGER_PATH", "data/badger"),

		// Uploads
		UploadDir:      getenv("UPLOAD_DIR", "data/uploads"),
		MaxUploadBytes: int64(getint("MAX_UPLOAD_BYTES", 50<<20)),
		DemoSeed:       uint64(getint("DEMO_SEED", 0)),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-call-analysis"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},

		Transcribe: TranscribeConfig{
			APIKey:       getenv("ASSEMBLYAI_API_KEY", ""),
			BaseURL:      strings.TrimRight(getenv("ASSEMBLYAI_BASE_URL", "https://api.assemblyai.com"), "/"),
			PollInterval: getdur("TRANSCRIBE_POLL_INTERVAL", 3*time.Second),
		},
		Analysis: AnalysisConfig{
			Provider:       strings.ToLower(getenv("ANALYSIS_PROVIDER", ProviderAuto)),
			AnthropicKey:   getenv("ANTHROPIC_API_KEY", ""),
			AnthropicModel: getenv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
			GeminiKey:      getenv("GEMINI_API_KEY", ""),
			GeminiModel:    getenv("GEMINI_MODEL", "gemini-2.5-flash"),
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
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	switch cfg.StoreBackend {
	case StoreSQLite, StoreMemory, StoreNone:
	case StoreBadger:
		if strings.TrimSpace(cfg.BadgerPath) == "" {
			return cfg, errors.New("BADGER_PATH must not be empty when STORE_BACKEND=badger")
		}
	default:
		return cfg, errors.New("STORE_BACKEND must be one of: sqlite, badger, memory, none")
	}
	if strings.TrimSpace(cfg.UploadDir) == "" {
		return cfg, errors.New("UPLOAD_DIR must not be empty")
	}
	if cfg.MaxUploadBytes <= 0 {
		return cfg, errors.New("MAX_UPLOAD_BYTES must be > 0")
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
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	if cfg.Transcribe.PollInterval <= 0 {
		return cfg, errors.New("TRANSCRIBE_POLL_INTERVAL must be > 0")
	}
	switch cfg.Analysis.Provider {
	case ProviderAuto, ProviderSample:
	case ProviderAnthropic:
		if cfg.Analysis.AnthropicKey == "" {
			return cfg, errors.New("ANTHROPIC_API_KEY is required when ANALYSIS_PROVIDER=anthropic")
		}
	case ProviderGemini:
		if cfg.Analysis.GeminiKey == "" {
			return cfg, errors.New("GEMINI_API_KEY is required when ANALYSIS_PROVIDER=gemini")
		}
	default:
		return cfg, errors.New("ANALYSIS_PROVIDER must be one of: auto, anthropic, gemini, sample")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

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
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
