package app

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/internal/report/service"
	"github.com/aussiebroadwan/eventim-report/pkg/eventimsdk"
	"github.com/aussiebroadwan/eventim-report/pkg/httpx"
)

// Environment variable names.
const (
	EnvClientID      = "EVENTIM_CLIENT_ID"
	EnvClientSecret  = "EVENTIM_CLIENT_SECRET"
	EnvOutputDir     = "REPORT_OUTPUT_DIR"
	EnvBaseURL       = "EVENTIM_BASE_URL"
	EnvUserAgent     = "EVENTIM_USER_AGENT"
	EnvHTTPTimeout   = "EVENTIM_HTTP_TIMEOUT"
	EnvMaxRetries    = "EVENTIM_MAX_RETRIES"
	EnvBackoffFactor = "EVENTIM_BACKOFF_FACTOR"
	EnvRateLimit     = "EVENTIM_RATE_LIMIT"
	EnvFilePrefix    = "REPORT_FILE_PREFIX"
	EnvPushgateway   = "PUSHGATEWAY_URL"

	EnvEnvironment = "ENV"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
)

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

type Config struct {
	Credentials domain.Credentials // Required: EVENTIM_CLIENT_ID, EVENTIM_CLIENT_SECRET
	OutputDir   string             // Required: directory the report is written to

	BaseURL        string        // Optional: API base URL (default: https://api.eventimsports.com)
	UserAgent      string        // Optional: User-Agent header (default: Automation_Client)
	HTTPTimeout    time.Duration // Optional: per-attempt timeout (default: 30s)
	MaxRetries     int           // Optional: retries after the first attempt (default: 3, 0 disables)
	BackoffFactor  time.Duration // Optional: backoff factor (default: 1s)
	RateLimit      float64       // Optional: requests per second (default: 0, unlimited)
	FilePrefix     string        // Optional: report file name prefix (default: Eventim_Stats_SVW_)
	PushgatewayURL string        // Optional: push run metrics here when set
	Env            string        // Environment (dev, staging, prod) (default: prod)
	LogLevel       string        // Log level (debug, info, warn, error) (default: info)
	LogFormat      string        // Log format (json, text) (default: json)

	// LogOutput overrides stdout as the log destination. Not read from the
	// environment.
	LogOutput io.Writer
}

// ResolveCredentials reads the client credentials. Empty values count as
// missing; the error names every missing variable.
func ResolveCredentials(lookup LookupFunc) (domain.Credentials, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cerr := &domain.ConfigurationError{}
	creds := resolveCredentials(lookup, cerr)
	if !cerr.Empty() {
		return domain.Credentials{}, cerr
	}
	return creds, nil
}

func resolveCredentials(lookup LookupFunc, cerr *domain.ConfigurationError) domain.Credentials {
	id := required(lookup, EnvClientID, cerr)
	secret := required(lookup, EnvClientSecret, cerr)
	return domain.NewCredentials(id, secret)
}

// LoadConfig reads the whole configuration. Every problem is collected into
// one *domain.ConfigurationError so the operator sees them all at once.
func LoadConfig(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cerr := &domain.ConfigurationError{}

	cfg := Config{
		Credentials:    resolveCredentials(lookup, cerr),
		OutputDir:      required(lookup, EnvOutputDir, cerr),
		BaseURL:        getEnvOrDefault(lookup, EnvBaseURL, eventimsdk.DefaultBaseURL),
		UserAgent:      getEnvOrDefault(lookup, EnvUserAgent, eventimsdk.DefaultUserAgent),
		HTTPTimeout:    getEnvDurationOrDefault(lookup, EnvHTTPTimeout, 30*time.Second, cerr),
		MaxRetries:     getEnvIntOrDefault(lookup, EnvMaxRetries, httpx.DefaultMaxRetries, cerr),
		BackoffFactor:  getEnvDurationOrDefault(lookup, EnvBackoffFactor, httpx.DefaultBackoffFactor, cerr),
		RateLimit:      getEnvFloatOrDefault(lookup, EnvRateLimit, 0, cerr),
		FilePrefix:     getEnvOrDefault(lookup, EnvFilePrefix, service.DefaultFilePrefix),
		PushgatewayURL: getEnvOrDefault(lookup, EnvPushgateway, ""),
	}
	cfg.Env, cfg.LogLevel, cfg.LogFormat = logSettings(lookup)

	if cfg.MaxRetries < 0 {
		invalid(cerr, EnvMaxRetries, "must not be negative")
	}
	if cfg.RateLimit < 0 {
		invalid(cerr, EnvRateLimit, "must not be negative")
	}

	if !cerr.Empty() {
		return Config{}, cerr
	}
	return cfg, nil
}

// logSettings reads the logging variables. They have defaults and are never
// reported as configuration errors.
func logSettings(lookup LookupFunc) (env, level, format string) {
	return getEnvOrDefault(lookup, EnvEnvironment, "prod"),
		getEnvOrDefault(lookup, EnvLogLevel, "info"),
		getEnvOrDefault(lookup, EnvLogFormat, "json")
}

func required(lookup LookupFunc, key string, cerr *domain.ConfigurationError) string {
	value, ok := lookup(key)
	if !ok || value == "" {
		cerr.Missing = append(cerr.Missing, key)
		return ""
	}
	return value
}

func invalid(cerr *domain.ConfigurationError, key, problem string) {
	if cerr.Invalid == nil {
		cerr.Invalid = make(map[string]string)
	}
	cerr.Invalid[key] = problem
}

func getEnvOrDefault(lookup LookupFunc, key, defaultValue string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(lookup LookupFunc, key string, defaultValue int, cerr *domain.ConfigurationError) int {
	value, ok := lookup(key)
	if !ok || value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		invalid(cerr, key, "not an integer: "+value)
		return defaultValue
	}
	return intValue
}

func getEnvFloatOrDefault(lookup LookupFunc, key string, defaultValue float64, cerr *domain.ConfigurationError) float64 {
	value, ok := lookup(key)
	if !ok || value == "" {
		return defaultValue
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		invalid(cerr, key, "not a number: "+value)
		return defaultValue
	}
	return f
}

func getEnvDurationOrDefault(lookup LookupFunc, key string, defaultValue time.Duration, cerr *domain.ConfigurationError) time.Duration {
	value, ok := lookup(key)
	if !ok || value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "30s", "500ms")
	if duration, err := time.ParseDuration(value); err == nil && duration >= 0 {
		return duration
	}

	// Bare numbers are seconds, fractions allowed ("0.5")
	if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds >= 0 {
		return time.Duration(seconds * float64(time.Second))
	}

	invalid(cerr, key, "not a duration: "+value)
	return defaultValue
}
