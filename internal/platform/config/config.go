package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr             string
	Environment      string
	LogLevel         string
	IssuerPublicKey  string
	MatchField       string
	BatchConcurrency int
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
}

const (
	DefaultAddr             = ":8080"
	DefaultEnvironment      = "dev"
	DefaultLogLevel         = "info"
	DefaultMatchField       = "fingerprint"
	DefaultBatchConcurrency = 4
	DefaultRequestTimeout   = 10 * time.Second
	DefaultShutdownTimeout  = 15 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numbers and durations are reported rather than silently replaced.
func FromEnv() (Server, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := Server{
		Addr:             get("VCPROOF_ADDR", DefaultAddr),
		Environment:      get("VCPROOF_ENV", DefaultEnvironment),
		LogLevel:         get("VCPROOF_LOG_LEVEL", DefaultLogLevel),
		IssuerPublicKey:  get("VCPROOF_ISSUER_PUBLIC_KEY", ""),
		MatchField:       get("VCPROOF_MATCH_FIELD", DefaultMatchField),
		BatchConcurrency: DefaultBatchConcurrency,
		RequestTimeout:   DefaultRequestTimeout,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}

	if v := get("VCPROOF_BATCH_CONCURRENCY", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Server{}, fmt.Errorf("VCPROOF_BATCH_CONCURRENCY must be a positive integer, got %q", v)
		}
		cfg.BatchConcurrency = n
	}
	if v := get("VCPROOF_REQUEST_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Server{}, fmt.Errorf("VCPROOF_REQUEST_TIMEOUT must be a non-negative duration, got %q", v)
		}
		cfg.RequestTimeout = d
	}
	if v := get("VCPROOF_SHUTDOWN_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Server{}, fmt.Errorf("VCPROOF_SHUTDOWN_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.ShutdownTimeout = d
	}
	return cfg, nil
}
