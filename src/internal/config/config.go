// FILE: logship/src/internal/config/config.go
package config

// Config is the resolved configuration of a logship logger
type Config struct {
	// Transport selects the delivery mechanism: "http", "console" or "none".
	// Empty picks "http" when an endpoint URL is configured, "console" otherwise.
	Transport string `toml:"transport"`

	// Minimum level: "debug", "info", "warn", "error"
	Level string `toml:"level"`

	// Minimum time between two timer-driven deliveries
	ThrottleMS int64 `toml:"throttle_ms"`

	// Upper bound for a timer-driven flush, including sender retries
	FlushTimeoutMS int64 `toml:"flush_timeout_ms"`

	// Applied in order; an entry must pass every filter
	Filters []FilterConfig `toml:"filters"`

	HTTP    HTTPSenderConfig `toml:"http"`
	Console ConsoleConfig    `toml:"console"`
	Logging LogConfig        `toml:"logging"`
}

// HTTPSenderConfig describes the remote ingest endpoint.
type HTTPSenderConfig struct {
	URL          string            `toml:"url"`
	TimeoutMS    int64             `toml:"timeout_ms"`
	MaxRetries   int64             `toml:"max_retries"`
	RetryDelayMS int64             `toml:"retry_delay_ms"`
	RetryBackoff float64           `toml:"retry_backoff"`
	Headers      map[string]string `toml:"headers"`

	// Requests per second, 0 disables pacing
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int64   `toml:"rate_burst"`

	Auth AuthConfig      `toml:"auth"`
	TLS  TLSClientConfig `toml:"tls"`
}

// AuthConfig selects how requests authenticate to the ingest endpoint.
type AuthConfig struct {
	// "none", "token" or "jwt"
	Type  string `toml:"type"`
	Token string `toml:"token"`

	// HS256 secret and claims for "jwt"
	JWTSecret   string `toml:"jwt_secret"`
	JWTIssuer   string `toml:"jwt_issuer"`
	JWTTTLSec   int64  `toml:"jwt_ttl_s"`
	JWTAudience string `toml:"jwt_audience"`
}

// ConsoleConfig controls the console transport.
type ConsoleConfig struct {
	// "stdout", "stderr" or "split" (debug/info to stdout, warn/error to stderr)
	Target string `toml:"target"`

	// "txt" or "json"
	Format string `toml:"format"`

	// "auto", "always" or "never"
	Color string `toml:"color"`

	// Indented output for the json format
	Pretty bool `toml:"pretty"`

	// text/template over the entry for the txt format; empty uses the default
	// line. Functions: FmtTime, Level, Fields, ToUpper, ToLower.
	Template string `toml:"template"`

	// Go time layout used by FmtTime in the txt format
	TimestampFormat string `toml:"timestamp_format"`
}

// Defaults returns the configuration used when no source overrides a value.
func Defaults() *Config {
	return &Config{
		Level:          "debug",
		ThrottleMS:     1000,
		FlushTimeoutMS: 30000,
		HTTP: HTTPSenderConfig{
			TimeoutMS:    10000,
			MaxRetries:   0,
			RetryDelayMS: 500,
			RetryBackoff: 2.0,
			RateBurst:    1,
			Headers:      map[string]string{},
			Auth: AuthConfig{
				Type:      "none",
				JWTTTLSec: 300,
			},
		},
		Console: ConsoleConfig{
			Target: "stdout",
			Format: "txt",
			Color:  "auto",
		},
		Logging: *DefaultLogConfig(),
	}
}
