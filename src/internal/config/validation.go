// FILE: logship/src/internal/config/validation.go
package config

import (
	"fmt"
	"net/url"
	"strings"

	"logship/src/internal/format"

	lconfig "github.com/lixenwraith/config"
)

// Validate fills unset values and checks the configuration for consistency.
// It resolves an empty Transport to "http" or "console".
func (c *Config) Validate() error {
	if c.Transport == "" {
		if c.HTTP.URL != "" {
			c.Transport = "http"
		} else {
			c.Transport = "console"
		}
	}
	c.Transport = strings.ToLower(c.Transport)

	if c.Level == "" {
		c.Level = "debug"
	}
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Level)] {
		return fmt.Errorf("invalid level: %s", c.Level)
	}

	if c.ThrottleMS <= 0 {
		c.ThrottleMS = 1000
	}
	if c.FlushTimeoutMS <= 0 {
		c.FlushTimeoutMS = 30000
	}

	for i := range c.Filters {
		if err := validateFilter(i, &c.Filters[i]); err != nil {
			return err
		}
	}

	if err := validateLogConfig(&c.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	switch c.Transport {
	case "http":
		return validateHTTPSender(&c.HTTP)
	case "console":
		return validateConsole(&c.Console)
	case "none":
		return nil
	default:
		return fmt.Errorf("unknown transport '%s'", c.Transport)
	}
}

func validateHTTPSender(opts *HTTPSenderConfig) error {
	if err := lconfig.NonEmpty(opts.URL); err != nil {
		return fmt.Errorf("http transport requires 'http.url'")
	}

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return fmt.Errorf("http.url: invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("http.url: URL must use http or https scheme")
	}
	isHTTPS := parsedURL.Scheme == "https"

	// Set defaults for unspecified fields
	if opts.TimeoutMS <= 0 {
		opts.TimeoutMS = 10000
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelayMS <= 0 {
		opts.RetryDelayMS = 500
	}
	if opts.RetryBackoff < 1.0 {
		opts.RetryBackoff = 2.0
	}
	if opts.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit cannot be negative")
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	if opts.Headers == nil {
		opts.Headers = make(map[string]string)
	}

	switch strings.ToLower(opts.Auth.Type) {
	case "", "none":
		opts.Auth.Type = "none"
	case "token":
		if opts.Auth.Token == "" {
			return fmt.Errorf("http.auth: token required for token auth")
		}
		if !isHTTPS && !opts.TLS.InsecureSkipVerify {
			// Plain-text bearer tokens are allowed for local collectors only
			if !isLoopback(parsedURL.Hostname()) {
				return fmt.Errorf("http.auth: token auth requires HTTPS (security: token would be sent in plaintext)")
			}
		}
	case "jwt":
		if opts.Auth.JWTSecret == "" {
			return fmt.Errorf("http.auth: jwt_secret required for jwt auth")
		}
		if opts.Auth.JWTTTLSec <= 0 {
			opts.Auth.JWTTTLSec = 300
		}
	default:
		return fmt.Errorf("http.auth: unknown auth type '%s'", opts.Auth.Type)
	}
	opts.Auth.Type = strings.ToLower(opts.Auth.Type)

	if opts.TLS.Enabled && !isHTTPS {
		return fmt.Errorf("http.tls: TLS enabled but URL scheme is not https")
	}
	return validateTLSClient(&opts.TLS)
}

func validateConsole(opts *ConsoleConfig) error {
	if opts.Target == "" {
		opts.Target = "stdout"
	}
	validTargets := map[string]bool{
		"stdout": true, "stderr": true, "split": true,
	}
	if !validTargets[opts.Target] {
		return fmt.Errorf("invalid console target: %s", opts.Target)
	}

	if opts.Format == "" {
		opts.Format = "txt"
	}
	validFormats := map[string]bool{
		"txt": true, "json": true,
	}
	if !validFormats[opts.Format] {
		return fmt.Errorf("invalid console format: %s", opts.Format)
	}

	if opts.Template != "" {
		if err := format.ValidateTemplate(opts.Template); err != nil {
			return fmt.Errorf("console.template: %w", err)
		}
	}

	if opts.Color == "" {
		opts.Color = "auto"
	}
	validColors := map[string]bool{
		"auto": true, "always": true, "never": true,
	}
	if !validColors[opts.Color] {
		return fmt.Errorf("invalid console color mode: %s", opts.Color)
	}

	return nil
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
