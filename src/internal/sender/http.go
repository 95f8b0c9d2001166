// FILE: logship/src/internal/sender/http.go
package sender

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"logship/src/internal/config"
	ltls "logship/src/internal/tls"
	"logship/src/internal/version"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const maxErrorBodyLen = 512

// HTTPSender POSTs encoded batches to the ingest endpoint. Retries with
// exponential backoff on network errors, 429 and 5xx responses.
type HTTPSender struct {
	config *config.HTTPSenderConfig

	// Network
	client     *fasthttp.Client
	tlsManager *ltls.ClientManager
	limiter    *rate.Limiter
	logger     *log.Logger

	// Statistics
	totalRequests  atomic.Uint64
	totalDelivered atomic.Uint64
	totalRetries   atomic.Uint64
	totalFailed    atomic.Uint64
	totalBytes     atomic.Uint64
	lastStatus     atomic.Int64
	lastSent       atomic.Value // time.Time
}

// NewHTTPSender creates a sender from validated configuration.
func NewHTTPSender(opts *config.HTTPSenderConfig, logger *log.Logger) (*HTTPSender, error) {
	if opts == nil {
		return nil, fmt.Errorf("HTTP sender options cannot be nil")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("HTTP sender requires a URL")
	}

	timeout := time.Duration(opts.TimeoutMS) * time.Millisecond
	h := &HTTPSender{
		config: opts,
		logger: logger,
		client: &fasthttp.Client{
			Name:                          version.UserAgent(),
			MaxConnsPerHost:               4,
			MaxIdleConnDuration:           10 * time.Second,
			ReadTimeout:                   timeout,
			WriteTimeout:                  timeout,
			DisableHeaderNamesNormalizing: true,
		},
	}
	h.lastSent.Store(time.Time{})

	if opts.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), int(max(opts.RateBurst, 1)))
	}

	if opts.TLS.Enabled {
		tlsManager, err := ltls.NewClientManager(&opts.TLS, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS client manager: %w", err)
		}
		h.tlsManager = tlsManager
		h.client.TLSConfig = tlsManager.GetConfig()
	}

	return h, nil
}

// Send delivers payload as one POST request, retrying per configuration.
func (h *HTTPSender) Send(ctx context.Context, payload []byte) error {
	var lastErr error
	attempts := 0
	retryDelay := time.Duration(h.config.RetryDelayMS) * time.Millisecond
	timeout := time.Duration(h.config.TimeoutMS) * time.Millisecond

	for attempt := int64(0); attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			h.totalRetries.Add(1)
			if err := sleepCtx(ctx, retryDelay); err != nil {
				lastErr = errors.Join(lastErr, err)
				break
			}

			// Cap at timeout, also guards against overflow
			newDelay := time.Duration(float64(retryDelay) * h.config.RetryBackoff)
			if newDelay > timeout || newDelay < retryDelay {
				retryDelay = timeout
			} else {
				retryDelay = newDelay
			}
		}

		if h.limiter != nil {
			if err := h.limiter.Wait(ctx); err != nil {
				lastErr = fmt.Errorf("rate limiter: %w", err)
				break
			}
		}

		attempts++
		err := h.do(ctx, payload, timeout)
		if err == nil {
			h.totalDelivered.Add(1)
			h.logger.Debug("msg", "Batch delivered",
				"component", "http_sender",
				"bytes", len(payload),
				"attempt", attempt+1)
			return nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			h.logger.Error("msg", "Batch rejected by server",
				"component", "http_sender",
				"status_code", statusErr.StatusCode,
				"response", statusErr.Body,
				"bytes", len(payload))
			h.totalFailed.Add(1)
			return err
		}

		h.logger.Warn("msg", "Delivery attempt failed",
			"component", "http_sender",
			"attempt", attempt+1,
			"max_retries", h.config.MaxRetries,
			"error", err)
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	h.totalFailed.Add(1)
	return fmt.Errorf("delivery to %s failed after %d attempt(s): %w",
		h.config.URL, attempts, lastErr)
}

// do issues a single request. The deadline is the earlier of ctx and timeout.
func (h *HTTPSender) do(ctx context.Context, payload []byte, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.config.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.SetUserAgent(version.UserAgent())
	for k, v := range h.config.Headers {
		req.Header.Set(k, v)
	}
	if err := h.authorize(req); err != nil {
		return err
	}
	req.SetBody(payload)

	h.totalRequests.Add(1)
	h.totalBytes.Add(uint64(len(payload)))
	h.lastSent.Store(time.Now())

	if err := h.client.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	h.lastStatus.Store(int64(status))
	if status >= 200 && status < 300 {
		return nil
	}

	body := resp.Body()
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}
	return &StatusError{StatusCode: status, Body: string(body)}
}

// authorize sets the Authorization header for token and jwt auth.
func (h *HTTPSender) authorize(req *fasthttp.Request) error {
	auth := h.config.Auth
	switch auth.Type {
	case "token":
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+auth.Token)
	case "jwt":
		signed, err := SignJWT(h.config.Auth, time.Now())
		if err != nil {
			return fmt.Errorf("failed to sign JWT: %w", err)
		}
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+signed)
	}
	return nil
}

// SignJWT mints a short-lived HS256 token from the auth settings.
func SignJWT(auth config.AuthConfig, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    auth.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(auth.JWTTTLSec) * time.Second)),
	}
	if auth.JWTAudience != "" {
		claims.Audience = jwt.ClaimStrings{auth.JWTAudience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(auth.JWTSecret))
}

// GetStats returns the sender's statistics.
func (h *HTTPSender) GetStats() map[string]any {
	lastSent, _ := h.lastSent.Load().(time.Time)

	var tlsStats map[string]any
	if h.tlsManager != nil {
		tlsStats = h.tlsManager.GetStats()
	}

	return map[string]any{
		"url":             h.config.URL,
		"total_requests":  h.totalRequests.Load(),
		"total_delivered": h.totalDelivered.Load(),
		"total_retries":   h.totalRetries.Load(),
		"total_failed":    h.totalFailed.Load(),
		"total_bytes":     h.totalBytes.Load(),
		"last_status":     h.lastStatus.Load(),
		"last_sent":       lastSent,
		"rate_limited":    h.limiter != nil,
		"tls":             tlsStats,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
