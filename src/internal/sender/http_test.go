// FILE: logship/src/internal/sender/http_test.go
package sender

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"logship/src/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// recordedRequest is a copy of what the collector saw; fasthttp recycles
// the originals once the handler returns.
type recordedRequest struct {
	body    string
	headers map[string]string
}

type testCollector struct {
	mu       sync.Mutex
	requests []recordedRequest
	statuses []int
}

func (c *testCollector) handle(ctx *fasthttp.RequestCtx) {
	c.mu.Lock()
	defer c.mu.Unlock()

	headers := make(map[string]string)
	ctx.Request.Header.VisitAll(func(k, v []byte) {
		headers[string(k)] = string(v)
	})
	c.requests = append(c.requests, recordedRequest{
		body:    string(ctx.PostBody()),
		headers: headers,
	})

	status := fasthttp.StatusNoContent
	if n := len(c.requests); n <= len(c.statuses) {
		status = c.statuses[n-1]
	}
	ctx.SetStatusCode(status)
	if status >= 400 {
		ctx.SetBodyString("collector says no")
	}
}

func (c *testCollector) snapshot() []recordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]recordedRequest(nil), c.requests...)
}

// newTestSender wires an HTTPSender to an in-memory collector answering
// with statuses in order, then 204.
func newTestSender(t *testing.T, mutate func(*config.HTTPSenderConfig), statuses ...int) (*HTTPSender, *testCollector) {
	t.Helper()

	collector := &testCollector{statuses: statuses}
	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: collector.handle}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	opts := &config.HTTPSenderConfig{
		URL:          "http://collector.test/ingest",
		TimeoutMS:    2000,
		RetryDelayMS: 1,
		RetryBackoff: 2.0,
		Headers:      map[string]string{"X-Dataset": "app"},
		Auth:         config.AuthConfig{Type: "none"},
	}
	if mutate != nil {
		mutate(opts)
	}

	s, err := NewHTTPSender(opts, log.NewLogger())
	require.NoError(t, err)
	s.client.Dial = func(addr string) (net.Conn, error) {
		return ln.Dial()
	}
	return s, collector
}

func TestNewHTTPSender(t *testing.T) {
	t.Run("NilOptions", func(t *testing.T) {
		_, err := NewHTTPSender(nil, log.NewLogger())
		assert.Error(t, err)
	})

	t.Run("MissingURL", func(t *testing.T) {
		_, err := NewHTTPSender(&config.HTTPSenderConfig{}, log.NewLogger())
		assert.Error(t, err)
	})
}

func TestHTTPSender_Send(t *testing.T) {
	payload := []byte(`[{"_time":"2024-01-01T00:00:00Z","level":"info","message":"hello","fields":{}}]`)

	t.Run("Success", func(t *testing.T) {
		s, collector := newTestSender(t, func(o *config.HTTPSenderConfig) {
			o.Auth = config.AuthConfig{Type: "token", Token: "secret-token"}
		})

		require.NoError(t, s.Send(context.Background(), payload))

		reqs := collector.snapshot()
		require.Len(t, reqs, 1)
		assert.Equal(t, string(payload), reqs[0].body)
		assert.Equal(t, "application/json", reqs[0].headers["Content-Type"])
		assert.Equal(t, "app", reqs[0].headers["X-Dataset"])
		assert.Equal(t, "Bearer secret-token", reqs[0].headers["Authorization"])
		assert.True(t, strings.HasPrefix(reqs[0].headers["User-Agent"], "logship/"))

		stats := s.GetStats()
		assert.Equal(t, uint64(1), stats["total_delivered"])
		assert.Equal(t, int64(fasthttp.StatusNoContent), stats["last_status"])
	})

	t.Run("JWTAuth", func(t *testing.T) {
		secret := "jwt-signing-secret"
		s, collector := newTestSender(t, func(o *config.HTTPSenderConfig) {
			o.Auth = config.AuthConfig{Type: "jwt", JWTSecret: secret, JWTIssuer: "billing-api", JWTTTLSec: 60}
		})

		require.NoError(t, s.Send(context.Background(), payload))

		reqs := collector.snapshot()
		require.Len(t, reqs, 1)
		raw := strings.TrimPrefix(reqs[0].headers["Authorization"], "Bearer ")

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, "billing-api", claims.Issuer)
	})

	t.Run("ClientErrorNotRetried", func(t *testing.T) {
		s, collector := newTestSender(t, func(o *config.HTTPSenderConfig) {
			o.MaxRetries = 3
		}, fasthttp.StatusBadRequest)

		err := s.Send(context.Background(), payload)
		require.Error(t, err)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, fasthttp.StatusBadRequest, statusErr.StatusCode)
		assert.Equal(t, "collector says no", statusErr.Body)
		assert.Len(t, collector.snapshot(), 1)
	})

	t.Run("ServerErrorRetried", func(t *testing.T) {
		s, collector := newTestSender(t, func(o *config.HTTPSenderConfig) {
			o.MaxRetries = 2
		}, fasthttp.StatusServiceUnavailable)

		require.NoError(t, s.Send(context.Background(), payload))
		assert.Len(t, collector.snapshot(), 2)
		assert.Equal(t, uint64(1), s.GetStats()["total_retries"])
	})

	t.Run("RetriesExhausted", func(t *testing.T) {
		s, collector := newTestSender(t, func(o *config.HTTPSenderConfig) {
			o.MaxRetries = 1
		}, fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway)

		err := s.Send(context.Background(), payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempt(s)")

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, fasthttp.StatusBadGateway, statusErr.StatusCode)
		assert.Len(t, collector.snapshot(), 2)
		assert.Equal(t, uint64(1), s.GetStats()["total_failed"])
	})

	t.Run("CancelledContext", func(t *testing.T) {
		s, collector := newTestSender(t, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Send(ctx, payload)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, collector.snapshot())
	})

	t.Run("RateLimited", func(t *testing.T) {
		s, collector := newTestSender(t, func(o *config.HTTPSenderConfig) {
			o.RateLimit = 1000
			o.RateBurst = 5
		})

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Send(context.Background(), payload))
		}
		assert.Len(t, collector.snapshot(), 3)
		assert.Equal(t, true, s.GetStats()["rate_limited"])
	})
}

func TestSignJWT(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	signed, err := SignJWT(config.AuthConfig{
		JWTSecret:   "k",
		JWTAudience: "ingest",
		JWTTTLSec:   90,
	}, now)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return []byte("k"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now.Add(time.Minute) }))
	require.NoError(t, err)
	assert.Equal(t, now.Add(90*time.Second), claims.ExpiresAt.Time)
	assert.Equal(t, jwt.ClaimStrings{"ingest"}, claims.Audience)

	_, err = jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return []byte("k"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now.Add(2 * time.Minute) }))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestStatusError_Retryable(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: 503}).Retryable())
	assert.True(t, (&StatusError{StatusCode: 429}).Retryable())
	assert.False(t, (&StatusError{StatusCode: 401}).Retryable())
}

func TestSenderFunc(t *testing.T) {
	var got []byte
	var s Sender = SenderFunc(func(_ context.Context, payload []byte) error {
		got = payload
		return nil
	})

	require.NoError(t, s.Send(context.Background(), []byte("[]")))
	assert.Equal(t, "[]", string(got))
}
