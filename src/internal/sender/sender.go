// FILE: logship/src/internal/sender/sender.go
package sender

import (
	"context"
	"fmt"
)

// Sender performs one outbound delivery of an encoded batch.
// A nil error means the ingest side accepted the payload.
type Sender interface {
	Send(ctx context.Context, payload []byte) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, payload []byte) error

// Send calls f(ctx, payload).
func (f SenderFunc) Send(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}

// StatusError reports a non-2xx response from the ingest endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
