// FILE: logship/src/internal/transport/throttled.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logship/src/internal/core"
	"logship/src/internal/format"
	"logship/src/internal/sender"

	"github.com/benbjohnson/clock"
	"github.com/lixenwraith/log"
)

// ErrUnencodable marks entries dropped because they could not be encoded,
// for example a NaN float field.
var ErrUnencodable = errors.New("entry not encodable as JSON")

const (
	DefaultThrottleInterval = time.Second
	DefaultFlushTimeout     = 30 * time.Second
)

// ThrottledOptions configures a Throttled transport. Zero values select defaults.
type ThrottledOptions struct {
	// Delay between the first entry of a batch and its timer-driven delivery
	Interval time.Duration

	// Bound for timer-driven flushes
	FlushTimeout time.Duration

	Clock clock.Clock

	// OnError receives failures of timer-driven flushes, which have no caller
	OnError func(error)
}

// Throttled queues entries and delivers them as one JSON array per throttle
// interval, or immediately on Flush.
//
// The first Log after the queue drains arms a one-shot timer. Flush swaps the
// queue out, disarms the timer and sends the batch; entries logged during the
// send start the next batch. A Flush that finds a send in flight waits for it
// instead of sending concurrently. Failed batches are not re-queued.
type Throttled struct {
	sender       sender.Sender
	formatter    *format.JSONFormatter
	clock        clock.Clock
	interval     time.Duration
	flushTimeout time.Duration
	onError      func(error)
	logger       *log.Logger

	mu       sync.Mutex
	pending  []core.LogEntry
	timer    *clock.Timer
	timerGen uint64
	inflight *flushCall

	// Statistics
	totalLogged   atomic.Uint64
	totalBatches  atomic.Uint64
	failedBatches atomic.Uint64
	lostEntries   atomic.Uint64
	lastDelivery  atomic.Value // time.Time
}

// flushCall is one delivery that concurrent Flush callers can wait on.
type flushCall struct {
	done chan struct{}
	err  error
}

// NewThrottled wraps s in a throttling queue.
func NewThrottled(s sender.Sender, opts ThrottledOptions, logger *log.Logger) *Throttled {
	if opts.Interval <= 0 {
		opts.Interval = DefaultThrottleInterval
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = DefaultFlushTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	t := &Throttled{
		sender:       s,
		formatter:    format.NewJSONFormatter(format.Options{}, logger),
		clock:        opts.Clock,
		interval:     opts.Interval,
		flushTimeout: opts.FlushTimeout,
		onError:      opts.OnError,
		logger:       logger,
	}
	t.lastDelivery.Store(time.Time{})
	return t
}

// Log appends entry to the pending batch and arms the throttle timer if it
// is not already armed.
func (t *Throttled) Log(entry core.LogEntry) {
	t.totalLogged.Add(1)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = append(t.pending, entry)
	if t.timer == nil {
		t.timerGen++
		gen := t.timerGen
		t.timer = t.clock.AfterFunc(t.interval, func() { t.fire(gen) })
	}
}

// Flush delivers everything pending. It is a no-op when nothing is pending
// and coalesces with a delivery already in flight.
//
// The send itself is shared by every caller waiting on it, so it runs under
// the flush timeout rather than any one caller's context. ctx only bounds how
// long this caller waits; a caller that gives up does not cancel the send.
func (t *Throttled) Flush(ctx context.Context) error {
	for {
		t.mu.Lock()

		call := t.inflight
		if call != nil {
			// Entries queued behind the in-flight batch were logged before
			// this call and must go out before it returns.
			queuedBehind := len(t.pending) > 0
			t.mu.Unlock()

			if err := t.wait(ctx, call); err != nil || !queuedBehind {
				return err
			}
			continue
		}

		if len(t.pending) == 0 {
			t.disarmLocked()
			t.mu.Unlock()
			return nil
		}

		batch := t.pending
		t.pending = nil
		t.disarmLocked()
		call = &flushCall{done: make(chan struct{})}
		t.inflight = call
		t.mu.Unlock()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.flushTimeout)
		go func() {
			defer cancel()
			call.err = t.deliver(sendCtx, batch)

			t.mu.Lock()
			t.inflight = nil
			t.mu.Unlock()
			close(call.done)
		}()

		return t.wait(ctx, call)
	}
}

// wait blocks until call completes or ctx is done.
func (t *Throttled) wait(ctx context.Context, call *flushCall) error {
	select {
	case <-call.done:
		return call.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued, not yet delivered entries.
func (t *Throttled) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Armed reports whether a timer-driven delivery is scheduled.
func (t *Throttled) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// GetStats returns the transport's statistics.
func (t *Throttled) GetStats() map[string]any {
	lastDelivery, _ := t.lastDelivery.Load().(time.Time)

	t.mu.Lock()
	pending := len(t.pending)
	armed := t.timer != nil
	sending := t.inflight != nil
	t.mu.Unlock()

	stats := map[string]any{
		"type":             "throttled",
		"interval_ms":      t.interval.Milliseconds(),
		"pending_entries":  pending,
		"timer_armed":      armed,
		"sending":          sending,
		"total_logged":     t.totalLogged.Load(),
		"total_batches":    t.totalBatches.Load(),
		"failed_batches":   t.failedBatches.Load(),
		"lost_entries":     t.lostEntries.Load(),
		"last_delivery_at": lastDelivery,
	}
	if sp, ok := t.sender.(interface{ GetStats() map[string]any }); ok {
		stats["sender"] = sp.GetStats()
	}
	return stats
}

// fire runs when the throttle timer of generation gen elapses.
func (t *Throttled) fire(gen uint64) {
	t.mu.Lock()
	if t.timer == nil || t.timerGen != gen {
		// Disarmed by a Flush that already took this batch
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.flushTimeout)
	defer cancel()

	if err := t.Flush(ctx); err != nil {
		t.logger.Warn("msg", "Timer-driven flush failed",
			"component", "throttled_transport",
			"error", err)
		if t.onError != nil {
			t.onError(err)
		}
	}
}

// deliver encodes batch and hands it to the sender exactly once. Entries
// that cannot be encoded count as lost and are reported in the returned
// error; when none can be encoded nothing is sent.
func (t *Throttled) deliver(ctx context.Context, batch []core.LogEntry) error {
	t.totalBatches.Add(1)
	t.lastDelivery.Store(t.clock.Now())

	payload, skipped, err := t.formatter.FormatBatch(batch)
	if err != nil {
		t.failBatch(len(batch))
		return fmt.Errorf("failed to encode batch of %d entries: %w", len(batch), err)
	}

	var encodeErr error
	if skipped > 0 {
		t.lostEntries.Add(uint64(skipped))
		encodeErr = fmt.Errorf("%d of %d entries could not be encoded: %w", skipped, len(batch), ErrUnencodable)
	}
	if skipped == len(batch) {
		t.failedBatches.Add(1)
		return encodeErr
	}

	if err := t.sender.Send(ctx, payload); err != nil {
		t.failBatch(len(batch) - skipped)
		return errors.Join(encodeErr, fmt.Errorf("failed to deliver batch of %d entries: %w", len(batch)-skipped, err))
	}

	t.logger.Debug("msg", "Batch handed to sender",
		"component", "throttled_transport",
		"batch_size", len(batch)-skipped,
		"bytes", len(payload))
	return encodeErr
}

func (t *Throttled) failBatch(size int) {
	t.failedBatches.Add(1)
	t.lostEntries.Add(uint64(size))
}

// disarmLocked cancels a scheduled delivery. Callers hold t.mu.
func (t *Throttled) disarmLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
