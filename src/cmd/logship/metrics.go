// FILE: logship/src/cmd/logship/metrics.go
package main

import (
	"context"
	"fmt"
	"time"

	"logship/src/internal/metrics"
	"logship/src/internal/transport"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// metricsServer exposes transport statistics for Prometheus scrapes.
type metricsServer struct {
	server *fasthttp.Server
	addr   string
	diag   *log.Logger
}

// startMetrics serves t's statistics on addr until ctx is done.
func startMetrics(ctx context.Context, addr string, t transport.Transport, diag *log.Logger) error {
	provider, ok := t.(statsProvider)
	if !ok {
		return fmt.Errorf("transport %T reports no statistics", t)
	}
	ms, err := newMetricsServer(addr, provider, diag)
	if err != nil {
		return err
	}
	go ms.run(ctx)
	return nil
}

func newMetricsServer(addr string, p metrics.StatsProvider, diag *log.Logger) (*metricsServer, error) {
	promHandler, err := metrics.Handler(p)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promHandler)

	m := &metricsServer{addr: addr, diag: diag}
	m.server = &fasthttp.Server{
		Name:        version.UserAgent(),
		ReadTimeout: 5 * time.Second,
		Handler: func(ctx *fasthttp.RequestCtx) {
			switch string(ctx.Path()) {
			case "/metrics":
				metricsHandler(ctx)
			case "/healthz":
				ctx.SetStatusCode(fasthttp.StatusOK)
				ctx.SetBodyString("ok\n")
			default:
				ctx.Error("not found", fasthttp.StatusNotFound)
			}
		},
	}
	return m, nil
}

// run serves until ctx is done. Listener failures are logged, not fatal.
func (m *metricsServer) run(ctx context.Context) {
	errCh := make(chan error, 1)
	go func() {
		m.diag.Info("msg", "Metrics endpoint listening",
			"component", "metrics",
			"addr", m.addr)
		errCh <- m.server.ListenAndServe(m.addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			m.diag.Error("msg", "Metrics endpoint failed",
				"component", "metrics",
				"addr", m.addr,
				"error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.server.ShutdownWithContext(shutdownCtx); err != nil {
			m.diag.Warn("msg", "Metrics endpoint shutdown error",
				"component", "metrics",
				"error", err)
		}
	}
}
