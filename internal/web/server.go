// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go.astrophena.name/devserve/internal/cli"
	"go.astrophena.name/devserve/internal/logger"
)

// ListenAndServeConfig is used to configure the HTTP server started by
// [ListenAndServe].
//
// All fields of ListenAndServeConfig can't be modified after [ListenAndServe]
// is called.
type ListenAndServeConfig struct {
	// Addr is a network address to listen on (in the form of "host:port").
	Addr string
	// Mux is a http.ServeMux to serve.
	Mux *http.ServeMux
	// Health, if set, is called with the /health handler so that callers can
	// register their checks.
	Health func(*HealthHandler)
	// Gatherer, if not nil, is exposed in Prometheus format at /metrics.
	Gatherer prometheus.Gatherer
	// Ready specifies an optional function to be called when the server is
	// ready to serve requests.
	Ready func()
}

var (
	errNoAddr = errors.New("c.Addr is empty")
	errNilMux = errors.New("c.Mux is nil")
)

const shutdownTimeout = 30 * time.Second

// ListenAndServe starts the HTTP server based on the provided
// [ListenAndServeConfig] and serves until ctx is canceled, then shuts it
// down gracefully.
//
// Logs go to the environment carried by ctx (see [cli.GetEnv]), and every
// request context derives from ctx, so handlers can use [cli.GetEnv] too.
func ListenAndServe(ctx context.Context, c *ListenAndServeConfig) error {
	if c.Addr == "" {
		return errNoAddr
	}
	if c.Mux == nil {
		return errNilMux
	}
	logf := cli.GetEnv(ctx).Logf

	l, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	defer l.Close()
	logf("Listening on %s...", l.Addr().String())

	initInternalRoutes(c)

	s := &http.Server{
		ErrorLog:    log.New(logger.Logf(logf), "", 0),
		Handler:     c.Mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if c.Ready != nil {
		c.Ready()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logf("Gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	}
}

func initInternalRoutes(c *ListenAndServeConfig) {
	h := Health(c.Mux)
	if c.Health != nil {
		c.Health(h)
	}
	if c.Gatherer != nil {
		Metrics(c.Mux, c.Gatherer)
	}
}
