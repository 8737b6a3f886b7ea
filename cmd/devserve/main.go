// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go.astrophena.name/devserve/internal/cli"
	"go.astrophena.name/devserve/internal/cli/envflag"
	"go.astrophena.name/devserve/internal/devserver"
	"go.astrophena.name/devserve/internal/logbuf"
	"go.astrophena.name/devserve/internal/web"
)

func main() { cli.Main(new(engine)) }

const envPrefix = "DEVSERVE_"

type engine struct {
	// configuration
	addr        string
	logCapacity int
	metrics     bool
	flags       *flag.FlagSet

	// initialized by Run
	handler *devserver.Handler
	reg     *prometheus.Registry

	// used in tests
	fs            fs.FS
	noServerStart bool
}

func (e *engine) Flags(fs *flag.FlagSet) {
	e.flags = fs
	fs.StringVar(&e.addr, "addr", ":5500", envflag.Usage(envPrefix, "addr", "Listen on `host:port`."))
	fs.IntVar(&e.logCapacity, "log-capacity", 0, envflag.Usage(envPrefix, "log-capacity", "Keep at most `n` log entries in memory, 0 keeps all of them."))
	fs.BoolVar(&e.metrics, "metrics", false, envflag.Usage(envPrefix, "metrics", "Expose Prometheus metrics at /metrics."))
}

func (e *engine) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	if e.flags != nil && env.Getenv != nil {
		if err := envflag.Override(e.flags, envPrefix, env.Getenv); err != nil {
			return fmt.Errorf("%w: %v", cli.ErrInvalidArgs, err)
		}
	}
	if len(env.Args) > 1 {
		return fmt.Errorf("%w: only one directory can be served", cli.ErrInvalidArgs)
	}
	if e.logCapacity < 0 {
		return fmt.Errorf("%w: log capacity must not be negative", cli.ErrInvalidArgs)
	}

	dir := "."
	if len(env.Args) == 1 {
		dir = env.Args[0]
	}
	if realdir, err := filepath.Abs(dir); err == nil {
		dir = realdir
	}
	if e.fs == nil {
		fi, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", cli.ErrInvalidArgs, dir)
		}
		e.fs = os.DirFS(dir)
	}

	logs := logbuf.New(logbuf.Options{
		Console:  env.Stdout,
		Capacity: e.logCapacity,
	})

	var (
		metrics  *devserver.Metrics
		gatherer prometheus.Gatherer
	)
	if e.metrics {
		e.reg = prometheus.NewRegistry()
		e.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = devserver.NewMetrics(e.reg)
		gatherer = e.reg
	}

	e.handler = devserver.New(devserver.Config{
		FS:      e.fs,
		Logs:    logs,
		Metrics: metrics,
	})

	mux := http.NewServeMux()
	mux.Handle("/", web.AccessLog(e.handler))

	env.Logf("Serving %s.", dir)

	if e.noServerStart {
		return nil
	}

	return web.ListenAndServe(ctx, &web.ListenAndServeConfig{
		Addr: e.addr,
		Mux:  mux,
		Health: func(h *web.HealthHandler) {
			h.RegisterFunc("logs", func() (string, bool) {
				return fmt.Sprintf("%d entries", logs.Len()), true
			})
		},
		Gatherer: gatherer,
	})
}
