package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/statetrack/internal/demo"
	"github.com/vango-dev/statetrack/internal/inspect"
	"github.com/vango-dev/statetrack/pkg/reactive"
	"github.com/vango-dev/statetrack/pkg/telemetry"
)

func serveCmd(load loader) *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the inspector with live demo stores",
		Long: `Start the inspector HTTP server over a tracker holding the demo
canvas stores. A background driver edits the stores at a fixed interval so
the metrics, graph and watch stream have something to show.

Routes:
  /metrics        Prometheus metrics
  /debug/stats    tracker statistics
  /debug/graph    subscription graph
  /debug/watch    websocket event stream

Examples:
  statetrack serve
  statetrack serve --addr=:7070 --interval=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspect.Addr = addr
			}
			logger := cfg.Logger(os.Stderr)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			hub := inspect.NewHub(logger)
			hooks := []reactive.Hooks{hub}
			if cfg.Metrics.Enabled {
				hooks = append(hooks, telemetry.Prometheus(
					telemetry.WithRegistry(reg),
					telemetry.WithNamespace(cfg.Metrics.Namespace),
				))
			}
			if cfg.Tracing.Enabled {
				hooks = append(hooks, telemetry.OpenTelemetry(telemetry.WithTracerName(cfg.Tracing.TracerName)))
			}

			opts := append(cfg.TrackerOptions(logger), reactive.WithHooks(telemetry.Multi(hooks...)))
			tr := reactive.New(opts...)
			canvas := demo.NewCanvas(tr)
			defer canvas.Dispose()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)

			driving := make(chan struct{})
			go func() {
				defer close(driving)
				drive(ctx, canvas, interval, logger)
			}()
			defer func() {
				stop()
				<-driving
			}()

			srv := inspect.NewServer(inspect.Options{
				Addr:     cfg.Inspect.Addr,
				Tracker:  tr,
				Gatherer: reg,
				Hub:      hub,
				Logger:   logger,
			})
			success(cmd.OutOrStdout(), "Inspector running at http://%s", cfg.Inspect.Addr)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Delay between demo edits")

	return cmd
}

// drive applies random edits to the canvas until ctx is done.
func drive(ctx context.Context, canvas *demo.Canvas, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			edit := canvas.Step(r)
			logger.Debug("demo edit", "edit", edit, "items", canvas.VisibleCount.Value())
		}
	}
}
