package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/metrics"
	"github.com/spektr-org/launchboard/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := loadDataset(ctx)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec := metrics.New(reg)
		rec.DatasetLoaded(d.Len())

		sessions := server.NewSessions(d, server.SessionConfig{
			TTL:         cfg.Server.SessionTTL(),
			MaxSessions: cfg.Server.MaxSessions,
			SignalRate:  cfg.Server.SignalRate,
			SignalBurst: cfg.Server.SignalBurst,
		}, rec, engine.WithRangeCeiling(cfg.Slider.Max))

		srv := server.New(engine.BuildLayout(d, cfg.Slider.Engine()), sessions, rec, server.Options{
			CORSOrigins: cfg.Server.CORSOrigins,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		shutdown := time.Duration(cfg.Server.ShutdownTimeout) * time.Second

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(gctx, fmt.Sprintf(":%d", port), shutdown)
		})
		g.Go(func() error {
			return sessions.Run(gctx)
		})

		zap.L().Info("dashboard ready",
			zap.String("source", d.Source()),
			zap.Int("records", d.Len()),
			zap.Int("port", port),
		)
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
