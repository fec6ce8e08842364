package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-formengine/internal/server"
	"github.com/benjaminschreck/go-formengine/pkg/formengine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves the render, template, registry and workflow endpoints under /api/v1, rendered files under /files and Prometheus metrics under /metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		engine, cfg, err := newEngine(cmd, formengine.WithMetrics(formengine.NewMetrics(reg)))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.ListenAddr, _ = cmd.Flags().GetString("addr")
		}
		grace, _ := cmd.Flags().GetDuration("shutdown-timeout")
		logger := newLogger(cmd, cfg)

		srv := server.New(engine, server.Options{
			OutputDir: cfg.OutputDir,
			Logger:    logger,
			Gatherer:  reg,
			Version:   version,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("serving templates", "dir", cfg.TemplateDir, "output", cfg.OutputDir)
		return server.Run(ctx, cfg.ListenAddr, srv.Handler(), logger, grace)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides listen_addr)")
	serveCmd.Flags().Duration("shutdown-timeout", 5*time.Second, "Time given to in-flight requests on shutdown")
}
