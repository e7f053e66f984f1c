package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"malauth-go/internal/app"
	"malauth-go/internal/config"
	"malauth-go/internal/logging"
	"malauth-go/internal/tracing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the login and callback HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a JSON config file; environment variables override it")
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	// Missing configuration is fatal at startup.
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := tracing.Setup(cfg.TracingEnabled, "malauth", os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracer shutdown error", zap.Error(err))
		}
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting malauth",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("metrics_port", cfg.MetricsPort),
		zap.Bool("state_binding", cfg.StateBinding.Enabled),
	)
	return application.Run(ctx)
}
