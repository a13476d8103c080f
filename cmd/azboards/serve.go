package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/h0rv/azboards/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	hostFlag string
	portFlag int
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&hostFlag, "host", "", "Bind host (overrides config)")
	cmd.Flags().IntVar(&portFlag, "port", 0, "Bind port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, fetcher, _, err := loadRuntime(false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if hostFlag != "" {
		cfg.Server.Host = hostFlag
	}
	if portFlag != 0 {
		cfg.Server.Port = portFlag
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.SettingsFromConfig(cfg), fetcher, server.WithLogger(logger.Named("server")))
	if err := srv.Start(cmd.Context()); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
