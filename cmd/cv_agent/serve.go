package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cv-optimizer/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the pipeline: POST /api/optimize, /api/optimize/upload
and /api/optimize/stream, plus GET /runs/{id} when DATABASE_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	a, err := buildApp(ctx, cfg, logger, allStages)
	if err != nil {
		return err
	}
	defer a.Close()

	var runs server.RunStore
	if a.db != nil {
		runs = a.db
	} else {
		logger.Warn("DATABASE_URL not set; run history endpoints are disabled")
	}

	srv := server.New(server.Config{
		Port:        cfg.Server.Port,
		CORSOrigin:  cfg.Server.CORSOrigin,
		RunsPerHour: cfg.Server.RunsPerHour,
		UploadDir:   cfg.Server.UploadDir,
	}, a.runner, runs, logger)

	logger.Info("serving", zap.Int("port", cfg.Server.Port))
	return srv.Start(ctx)
}
