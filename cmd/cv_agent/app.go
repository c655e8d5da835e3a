package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/cv-optimizer/internal/config"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/jonathan/cv-optimizer/internal/delivery"
	"github.com/jonathan/cv-optimizer/internal/fetch"
	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/logging"
	"github.com/jonathan/cv-optimizer/internal/optimize"
	"github.com/jonathan/cv-optimizer/internal/parsing"
	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/rendering"
	"github.com/jonathan/cv-optimizer/internal/research"
	"github.com/jonathan/cv-optimizer/internal/rewriting"
	"github.com/jonathan/cv-optimizer/internal/scoring"
	"github.com/jonathan/cv-optimizer/internal/storage"
)

// app holds the wired collaborators of one process.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	runner *pipeline.Runner
	db     *db.DB
	client llm.Client
}

// stages selects which optional stages are wired.
type stages struct {
	optimize bool
	render   bool
	persist  bool
	deliver  bool
}

var allStages = stages{optimize: true, render: true, persist: true, deliver: true}

func newLogger(cfg *config.Config, jsonOutput bool) (*zap.Logger, error) {
	return logging.New(jsonOutput || cfg.Log.JSON, verbose || cfg.Log.Debug)
}

// buildApp wires the pipeline from cfg. Missing optional credentials disable the
// matching feature with a warning.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, want stages) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}
	llmCfg, err := llm.DefaultConfig().WithOverrides(cfg.Models)
	if err != nil {
		return nil, fmt.Errorf("invalid models config: %w", err)
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.client = client

	deps := pipeline.Deps{
		CVExtractor:  parsing.NewCVExtractor(client, cfg.MinCVTextChars, logger),
		JobExtractor: parsing.NewJobExtractor(client),
		Fetcher: fetch.NewFetcher(fetch.FetcherConfig{
			Timeout:       cfg.FetchTimeout,
			RatePerSecond: cfg.FetchRatePerSecond,
			MaxChars:      cfg.MaxJobTextChars,
			UseBrowser:    cfg.UseBrowser,
			Logger:        logger,
		}),
		Scorer:   scoring.NewScorer(client, logger),
		Rewriter: rewriting.NewRewriter(client, logger),
	}
	if want.optimize {
		deps.Critic = scoring.NewCritic(client)
	}

	if cfg.SearchAPIKey != "" && cfg.SearchCX != "" {
		searcher, err := research.NewSearcher(ctx, cfg.SearchAPIKey, cfg.SearchCX, cfg.SearchResults, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Searcher = searcher
	} else {
		logger.Warn("GOOGLE_SEARCH_API_KEY or GOOGLE_SEARCH_CX not set; job titles cannot be searched")
	}

	var opts []pipeline.Option
	opts = append(opts, pipeline.WithLogger(logger))
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			a.Close()
			return nil, err
		}
		a.db = database
		opts = append(opts, pipeline.WithRecorder(database))
	}

	if want.render {
		var converter rendering.Converter
		if cfg.RenderPDF {
			converter = rendering.NewChromeConverter()
		}
		deps.Renderer = rendering.NewRenderer(converter, logger)
	}

	if want.persist {
		if a.db != nil {
			deps.Store = storage.NewDBStore(a.db)
		} else {
			deps.Store = storage.NewFileStore(cfg.OutputDir)
		}
	}

	if want.deliver {
		deliverer, err := buildDeliverer(ctx, cfg, client, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Deliverer = deliverer
	}

	loop := optimize.Config{
		Threshold:       cfg.Threshold,
		MaxIterations:   cfg.MaxIterations,
		ContinueOnError: cfg.ContinueOnError,
	}
	if !want.optimize {
		loop.MaxIterations = 0
	}

	runner, err := pipeline.NewRunner(deps, loop, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.runner = runner
	return a, nil
}

// buildDeliverer returns a Deliverer that drafts emails and, when sending is enabled
// and Gmail is configured, sends them.
func buildDeliverer(ctx context.Context, cfg *config.Config, client llm.Client, logger *zap.Logger) (*delivery.Deliverer, error) {
	drafter := delivery.NewDrafter(client)
	if !cfg.SendEmail {
		return delivery.NewDeliverer(drafter, nil, logger), nil
	}
	if !cfg.DeliveryConfigured() {
		logger.Warn("send_email is set but Gmail credentials are missing; emails will only be drafted")
		return delivery.NewDeliverer(drafter, nil, logger), nil
	}

	token, err := delivery.ResolveRefreshToken(cfg.GmailRefreshToken, cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt gmail refresh token: %w", err)
	}
	sender, err := delivery.NewGmailSender(ctx, delivery.GmailConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RefreshToken: token,
	})
	if err != nil {
		return nil, err
	}
	return delivery.NewDeliverer(drafter, sender, logger), nil
}

// Close releases the database pool and the model client.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Debug("failed to close LLM client", zap.Error(err))
		}
	}
}
