package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-optimizer/internal/config"
	"github.com/jonathan/cv-optimizer/internal/observability"
	"github.com/jonathan/cv-optimizer/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Optimize a CV for a job and render it",
	Long: `Runs the full pipeline: extract the CV, find and analyze the job, score the match,
rewrite the CV until it clears the threshold or the iteration budget is spent, render
it to PDF, store it and optionally email it.

--job accepts a job title, a posting URL or the full job description. Without --job
the command asks for it interactively.`,
	RunE: runPipelineCmd,
}

var (
	runCV              string
	runJob             string
	runRecipient       string
	runUserID          string
	runThreshold       int
	runMaxIterations   int
	runContinueOnError bool
	runOutputDir       string
	runNoPDF           bool
	runSendEmail       bool
	runUseBrowser      bool
)

func init() {
	runCommand.Flags().StringVar(&runCV, "cv", "", "Path to the CV (.pdf, .txt or .md)")
	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Job title, posting URL or description")
	runCommand.Flags().StringVar(&runRecipient, "recipient", "", "Email address to send the optimized CV to")
	runCommand.Flags().StringVar(&runUserID, "user-id", "", "User id recorded with the run")
	addTuningFlags(runCommand)
	runCommand.Flags().StringVar(&runOutputDir, "output-dir", "", "Directory for rendered CVs when no database is configured")
	runCommand.Flags().BoolVar(&runNoPDF, "no-pdf", false, "Render HTML instead of PDF")
	runCommand.Flags().BoolVar(&runSendEmail, "send-email", false, "Send the CV through Gmail (requires credentials)")
	_ = runCommand.MarkFlagRequired("cv")
	rootCmd.AddCommand(runCommand)
}

// addTuningFlags registers the loop and fetch flags shared by run and score.
func addTuningFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&runThreshold, "threshold", 0, "Match score that ends optimization early (0-100)")
	cmd.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "Maximum rewrite iterations")
	cmd.Flags().BoolVar(&runContinueOnError, "continue-on-error", false, "Keep optimizing when a rewrite attempt fails")
	cmd.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Fall back to headless Chrome for script-rendered job pages")
}

// loadConfig loads the config file and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Threshold = runThreshold
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = runMaxIterations
	}
	if flags.Changed("continue-on-error") {
		cfg.ContinueOnError = runContinueOnError
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = runOutputDir
	}
	if flags.Changed("no-pdf") {
		cfg.RenderPDF = !runNoPDF
	}
	if flags.Changed("send-email") {
		cfg.SendEmail = runSendEmail
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// promptJob asks for the job input on a terminal.
func promptJob() (string, error) {
	prompt := promptui.Prompt{
		Label: "Job title, posting URL or description",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("job input must not be empty")
			}
			return nil
		},
	}
	job, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("no job input: %w", err)
	}
	return strings.TrimSpace(job), nil
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	job := runJob
	if strings.TrimSpace(job) == "" {
		if job, err = promptJob(); err != nil {
			return err
		}
	}

	return execute(cmd, cfg, allStages, pipeline.Input{
		CVSourceRef: runCV,
		JobRawInput: job,
		UserID:      runUserID,
		Recipient:   runRecipient,
	})
}

// execute wires the app, runs one pipeline and prints the outcome.
func execute(cmd *cobra.Command, cfg *config.Config, want stages, in pipeline.Input) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	a, err := buildApp(ctx, cfg, logger, want)
	if err != nil {
		return err
	}
	defer a.Close()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if verbose {
		in.OnProgress = printer.PrintProgress
	}

	res, runErr := a.runner.Run(ctx, in)
	if verbose && res != nil {
		printer.PrintCandidate(res.Candidate)
		printer.PrintJob(res.Job)
		if want.optimize {
			printer.PrintAttempts(res.InitialScore, res.Attempts)
		}
	}
	printer.PrintResult(res)
	return runErr
}
