package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-optimizer/internal/pipeline"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a CV against a job without rewriting it",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&runCV, "cv", "", "Path to the CV (.pdf, .txt or .md)")
	scoreCmd.Flags().StringVarP(&runJob, "job", "j", "", "Job title, posting URL or description")
	scoreCmd.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Fall back to headless Chrome for script-rendered job pages")
	_ = scoreCmd.MarkFlagRequired("cv")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
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

	return execute(cmd, cfg, stages{}, pipeline.Input{CVSourceRef: runCV, JobRawInput: job})
}
