package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-optimizer/internal/ingestion"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <job input>",
	Short: "Show how a job input would be routed (title, url or text)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.Join(args, " ")
		_, err := fmt.Fprintln(cmd.OutOrStdout(), ingestion.Classify(input))
		return err
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
