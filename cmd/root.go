package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "difybatch",
	Short: "Batch-submit queries to a Dify endpoint",
	Long: `Difybatch reads a text file of queries, submits each one to a Dify
chat endpoint through a fixed-size worker pool with bounded retry, and
writes the answers to a result file as they arrive. Failed queries are
collected into a separate file so they can be re-run.

The API key is read from the DIFY_API_KEY environment variable.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(workflowCmd)
}
