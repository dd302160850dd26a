package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yangzhihuimee/difybatch/internal/config"
	"github.com/yangzhihuimee/difybatch/internal/dify"
	"github.com/yangzhihuimee/difybatch/internal/logging"
)

var workflowFlags WorkflowFlags

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Upload a document and run a Dify workflow against it",
	Long: `Upload a local document to Dify, then run the configured workflow
with the document and query as inputs. The workflow response is printed
as JSON.`,
	Example: `  difybatch workflow --file report.txt --query "summarize this document"`,
	RunE:    runWorkflow,
}

func runWorkflow(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	if err := bindConfigFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger := logging.Component("workflow")

	f, err := os.Open(workflowFlags.File)
	if err != nil {
		return fmt.Errorf("open document %s: %w", workflowFlags.File, err)
	}
	defer func() { _ = f.Close() }()

	client, err := dify.NewClient(dify.Config{
		APIKey:  cfg.API.Key,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	fileID, err := client.UploadFile(ctx, filepath.Base(workflowFlags.File), f, cfg.API.User)
	if err != nil {
		return err
	}
	logger.Info().Str("file_id", fileID).Msg("document uploaded")

	result, err := client.RunWorkflow(ctx, fileID, workflowFlags.Query, cfg.API.User)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workflow result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func init() {
	workflowCmd.Flags().StringVar(&workflowFlags.File, "file", "", "Document to upload (required)")
	workflowCmd.Flags().StringVar(&workflowFlags.Query, "query", "", "Query passed to the workflow (required)")
	_ = workflowCmd.MarkFlagRequired("file")
	_ = workflowCmd.MarkFlagRequired("query")

	SetupAPIFlags(workflowCmd)
	SetupLogFlags(workflowCmd)
}
