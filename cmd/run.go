package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yangzhihuimee/difybatch/internal/batch"
	"github.com/yangzhihuimee/difybatch/internal/config"
	"github.com/yangzhihuimee/difybatch/internal/dify"
	"github.com/yangzhihuimee/difybatch/internal/logging"
	"github.com/yangzhihuimee/difybatch/internal/queryfile"
	"github.com/yangzhihuimee/difybatch/internal/report"
)

var (
	runUploadFlags UploadFlags
	runNotifyFlags NotifyFlags
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a query file through the batch pipeline",
	Long: `Read queries from the input file, submit each one to the Dify chat
endpoint with bounded retry, and write answers to the result file as
they complete. Queries that fail all attempts are written to the
failures file. The run never aborts on individual query failures.`,
	Example: `  difybatch run -i query.txt -o result.txt
  difybatch run -i query.txt -w 4 --max-retries 5
  difybatch run --upload-provider minio --upload-setting endpoint=minio:9000 \
    --upload-setting access_key=ak --upload-setting secret_key=sk --upload-setting bucket=runs`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	if err := bindConfigFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger := logging.Component("run")

	queries, err := queryfile.Load(cfg.Files.Input)
	if err != nil {
		return err
	}
	logger.Info().
		Int("queries", len(queries)).
		Str("input", cfg.Files.Input).
		Int("workers", cfg.Batch.Workers).
		Msg("starting batch run")

	client, err := dify.NewClient(dify.Config{
		APIKey:  cfg.API.Key,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})
	if err != nil {
		return err
	}

	results, err := report.NewResultWriter(cfg.Files.Results, len(queries))
	if err != nil {
		return err
	}
	defer func() { _ = results.Close() }()

	executor := batch.NewExecutor(client, cfg.API.User,
		batch.WithMaxRetries(cfg.Batch.MaxRetries),
		batch.WithBackoffUnit(cfg.Batch.BackoffUnit),
	)
	pool := batch.NewPool(executor,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithObserver(batch.NewLogObserver()),
	)
	aggregator := batch.NewAggregator(results, report.NewFailureWriter(cfg.Files.Failures))

	ctx := cmd.Context()
	summary, err := aggregator.Consume(pool.Dispatch(ctx, queries))
	if err != nil {
		// The run itself is complete; only the ledger write failed.
		logger.Error().Err(err).Msg("could not persist failure ledger")
	}

	logger.Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("batch run finished")

	if runUploadFlags.Provider != "" {
		if err := uploadRunArtifacts(ctx, runUploadFlags, cfg.Files.Results, cfg.Files.Failures); err != nil {
			logger.Error().Err(err).Msg("artifact upload failed")
		}
	}

	if err := pickNotifier(runNotifyFlags).RunComplete(summary); err != nil {
		logger.Warn().Err(err).Msg("completion notification failed")
	}

	return nil
}

func init() {
	SetupBatchFlags(runCmd)
	SetupAPIFlags(runCmd)
	SetupLogFlags(runCmd)
	SetupUploadFlags(runCmd, &runUploadFlags)
	SetupNotifyFlags(runCmd, &runNotifyFlags)
}
