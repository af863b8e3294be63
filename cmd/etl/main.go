package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hrdata/internal/config"
	"go-hrdata/internal/etl"
	"go-hrdata/internal/shared/connection"
	"go-hrdata/internal/shared/logger"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	runID      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "etl",
		Short:         "Bulk load, back up and restore HR data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file")
	cmd.PersistentFlags().StringVar(&opts.runID, "run-id", "", "reuse a previous run's id so finished chunks are replayed (default: new ULID)")

	cmd.AddCommand(
		newBulkInsertCmd(&opts),
		newBackupCmd(&opts),
		newRestoreCmd(&opts),
	)
	return cmd
}

// runEnv is what every workflow needs: config, a blob store and a run log
// that is shipped to the log bucket once the workflow returns.
type runEnv struct {
	cfg   *config.Config
	blob  etl.Blob
	runID string
	log   *zap.Logger
}

func withRun(ctx context.Context, opts *rootOptions, name string, fn func(context.Context, runEnv) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	base, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer base.Sync()

	client, err := connection.NewMinio(cfg.Blob)
	if err != nil {
		return err
	}
	blob := etl.NewMinioBlob(client)

	runLog, err := etl.StartRunLog(base, cfg.Log, cfg.ETL.WorkDir, name, time.Now())
	if err != nil {
		return err
	}

	env := runEnv{
		cfg:   cfg,
		blob:  blob,
		runID: opts.runID,
	}
	if env.runID == "" {
		env.runID = ulid.Make().String()
	}
	env.log = runLog.Logger.With(zap.String("workflow", name), zap.String("run_id", env.runID))

	runErr := fn(ctx, env)
	if runErr != nil {
		env.log.Error("workflow failed", zap.Error(runErr))
	} else {
		env.log.Info("workflow finished")
	}

	// The log is shipped even when ctx was cancelled.
	uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()
	if err := runLog.Finish(uploadCtx, blob, cfg.Blob.LogBucket); err != nil {
		base.Error("ship run log failed", zap.Error(err))
	}
	return runErr
}
