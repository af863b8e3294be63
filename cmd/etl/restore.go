package main

import (
	"context"

	"go-hrdata/internal/etl"
	"go-hrdata/internal/shared/connection"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRestoreCmd(root *rootOptions) *cobra.Command {
	var opts tableFileOptions

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace a table's rows with the contents of an Avro backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := etl.ValidateTable(opts.table); err != nil {
				return err
			}
			return withRun(cmd.Context(), root, "restore_"+opts.table, func(ctx context.Context, env runEnv) error {
				return runRestore(ctx, env, opts)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func runRestore(ctx context.Context, env runEnv, opts tableFileOptions) error {
	db, err := connection.ConnectGORMWithRetry(ctx, env.cfg.Database, env.log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	n, err := etl.Restore(ctx, db, env.blob, etl.RestoreParams{
		Table:     opts.table,
		Bucket:    opts.bucket,
		Location:  opts.location,
		Filename:  opts.objectName(),
		WorkDir:   env.cfg.ETL.WorkDir,
		BatchSize: env.cfg.ETL.RestoreBatch,
	}, env.log)
	if err != nil {
		return err
	}
	env.log.Info("restore complete", zap.String("table", opts.table), zap.Int("rows", n))
	return nil
}
