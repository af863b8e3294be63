package main

import (
	"context"

	"go-hrdata/internal/etl"
	"go-hrdata/internal/shared/connection"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type tableFileOptions struct {
	table    string
	bucket   string
	location string
	filename string
}

func (o *tableFileOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.table, "table", "", "department, job or user (required)")
	cmd.Flags().StringVar(&o.bucket, "bucket", "", "bucket holding the backup (required)")
	cmd.Flags().StringVar(&o.location, "location", "", "object prefix inside the bucket")
	cmd.Flags().StringVar(&o.filename, "filename", "", "object name (default <table>.avro)")

	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("bucket")
}

func (o *tableFileOptions) objectName() string {
	if o.filename != "" {
		return o.filename
	}
	return o.table + ".avro"
}

func newBackupCmd(root *rootOptions) *cobra.Command {
	var opts tableFileOptions

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a table to the blob store as an Avro container file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := etl.ValidateTable(opts.table); err != nil {
				return err
			}
			return withRun(cmd.Context(), root, "backup_"+opts.table, func(ctx context.Context, env runEnv) error {
				return runBackup(ctx, env, opts)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func runBackup(ctx context.Context, env runEnv, opts tableFileOptions) error {
	db, err := connection.ConnectGORMWithRetry(ctx, env.cfg.Database, env.log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	n, err := etl.Backup(ctx, db, env.blob, etl.BackupParams{
		Table:    opts.table,
		Bucket:   opts.bucket,
		Location: opts.location,
		Filename: opts.objectName(),
		WorkDir:  env.cfg.ETL.WorkDir,
		PageRows: env.cfg.ETL.BackupPageRow,
	}, env.log)
	if err != nil {
		return err
	}
	env.log.Info("backup complete", zap.String("table", opts.table), zap.Int("rows", n))
	return nil
}
