package main

import (
	"context"

	"go-hrdata/internal/etl"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type bulkInsertOptions struct {
	bucket    string
	location  string
	filename  string
	entity    string
	header    bool
	columnMap string
}

func newBulkInsertCmd(root *rootOptions) *cobra.Command {
	var opts bulkInsertOptions

	cmd := &cobra.Command{
		Use:   "bulk-insert",
		Short: "Upload a CSV or XLSX file from the blob store through the bulk API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(cmd.Context(), root, "bulk_insert_"+opts.entity, func(ctx context.Context, env runEnv) error {
				return runBulkInsert(ctx, env, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "source bucket (required)")
	cmd.Flags().StringVar(&opts.location, "location", "", "object prefix inside the bucket")
	cmd.Flags().StringVar(&opts.filename, "filename", "", "object name, .csv or .xlsx (required)")
	cmd.Flags().StringVar(&opts.entity, "entity", "", "department, job or user (required)")
	cmd.Flags().BoolVar(&opts.header, "header", true, "first row holds column names")
	cmd.Flags().StringVar(&opts.columnMap, "column-map", "", `JSON object of column index to field name, e.g. {"0":"name"}`)

	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("filename")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runBulkInsert(ctx context.Context, env runEnv, opts bulkInsertOptions) error {
	columns, err := etl.ParseColumnMap(opts.columnMap)
	if err != nil {
		return err
	}

	api := etl.NewAPIClient(env.cfg.ETL.APIBaseURL, env.cfg.ETL.HTTPTimeout)
	res, err := etl.BulkInsert(ctx, env.blob, api, etl.BulkInsertParams{
		Bucket:      opts.bucket,
		Location:    opts.location,
		Filename:    opts.filename,
		Entity:      opts.entity,
		Header:      opts.header,
		ColumnMap:   columns,
		ChunkSize:   env.cfg.ETL.ChunkSize,
		Parallelism: env.cfg.ETL.Parallelism,
		RunID:       env.runID,
		WorkDir:     env.cfg.ETL.WorkDir,
	}, env.log)
	if err != nil {
		return err
	}

	env.log.Info("bulk insert complete",
		zap.Int("rows", res.Rows),
		zap.Int("chunks", res.Chunks),
		zap.Int("inserted", res.Inserted),
	)
	return nil
}
