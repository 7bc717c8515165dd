package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docparse/internal/app"
)

var (
	flagBatchDir     string
	flagBatchOut     string
	flagBatchXLSX    string
	flagBatchClass   string
	flagBatchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process every document in a directory",
	Long: `Batch classifies and extracts every PDF or .json layout under --dir in
parallel, writes one <doc_id>_<template>.json per document into --out and
an XLSX summary with a sheet per document class plus a Duplicates sheet.

Example:
  docparse batch --dir scans --out outputs --xlsx outputs/records.xlsx --workers 8`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		dir := flagBatchDir
		if dir == "" {
			dir = cfg.Pipeline.Inbox
		}
		out := flagBatchOut
		if out == "" {
			out = cfg.Pipeline.Outbox
		}
		xlsx := flagBatchXLSX
		if xlsx == "" {
			xlsx = cfg.Pipeline.XLSXPath
		}
		if xlsx == "" {
			xlsx = filepath.Join(out, "records.xlsx")
		}
		classFlag := flagBatchClass
		if !cmd.Flags().Changed("class") {
			classFlag = cfg.Pipeline.Class
		}
		class, err := parseClass(classFlag)
		if err != nil {
			return err
		}
		workers := cfg.Pipeline.Workers
		if flagBatchWorkers > 0 {
			workers = flagBatchWorkers
		}

		p, err := newPipeline(ctx, true)
		if err != nil {
			return err
		}
		sum, err := app.RunBatch(ctx, app.BatchConfig{
			Dir:            dir,
			OutDir:         out,
			XLSXPath:       xlsx,
			Class:          class,
			Workers:        workers,
			ProcessTimeout: cfg.Pipeline.ProcessTimeout,
		}, p.Processor, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d of %d documents (%d failed, %d duplicates skipped, %d unforeseen)\n",
			sum.Processed, sum.Found, sum.Failed, sum.Skipped, sum.Unforeseen)
		fmt.Fprintf(cmd.OutOrStdout(), "records in %s, summary in %s\n", out, xlsx)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&flagBatchDir, "dir", "", "input directory (default from INBOX_DIR)")
	batchCmd.Flags().StringVar(&flagBatchOut, "out", "", "output directory for JSON records (default from OUTBOX_DIR)")
	batchCmd.Flags().StringVar(&flagBatchXLSX, "xlsx", "", "XLSX summary path (default <out>/records.xlsx)")
	batchCmd.Flags().StringVar(&flagBatchClass, "class", "auto", "invoice, consent, intake or auto")
	batchCmd.Flags().IntVar(&flagBatchWorkers, "workers", 0, "worker count (default from WORKERS)")
	rootCmd.AddCommand(batchCmd)
}
