package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docparse/internal/async"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/queue"
)

var flagEnqueueClass string

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <file>...",
	Short: "Push documents onto the daemon's Redis job list",
	Long: `Enqueue pushes one job per file onto REDIS_LIST_KEY for a running
docparsed with REDIS_URL set. Paths are made absolute so the daemon can
resolve them.

Example:
  REDIS_URL=redis://localhost:6379/0 docparse enqueue scans/*.pdf --class invoice`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.Redis.URL == "" {
			return errors.New("REDIS_URL is not set")
		}
		class, err := parseClass(flagEnqueueClass)
		if err != nil {
			return err
		}
		v := common.NewValidator()
		for _, arg := range args {
			v.Field("file", arg, common.DocumentPath)
		}
		if err := v.Error(); err != nil {
			return err
		}
		rq, err := queue.New(cfg.Redis.URL, cfg.Redis.ListKey)
		if err != nil {
			return err
		}
		defer rq.Close()

		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			job := async.Job{Path: path, Class: class, SubmittedAt: time.Now(), TraceID: uuid.NewString()}
			if err := rq.Push(ctx, job); err != nil {
				return fmt.Errorf("enqueue %s: %w", path, err)
			}
			logger.Debug("enqueue.ok", "path", path, "trace_id", job.TraceID)
		}
		depth, err := rq.Depth(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "enqueued %d documents, %d waiting\n", len(args), depth)
		return nil
	},
}

func init() {
	enqueueCmd.Flags().StringVar(&flagEnqueueClass, "class", "auto", "invoice, consent, intake or auto")
	rootCmd.AddCommand(enqueueCmd)
}
