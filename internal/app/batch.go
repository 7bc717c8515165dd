package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/async"
	"github.com/joseph-ayodele/docparse/internal/core"
	coreasync "github.com/joseph-ayodele/docparse/internal/core/async"
	"github.com/joseph-ayodele/docparse/internal/export"
	"github.com/joseph-ayodele/docparse/internal/ingest"
)

// BatchConfig describes one directory run.
type BatchConfig struct {
	Dir            string
	OutDir         string // one <doc_id>_<template>.json per document
	XLSXPath       string // empty skips the workbook
	Class          constants.DocClass
	Workers        int
	ProcessTimeout time.Duration
}

// BatchSummary counts what a batch run did.
type BatchSummary struct {
	Found      int
	Skipped    int // same content as an earlier file
	Processed  int
	Failed     int
	Unforeseen int
	Files      []string
	Outcomes   []*core.Outcome // sorted by path
}

// RunBatch processes every document under cfg.Dir on a worker pool. A
// document that fails is counted and logged; it never stops the batch.
func RunBatch(ctx context.Context, cfg BatchConfig, proc coreasync.DocumentProcessor, logger *slog.Logger) (*BatchSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	if info, err := os.Stat(cfg.Dir); err != nil {
		return nil, fmt.Errorf("scan %s: %w", cfg.Dir, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", cfg.Dir)
	}
	srcs, _, err := ingest.WalkDocuments(ctx, cfg.Dir, true)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", cfg.Dir, err)
	}

	var (
		mu  sync.Mutex
		sum = &BatchSummary{}
	)
	q := coreasync.NewProcessorQueue(proc, logger,
		coreasync.WithWorkers(cfg.Workers),
		coreasync.WithQueueSize(len(srcs)+1),
		coreasync.WithProcessTimeout(cfg.ProcessTimeout),
		coreasync.WithResultHandler(func(r coreasync.Result) {
			mu.Lock()
			defer mu.Unlock()
			if r.Err != nil {
				sum.Failed++
				return
			}
			sum.Processed++
			if r.Outcome.Detection.IsUnforeseen {
				sum.Unforeseen++
			}
			sum.Outcomes = append(sum.Outcomes, r.Outcome)
		}),
	)

	for _, s := range srcs {
		if s.Err != "" {
			continue
		}
		sum.Found++
		if s.Duplicate {
			sum.Skipped++
			logger.Info("batch.skip.duplicate", "path", s.Path)
			continue
		}
		if err := q.Enqueue(ctx, async.Job{Path: s.Path, Class: cfg.Class, SubmittedAt: time.Now()}); err != nil {
			q.Shutdown(context.Background())
			return nil, err
		}
	}
	q.Shutdown(context.Background())

	sort.Slice(sum.Outcomes, func(i, j int) bool { return sum.Outcomes[i].Path < sum.Outcomes[j].Path })
	for _, o := range sum.Outcomes {
		path, err := export.WriteRecordJSON(cfg.OutDir, o)
		if err != nil {
			return sum, err
		}
		sum.Files = append(sum.Files, path)
	}

	if cfg.XLSXPath != "" {
		b, err := export.NewService(logger).WorkbookXLSX(sum.Outcomes)
		if err != nil {
			return sum, err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.XLSXPath), 0o755); err != nil {
			return sum, err
		}
		if err := os.WriteFile(cfg.XLSXPath, b, 0o644); err != nil {
			return sum, fmt.Errorf("write %s: %w", cfg.XLSXPath, err)
		}
	}

	logger.Info("batch.ok",
		"dir", cfg.Dir,
		"found", sum.Found,
		"processed", sum.Processed,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"unforeseen", sum.Unforeseen,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return sum, nil
}
