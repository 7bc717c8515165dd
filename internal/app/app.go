// Package app assembles the document pipeline from configuration. The
// binaries under cmd/ share it.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/docparse/internal/classify"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/core"
	"github.com/joseph-ayodele/docparse/internal/extract"
	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/layout"
	"github.com/joseph-ayodele/docparse/internal/metrics"
	"github.com/joseph-ayodele/docparse/internal/profiles"
	"github.com/joseph-ayodele/docparse/internal/repository"
	"github.com/joseph-ayodele/docparse/internal/schema"
)

// NewLogger returns a JSON logger at the configured level.
func NewLogger(cfg *common.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// NewProvider dispatches PDFs to the PDF reader and .json files to the
// pre-extracted layout loader.
func NewProvider(logger *slog.Logger) layout.Provider {
	return layout.MultiProvider{ByExt: map[string]layout.Provider{
		"pdf":  layout.NewPDFProvider(layout.PDFConfig{}, logger),
		"json": layout.JSONProvider{},
	}}
}

// NewExtractor builds the fingerprint extractor, loading keyword groups from
// the configured file when one is set.
func NewExtractor(cfg *common.Config) (*fingerprint.Extractor, error) {
	fc := fingerprint.Config{
		HeaderBand: cfg.Fingerprint.HeaderBand,
		FooterBand: cfg.Fingerprint.FooterBand,
	}
	if cfg.Fingerprint.KeywordsFile != "" {
		groups, err := fingerprint.LoadKeywordGroups(cfg.Fingerprint.KeywordsFile)
		if err != nil {
			return nil, common.NewAppError("CONFIG_ERROR", "load keyword groups", err)
		}
		fc.Keywords = groups
	}
	return fingerprint.NewExtractor(fc), nil
}

// ClassifierConfig maps the configured constants onto the classifier's.
func ClassifierConfig(cfg *common.Config) classify.Config {
	c := classify.DefaultConfig()
	c.Threshold = cfg.Classifier.Threshold
	c.FontBonus = cfg.Classifier.FontBonus
	c.IdentityPenalty = cfg.Classifier.IdentityPenalty
	c.FormBonus = cfg.Classifier.FormBonus
	return c
}

// OpenDB opens the configured database.
func OpenDB(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		return repository.OpenSQLite(cfg.Database.SQLitePath, logger)
	}
	return repository.OpenPostgres(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
}

// LoadProfiles reads the profile store from the database when repo is set,
// otherwise from the JSON artifact at path.
func LoadProfiles(ctx context.Context, repo profiles.Repository, path string, s fingerprint.Schema) (*profiles.Store, error) {
	if repo != nil {
		store, err := repo.Load(ctx, s)
		if err != nil {
			return nil, common.WrapError(err, "load profiles from database")
		}
		return store, nil
	}
	store, err := profiles.LoadFile(path, s)
	if err != nil {
		return nil, fmt.Errorf("load profiles %s: %w", path, err)
	}
	return store, nil
}

// Pipeline is a ready-to-use processor plus the parts callers reach into.
type Pipeline struct {
	Processor *core.Processor
	Extractor *fingerprint.Extractor
	Provider  layout.Provider
	Registry  *extract.Registry
	Metrics   *metrics.Metrics
}

// checkClassifierSlots rejects keyword groups that define none of the
// identity slots, since every document would then take the identity
// penalty. Other missing slots are logged.
func checkClassifierSlots(cc classify.Config, s fingerprint.Schema, logger *slog.Logger) error {
	identity, form := cc.MissingSlots(s)
	if len(cc.IdentitySlots) > 0 && len(identity) == len(cc.IdentitySlots) {
		return common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("keyword groups define none of the identity slots %v", cc.IdentitySlots), common.ErrInvalidInput)
	}
	if len(identity) > 0 {
		logger.Warn("classify.slots.missing", "kind", "identity", "slots", identity)
	}
	if len(form) > 0 {
		logger.Warn("classify.slots.missing", "kind", "form", "slots", form)
	}
	return nil
}

// NewPipeline wires a processor around store. m may be nil.
func NewPipeline(cfg *common.Config, store *profiles.Store, fpx *fingerprint.Extractor, provider layout.Provider, m *metrics.Metrics, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	validator, err := schema.NewValidator(schema.All()...)
	if err != nil {
		return nil, fmt.Errorf("compile record schemas: %w", err)
	}
	cc := ClassifierConfig(cfg)
	if err := checkClassifierSlots(cc, fpx.Schema(), logger); err != nil {
		return nil, err
	}
	reg := extract.NewRegistry()
	proc := core.NewProcessor(logger, provider, fpx, classify.New(store, cc), reg, validator, m)
	return &Pipeline{Processor: proc, Extractor: fpx, Provider: provider, Registry: reg, Metrics: m}, nil
}
