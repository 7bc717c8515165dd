package profiles

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/ingest"
	"github.com/joseph-ayodele/docparse/internal/layout"
)

// Builder turns labeled exemplar documents into profiles.
type Builder struct {
	provider  layout.Provider
	extractor *fingerprint.Extractor
	logger    *slog.Logger
}

func NewBuilder(provider layout.Provider, extractor *fingerprint.Extractor, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{provider: provider, extractor: extractor, logger: logger}
}

// Schema is the fingerprint layout of the profiles this builder produces.
func (b *Builder) Schema() fingerprint.Schema { return b.extractor.Schema() }

// BuildFromDocuments fingerprints docs and averages them. Nil documents are
// skipped; ok is false when nothing is left.
func (b *Builder) BuildFromDocuments(_ context.Context, templateID string, docs []*layout.Document) (Profile, bool) {
	fps := make([]fingerprint.Fingerprint, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		fps = append(fps, b.extractor.Compute(d))
	}
	return Build(templateID, fps)
}

// BuildStats summarizes a directory build.
type BuildStats struct {
	Templates int
	Built     int
	Skipped   int
	Documents int
	Failed    int
}

// BuildFromDirectory builds a store from a root/<template_id>/... tree.
// Exemplars that fail to load are logged and skipped; templates left without
// exemplars are absent from the store.
func (b *Builder) BuildFromDirectory(ctx context.Context, root string) (*Store, BuildStats, error) {
	start := time.Now()
	ex, err := ingest.WalkExemplars(ctx, root)
	if err != nil {
		return nil, BuildStats{}, err
	}

	var stats BuildStats
	store := NewStore(b.Schema())
	for _, id := range ex.TemplateIDs {
		stats.Templates++
		var docs []*layout.Document
		for _, src := range ex.Sources[id] {
			if src.Err != "" || src.Duplicate {
				continue
			}
			doc, err := b.provider.Load(ctx, src.Path)
			if err != nil {
				stats.Failed++
				b.logger.Warn("profiles.exemplar.load_failed", "template_id", id, "path", src.Path, "error", err)
				continue
			}
			docs = append(docs, doc)
		}
		stats.Documents += len(docs)

		p, ok := b.BuildFromDocuments(ctx, id, docs)
		if !ok {
			stats.Skipped++
			b.logger.Warn("profiles.build.skip", "template_id", id, "reason", "no exemplars")
			continue
		}
		store.put(p)
		stats.Built++
		b.logger.Info("profiles.build.ok", "template_id", id, "exemplars", len(docs), "top_fonts", p.TopFonts)
	}

	b.logger.Info("profiles.build.done",
		"root", root,
		"templates", stats.Templates,
		"built", stats.Built,
		"skipped", stats.Skipped,
		"documents", stats.Documents,
		"failed", stats.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return store, stats, nil
}
