package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/classify"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/extract"
	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/layout"
	"github.com/joseph-ayodele/docparse/internal/metrics"
	"github.com/joseph-ayodele/docparse/internal/schema"
	"github.com/joseph-ayodele/docparse/internal/textnorm"
)

// Detection is a classification result plus the literal template
// identifier found in the text of an unforeseen document, if any.
type Detection struct {
	classify.Result
	IdentifierHint string `json:"identifier_hint,omitempty"`
}

// Outcome is everything Process produced for one file.
type Outcome struct {
	RunID     string
	DocID     string
	Path      string
	Detection Detection
	Record    schema.Record
	Duration  time.Duration
}

// Processor coordinates layout loading, classification, normalization and
// extraction. It keeps no per-document state and is safe for concurrent use.
type Processor struct {
	logger       *slog.Logger
	provider     layout.Provider
	fingerprints *fingerprint.Extractor
	classifier   *classify.Classifier
	registry     *extract.Registry
	validator    *schema.Validator
	metrics      *metrics.Metrics
}

// NewProcessor wires a processor. provider is only needed by Process;
// validator and m may be nil.
func NewProcessor(
	logger *slog.Logger,
	provider layout.Provider,
	fingerprints *fingerprint.Extractor,
	classifier *classify.Classifier,
	registry *extract.Registry,
	validator *schema.Validator,
	m *metrics.Metrics,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if fingerprints == nil {
		fingerprints = fingerprint.NewExtractor(fingerprint.Config{})
	}
	if classifier == nil {
		classifier = classify.New(nil, classify.DefaultConfig())
	}
	if registry == nil {
		registry = extract.NewRegistry()
	}
	return &Processor{
		logger:       logger,
		provider:     provider,
		fingerprints: fingerprints,
		classifier:   classifier,
		registry:     registry,
		validator:    validator,
		metrics:      m,
	}
}

// Classify fingerprints doc and scores it against the profile store.
func (p *Processor) Classify(doc *layout.Document) classify.Result {
	return p.classifier.Classify(p.fingerprints.Compute(doc))
}

// Rank scores doc against every profile, best first.
func (p *Processor) Rank(doc *layout.Document) []classify.Candidate {
	return p.classifier.Rank(p.fingerprints.Compute(doc))
}

// Detect classifies doc and emits the detection event.
func (p *Processor) Detect(ctx context.Context, doc *layout.Document) Detection {
	start := time.Now()
	det := Detection{Result: p.Classify(doc)}
	if det.IsUnforeseen {
		det.IdentifierHint = p.registry.IdentifierHint(doc.FullText())
	}
	p.metrics.ObserveStage("classify", start)
	p.metrics.RecordClassification(det.TemplateID, det.IsUnforeseen)

	p.logger.Info("detect.template",
		"run_id", common.RunIDFromContext(ctx),
		"doc_id", docID(ctx, doc),
		"detected_template", det.TemplateID,
		"similarity_score", det.Score,
		"is_unforeseen", det.IsUnforeseen,
		"identifier_hint", det.IdentifierHint,
	)
	return det
}

// Extract runs the rule set of templateID (or the generic rule set of class
// when the template has none of that class) and returns the normalized
// record. It never fails; an empty document yields an all-null record.
func (p *Processor) Extract(ctx context.Context, doc *layout.Document, templateID string, class constants.DocClass) schema.Record {
	return p.extract(ctx, doc, p.registry.Select(templateID, class, false))
}

// Process loads the file at path, classifies it and extracts a record of
// class (ClassAuto follows the detected template). Only loading can fail.
func (p *Processor) Process(ctx context.Context, path string, class constants.DocClass) (*Outcome, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = common.WithRunID(ctx, runID)
	}
	id := common.DocIDFromContext(ctx)
	if id == "" {
		id = DocIDFromPath(path)
		ctx = common.WithDocID(ctx, id)
	}
	if p.provider == nil {
		return nil, common.NewAppError("CONFIG_ERROR", "processor has no layout provider", common.ErrInvalidInput)
	}

	loadStart := time.Now()
	doc, err := p.provider.Load(ctx, path)
	p.metrics.ObserveStage("layout", loadStart)
	if err != nil {
		p.metrics.RecordFailure("layout")
		common.ErrorEvent{
			Code:    common.CodeExtractionFail,
			Stage:   common.StageOCR,
			DocID:   id,
			Message: "layout load failed",
			Cause:   err,
		}.Log(p.logger)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	if doc.IsEmpty() {
		common.ErrorEvent{
			Code:    common.CodeOCRNoise,
			Stage:   common.StageOCR,
			DocID:   id,
			Message: "no extractable text",
		}.Log(p.logger)
	}

	det := p.Detect(ctx, doc)
	rs := p.registry.Select(det.TemplateID, class, det.IsUnforeseen)
	rec := p.extract(ctx, doc, rs)

	out := &Outcome{
		RunID:     runID,
		DocID:     id,
		Path:      path,
		Detection: det,
		Record:    rec,
		Duration:  time.Since(start),
	}
	p.logger.Info("processor.process.ok",
		"run_id", runID, "doc_id", id, "path", path,
		"template", det.TemplateID, "rule_set", rec.Template,
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

func (p *Processor) extract(ctx context.Context, doc *layout.Document, rs extract.RuleSet) schema.Record {
	start := time.Now()
	obs := &auditObserver{
		logger: p.logger,
		runID:  common.RunIDFromContext(ctx),
		docID:  docID(ctx, doc),
	}

	var (
		texts []string
		pages []layout.Page
	)
	if doc != nil {
		texts, pages = doc.Texts(), doc.Pages
	}
	text := textnorm.ForTemplate(rs.Name()).NormalizePages(texts)
	raw := extract.NewPipeline(obs).Run(rs, text, pages)
	rec := schema.NormalizeAudited(raw, schema.ForClass(rs.Class()), rs.Name(), obs)
	p.metrics.ObserveStage("extract", start)

	if p.validator != nil {
		if err := p.validator.Validate(rec); err != nil {
			common.ErrorEvent{
				Code:    common.CodeSchemaMismatch,
				Stage:   common.StageValidator,
				DocID:   obs.docID,
				Message: "record failed schema audit",
				Cause:   err,
			}.Log(p.logger)
		}
	}

	n := rec.FieldsExtracted()
	p.metrics.RecordExtraction(rs.Name(), n)
	p.logger.Info("processor.extract.ok",
		"run_id", obs.runID,
		"doc_id", obs.docID,
		"rule_set", rs.Name(),
		"schema", rec.Schema,
		"fields_extracted_count", n,
		"fields_missed", obs.missed,
	)
	return rec
}

// DocIDFromPath derives a document ID from a file name.
func DocIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func docID(ctx context.Context, doc *layout.Document) string {
	if id := common.DocIDFromContext(ctx); id != "" {
		return id
	}
	if doc != nil {
		return doc.ID
	}
	return ""
}

// auditObserver logs the per-field audit trail of one extraction.
type auditObserver struct {
	logger *slog.Logger
	runID  string
	docID  string
	missed int
}

func (o *auditObserver) FieldResolved(field string, strategy int, value any) {
	o.logger.Debug("auto_extract",
		"run_id", o.runID, "doc_id", o.docID,
		"field", field, "strategy", strategy, "value", value, "status", "success",
	)
}

func (o *auditObserver) FieldMissed(field string) {
	o.missed++
	o.logger.Debug("auto_extract",
		"run_id", o.runID, "doc_id", o.docID,
		"field", field, "status", "miss",
	)
}

func (o *auditObserver) FieldNormalized(field string, from, to any) {
	o.logger.Debug("normalize_field",
		"run_id", o.runID, "doc_id", o.docID,
		"field", field, "from", from, "to", to,
	)
}
