package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/export"
	"github.com/octobees/geosearch/internal/metrics"
	"github.com/octobees/geosearch/internal/repository"
	"github.com/octobees/geosearch/internal/session"
)

// FieldExtractor returns the model's labeled answer for a query.
type FieldExtractor interface {
	Extract(ctx context.Context, input string) (string, error)
}

// PlaceFinder returns every place matching the extracted fields.
type PlaceFinder interface {
	Search(ctx context.Context, fields ExtractedFields) ([]entity.PlaceRecord, error)
}

// PlaceEnricher completes places with their contact details.
type PlaceEnricher interface {
	Enrich(ctx context.Context, places []entity.PlaceRecord) ([]entity.EnrichedPlace, error)
}

// CatalogWriter stores the places of a completed search.
type CatalogWriter interface {
	SaveSearch(ctx context.Context, run SearchRun, places []entity.EnrichedPlace) (repository.UpsertResult, error)
}

// Orchestrator runs the search pipeline for a submitted query.
type Orchestrator struct {
	extractor FieldExtractor
	parse     func(string) ExtractedFields
	searcher  PlaceFinder
	enricher  PlaceEnricher
	catalog   CatalogWriter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithCatalog saves every successful search into the catalogue.
func WithCatalog(catalog CatalogWriter) OrchestratorOption {
	return func(o *Orchestrator) {
		o.catalog = catalog
	}
}

// WithParser replaces the labeled-line field parser.
func WithParser(parse func(string) ExtractedFields) OrchestratorOption {
	return func(o *Orchestrator) {
		if parse != nil {
			o.parse = parse
		}
	}
}

// WithOrchestratorMetrics records search outcomes.
func WithOrchestratorMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithOrchestratorLogger sets the orchestrator logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator wires the pipeline stages.
func NewOrchestrator(extractor FieldExtractor, searcher PlaceFinder, enricher PlaceEnricher, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		extractor: extractor,
		parse:     ParseFields,
		searcher:  searcher,
		enricher:  enricher,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit runs a search for query and records the outcome in state.
// On failure the previous result of the session stays available.
func (o *Orchestrator) Submit(ctx context.Context, state *session.State, query string) (*session.Result, error) {
	query = strings.TrimSpace(query)
	generation := state.Begin(query)

	result, err := o.Run(ctx, query)
	if err != nil {
		state.Fail(generation, err)
		return nil, err
	}
	if !state.Complete(generation, result) {
		o.logger.Info("search superseded by a newer submission", "session_id", state.ID(), "query", query)
	}
	return result, nil
}

// Run executes the pipeline without touching any session.
func (o *Orchestrator) Run(ctx context.Context, query string) (result *session.Result, err error) {
	start := o.now()
	defer func() {
		o.metrics.IncSearch(Outcome(err))
		if err != nil {
			o.logger.Warn("search failed", "query", query, "outcome", Outcome(err), "error", err)
			return
		}
		o.logger.Info("search completed", "query", query, "rows", result.Table.Len(), "duration", o.now().Sub(start))
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}

	text, err := o.extractor.Extract(ctx, query)
	if err != nil {
		return nil, err
	}
	fields := o.parse(text)
	if !fields.Complete() {
		o.logger.Debug("extraction incomplete", "query", query, "response", text)
		return nil, &ExtractionIncompleteError{Fields: fields}
	}

	places, err := o.searcher.Search(ctx, fields)
	if err != nil {
		return nil, err
	}
	o.metrics.AddPlaces(len(places))

	enriched, err := o.enricher.Enrich(ctx, places)
	if err != nil {
		return nil, err
	}

	table := BuildTable(enriched)
	payloads, err := export.ExportAll(table)
	if err != nil {
		return nil, err
	}

	result = &session.Result{
		RunID:        uuid.New(),
		Query:        query,
		BusinessType: fields.BusinessType,
		City:         fields.City,
		Country:      fields.Country,
		Table:        table,
		Payloads:     payloads,
		CompletedAt:  o.now(),
	}
	o.saveToCatalog(ctx, result, fields, enriched)
	return result, nil
}

func (o *Orchestrator) saveToCatalog(ctx context.Context, result *session.Result, fields ExtractedFields, places []entity.EnrichedPlace) {
	if o.catalog == nil {
		return
	}
	run := SearchRun{ID: result.RunID, Fields: fields, At: result.CompletedAt}
	summary, err := o.catalog.SaveSearch(ctx, run, places)
	if err != nil {
		o.logger.Error("catalogue upsert failed", "search_run_id", run.ID, "error", err)
		return
	}
	o.logger.Info("catalogue updated", "search_run_id", run.ID, "inserted", summary.Inserted, "updated", summary.Updated)
}
