// Package app assembles the search pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/octobees/geosearch/internal/clients"
	"github.com/octobees/geosearch/internal/config"
	"github.com/octobees/geosearch/internal/metrics"
	"github.com/octobees/geosearch/internal/service"
)

// NewCompleter returns the language model client selected by LLM_PROVIDER.
func NewCompleter(ctx context.Context, cfg *config.Config, httpClient *http.Client, m *metrics.Metrics) (service.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderGroq, config.ProviderOpenAI:
		return clients.NewOpenAICompleter(httpClient, cfg.LLMBaseURL, cfg.LLMAPIKey(), cfg.LLMModel, m), nil
	case config.ProviderGemini:
		return clients.NewGeminiCompleter(ctx, httpClient, cfg.LLMBaseURL, cfg.LLMAPIKey(), cfg.LLMModel, m)
	default:
		return nil, &config.ConfigurationError{Reason: fmt.Sprintf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)}
	}
}

// NewOrchestrator wires extractor, searcher and enricher against the configured APIs.
func NewOrchestrator(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, opts ...service.OrchestratorOption) (*service.Orchestrator, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	completer, err := NewCompleter(ctx, cfg, httpClient, m)
	if err != nil {
		return nil, err
	}
	places := clients.NewPlacesClient(httpClient, cfg.PlacesBaseURL, cfg.GoogleMapsAPIKey, m)

	extractor := service.NewExtractor(completer, logger)
	searcher := service.NewPlaceSearcher(places,
		service.WithPageTokenDelay(cfg.PageTokenDelay),
		service.WithSearchLogger(logger),
	)
	enricher := service.NewDetailEnricher(places,
		service.WithWorkers(cfg.DetailWorkers),
		service.WithRateLimit(cfg.DetailRateLimit.Requests, cfg.DetailRateLimit.Interval),
		service.WithEnricherMetrics(m),
		service.WithEnricherLogger(logger),
	)

	opts = append([]service.OrchestratorOption{
		service.WithOrchestratorMetrics(m),
		service.WithOrchestratorLogger(logger),
	}, opts...)
	return service.NewOrchestrator(extractor, searcher, enricher, opts...), nil
}
