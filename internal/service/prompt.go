package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tyler-sommer/stick"
)

// Completer sends a single-turn prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const extractionTemplate = `Identify and extract the following information from the input:
- Business type or service: Identify the type of business, service, or help required based on the context. For example, if the input mentions an item like 'AC', infer 'AC shop'. If it mentions 'Laptop', infer 'Laptop shop'. If the input mentions a need for police, ambulance, or emergency help, infer 'Police service', 'Ambulance service', etc. Generalize for any item or service mentioned.
- City: Extract the name of the city or region mentioned.
- Country: Extract the name of the country mentioned.

Input: {{ input }}

Output:
Business type or service: <business_or_service>
City: <city>
Country: <country>`

// Extractor turns free-form text into the model's labeled three-line answer.
type Extractor struct {
	completer Completer
	env       *stick.Env
	logger    *slog.Logger
}

// NewExtractor creates an extractor backed by the given completer.
func NewExtractor(completer Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: completer, env: stick.New(nil), logger: logger}
}

// Prompt renders the extraction prompt for the given input.
func (e *Extractor) Prompt(input string) (string, error) {
	var out strings.Builder
	vars := map[string]stick.Value{"input": input}
	if err := e.env.Execute(extractionTemplate, &out, vars); err != nil {
		return "", fmt.Errorf("render extraction prompt: %w", err)
	}
	return out.String(), nil
}

// Extract asks the model for the business type, city and country in input.
// The returned text is trimmed; its format is not guaranteed.
func (e *Extractor) Extract(ctx context.Context, input string) (string, error) {
	prompt, err := e.Prompt(input)
	if err != nil {
		return "", err
	}
	text, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtractionRequest, err)
	}
	text = strings.TrimSpace(text)
	e.logger.Debug("extraction completed", "input", input, "response", text)
	return text, nil
}
