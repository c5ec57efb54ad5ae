package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/octobees/geosearch/internal/clients"
)

var (
	// ErrMissingQuery is returned when the submitted text is empty or whitespace.
	ErrMissingQuery = errors.New("missing search query")
	// ErrNoResults is returned when every Text Search page was empty.
	ErrNoResults = errors.New("no places found")
	// ErrExtractionRequest marks a failed call to the language model.
	ErrExtractionRequest = errors.New("extraction request failed")
)

// User-facing messages shown for each failure category.
const (
	MessageMissingQuery         = "Please provide a valid search query."
	MessageExtractionIncomplete = "Could not extract all required information. Please refine your query."
	MessageTimeout              = "The search timed out. Please try again."
	MessageCanceled             = "The search was canceled before it finished."
	MessageExtractionRequest    = "The extraction request failed. Please try again later."
	MessageNoResults            = "No data found. Please refine your query."
	MessageUnexpected           = "Something went wrong. Please try again later."
)

// ExtractionIncompleteError reports which fields the model left empty.
type ExtractionIncompleteError struct {
	Fields ExtractedFields
}

// Error implements the error interface.
func (e *ExtractionIncompleteError) Error() string {
	return fmt.Sprintf("extraction incomplete: missing %s", strings.Join(e.Fields.Missing(), ", "))
}

// UserMessage maps a pipeline error onto the message shown to the user.
func UserMessage(err error) string {
	var (
		incomplete *ExtractionIncompleteError
		httpErr    *clients.HTTPStatusError
		apiErr     *clients.APIStatusError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingQuery):
		return MessageMissingQuery
	case errors.As(err, &incomplete):
		return fmt.Sprintf("%s Missing: %s.", MessageExtractionIncomplete, strings.Join(incomplete.Fields.Missing(), ", "))
	case errors.Is(err, ErrExtractionRequest):
		return MessageExtractionRequest
	case errors.Is(err, ErrNoResults):
		return MessageNoResults
	case errors.As(err, &httpErr):
		return httpErr.Error()
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return MessageTimeout
	case errors.Is(err, context.Canceled):
		return MessageCanceled
	default:
		return MessageUnexpected
	}
}

// Outcome labels an error for metrics and logs.
func Outcome(err error) string {
	var (
		incomplete *ExtractionIncompleteError
		httpErr    *clients.HTTPStatusError
		apiErr     *clients.APIStatusError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingQuery):
		return "missing_query"
	case errors.As(err, &incomplete):
		return "extraction_incomplete"
	case errors.Is(err, ErrExtractionRequest):
		return "extraction_failed"
	case errors.Is(err, ErrNoResults):
		return "no_results"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport_error"
	}
}
