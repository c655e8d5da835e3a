package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/cv-optimizer/internal/pipeline"
)

// StatusClientClosedRequest is the non-standard status for a request the client
// abandoned.
const StatusClientClosedRequest = 499

// HTTPStatus returns the appropriate HTTP status code for a pipeline error
func HTTPStatus(err error) int {
	var (
		inputErr      *pipeline.InputError
		extractionErr *pipeline.ExtractionError
		searchErr     *pipeline.SearchError
		fetchErr      *pipeline.FetchError
		scoringErr    *pipeline.ScoringError
		rewriteErr    *pipeline.RewriteError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &extractionErr), errors.As(err, &searchErr), errors.As(err, &fetchErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &scoringErr), errors.As(err, &rewriteErr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
