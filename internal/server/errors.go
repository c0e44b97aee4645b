// Package server provides the HTTP builder UI and its JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/intake"
	"github.com/jonathan/cv-builder/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		parseErr   *intake.ParseError
		apiErr     *intake.APICallError
		persistErr *store.PersistError
		exportErr  *export.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation),
		errors.Is(err, editor.ErrInvalidValue),
		errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, intake.ErrInvalidAnswers):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrUnknownSection):
		return http.StatusNotFound
	case errors.Is(err, intake.ErrBusy), errors.Is(err, intake.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, intake.ErrNoCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, intake.ErrNoJSON),
		errors.As(err, &parseErr),
		errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.As(err, &persistErr), errors.As(err, &exportErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
