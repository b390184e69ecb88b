// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/competitor-engine/internal/ingest"
	"github.com/pdiddy/competitor-engine/internal/report"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

// AppError is an error with the HTTP status and message sent to the client.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// MapError maps a domain error to an AppError with an appropriate HTTP status.
// Unrecognised errors become 500 with the error text as the message.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var cfgErr *types.ConfigurationError
	if errors.As(err, &cfgErr) {
		return NewAppError(http.StatusInternalServerError, cfgErr.Error(), err)
	}

	var extractErr *ingest.ExtractionError
	var decodeErr *ingest.DecodeError
	if errors.As(err, &extractErr) || errors.As(err, &decodeErr) {
		return NewAppError(http.StatusUnprocessableEntity, err.Error(), err)
	}

	if errors.Is(err, report.ErrInvalidName) || errors.Is(err, fs.ErrNotExist) {
		return NewAppError(http.StatusNotFound, "report not found", err)
	}

	return NewAppError(http.StatusInternalServerError, err.Error(), err)
}

func handleError(c *gin.Context, err error) {
	appErr := MapError(err)
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
}
