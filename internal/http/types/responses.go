// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/logging"
)

const internalErrorMessage = "Internal server error"

// Response is the envelope of every API reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// StatusFromKind maps an error kind to the HTTP status it is reported with.
func StatusFromKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// ErrorResponse builds the envelope for err, internal causes are never exposed.
func ErrorResponse(err error) (int, *Response) {
	kind := apperror.KindOf(err)
	status := StatusFromKind(kind)

	if kind == apperror.KindInternal {
		return status, &Response{Message: internalErrorMessage}
	}

	message := err.Error()

	var e *apperror.Error
	if errors.As(err, &e) {
		message = e.Message
	}

	return status, &Response{Message: message}
}

func WriteJSON(w http.ResponseWriter, status int, body any, logger logging.LoggerInterface) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("failed to encode response: %v", err)
	}
}

func WriteData(w http.ResponseWriter, status int, data any, logger logging.LoggerInterface) {
	WriteJSON(w, status, &Response{Success: true, Data: data}, logger)
}

// WriteResult writes a successful envelope carrying both a message and data.
func WriteResult(w http.ResponseWriter, status int, message string, data any, logger logging.LoggerInterface) {
	WriteJSON(w, status, &Response{Success: true, Message: message, Data: data}, logger)
}

func WriteMessage(w http.ResponseWriter, status int, message string, logger logging.LoggerInterface) {
	WriteJSON(w, status, &Response{Success: status < http.StatusBadRequest, Message: message}, logger)
}

// WriteError reports err with its mapped status and logs internal failures.
func WriteError(w http.ResponseWriter, err error, logger logging.LoggerInterface) {
	status, body := ErrorResponse(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("request failed: %v", err)
	}

	WriteJSON(w, status, body, logger)
}

// DecodeJSON reads a JSON request body, malformed bodies are validation errors.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.Validation("Invalid request body")
	}
	return nil
}
