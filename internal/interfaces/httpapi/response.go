package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

// errorBody is the uniform failure reply.
type errorBody struct {
	Error         string   `json:"error"`
	Details       string   `json:"details,omitempty"`
	PartialErrors []string `json:"partialErrors,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Message    string
}

func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	writeJSON(ctx, w, mapped.HTTPStatus, errorBody{
		Error:   mapped.Message,
		Details: err.Error(),
	})
}

// writeFailure replies 500 with a caller-chosen message for upstream and
// internal failures. Client and configuration errors keep their own mapping.
func writeFailure(ctx context.Context, w http.ResponseWriter, message string, err error, partialErrors []string) {
	mapped := mapError(err)
	if mapped.HTTPStatus >= http.StatusInternalServerError && !errors.Is(err, usecase.ErrConfiguration) {
		mapped = mappedError{HTTPStatus: http.StatusInternalServerError, Message: message}
	}
	writeJSON(ctx, w, mapped.HTTPStatus, errorBody{
		Error:         mapped.Message,
		Details:       err.Error(),
		PartialErrors: partialErrors,
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(ctx, w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Message: "Invalid request"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Message: "Not found"}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Message: "Unauthorized"}
	case errors.Is(err, usecase.ErrConfiguration):
		return mappedError{HTTPStatus: http.StatusInternalServerError, Message: "Missing configuration"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Message: "Upstream service unavailable"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Message: "Internal server error"}
	}
}
