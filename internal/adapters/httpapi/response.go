package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andrescamacho/colonysim-go/internal/adapters/api"
	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
	"github.com/andrescamacho/colonysim-go/internal/domain/shared"
)

// Envelope is the standard response body
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError is an error with its HTTP status
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: "BAD_REQUEST", message: message}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	apiErr := classify(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.status)
	_ = json.NewEncoder(w).Encode(Envelope{Error: &ErrorBody{Code: apiErr.code, Message: apiErr.message}})
}

// classify maps application errors onto HTTP statuses
func classify(err error) *apiError {
	var (
		known        *apiError
		notFound     *shared.CharacterNotFoundError
		missingToken *shared.MissingTokenError
		validation   *shared.ValidationError
		unknown      *planetary.UnknownRecipeError
		fetch        *planetary.SnapshotFetchError
	)
	switch {
	case errors.As(err, &known):
		return known
	case errors.As(err, &notFound), errors.As(err, &unknown):
		return &apiError{status: http.StatusNotFound, code: "NOT_FOUND", message: err.Error()}
	case errors.As(err, &missingToken):
		return &apiError{status: http.StatusUnauthorized, code: "MISSING_TOKEN", message: err.Error()}
	case errors.As(err, &validation):
		return &apiError{status: http.StatusBadRequest, code: "VALIDATION_ERROR", message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return &apiError{status: http.StatusGatewayTimeout, code: "TIMEOUT", message: err.Error()}
	case errors.Is(err, api.ErrCircuitOpen), errors.As(err, &fetch):
		return &apiError{status: http.StatusBadGateway, code: "UPSTREAM_UNAVAILABLE", message: err.Error()}
	default:
		return &apiError{status: http.StatusInternalServerError, code: "INTERNAL_ERROR", message: "an unexpected error occurred"}
	}
}
