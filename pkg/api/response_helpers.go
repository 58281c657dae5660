package api

import (
	"encoding/json"
	"net/http"

	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/mimir-aip/carprice/pkg/presenter"
)

// writeJSONResponse writes a JSON response with the given status code
func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes an error response with the given status code and message
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, map[string]any{
		"error":  message,
		"status": "error",
	})
}

// writeSuccessResponse writes a success response with the given data
func writeSuccessResponse(w http.ResponseWriter, data any) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// writeBadRequestResponse writes a 400 Bad Request response
func writeBadRequestResponse(w http.ResponseWriter, message string) {
	writeErrorResponse(w, http.StatusBadRequest, message)
}

// writeInternalServerErrorResponse writes a 500 Internal Server Error response
func writeInternalServerErrorResponse(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal Server Error"
	}
	writeErrorResponse(w, http.StatusInternalServerError, message)
}

// failureStatus maps a failure kind to an HTTP status code
func failureStatus(kind models.FailureKind) int {
	switch {
	case kind == models.FailureInvalidInput:
		return http.StatusBadRequest
	case kind.Setup():
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeFailureResponse writes a classified failure
func writeFailureResponse(w http.ResponseWriter, failure *models.Failure) {
	body := map[string]any{
		"status":  "error",
		"error":   failure.Message,
		"kind":    failure.Kind,
		"setup":   failure.Kind.Setup(),
		"details": failure.Detail,
	}
	if tip := presenter.Tip(failure.Kind); tip != "" {
		body["tip"] = tip
	}
	writeJSONResponse(w, failureStatus(failure.Kind), body)
}
