package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/mimir-aip/carprice/pkg/presenter"
)

// maxRequestBytes bounds estimate request bodies
const maxRequestBytes = 64 << 10

// EstimateResponse is the JSON body of a successful estimate
type EstimateResponse struct {
	ID        string                   `json:"id"`
	Price     float64                  `json:"price"`
	Unit      string                   `json:"unit"`
	Display   string                   `json:"display"`
	ModelType models.ModelType         `json:"model_type"`
	At        time.Time                `json:"at"`
	Inputs    models.DerivedFeatureSet `json:"inputs"`
	Row       *models.AlignedRow       `json:"row,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if s.modelInfo != nil {
		info := s.modelInfo()
		info.PriceUnit = s.service.Unit()
		body["model"] = info
	}
	writeJSONResponse(w, http.StatusOK, body)
}

// handleReady reports whether the model is loaded and can serve estimates
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if ok, failure := s.service.Available(); !ok {
		writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  failure.Message,
		})
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleFields returns the input field table
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	writeSuccessResponse(w, map[string]any{
		"fields": s.service.Fields(),
		"unit":   s.service.Unit(),
	})
}

// handleSchema returns the resolved expected schema
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Schema()
	if err != nil {
		if failure, ok := models.AsFailure(err); ok {
			writeFailureResponse(w, failure)
			return
		}
		writeInternalServerErrorResponse(w, err.Error())
		return
	}
	writeSuccessResponse(w, view)
}

// handleEstimate prices one vehicle from a JSON request
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req models.EstimateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeBadRequestResponse(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	specs := s.service.Fields()
	if err := req.Validate(specs); err != nil {
		writeFailureResponse(w, models.NewFailure(models.FailureInvalidInput, "Some fields are out of range.", err))
		return
	}

	result, err := s.service.Estimate(req.ToRaw(specs))
	if err != nil {
		failure, ok := models.AsFailure(err)
		if !ok {
			writeInternalServerErrorResponse(w, err.Error())
			return
		}
		writeFailureResponse(w, failure)
		return
	}

	s.logger.Debug("estimate served",
		logging.RequestID(RequestIDFrom(r.Context())),
		logging.String("result_id", result.ID),
		logging.Component("http"))

	resp := EstimateResponse{
		ID:        result.ID,
		Price:     result.Price,
		Unit:      result.Unit,
		Display:   presenter.Headline(result),
		ModelType: result.ModelType,
		At:        result.At,
		Inputs:    result.Inputs,
	}
	if req.Debug {
		resp.Row = result.Row
	}
	writeSuccessResponse(w, resp)
}
