package models

import (
	"errors"
	"fmt"
	"time"
)

// FailureKind classifies why an estimate could not be produced
type FailureKind string

const (
	FailureModelUnavailable  FailureKind = "model_unavailable"
	FailureSchemaUnavailable FailureKind = "schema_unavailable"
	FailureTypeMismatch      FailureKind = "type_mismatch"
	FailurePrediction        FailureKind = "prediction_error"
	FailureInvalidInput      FailureKind = "invalid_input"
)

// Setup reports whether the failure comes from how the service was set up
// rather than from the values in one request.
func (k FailureKind) Setup() bool {
	return k == FailureModelUnavailable || k == FailureSchemaUnavailable
}

// Title returns a short heading for display
func (k FailureKind) Title() string {
	switch k {
	case FailureModelUnavailable:
		return "Model unavailable"
	case FailureSchemaUnavailable:
		return "Model schema unavailable"
	case FailureTypeMismatch:
		return "Input could not be encoded"
	case FailurePrediction:
		return "Prediction failed"
	case FailureInvalidInput:
		return "Invalid input"
	default:
		return "Estimate failed"
	}
}

// Failure is a classified estimate error with a user-facing message
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
	Err     error       `json:"-"`
}

// NewFailure wraps err in a failure of the given kind
func NewFailure(kind FailureKind, message string, err error) *Failure {
	f := &Failure{Kind: kind, Message: message, Err: err}
	if err != nil {
		f.Detail = err.Error()
	}
	return f
}

// Error implements the error interface
func (f *Failure) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", f.Kind, f.Message, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap returns the underlying error
func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from err
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// PredictionResult is a successful estimate
type PredictionResult struct {
	ID        string            `json:"id"`
	Price     float64           `json:"price"`
	Unit      string            `json:"unit"`
	ModelType ModelType         `json:"model_type"`
	Inputs    DerivedFeatureSet `json:"inputs"`
	Row       *AlignedRow       `json:"row"`
	At        time.Time         `json:"at"`
}

// Display renders the price rounded to two decimals with its unit
func (r *PredictionResult) Display() string {
	return fmt.Sprintf("%.2f %s", r.Price, r.Unit)
}
