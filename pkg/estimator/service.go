// Package estimator runs one price estimate end to end: derive features,
// align them to the model's columns, predict, and classify any failure.
package estimator

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mimir-aip/carprice/pkg/features"
	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/mlmodel"
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/mimir-aip/carprice/pkg/schema"
)

// Model is the part of a loaded model the estimator uses
type Model interface {
	schema.FeatureNamer
	Predict(row *models.AlignedRow) (float64, error)
	Type() models.ModelType
}

// ModelProvider returns the shared model, loading it on first call
type ModelProvider func() (Model, error)

// FromHolder adapts a model holder to a provider
func FromHolder(h *mlmodel.Holder) ModelProvider {
	return func() (Model, error) {
		handle, err := h.Get()
		if err != nil {
			return nil, err
		}
		return handle, nil
	}
}

// Options configures a Service
type Options struct {
	Models         ModelProvider
	Deriver        *features.Deriver
	Aligner        *schema.Aligner
	FallbackSchema []string
	BrandField     bool
	FallbackBrands []string
	PriceUnit      string
	Logger         *logging.Logger
}

// Service produces price estimates. It is safe for concurrent use; the only
// shared state is the read-only model and the schema resolved from it.
type Service struct {
	models         ModelProvider
	deriver        *features.Deriver
	aligner        *schema.Aligner
	fallbackSchema []string
	brandField     bool
	fallbackBrands []string
	unit           string
	logger         *logging.FieldLogger
	now            func() time.Time

	schemaOnce   sync.Once
	schema       models.ExpectedSchema
	schemaSource schema.Source
	schemaErr    error

	brandWarnOnce sync.Once
}

// NewService creates an estimator
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}
	deriver := opts.Deriver
	if deriver == nil {
		deriver = features.NewDeriver()
	}
	aligner := opts.Aligner
	if aligner == nil {
		aligner = schema.NewAligner(schema.Options{Logger: logger})
	}

	return &Service{
		models:         opts.Models,
		deriver:        deriver,
		aligner:        aligner,
		fallbackSchema: append([]string(nil), opts.FallbackSchema...),
		brandField:     opts.BrandField,
		fallbackBrands: append([]string(nil), opts.FallbackBrands...),
		unit:           opts.PriceUnit,
		logger:         logger.WithFields(logging.Component("estimator")),
		now:            time.Now,
	}
}

// Unit returns the price unit attached to every result
func (s *Service) Unit() string {
	return s.unit
}

// Estimate prices one vehicle. Any error returned is a *models.Failure.
func (s *Service) Estimate(raw models.RawFeatureSet) (*models.PredictionResult, error) {
	start := time.Now()
	result, failure := s.estimate(raw)
	estimateDuration.Observe(time.Since(start).Seconds())

	if failure != nil {
		estimateTotal.WithLabelValues(string(failure.Kind)).Inc()
		fields := []logging.Field{logging.String("kind", string(failure.Kind))}
		if failure.Kind.Setup() {
			s.logger.Error(failure.Message, failure.Err, fields...)
		} else {
			s.logger.Warn(failure.Message, append(fields, logging.String("detail", failure.Detail))...)
		}
		return nil, failure
	}

	estimateTotal.WithLabelValues("success").Inc()
	estimatePrice.Observe(result.Price)
	s.logger.Info("estimate complete",
		logging.RequestID(result.ID),
		logging.Float("price", result.Price),
		logging.String("unit", result.Unit))
	return result, nil
}

func (s *Service) estimate(raw models.RawFeatureSet) (*models.PredictionResult, *models.Failure) {
	model, failure := s.model()
	if failure != nil {
		return nil, failure
	}

	expected, _, err := s.resolveSchema(model)
	if err != nil {
		return nil, models.NewFailure(models.FailureSchemaUnavailable,
			"The model does not list the features it was trained on and no fallback schema is configured.", err)
	}

	derived := s.deriver.Derive(raw)

	row, err := s.aligner.Align(derived, expected)
	if err != nil {
		return nil, classifyAlignError(err)
	}
	if err := row.Conforms(expected); err != nil {
		return nil, models.NewFailure(models.FailureTypeMismatch, "The input could not be arranged in the model's column layout.", err)
	}

	price, err := predict(model, row)
	if err != nil {
		return nil, models.NewFailure(models.FailurePrediction, "The model could not score this input.", err)
	}

	return &models.PredictionResult{
		ID:        uuid.New().String(),
		Price:     price,
		Unit:      s.unit,
		ModelType: model.Type(),
		Inputs:    derived,
		Row:       row,
		At:        s.now().UTC(),
	}, nil
}

func (s *Service) model() (Model, *models.Failure) {
	if s.models == nil {
		return nil, models.NewFailure(models.FailureModelUnavailable, "No price model is configured.", nil)
	}
	model, err := s.models()
	if err == nil && model == nil {
		err = errors.New("model provider returned no model")
	}
	if err != nil {
		return nil, models.NewFailure(models.FailureModelUnavailable,
			"Model file not found or unreadable. Prediction is disabled until the model is available.", err)
	}
	return model, nil
}

// resolveSchema resolves the expected schema once per model
func (s *Service) resolveSchema(model Model) (models.ExpectedSchema, schema.Source, error) {
	s.schemaOnce.Do(func() {
		s.schema, s.schemaSource, s.schemaErr = schema.ResolveSchema(model, s.fallbackSchema)
		if s.schemaErr == nil {
			s.logger.Info("expected schema resolved",
				logging.String("source", string(s.schemaSource)),
				logging.Int("columns", s.schema.Len()))
		}
	})
	return s.schema, s.schemaSource, s.schemaErr
}

func classifyAlignError(err error) *models.Failure {
	switch {
	case errors.Is(err, schema.ErrSchemaUnavailable):
		return models.NewFailure(models.FailureSchemaUnavailable, "The model's expected columns are unavailable.", err)
	case errors.Is(err, schema.ErrTypeMismatch), errors.Is(err, schema.ErrMisaligned):
		return models.NewFailure(models.FailureTypeMismatch, "This input could not be encoded for the model. Try different values.", err)
	default:
		return models.NewFailure(models.FailurePrediction, "The input could not be prepared for the model.", err)
	}
}

// predict calls the model and turns panics and non-finite output into errors
func predict(model Model, row *models.AlignedRow) (price float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()

	price, err = model.Predict(row)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("model returned a non-finite price: %v", price)
	}
	return price, nil
}
