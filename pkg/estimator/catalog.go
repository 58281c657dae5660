package estimator

import (
	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/mimir-aip/carprice/pkg/schema"
)

// SchemaView describes the resolved schema for diagnostics
type SchemaView struct {
	Columns models.ExpectedSchema `json:"columns"`
	Source  schema.Source         `json:"source"`
	Brands  BrandOptions          `json:"brands"`
}

// BrandOptions is the brand dropdown content and where it came from
type BrandOptions struct {
	Values     []string `json:"values"`
	Discovered bool     `json:"discovered"`
}

// Available reports whether the model loads. It triggers the load.
func (s *Service) Available() (bool, *models.Failure) {
	_, failure := s.model()
	return failure == nil, failure
}

// Schema returns the expected schema the service aligns to
func (s *Service) Schema() (*SchemaView, error) {
	model, failure := s.model()
	if failure != nil {
		return nil, failure
	}
	expected, source, err := s.resolveSchema(model)
	if err != nil {
		return nil, models.NewFailure(models.FailureSchemaUnavailable,
			"The model does not list the features it was trained on and no fallback schema is configured.", err)
	}
	return &SchemaView{Columns: expected, Source: source, Brands: s.Brands()}, nil
}

// Brands returns the brand options: the values of the schema's Brand_*
// indicator columns when there are any, else the configured fallback list.
func (s *Service) Brands() BrandOptions {
	if model, failure := s.model(); failure == nil {
		if expected, _, err := s.resolveSchema(model); err == nil {
			if found := s.aligner.Domain(expected, models.FieldBrand); len(found) > 0 {
				return BrandOptions{Values: found, Discovered: true}
			}
		}
	}

	brandFallbackTotal.Inc()
	s.brandWarnOnce.Do(func() {
		s.logger.Warn("brand columns not found in the model schema, using fallback list",
			logging.Strings("brands", s.fallbackBrands))
	})
	return BrandOptions{Values: append([]string(nil), s.fallbackBrands...)}
}

// Fields returns the input field table for the current year, including the
// brand field when it is enabled.
func (s *Service) Fields() []models.FieldSpec {
	var brands []string
	if s.brandField {
		brands = s.Brands().Values
	}
	return models.VehicleFields(s.deriver.CurrentYear(), brands)
}
