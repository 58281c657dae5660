package schema

import (
	"fmt"

	"github.com/mimir-aip/carprice/pkg/models"
)

// Source tells where a resolved schema came from
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// FeatureNamer is implemented by models that may report their training
// columns.
type FeatureNamer interface {
	FeatureNames() ([]string, bool)
}

// ResolveSchema asks the model for its column names and falls back to the
// configured list. It returns ErrSchemaUnavailable when neither is present.
func ResolveSchema(model FeatureNamer, fallback []string) (models.ExpectedSchema, Source, error) {
	if model != nil {
		if names, ok := model.FeatureNames(); ok && len(names) > 0 {
			schema := models.NewExpectedSchema(names)
			if err := schema.Validate(); err != nil {
				return models.ExpectedSchema{}, SourceModel, fmt.Errorf("%w: model feature names: %v", ErrSchemaUnavailable, err)
			}
			return schema, SourceModel, nil
		}
	}

	if len(fallback) == 0 {
		return models.ExpectedSchema{}, "", fmt.Errorf("%w: model does not expose feature names and no fallback schema is configured", ErrSchemaUnavailable)
	}

	schema := models.NewExpectedSchema(fallback)
	if err := schema.Validate(); err != nil {
		return models.ExpectedSchema{}, SourceFallback, fmt.Errorf("%w: fallback schema: %v", ErrSchemaUnavailable, err)
	}
	return schema, SourceFallback, nil
}
