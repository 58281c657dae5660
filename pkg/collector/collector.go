// Package collector gathers the raw vehicle fields for one estimate.
package collector

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mimir-aip/carprice/pkg/models"
)

// Collector produces the raw feature set for one estimate
type Collector interface {
	Collect() (models.RawFeatureSet, error)
}

// Values collects fields from name/value text pairs, as posted by the HTML
// form or given as command line flags. Missing fields take their defaults,
// optional ones included.
type Values struct {
	specs []models.FieldSpec
	input map[string]string
}

// NewValues creates a collector over input
func NewValues(specs []models.FieldSpec, input map[string]string) *Values {
	copied := make(map[string]string, len(input))
	for k, v := range input {
		copied[k] = v
	}
	return &Values{specs: specs, input: copied}
}

// Collect parses every field. All problems are reported together.
func (c *Values) Collect() (models.RawFeatureSet, error) {
	var problems []string

	known := make(map[string]bool, len(c.specs))
	values := make(map[string]models.Value, len(c.specs))
	for _, spec := range c.specs {
		known[spec.Name] = true

		text, ok := c.input[spec.Name]
		if !ok || strings.TrimSpace(text) == "" {
			if spec.Optional && spec.Default == "" {
				continue
			}
			text = spec.Default
		}

		v, err := spec.Parse(text)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		values[spec.Name] = v
	}

	var unknown []string
	for name := range c.input {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		problems = append(problems, fmt.Sprintf("unknown field %q", name))
	}

	if len(problems) > 0 {
		return models.RawFeatureSet{}, errors.New(strings.Join(problems, "; "))
	}
	return models.NewRawFeatureSet(values), nil
}

// ParseAssignments turns Field=value strings into a map
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected Field=value, got %q", pair)
		}
		out[name] = value
	}
	return out, nil
}
