// Package features computes model inputs that are derived from the values a
// user entered.
package features

import (
	"math"
	"time"

	"github.com/mimir-aip/carprice/pkg/models"
)

// RatioSentinel is stored as BHP_per_CC when the engine size is zero or the
// ratio is not a finite number.
const RatioSentinel = 0.0

// Deriver adds Car_Age and BHP_per_CC to a raw feature set
type Deriver struct {
	now func() time.Time
}

// NewDeriver creates a deriver that reads the wall clock
func NewDeriver() *Deriver {
	return &Deriver{now: time.Now}
}

// NewDeriverWithClock creates a deriver with a fixed clock, for tests and
// reproducible batch runs.
func NewDeriverWithClock(now func() time.Time) *Deriver {
	return &Deriver{now: now}
}

// CurrentYear returns the calendar year of the deriver's clock
func (d *Deriver) CurrentYear() int {
	return d.now().Year()
}

// Derive returns raw plus the computed fields. A computed field is skipped
// when one of its inputs is missing or not numeric.
func (d *Deriver) Derive(raw models.RawFeatureSet) models.DerivedFeatureSet {
	computed := make(map[string]models.Value, 2)

	if year, ok := number(raw, models.FieldYear); ok {
		computed[models.FieldCarAge] = models.Number(float64(d.CurrentYear()) - year)
	}

	power, okPower := number(raw, models.FieldPower)
	engine, okEngine := number(raw, models.FieldEngine)
	if okPower && okEngine {
		computed[models.FieldBHPPerCC] = models.Number(ratio(power, engine))
	}

	return raw.Extend(computed)
}

func number(raw models.RawFeatureSet, name string) (float64, bool) {
	v, ok := raw.Get(name)
	if !ok {
		return 0, false
	}
	return v.Float()
}

func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return RatioSentinel
	}
	r := numerator / denominator
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return RatioSentinel
	}
	return r
}
