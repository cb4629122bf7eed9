package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/loicricci/Hearstconnect/internal/models"
)

// Scenario names used across the product simulations.
const (
	ScenarioBear = "bear"
	ScenarioBase = "base"
	ScenarioBull = "bull"
)

// AllScenarios lists the scenarios in canonical order.
var AllScenarios = []string{ScenarioBear, ScenarioBase, ScenarioBull}

// CurveSet is a price or hashprice series with optional confidence bounds.
type CurveSet struct {
	Name   string
	Series []float64
	Lower  []float64
	Upper  []float64
}

// ScenarioBuilder derives bear/base/bull curve pairs from a shared BTC price
// curve and network curve, using their confidence bands as the envelope.
type ScenarioBuilder struct {
	logger *logrus.Entry
}

// NewScenarioBuilder returns a builder logging under the given logger.
func NewScenarioBuilder(logger *logrus.Logger) *ScenarioBuilder {
	return &ScenarioBuilder{
		logger: logger.WithField("component", "scenario_builder"),
	}
}

// Build assembles the scenario curve map. When a curve carries no band for a
// non-base scenario the base series is reused and a warning logged, since the
// three scenarios then collapse into one.
func (b *ScenarioBuilder) Build(price, hashprice CurveSet) map[string]models.ScenarioCurves {
	out := make(map[string]models.ScenarioCurves, len(AllScenarios))
	for _, scenario := range AllScenarios {
		out[scenario] = models.ScenarioCurves{
			BTCPrices:            b.pickSeries(price, scenario, false),
			HashpriceBTCPerPHDay: b.pickSeries(hashprice, scenario, true),
		}
	}
	return out
}

// pickSeries selects the band edge for a scenario. For hashprice the bear
// case takes the lower edge too: a bear market means mining pays less.
func (b *ScenarioBuilder) pickSeries(curve CurveSet, scenario string, isHashprice bool) []float64 {
	if scenario == ScenarioBase {
		return curve.Series
	}

	var edge []float64
	switch scenario {
	case ScenarioBear:
		edge = curve.Lower
	case ScenarioBull:
		edge = curve.Upper
	}
	if len(edge) == 0 {
		kind := "price"
		if isHashprice {
			kind = "hashprice"
		}
		b.logger.WithFields(logrus.Fields{
			"curve":    curve.Name,
			"scenario": scenario,
			"kind":     kind,
		}).Warn("curve reused without confidence band, scenario falls back to base series")
		return curve.Series
	}
	return edge
}

// DeterministicBand computes a symmetric bull/bear envelope around a base
// curve from a percentage band (0-100 scale).
func DeterministicBand(base []float64, bandPct float64) (lower, upper []float64) {
	if bandPct <= 0 {
		return nil, nil
	}
	return ApplyPriceBand(base, -bandPct/100.0), ApplyPriceBand(base, bandPct/100.0)
}
