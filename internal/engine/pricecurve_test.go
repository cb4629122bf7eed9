package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicricci/Hearstconnect/internal/models"
)

func TestGeneratePriceCurveLinearInterpolation(t *testing.T) {
	prices, err := GeneratePriceCurve(models.PriceCurveConfig{
		StartPrice:    60000,
		Months:        25,
		AnchorPoints:  map[int]float64{0: 60000, 2: 84000},
		Interpolation: models.InterpolationLinear,
	})
	require.NoError(t, err)
	require.Len(t, prices, 25)

	assert.Equal(t, 60000.0, prices[0])
	// Midpoint of the 24-month span from 60k to 84k sits exactly halfway.
	assert.Equal(t, 72000.0, prices[12])
	assert.Equal(t, 84000.0, prices[24])
	// Monotone between anchors.
	for i := 1; i < 25; i++ {
		assert.GreaterOrEqual(t, prices[i], prices[i-1], "month %d", i)
	}
}

func TestGeneratePriceCurveStepHoldsBetweenAnchors(t *testing.T) {
	prices, err := GeneratePriceCurve(models.PriceCurveConfig{
		StartPrice:    50000,
		Months:        36,
		AnchorPoints:  map[int]float64{0: 50000, 1: 80000, 2: 65000},
		Interpolation: models.InterpolationStep,
	})
	require.NoError(t, err)

	for m := 0; m < 12; m++ {
		assert.Equal(t, 50000.0, prices[m], "month %d", m)
	}
	for m := 12; m < 24; m++ {
		assert.Equal(t, 80000.0, prices[m], "month %d", m)
	}
	for m := 24; m < 36; m++ {
		assert.Equal(t, 65000.0, prices[m], "month %d", m)
	}
}

func TestGeneratePriceCurveCustomPadsShortInput(t *testing.T) {
	prices, err := GeneratePriceCurve(models.PriceCurveConfig{
		StartPrice:          40000,
		Months:              6,
		Interpolation:       models.InterpolationCustom,
		CustomMonthlyPrices: []float64{40000, 42000, 44000},
	})
	require.NoError(t, err)
	require.Len(t, prices, 6)
	assert.Equal(t, []float64{40000, 42000, 44000, 44000, 44000, 44000}, prices)
}

func TestGeneratePriceCurveVolatilityDeterminism(t *testing.T) {
	cfg := models.PriceCurveConfig{
		StartPrice:        60000,
		Months:            48,
		AnchorPoints:      map[int]float64{0: 60000, 4: 120000},
		Interpolation:     models.InterpolationLinear,
		VolatilityEnabled: true,
		VolatilitySeed:    42,
	}

	a, err := GeneratePriceCurve(cfg)
	require.NoError(t, err)
	b, err := GeneratePriceCurve(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cfg.VolatilitySeed = 43
	c, err := GeneratePriceCurve(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	// Noise stays within the +-5% envelope of the clean curve.
	cfg.VolatilitySeed = 42
	cfg.VolatilityEnabled = false
	clean, err := GeneratePriceCurve(cfg)
	require.NoError(t, err)
	for i := range a {
		assert.InDelta(t, clean[i], a[i], clean[i]*0.0501, "month %d", i)
	}
}

func TestGeneratePriceCurveRejectsBadInput(t *testing.T) {
	_, err := GeneratePriceCurve(models.PriceCurveConfig{StartPrice: 60000, Months: 0})
	assert.Error(t, err)

	_, err = GeneratePriceCurve(models.PriceCurveConfig{StartPrice: -1, Months: 12})
	assert.Error(t, err)
}

func TestApplyPriceBand(t *testing.T) {
	base := []float64{100000, 110000}
	up := ApplyPriceBand(base, 0.2)
	down := ApplyPriceBand(base, -0.2)

	assert.Equal(t, []float64{120000, 132000}, up)
	assert.Equal(t, []float64{80000, 88000}, down)
}

func TestDeterministicNoiseRange(t *testing.T) {
	for i := 0; i < 240; i++ {
		n := deterministicNoise(42, i)
		assert.GreaterOrEqual(t, n, -1.0)
		assert.LessOrEqual(t, n, 1.0)
	}
	// Same inputs, same output.
	assert.Equal(t, deterministicNoise(7, 13), deterministicNoise(7, 13))
}
