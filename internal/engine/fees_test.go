package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicricci/Hearstconnect/internal/models"
)

func TestCalculateCommercialFeesUpfrontProportional(t *testing.T) {
	res := CalculateCommercialFees(CommercialFeesInput{
		CapitalRaisedUSD:    1_000_000,
		TenorMonths:         36,
		Config:              models.CommercialFeesConfig{UpfrontPct: 2.0},
		YieldAllocatedUSD:   200_000,
		HoldingAllocatedUSD: 300_000,
		MiningAllocatedUSD:  500_000,
	})

	assert.Equal(t, 20_000.0, res.UpfrontFeeUSD)
	assert.Equal(t, 4_000.0, res.UpfrontFeeBreakdown["yield_deduction_usd"])
	assert.Equal(t, 6_000.0, res.UpfrontFeeBreakdown["holding_deduction_usd"])
	assert.Equal(t, 10_000.0, res.UpfrontFeeBreakdown["mining_deduction_usd"])
	assert.Equal(t, 20_000.0, res.TotalCommercialUSD)
}

func TestCalculateCommercialFeesManagementCappedByCapitalization(t *testing.T) {
	res := CalculateCommercialFees(CommercialFeesInput{
		CapitalRaisedUSD: 1_200_000,
		TenorMonths:      4,
		Config:           models.CommercialFeesConfig{ManagementPct: 1.0},
		// Monthly fee is 1.2M * 1% / 12 = 1000. Months with thin or
		// negative capitalization cap the capture.
		CapitalizationMonthlyUSD: []float64{500, 1000, 50_000, -200},
		MiningAllocatedUSD:       400_000,
	})

	require.Len(t, res.ManagementFeesMonthly, 4)
	assert.Equal(t, 500.0, res.ManagementFeesMonthly[0])
	assert.Equal(t, 1000.0, res.ManagementFeesMonthly[1])
	assert.Equal(t, 1000.0, res.ManagementFeesMonthly[2])
	assert.Equal(t, 0.0, res.ManagementFeesMonthly[3])
	assert.Equal(t, 2500.0, res.ManagementFeesTotalUSD)
}

func TestCalculateCommercialFeesPerformanceOnOverheadOnly(t *testing.T) {
	// Final capitalization below the mining allocation: no fee.
	res := CalculateCommercialFees(CommercialFeesInput{
		CapitalRaisedUSD:         1_000_000,
		Config:                   models.CommercialFeesConfig{PerformancePct: 10.0},
		CapitalizationMonthlyUSD: []float64{100_000, 300_000},
		MiningAllocatedUSD:       400_000,
	})
	assert.Equal(t, 0.0, res.PerformanceFeeUSD)
	assert.Equal(t, 0.0, res.PerformanceFeeBaseUSD)

	// Overhead of 100k pays 10%.
	res = CalculateCommercialFees(CommercialFeesInput{
		CapitalRaisedUSD:         1_000_000,
		Config:                   models.CommercialFeesConfig{PerformancePct: 10.0},
		CapitalizationMonthlyUSD: []float64{100_000, 500_000},
		MiningAllocatedUSD:       400_000,
	})
	assert.Equal(t, 10_000.0, res.PerformanceFeeUSD)
	assert.Equal(t, 100_000.0, res.PerformanceFeeBaseUSD)
}

func TestHasCommercialFees(t *testing.T) {
	assert.False(t, HasCommercialFees(models.CommercialFeesConfig{}))
	assert.True(t, HasCommercialFees(models.CommercialFeesConfig{UpfrontPct: 1}))
	assert.True(t, HasCommercialFees(models.CommercialFeesConfig{ManagementPct: 0.5}))
	assert.True(t, HasCommercialFees(models.CommercialFeesConfig{PerformancePct: 5}))
}
