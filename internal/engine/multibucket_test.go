package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicricci/Hearstconnect/internal/models"
)

func testMultiBucketConfig() models.MultiBucketConfig {
	mining := testMiningConfig()
	mining.AllocatedUSD = 400_000
	mining.TenorMonths = 36

	return models.MultiBucketConfig{
		CapitalRaisedUSD: 1_000_000,
		TenorMonths:      36,
		Yield: models.YieldBucketConfig{
			AllocatedUSD: 300_000,
			BaseAPR:      0.06,
		},
		Holding: models.HoldingBucketConfig{
			AllocatedUSD:       300_000,
			BuyingPriceUSD:     100_000,
			TargetSellPriceUSD: 150_000,
			CapitalReconPct:    100,
		},
		Mining: mining,
	}
}

func risingPrices(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestSimulateScenarioRejectsAllocationMismatch(t *testing.T) {
	cfg := testMultiBucketConfig()
	cfg.Yield.AllocatedUSD = 299_000 // sums to 999k against 1M raised

	_, err := SimulateScenario(cfg, models.ScenarioCurves{
		BTCPrices:            flatCurve(100000, 36),
		HashpriceBTCPerPHDay: flatCurve(0.0006, 36),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must sum to capital raised")

	// Sub-cent drift is tolerated.
	cfg.Yield.AllocatedUSD = 300_000.005
	_, err = SimulateScenario(cfg, models.ScenarioCurves{
		BTCPrices:            flatCurve(100000, 36),
		HashpriceBTCPerPHDay: flatCurve(0.0006, 36),
	})
	assert.NoError(t, err)
}

func TestSimulateScenarioCrossBucketSignal(t *testing.T) {
	cfg := testMultiBucketConfig()

	// Prices cross the 150k holding target at month 25.
	prices := risingPrices(100_000, 2_000, 36)
	res, err := SimulateScenario(cfg, models.ScenarioCurves{
		BTCPrices:            prices,
		HashpriceBTCPerPHDay: flatCurve(0.0008, 36),
	})
	require.NoError(t, err)

	require.True(t, res.HoldingBucket.Metrics.TargetHit)
	require.NotNil(t, res.HoldingBucket.Metrics.SellMonth)
	sellMonth := *res.HoldingBucket.Metrics.SellMonth
	assert.Equal(t, 25, sellMonth)

	// Mining bonus APR unlocks at the holding sell month.
	assert.InDelta(t, 0.08, res.MiningBucket.MonthlyWaterfall[sellMonth-1].YieldAPRApplied, 1e-9)
	assert.InDelta(t, 0.12, res.MiningBucket.MonthlyWaterfall[sellMonth].YieldAPRApplied, 1e-9)
}

func TestSimulateScenarioPortfolioAggregation(t *testing.T) {
	cfg := testMultiBucketConfig()
	res, err := SimulateScenario(cfg, models.ScenarioCurves{
		BTCPrices:            flatCurve(100_000, 36),
		HashpriceBTCPerPHDay: flatCurve(0.0006, 36),
	})
	require.NoError(t, err)

	require.Len(t, res.MonthlyPortfolio, 36)
	require.Len(t, res.BTCUnderManagement, 36)
	assert.NotEmpty(t, res.RunID)

	for i, row := range res.MonthlyPortfolio {
		assert.InDelta(t, row.TotalPortfolioUSD,
			row.YieldValueUSD+row.HoldingValueUSD+row.MiningValueUSD, 0.02, "month %d", i)
	}

	// Flat prices never hit the 150k target: holding BTC stays in place.
	final := res.BTCUnderManagement[35]
	assert.False(t, final.HoldingSold)
	assert.InDelta(t, 3.0, final.HoldingBTC, 1e-6)
	assert.False(t, res.BTCUnderManagementMeta.HoldingTargetStruck)

	// Without commercial fees configured gross equals net.
	assert.Nil(t, res.Commercial)
	assert.Equal(t, res.Metrics.GrossFinalPortfolioUSD, res.Metrics.FinalPortfolioUSD)
}

func TestSimulateScenarioCommercialFees(t *testing.T) {
	cfg := testMultiBucketConfig()
	cfg.Commercial = models.CommercialFeesConfig{
		UpfrontPct:     2.0,
		ManagementPct:  1.0,
		PerformancePct: 10.0,
	}

	res, err := SimulateScenario(cfg, models.ScenarioCurves{
		BTCPrices:            flatCurve(100_000, 36),
		HashpriceBTCPerPHDay: flatCurve(0.0008, 36),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Commercial)

	// 2% of 1M, split 30/30/40 across the buckets.
	assert.InDelta(t, 20_000, res.Commercial.UpfrontFeeUSD, 0.01)
	assert.InDelta(t, 6_000, res.Commercial.UpfrontFeeBreakdown["yield_deduction_usd"], 0.01)
	assert.InDelta(t, 8_000, res.Commercial.UpfrontFeeBreakdown["mining_deduction_usd"], 0.01)

	// The upfront fee shrinks the yield bucket before it compounds.
	assert.InDelta(t, 294_000, res.YieldBucket.Metrics.AllocatedUSD, 0.01)

	// Net portfolio is gross minus ongoing fees.
	deductions := res.Commercial.ManagementFeesTotalUSD + res.Commercial.PerformanceFeeUSD
	assert.InDelta(t, res.Metrics.GrossFinalPortfolioUSD-deductions, res.Metrics.FinalPortfolioUSD, 0.02)
}

func TestSimulateAllScenariosKeys(t *testing.T) {
	cfg := testMultiBucketConfig()
	curves := map[string]models.ScenarioCurves{
		ScenarioBear: {BTCPrices: flatCurve(70_000, 36), HashpriceBTCPerPHDay: flatCurve(0.0004, 36)},
		ScenarioBase: {BTCPrices: flatCurve(100_000, 36), HashpriceBTCPerPHDay: flatCurve(0.0006, 36)},
		ScenarioBull: {BTCPrices: flatCurve(140_000, 36), HashpriceBTCPerPHDay: flatCurve(0.0008, 36)},
	}

	results, err := SimulateAllScenarios(cfg, curves)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, name := range AllScenarios {
		require.Contains(t, results, name)
		assert.NotEmpty(t, results[name].RunID)
	}
	assert.NotEqual(t, results[ScenarioBear].RunID, results[ScenarioBull].RunID)
}

func TestSimulateYieldBucketCompounding(t *testing.T) {
	res, err := SimulateYieldBucket(models.YieldBucketConfig{
		AllocatedUSD: 120_000,
		BaseAPR:      0.12, // 1% per month
	}, 12)
	require.NoError(t, err)
	require.Len(t, res.MonthlyData, 12)

	assert.InDelta(t, 1_200, res.MonthlyData[0].MonthlyYieldUSD, 0.01)
	// Compounded: (1.01)^12.
	assert.InDelta(t, 120_000*1.1268250301, res.Metrics.FinalValueUSD, 0.5)
	assert.Greater(t, res.Metrics.EffectiveAPR, 0.12)
}

func TestSimulateYieldBucketAPRSchedule(t *testing.T) {
	res, err := SimulateYieldBucket(models.YieldBucketConfig{
		AllocatedUSD: 100_000,
		BaseAPR:      0.06,
		APRSchedule: []models.APRScheduleEntry{
			{FromMonth: 6, ToMonth: 11, APR: 0.12},
		},
	}, 12)
	require.NoError(t, err)

	assert.InDelta(t, 0.06, res.MonthlyData[5].APRApplied, 1e-9)
	assert.InDelta(t, 0.12, res.MonthlyData[6].APRApplied, 1e-9)
	assert.InDelta(t, 0.12, res.MonthlyData[11].APRApplied, 1e-9)
}

func TestSimulateHoldingBucketStrikeLadder(t *testing.T) {
	cfg := models.HoldingBucketConfig{
		AllocatedUSD:       300_000,
		BuyingPriceUSD:     100_000,
		TargetSellPriceUSD: 140_000,
		CapitalReconPct:    60,
		ExtraYieldStrikes: []models.StrikeLadderEntry{
			{StrikePrice: 120_000, BTCSharePct: 50},
			{StrikePrice: 160_000, BTCSharePct: 50},
		},
	}

	prices := risingPrices(100_000, 5_000, 24)
	res, err := SimulateHoldingBucket(cfg, prices, 24)
	require.NoError(t, err)

	// 3 BTC total: 1.8 recon, 1.2 extra yield split 0.6/0.6.
	assert.InDelta(t, 3.0, res.Metrics.BTCQuantity, 1e-8)
	assert.InDelta(t, 1.8, res.Metrics.CapitalReconBTC, 1e-8)
	assert.InDelta(t, 1.2, res.Metrics.ExtraYieldBTC, 1e-8)

	// First strike at 120k fires month 4, recon target 140k at month 8,
	// second strike at 160k at month 12.
	require.Len(t, res.Metrics.ExtraYieldStrikes, 2)
	require.NotNil(t, res.Metrics.ExtraYieldStrikes[0].SellMonth)
	assert.Equal(t, 4, *res.Metrics.ExtraYieldStrikes[0].SellMonth)
	require.NotNil(t, res.Metrics.SellMonth)
	assert.Equal(t, 8, *res.Metrics.SellMonth)
	require.NotNil(t, res.Metrics.ExtraYieldStrikes[1].SellMonth)
	assert.Equal(t, 12, *res.Metrics.ExtraYieldStrikes[1].SellMonth)

	// Everything sold: realized value only, no BTC left.
	final := res.MonthlyData[23]
	assert.Equal(t, 0.0, final.BTCQuantity)
	assert.True(t, final.ReconSold)
	assert.InDelta(t, 1.8*140_000, res.Metrics.ReconRealizedUSD, 0.01)
	assert.InDelta(t, 0.6*120_000+0.6*160_000, res.Metrics.ExtraYieldTotalUSD, 0.01)
}

func TestSimulateHoldingBucketNoTarget(t *testing.T) {
	cfg := models.HoldingBucketConfig{
		AllocatedUSD:       200_000,
		BuyingPriceUSD:     100_000,
		TargetSellPriceUSD: 200_000,
		CapitalReconPct:    100,
	}

	res, err := SimulateHoldingBucket(cfg, flatCurve(90_000, 12), 12)
	require.NoError(t, err)

	assert.False(t, res.Metrics.TargetHit)
	assert.Nil(t, res.Metrics.SellMonth)
	// Marked to the final spot with an unrealized loss.
	assert.InDelta(t, 2.0*90_000, res.Metrics.FinalValueUSD, 0.01)
	assert.Less(t, res.Metrics.TotalReturnPct, 0.0)
}
