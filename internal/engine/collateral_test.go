package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicricci/Hearstconnect/internal/models"
)

func testCollateralConfig() models.CollateralConfig {
	return models.CollateralConfig{
		CapitalRaisedUSD:    2_000_000,
		BTCAllocationPct:    70,
		BuyingPriceUSD:      100_000,
		CollateralLTVPct:    50,
		BorrowingAPR:        0.09,
		LiquidationLTVPct:   80,
		Miner:               testMiner(),
		MinerCount:          100,
		ElectricityRate:     0.05,
		HostingFeePerKWMon:  10,
		Uptime:              0.95,
		CurtailmentPct:      0.02,
		TenorMonths:         36,
		ReserveYieldAPR:     0.04,
		BaseYieldAPR:        0.08,
		BonusYieldAPR:       0.04,
		EarlyCloseThreshold: 0.36,
	}
}

func TestSimulateCollateralInception(t *testing.T) {
	res, err := SimulateCollateral(testCollateralConfig(), models.ScenarioCurves{
		BTCPrices:            flatCurve(100_000, 36),
		HashpriceBTCPerPHDay: flatCurve(0.0006, 36),
	})
	require.NoError(t, err)

	// 70% of 2M buys 14 BTC; the rest seeds the reserve.
	assert.InDelta(t, 14.0, res.Metrics.BTCPurchased, 1e-8)
	assert.InDelta(t, 600_000, res.Metrics.InitialReserveUSD, 0.01)

	// Miner capex (100 * 4000 = 400k) fits inside the 700k mintable.
	assert.InDelta(t, 400_000, res.Metrics.MinerCapexUSD, 0.01)
	assert.InDelta(t, 400_000, res.Metrics.MintedForCapexUSD, 0.01)
}

func TestSimulateCollateralCapexCappedByLTV(t *testing.T) {
	cfg := testCollateralConfig()
	cfg.BTCAllocationPct = 10 // 200k of BTC, 100k mintable at 50% LTV

	res, err := SimulateCollateral(cfg, models.ScenarioCurves{
		BTCPrices:            flatCurve(100_000, 12),
		HashpriceBTCPerPHDay: flatCurve(0.0006, 12),
	})
	require.NoError(t, err)
	assert.InDelta(t, 100_000, res.Metrics.MintedForCapexUSD, 0.01)
}

func TestSimulateCollateralStrikeRepaysDebtOnce(t *testing.T) {
	cfg := testCollateralConfig()
	cfg.StrikeLadder = []models.CollateralStrikeEntry{
		{StrikePrice: 130_000, BTCSellPct: 40},
	}

	prices := risingPrices(100_000, 2_500, 36)
	res, err := SimulateCollateral(cfg, models.ScenarioCurves{
		BTCPrices:            prices,
		HashpriceBTCPerPHDay: flatCurve(0.0006, 36),
	})
	require.NoError(t, err)

	require.Len(t, res.StrikeEvents, 1)
	event := res.StrikeEvents[0]
	assert.Equal(t, 12, event.Month) // 130k first reached at month 12
	assert.Greater(t, event.DebtRepaid, 0.0)

	status := res.StrikeLadderStatus[0]
	assert.True(t, status.Triggered)
	require.NotNil(t, status.TriggerMonth)
	assert.Equal(t, 12, *status.TriggerMonth)
	assert.Equal(t, 1, res.Metrics.StrikesTriggered)

	// A strike switches the bonus yield on from that month.
	assert.InDelta(t, 0.08, res.MonthlyData[11].YieldAPRApplied, 1e-9)
	assert.True(t, res.MonthlyData[12].BonusYieldActive)

	// Debt keeps accruing interest but drops at the strike.
	assert.Less(t, res.MonthlyData[12].StablecoinDebt, res.MonthlyData[11].StablecoinDebt)
}

func TestSimulateCollateralEarlyCloseLatch(t *testing.T) {
	cfg := testCollateralConfig()
	cfg.EarlyCloseThreshold = 0.025 // 50k of yield on 2M closes the book

	res, err := SimulateCollateral(cfg, models.ScenarioCurves{
		BTCPrices:            flatCurve(100_000, 36),
		HashpriceBTCPerPHDay: flatCurve(0.0006, 36),
	})
	require.NoError(t, err)

	require.True(t, res.Metrics.EarlyCloseTriggered)
	require.NotNil(t, res.Metrics.EarlyCloseMonth)
	closeMonth := *res.Metrics.EarlyCloseMonth

	// Yield obligation is 2M * 8% / 12 = 13,333/month, so the 50k
	// threshold is crossed in month 3 and no yield flows afterwards.
	assert.Equal(t, 3, closeMonth)
	for _, row := range res.MonthlyData[closeMonth+1:] {
		assert.Equal(t, 0.0, row.YieldPaidUSD, "month %d", row.Month)
	}
	cumulative := res.MonthlyData[len(res.MonthlyData)-1].CumulativeYieldPaidUSD
	assert.InDelta(t, cumulative, res.Metrics.CumulativeYieldPaidUSD, 0.01)
}

func TestSimulateCollateralZeroCollateralLTVCeiling(t *testing.T) {
	cfg := testCollateralConfig()
	cfg.BTCAllocationPct = 0 // no BTC purchased
	cfg.MinerCount = 1       // tiny fleet, nothing mintable

	res, err := SimulateCollateral(cfg, models.ScenarioCurves{
		BTCPrices:            flatCurve(100_000, 3),
		HashpriceBTCPerPHDay: flatCurve(0, 3),
	})
	require.NoError(t, err)

	// Zero collateral value reports the LTV ceiling regardless of debt.
	for _, row := range res.MonthlyData {
		assert.Equal(t, ltvCeiling, row.LTVPct)
	}
}

func TestSimulateCollateralLiquidationRiskCounting(t *testing.T) {
	cfg := testCollateralConfig()
	cfg.BTCAllocationPct = 20
	cfg.CollateralLTVPct = 90
	cfg.LiquidationLTVPct = 80

	// Crash right after inception: collateral value halves, debt stays.
	prices := flatCurve(50_000, 24)
	res, err := SimulateCollateral(cfg, models.ScenarioCurves{
		BTCPrices:            prices,
		HashpriceBTCPerPHDay: flatCurve(0.0001, 24),
	})
	require.NoError(t, err)
	assert.Greater(t, res.Metrics.LiquidationRiskMonths, 0)
	assert.GreaterOrEqual(t, res.Metrics.MaxLTVPct, cfg.LiquidationLTVPct)
}

func TestSimulateCollateralRejectsBadInput(t *testing.T) {
	cfg := testCollateralConfig()
	cfg.CapitalRaisedUSD = 0
	_, err := SimulateCollateral(cfg, models.ScenarioCurves{})
	assert.Error(t, err)

	cfg = testCollateralConfig()
	cfg.BTCAllocationPct = 120
	_, err = SimulateCollateral(cfg, models.ScenarioCurves{})
	assert.Error(t, err)
}

func TestSimulateCollateralAllScenarios(t *testing.T) {
	cfg := testCollateralConfig()
	curves := map[string]models.ScenarioCurves{
		ScenarioBear: {BTCPrices: flatCurve(70_000, 36), HashpriceBTCPerPHDay: flatCurve(0.0004, 36)},
		ScenarioBase: {BTCPrices: flatCurve(100_000, 36), HashpriceBTCPerPHDay: flatCurve(0.0006, 36)},
		ScenarioBull: {BTCPrices: flatCurve(140_000, 36), HashpriceBTCPerPHDay: flatCurve(0.0008, 36)},
	}

	results, err := SimulateCollateralAllScenarios(cfg, curves)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// A bull market leaves more net equity than a bear market.
	assert.Greater(t,
		results[ScenarioBull].Metrics.FinalNetEquityUSD,
		results[ScenarioBear].Metrics.FinalNetEquityUSD)
}
