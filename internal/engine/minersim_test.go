package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicricci/Hearstconnect/internal/models"
)

func testMiner() models.MinerSpec {
	return models.MinerSpec{
		ID:             "s21",
		Name:           "Antminer S21",
		HashrateTH:     200,
		PowerW:         3500,
		PriceUSD:       4000,
		LifetimeMonths: 48,
		MaintenancePct: 0.02,
	}
}

func flatCurve(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestSimulateMinerMonthlyMath(t *testing.T) {
	res, err := SimulateMiner(MinerSimInput{
		Miner:                testMiner(),
		BTCPrices:            flatCurve(100000, 12),
		HashpriceBTCPerPHDay: flatCurve(0.0005, 12),
		ElectricityRate:      0.06,
		Uptime:               0.95,
		Months:               12,
	})
	require.NoError(t, err)
	require.Len(t, res.MonthlyCashflows, 12)

	m0 := res.MonthlyCashflows[0]

	// 200 TH = 0.2 PH; 0.0005 * 0.2 * 30.44 * 0.95.
	wantBTC := 0.0005 * 0.2 * DaysPerMonth * 0.95
	assert.InDelta(t, wantBTC, m0.BTCMined, 1e-8)

	// 3.5 kW * 24h * 30.44d * 0.95 uptime.
	wantKWh := 3.5 * 24 * DaysPerMonth * 0.95
	assert.InDelta(t, wantKWh, m0.ElecKWh, 0.01)
	assert.InDelta(t, wantKWh*0.06, m0.ElecCostUSD, 0.01)

	wantGross := wantBTC * 100000
	assert.InDelta(t, wantGross, m0.GrossRevenueUSD, 0.01)
	assert.InDelta(t, wantGross*0.02, m0.MaintenanceUSD, 0.01)

	// Straight-line depreciation over 48 months.
	assert.InDelta(t, 4000.0/48.0, m0.DepreciationUSD, 0.01)
	assert.InDelta(t, m0.NetUSD-m0.DepreciationUSD, m0.EBITUSD, 0.02)
}

func TestSimulateMinerBreakEven(t *testing.T) {
	// Rich hashprice: profitable from month 0.
	res, err := SimulateMiner(MinerSimInput{
		Miner:                testMiner(),
		BTCPrices:            flatCurve(100000, 24),
		HashpriceBTCPerPHDay: flatCurve(0.001, 24),
		ElectricityRate:      0.05,
		Uptime:               0.95,
		Months:               24,
	})
	require.NoError(t, err)
	require.NotNil(t, res.BreakEvenMonth)
	assert.Equal(t, 0, *res.BreakEvenMonth)

	// Worthless hashprice: EBIT stays negative forever.
	res, err = SimulateMiner(MinerSimInput{
		Miner:                testMiner(),
		BTCPrices:            flatCurve(100000, 24),
		HashpriceBTCPerPHDay: flatCurve(0.00001, 24),
		ElectricityRate:      0.08,
		Uptime:               0.95,
		Months:               24,
	})
	require.NoError(t, err)
	assert.Nil(t, res.BreakEvenMonth)
}

func TestSimulateMinerClipsToShortestCurve(t *testing.T) {
	res, err := SimulateMiner(MinerSimInput{
		Miner:                testMiner(),
		BTCPrices:            flatCurve(100000, 6),
		HashpriceBTCPerPHDay: flatCurve(0.0005, 12),
		ElectricityRate:      0.06,
		Uptime:               0.95,
		Months:               36,
	})
	require.NoError(t, err)
	assert.Len(t, res.MonthlyCashflows, 6)
}

func TestSimulateMinerDepreciationStopsAfterLifetime(t *testing.T) {
	miner := testMiner()
	miner.LifetimeMonths = 3

	res, err := SimulateMiner(MinerSimInput{
		Miner:                miner,
		BTCPrices:            flatCurve(100000, 6),
		HashpriceBTCPerPHDay: flatCurve(0.0005, 6),
		ElectricityRate:      0.06,
		Uptime:               1.0,
		Months:               6,
	})
	require.NoError(t, err)
	assert.Greater(t, res.MonthlyCashflows[2].DepreciationUSD, 0.0)
	assert.Equal(t, 0.0, res.MonthlyCashflows[3].DepreciationUSD)
}

func TestSimulateMinerRejectsBadInput(t *testing.T) {
	miner := testMiner()
	miner.LifetimeMonths = 0
	_, err := SimulateMiner(MinerSimInput{Miner: miner, Months: 12, Uptime: 0.9})
	assert.Error(t, err)

	_, err = SimulateMiner(MinerSimInput{Miner: testMiner(), Months: 12, Uptime: 1.5})
	assert.Error(t, err)
}

func TestMinerEfficiency(t *testing.T) {
	assert.InDelta(t, 17.5, testMiner().EfficiencyJPerTH(), 1e-9)
	assert.Equal(t, 0.0, models.MinerSpec{}.EfficiencyJPerTH())
}
