package engine

import (
	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// MinerSimInput bundles the market curves and site parameters for one
// miner economics run.
type MinerSimInput struct {
	Miner                models.MinerSpec
	BTCPrices            []float64
	HashpriceBTCPerPHDay []float64
	ElectricityRate      float64 // USD per kWh
	Uptime               float64 // 0..1
	Months               int
}

// SimulateMiner runs deterministic per-miner monthly cashflows. The horizon
// is clipped to the shortest input curve. Net is operating net (revenue minus
// electricity and maintenance); EBIT additionally subtracts straight-line
// depreciation over the miner lifetime.
func SimulateMiner(in MinerSimInput) (*models.MinerSimResult, error) {
	if in.Miner.LifetimeMonths <= 0 {
		return nil, utils.NewValidationErrorf("miner lifetime must be positive, got %d",
			in.Miner.LifetimeMonths)
	}
	if in.Uptime < 0 || in.Uptime > 1 {
		return nil, utils.NewValidationErrorf("uptime must be in [0,1], got %v", in.Uptime)
	}

	simMonths := in.Months
	if len(in.BTCPrices) < simMonths {
		simMonths = len(in.BTCPrices)
	}
	if len(in.HashpriceBTCPerPHDay) < simMonths {
		simMonths = len(in.HashpriceBTCPerPHDay)
	}

	res := &models.MinerSimResult{
		MonthlyCashflows: make([]models.MinerMonthlyCashflow, 0, simMonths),
	}

	cumulativeNet := 0.0
	cumulativeEBIT := 0.0
	for t := 0; t < simMonths; t++ {
		hashprice := in.HashpriceBTCPerPHDay[t]
		btcPrice := in.BTCPrices[t]

		minerPH := in.Miner.HashrateTH / 1000.0
		btcMined := hashprice * minerPH * DaysPerMonth * in.Uptime

		elecKWh := (in.Miner.PowerW / 1000.0) * 24.0 * DaysPerMonth * in.Uptime
		elecCost := elecKWh * in.ElectricityRate

		grossRevenue := btcMined * btcPrice
		maintenance := grossRevenue * in.Miner.MaintenancePct

		depreciation := 0.0
		if t < in.Miner.LifetimeMonths {
			depreciation = in.Miner.PriceUSD / float64(in.Miner.LifetimeMonths)
		}

		net := grossRevenue - elecCost - maintenance
		ebit := net - depreciation
		netBTC := 0.0
		if btcPrice > 0 {
			netBTC = btcMined - elecCost/btcPrice
		}

		cumulativeNet += net
		cumulativeEBIT += ebit

		res.TotalBTCMined += btcMined
		res.TotalRevenueUSD += grossRevenue
		res.TotalElectricityCostUSD += elecCost
		res.TotalNetUSD += net
		res.TotalEBITUSD += ebit

		if res.BreakEvenMonth == nil && cumulativeEBIT >= 0 {
			month := t
			res.BreakEvenMonth = &month
		}

		res.MonthlyCashflows = append(res.MonthlyCashflows, models.MinerMonthlyCashflow{
			Month:                t,
			BTCPriceUSD:          utils.RoundUSD(btcPrice),
			HashpriceBTCPerPHDay: utils.RoundBTC(hashprice),
			BTCMined:             utils.RoundBTC(btcMined),
			ElecKWh:              utils.RoundUSD(elecKWh),
			ElecCostUSD:          utils.RoundUSD(elecCost),
			GrossRevenueUSD:      utils.RoundUSD(grossRevenue),
			MaintenanceUSD:       utils.RoundUSD(maintenance),
			NetUSD:               utils.RoundUSD(net),
			DepreciationUSD:      utils.RoundUSD(depreciation),
			EBITUSD:              utils.RoundUSD(ebit),
			NetBTC:               utils.RoundBTC(netBTC),
			CumulativeNetUSD:     utils.RoundUSD(cumulativeNet),
			CumulativeEBITUSD:    utils.RoundUSD(cumulativeEBIT),
		})
	}

	res.TotalBTCMined = utils.RoundBTC(res.TotalBTCMined)
	res.TotalRevenueUSD = utils.RoundUSD(res.TotalRevenueUSD)
	res.TotalElectricityCostUSD = utils.RoundUSD(res.TotalElectricityCostUSD)
	res.TotalNetUSD = utils.RoundUSD(res.TotalNetUSD)
	res.TotalEBITUSD = utils.RoundUSD(res.TotalEBITUSD)
	return res, nil
}
