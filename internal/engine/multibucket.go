package engine

import (
	"math"

	"github.com/google/uuid"

	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// allocationTolerance is the permitted drift between the bucket allocations
// and the capital raised, in USD.
const allocationTolerance = 0.01

// SimulateScenario runs the full three-bucket product against one price
// scenario. The holding bucket runs first so its sell month can unlock the
// mining bonus APR, then the mining waterfall, then aggregation.
func SimulateScenario(cfg models.MultiBucketConfig, curves models.ScenarioCurves) (*models.MultiBucketResult, error) {
	if cfg.CapitalRaisedUSD <= 0 {
		return nil, utils.NewValidationErrorf("capital raised must be positive, got %v", cfg.CapitalRaisedUSD)
	}
	allocSum := cfg.Yield.AllocatedUSD + cfg.Holding.AllocatedUSD + cfg.Mining.AllocatedUSD
	if math.Abs(allocSum-cfg.CapitalRaisedUSD) > allocationTolerance {
		return nil, utils.NewValidationErrorf(
			"bucket allocations (%.2f) must sum to capital raised (%.2f)",
			allocSum, cfg.CapitalRaisedUSD)
	}

	// Upfront commercial fee shrinks every bucket proportionally before any
	// bucket runs. Fee reporting still uses the original allocations.
	yieldCfg := cfg.Yield
	holdingCfg := cfg.Holding
	miningCfg := cfg.Mining
	if cfg.Commercial.UpfrontPct > 0 && allocSum > 0 {
		upfront := cfg.CapitalRaisedUSD * cfg.Commercial.UpfrontPct / 100.0
		yieldCfg.AllocatedUSD -= upfront * (yieldCfg.AllocatedUSD / allocSum)
		holdingCfg.AllocatedUSD -= upfront * (holdingCfg.AllocatedUSD / allocSum)
		miningCfg.AllocatedUSD -= upfront * (miningCfg.AllocatedUSD / allocSum)
	}

	yieldRes, err := SimulateYieldBucket(yieldCfg, cfg.TenorMonths)
	if err != nil {
		return nil, err
	}

	holdingRes, err := SimulateHoldingBucket(holdingCfg, curves.BTCPrices, cfg.TenorMonths)
	if err != nil {
		return nil, err
	}

	miningRes, err := SimulateWaterfall(WaterfallInput{
		Config:               miningCfg,
		BTCPrices:            curves.BTCPrices,
		HashpriceBTCPerPHDay: curves.HashpriceBTCPerPHDay,
		HoldingSellMonth:     holdingRes.Metrics.SellMonth,
	})
	if err != nil {
		return nil, err
	}

	res := &models.MultiBucketResult{
		RunID:         uuid.NewString(),
		YieldBucket:   *yieldRes,
		HoldingBucket: *holdingRes,
		MiningBucket:  *miningRes,
	}

	simMonths := cfg.TenorMonths
	if len(curves.BTCPrices) < simMonths {
		simMonths = len(curves.BTCPrices)
	}

	capMonthly := make([]float64, 0, simMonths)
	for t := 0; t < simMonths; t++ {
		spot := curves.BTCPrices[t]

		yVal := 0.0
		if t < len(yieldRes.MonthlyData) {
			yVal = yieldRes.MonthlyData[t].BucketValueUSD
		}
		hVal := 0.0
		holdingBTC := 0.0
		holdingSold := false
		if t < len(holdingRes.MonthlyData) {
			row := holdingRes.MonthlyData[t]
			hVal = row.BucketValueUSD
			holdingBTC = row.BTCQuantity
			holdingSold = row.ReconSold
		}
		mVal := 0.0
		miningCapBTC := 0.0
		if t < len(miningRes.MonthlyWaterfall) {
			row := miningRes.MonthlyWaterfall[t]
			mVal = row.CapitalizationUSD
			miningCapBTC = row.CapitalizationBTC
		}
		capMonthly = append(capMonthly, mVal)

		res.MonthlyPortfolio = append(res.MonthlyPortfolio, models.PortfolioMonth{
			Month:             t,
			YieldValueUSD:     utils.RoundUSD(yVal),
			HoldingValueUSD:   utils.RoundUSD(hVal),
			MiningValueUSD:    utils.RoundUSD(mVal),
			TotalPortfolioUSD: utils.RoundUSD(yVal + hVal + mVal),
		})

		strikeThisMonth := holdingSold
		if t > 0 && t-1 < len(holdingRes.MonthlyData) {
			strikeThisMonth = holdingSold && !holdingRes.MonthlyData[t-1].ReconSold
		}

		holdingCostBasis := holdingBTC * holdingRes.Metrics.BuyingPriceUSD
		holdingValue := holdingBTC * spot
		appreciation := 0.0
		appreciationPct := 0.0
		if holdingBTC > 0 {
			appreciation = holdingValue - holdingCostBasis
			if holdingCostBasis > 0 {
				appreciationPct = appreciation / holdingCostBasis * 100
			}
		}

		totalBTC := holdingBTC + miningCapBTC
		res.BTCUnderManagement = append(res.BTCUnderManagement, models.BTCUnderManagementMonth{
			Month:                  t,
			BTCPriceUSD:            utils.RoundUSD(spot),
			HoldingBTC:             utils.RoundBTC(holdingBTC),
			HoldingValueUSD:        utils.RoundUSD(holdingValue),
			HoldingSold:            holdingSold,
			HoldingStrikeThisMonth: strikeThisMonth,
			MiningCapBTC:           utils.RoundBTC(miningCapBTC),
			MiningCapValueUSD:      utils.RoundUSD(mVal),
			TotalBTC:               utils.RoundBTC(totalBTC),
			TotalValueUSD:          utils.RoundUSD(totalBTC * spot),
			HoldingAppreciationUSD: utils.RoundUSD(appreciation),
			HoldingAppreciationPct: utils.RoundUSD(appreciationPct),
		})
	}

	// Ongoing commercial fees net against the gross portfolio; the upfront
	// fee was already carved out of the allocations.
	if HasCommercialFees(cfg.Commercial) {
		res.Commercial = CalculateCommercialFees(CommercialFeesInput{
			CapitalRaisedUSD:         cfg.CapitalRaisedUSD,
			TenorMonths:              cfg.TenorMonths,
			Config:                   cfg.Commercial,
			CapitalizationMonthlyUSD: capMonthly,
			YieldAllocatedUSD:        cfg.Yield.AllocatedUSD,
			HoldingAllocatedUSD:      cfg.Holding.AllocatedUSD,
			MiningAllocatedUSD:       cfg.Mining.AllocatedUSD,
		})
	}

	grossFinal := yieldRes.Metrics.FinalValueUSD +
		holdingRes.Metrics.FinalValueUSD +
		miningRes.Metrics.CapitalizationUSDFinal

	deductions := 0.0
	if res.Commercial != nil {
		deductions = res.Commercial.ManagementFeesTotalUSD + res.Commercial.PerformanceFeeUSD
	}
	netFinal := grossFinal - deductions

	totalYieldPaid := yieldRes.Metrics.TotalYieldUSD + miningRes.Metrics.CumulativeYieldPaidUSD
	effectiveAPR := 0.0
	if simMonths > 0 {
		effectiveAPR = (totalYieldPaid / cfg.CapitalRaisedUSD) / (float64(simMonths) / 12.0)
	}

	res.Metrics = models.PortfolioMetrics{
		CapitalRaisedUSD:         utils.RoundUSD(cfg.CapitalRaisedUSD),
		FinalPortfolioUSD:        utils.RoundUSD(netFinal),
		TotalReturnPct:           utils.RoundRate((netFinal - cfg.CapitalRaisedUSD) / cfg.CapitalRaisedUSD),
		TotalYieldPaidUSD:        utils.RoundUSD(totalYieldPaid),
		EffectiveAPR:             utils.RoundRate(effectiveAPR),
		CapitalPreservationRatio: utils.RoundRate(netFinal / cfg.CapitalRaisedUSD),
		GrossFinalPortfolioUSD:   utils.RoundUSD(grossFinal),
		GrossTotalReturnPct:      utils.RoundRate((grossFinal - cfg.CapitalRaisedUSD) / cfg.CapitalRaisedUSD),
	}

	res.BTCUnderManagementMeta = btcUnderManagementMetrics(res.BTCUnderManagement, holdingRes, miningRes)

	// The mining bucket carries the operational risk, so its decision is
	// the product decision.
	res.Decision = miningRes.Decision
	res.DecisionReasons = miningRes.DecisionReasons
	return res, nil
}

func btcUnderManagementMetrics(
	months []models.BTCUnderManagementMonth,
	holding *models.HoldingBucketResult,
	mining *models.WaterfallResult,
) models.BTCUnderManagementMetrics {
	var m models.BTCUnderManagementMetrics
	if len(months) == 0 {
		return m
	}

	final := months[len(months)-1]
	m.FinalTotalBTC = final.TotalBTC
	m.FinalTotalValueUSD = final.TotalValueUSD
	m.FinalHoldingBTC = final.HoldingBTC
	m.FinalMiningCapBTC = final.MiningCapBTC

	for _, row := range months {
		if row.TotalBTC > m.PeakBTCQty {
			m.PeakBTCQty = row.TotalBTC
		}
		if row.TotalValueUSD > m.PeakBTCValueUSD {
			m.PeakBTCValueUSD = row.TotalValueUSD
		}
	}

	m.HoldingTargetStruck = holding.Metrics.TargetHit
	m.HoldingStrikeMonth = holding.Metrics.SellMonth
	m.HoldingStrikePriceUSD = holding.Metrics.SellPriceUSD
	m.MiningTotalBTCAccumulated = mining.Metrics.CapitalizationBTCFinal
	return m
}

// SimulateAllScenarios runs the product across every provided scenario,
// keyed by scenario name.
func SimulateAllScenarios(
	cfg models.MultiBucketConfig,
	scenarioCurves map[string]models.ScenarioCurves,
) (map[string]*models.MultiBucketResult, error) {
	results := make(map[string]*models.MultiBucketResult, len(scenarioCurves))
	for name, curves := range scenarioCurves {
		res, err := SimulateScenario(cfg, curves)
		if err != nil {
			return nil, err
		}
		results[name] = res
	}
	return results, nil
}
