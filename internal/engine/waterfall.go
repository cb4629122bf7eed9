package engine

import (
	"fmt"

	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// WaterfallTuning holds the thresholds of the deficit and decision rules.
// Zero values fall back to the defaults below.
type WaterfallTuning struct {
	// DeficitCoverageFloor is the fraction of monthly OPEX that production
	// must cover before any yield is paid.
	DeficitCoverageFloor float64
	// BlockedDeficitShare blocks the product when more than this share of
	// months run a deficit.
	BlockedDeficitShare float64
	// AdjustDeficitShare requests adjustment above this deficit share.
	AdjustDeficitShare float64
	// AdjustHealthFloor requests adjustment when final health drops below it.
	AdjustHealthFloor float64
}

// DefaultWaterfallTuning mirrors the production thresholds.
func DefaultWaterfallTuning() WaterfallTuning {
	return WaterfallTuning{
		DeficitCoverageFloor: 0.95,
		BlockedDeficitShare:  0.20,
		AdjustDeficitShare:   0.10,
		AdjustHealthFloor:    50.0,
	}
}

func (t WaterfallTuning) withDefaults() WaterfallTuning {
	def := DefaultWaterfallTuning()
	if t.DeficitCoverageFloor == 0 {
		t.DeficitCoverageFloor = def.DeficitCoverageFloor
	}
	if t.BlockedDeficitShare == 0 {
		t.BlockedDeficitShare = def.BlockedDeficitShare
	}
	if t.AdjustDeficitShare == 0 {
		t.AdjustDeficitShare = def.AdjustDeficitShare
	}
	if t.AdjustHealthFloor == 0 {
		t.AdjustHealthFloor = def.AdjustHealthFloor
	}
	return t
}

// WaterfallInput bundles the curves, bucket config, and cross-bucket signal
// for one mining waterfall run.
type WaterfallInput struct {
	Config               models.MiningBucketConfig
	BTCPrices            []float64
	HashpriceBTCPerPHDay []float64
	// HoldingSellMonth is the month the BTC holding bucket hit its target,
	// which unlocks the bonus yield APR. Nil means never hit.
	HoldingSellMonth *int
	Tuning           WaterfallTuning
}

// SimulateWaterfall runs the mining bucket cashflow waterfall. Monthly
// priority is OPEX first, then yield up to the APR cap, then capitalization.
// Capital reconstitution is the holding bucket's job, not the waterfall's.
func SimulateWaterfall(in WaterfallInput) (*models.WaterfallResult, error) {
	cfg := in.Config
	if cfg.TenorMonths <= 0 {
		return nil, utils.NewValidationErrorf("tenor months must be positive, got %d", cfg.TenorMonths)
	}
	if cfg.MinerCount <= 0 {
		return nil, utils.NewValidationErrorf("miner count must be positive, got %d", cfg.MinerCount)
	}
	tuning := in.Tuning.withDefaults()

	// Calibration factors default to neutral.
	uptimeFactor := cfg.CalibrationUptime
	if uptimeFactor == 0 {
		uptimeFactor = 1.0
	}
	prodAdj := cfg.CalibrationProdAdj
	if prodAdj == 0 {
		prodAdj = 1.0
	}

	effectiveUptime := cfg.Uptime * uptimeFactor * (1 - cfg.CurtailmentPct)
	fleetHashrateTH := cfg.Miner.HashrateTH * float64(cfg.MinerCount)
	fleetPowerKW := cfg.Miner.PowerW * float64(cfg.MinerCount) / 1000.0

	// Ladder state is local to the run so a config can be reused.
	ladder := make([]models.TakeProfitEntry, len(cfg.TakeProfitLadder))
	copy(ladder, cfg.TakeProfitLadder)

	simMonths := cfg.TenorMonths
	if len(in.BTCPrices) < simMonths {
		simMonths = len(in.BTCPrices)
	}
	if len(in.HashpriceBTCPerPHDay) < simMonths {
		simMonths = len(in.HashpriceBTCPerPHDay)
	}

	res := &models.WaterfallResult{
		MonthlyWaterfall: make([]models.WaterfallMonth, 0, simMonths),
	}

	capitalizationBTC := 0.0
	capitalizationUSD := 0.0
	cumulativeYield := 0.0
	totalBTCProduced := 0.0
	totalBTCSold := 0.0
	redFlagMonths := 0

	for t := 0; t < simMonths; t++ {
		spot := in.BTCPrices[t]
		hashprice := in.HashpriceBTCPerPHDay[t]

		// 1) Production with calibration applied.
		fleetPH := fleetHashrateTH / 1000.0
		btcProduced := hashprice * fleetPH * DaysPerMonth * effectiveUptime * prodAdj
		totalBTCProduced += btcProduced

		// 2) OPEX.
		elecKWh := fleetPowerKW * 24.0 * DaysPerMonth * effectiveUptime
		elecCost := elecKWh * cfg.ElectricityRate
		hostingFee := fleetPowerKW * cfg.HostingFeePerKWMon
		maintenance := btcProduced * spot * cfg.Miner.MaintenancePct
		totalOpex := elecCost + hostingFee + maintenance

		// 3) Sell BTC to cover OPEX at spot.
		btcForOpex := 0.0
		if spot > 0 {
			btcForOpex = totalOpex / spot
		}
		btcSellOpex := btcProduced
		if btcForOpex < btcSellOpex {
			btcSellOpex = btcForOpex
		}
		btcRemaining := btcProduced - btcSellOpex
		totalBTCSold += btcSellOpex

		opexCoverage := 999.0
		if totalOpex > 0 {
			opexCoverage = btcProduced * spot / totalOpex
		}

		// 4) Deficit check, then 5) yield and 6) capitalization.
		monthFlag := models.MonthFlagGreen
		yieldPaid := 0.0
		btcForYield := 0.0
		btcToCap := 0.0

		if btcProduced < btcForOpex*tuning.DeficitCoverageFloor {
			monthFlag = models.MonthFlagRed
			redFlagMonths++
			res.Flags = append(res.Flags, fmt.Sprintf(
				"Month %d: DEFICIT, BTC produced (%.6f) < OPEX required (%.6f)",
				t, btcProduced, btcForOpex))
		} else {
			apr := appliedAPR(cfg, in.HoldingSellMonth, t)
			yieldCap := cfg.AllocatedUSD * apr / 12.0
			distributable := btcRemaining * spot
			yieldPaid = distributable
			if yieldCap < yieldPaid {
				yieldPaid = yieldCap
			}
			if spot > 0 {
				btcForYield = yieldPaid / spot
			}
			btcRemaining -= btcForYield
			totalBTCSold += btcForYield

			if btcRemaining > 0 {
				capitalizationBTC += btcRemaining
				btcToCap = btcRemaining
			}
		}
		cumulativeYield += yieldPaid
		capitalizationUSD = capitalizationBTC * spot

		// 7) Take-profit ladder on the capitalization pool. Each rung
		// fires at most once across the run.
		takeProfitSold := 0.0
		for i := range ladder {
			if ladder[i].Triggered || capitalizationBTC <= 0 {
				continue
			}
			if spot >= ladder[i].PriceTrigger {
				sellBTC := capitalizationBTC * ladder[i].SellPct
				takeProfitSold += sellBTC * spot
				capitalizationBTC -= sellBTC
				totalBTCSold += sellBTC
				ladder[i].Triggered = true
				month := t
				ladder[i].TriggerMonth = &month
			}
		}
		capitalizationUSD = capitalizationBTC * spot

		// 8) Ratios and health.
		targetYield := cfg.AllocatedUSD * cfg.BaseYieldAPR / 12.0
		yieldFulfillment := 0.0
		if targetYield > 0 {
			yieldFulfillment = yieldPaid / targetYield
		}
		health := healthScore(opexCoverage, yieldFulfillment, monthFlag)

		res.MonthlyWaterfall = append(res.MonthlyWaterfall, models.WaterfallMonth{
			Month:               t,
			BTCPriceUSD:         utils.RoundUSD(spot),
			BTCProduced:         utils.RoundBTC(btcProduced),
			BTCSellOpex:         utils.RoundBTC(btcSellOpex),
			BTCForYield:         utils.RoundBTC(btcForYield),
			BTCToCapitalization: utils.RoundBTC(btcToCap),
			OpexUSD:             utils.RoundUSD(totalOpex),
			YieldPaidUSD:        utils.RoundUSD(yieldPaid),
			YieldAPRApplied:     utils.RoundRate(appliedAPR(cfg, in.HoldingSellMonth, t)),
			TakeProfitSoldUSD:   utils.RoundUSD(takeProfitSold),
			CapitalizationBTC:   utils.RoundBTC(capitalizationBTC),
			CapitalizationUSD:   utils.RoundUSD(capitalizationUSD),
			OpexCoverageRatio:   utils.RoundRate(opexCoverage),
			YieldFulfillment:    utils.RoundRate(yieldFulfillment),
			HealthScore:         utils.RoundTo(health, 1),
			Flag:                monthFlag,
		})
	}

	// 9) Final metrics and decision.
	finalHealth := 0.0
	avgCoverage := 0.0
	if len(res.MonthlyWaterfall) > 0 {
		finalHealth = res.MonthlyWaterfall[len(res.MonthlyWaterfall)-1].HealthScore
		for _, m := range res.MonthlyWaterfall {
			avgCoverage += m.OpexCoverageRatio
		}
		avgCoverage /= float64(simMonths)
	}
	avgYield := 0.0
	effectiveAPR := 0.0
	if simMonths > 0 {
		avgYield = cumulativeYield / float64(simMonths)
		if cfg.AllocatedUSD > 0 {
			effectiveAPR = (cumulativeYield / cfg.AllocatedUSD) / (float64(simMonths) / 12.0)
		}
	}

	res.Metrics = models.WaterfallMetrics{
		FinalHealthScore:       utils.RoundTo(finalHealth, 1),
		TotalBTCProduced:       utils.RoundBTC(totalBTCProduced),
		TotalBTCSold:           utils.RoundBTC(totalBTCSold),
		CumulativeYieldPaidUSD: utils.RoundUSD(cumulativeYield),
		AvgMonthlyYieldUSD:     utils.RoundUSD(avgYield),
		EffectiveAPR:           utils.RoundRate(effectiveAPR),
		RedFlagMonths:          redFlagMonths,
		CapitalizationBTCFinal: utils.RoundBTC(capitalizationBTC),
		CapitalizationUSDFinal: utils.RoundUSD(capitalizationUSD),
		AvgOpexCoverageRatio:   utils.RoundRate(avgCoverage),
	}

	res.Decision, res.DecisionReasons = makeDecision(redFlagMonths, simMonths, finalHealth, tuning)
	return res, nil
}

func appliedAPR(cfg models.MiningBucketConfig, holdingSellMonth *int, t int) float64 {
	if holdingSellMonth != nil && t >= *holdingSellMonth {
		return cfg.BaseYieldAPR + cfg.BonusYieldAPR
	}
	return cfg.BaseYieldAPR
}

// healthScore maps OPEX coverage, yield fulfillment, and the deficit flag to
// a 0-100 score weighted 50/30/20.
func healthScore(opexCoverage, yieldFulfillment float64, flag string) float64 {
	score := 100.0

	switch {
	case opexCoverage < 1.0:
		score -= 50
	case opexCoverage < 1.2:
		score -= 30 * (1.2 - opexCoverage) / 0.2
	case opexCoverage < 1.5:
		score -= 10 * (1.5 - opexCoverage) / 0.3
	}

	if yieldFulfillment < 0.5 {
		score -= 30 * (1 - yieldFulfillment/0.5)
	} else if yieldFulfillment < 1.0 {
		score -= 15 * (1 - yieldFulfillment)
	}

	if flag == models.MonthFlagRed {
		score -= 20
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func makeDecision(redMonths, totalMonths int, health float64, tuning WaterfallTuning) (models.Decision, []string) {
	var reasons []string

	if float64(redMonths) > float64(totalMonths)*tuning.BlockedDeficitShare {
		reasons = append(reasons, fmt.Sprintf("Too many deficit months (%d/%d)", redMonths, totalMonths))
		return models.DecisionBlocked, reasons
	}
	if health < tuning.AdjustHealthFloor {
		reasons = append(reasons, fmt.Sprintf("Health score below target (%.0f/100)", health))
		return models.DecisionAdjust, reasons
	}
	if float64(redMonths) > float64(totalMonths)*tuning.AdjustDeficitShare {
		reasons = append(reasons, fmt.Sprintf("Elevated deficit months (%d/%d)", redMonths, totalMonths))
		return models.DecisionAdjust, reasons
	}
	reasons = append(reasons, "All metrics within acceptable ranges")
	return models.DecisionApproved, reasons
}
