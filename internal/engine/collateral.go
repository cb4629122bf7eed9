package engine

import (
	"github.com/google/uuid"

	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// ltvCeiling stands in for LTV when collateral value reaches zero.
const ltvCeiling = 999.0

// SimulateCollateral runs the BTC-as-collateral product for one scenario.
// Capital splits into purchased BTC collateral and a yield-bearing stablecoin
// reserve; miners are bought only from stablecoins minted against the
// collateral, and debt is repaid only at strike prices.
func SimulateCollateral(cfg models.CollateralConfig, curves models.ScenarioCurves) (*models.CollateralResult, error) {
	if cfg.CapitalRaisedUSD <= 0 {
		return nil, utils.NewValidationErrorf("capital raised must be positive, got %v", cfg.CapitalRaisedUSD)
	}
	if cfg.TenorMonths <= 0 {
		return nil, utils.NewValidationErrorf("tenor months must be positive, got %d", cfg.TenorMonths)
	}
	if cfg.BTCAllocationPct < 0 || cfg.BTCAllocationPct > 100 {
		return nil, utils.NewValidationErrorf("btc allocation pct must be in [0,100], got %v", cfg.BTCAllocationPct)
	}

	// Inception: upfront fee, capital split, BTC purchase, capex mint.
	effectiveCapital := cfg.CapitalRaisedUSD
	upfrontFee := 0.0
	if cfg.Commercial.UpfrontPct > 0 {
		upfrontFee = cfg.CapitalRaisedUSD * cfg.Commercial.UpfrontPct / 100.0
		effectiveCapital -= upfrontFee
	}

	btcCapital := effectiveCapital * cfg.BTCAllocationPct / 100.0
	reserve := effectiveCapital - btcCapital
	initialReserve := reserve

	btcPurchased := 0.0
	if cfg.BuyingPriceUSD > 0 {
		btcPurchased = btcCapital / cfg.BuyingPriceUSD
	}
	btcCollateral := btcPurchased

	maxMintable := btcCollateral * cfg.BuyingPriceUSD * cfg.CollateralLTVPct / 100.0
	debt := 0.0

	minerCapex := float64(cfg.MinerCount) * cfg.Miner.PriceUSD
	mintedForCapex := minerCapex
	if maxMintable < mintedForCapex {
		mintedForCapex = maxMintable
	}
	if mintedForCapex < 0 {
		mintedForCapex = 0
	}
	debt += mintedForCapex

	effectiveUptime := cfg.Uptime * (1 - cfg.CurtailmentPct)
	fleetHashrateTH := cfg.Miner.HashrateTH * float64(cfg.MinerCount)
	fleetPowerKW := cfg.Miner.PowerW * float64(cfg.MinerCount) / 1000.0

	strikes := make([]models.CollateralStrikeStatus, 0, len(cfg.StrikeLadder))
	for _, s := range cfg.StrikeLadder {
		strikes = append(strikes, models.CollateralStrikeStatus{
			StrikePrice: s.StrikePrice,
			BTCSellPct:  s.BTCSellPct,
		})
	}

	res := &models.CollateralResult{RunID: uuid.NewString()}

	totalBTCMined := 0.0
	totalInterest := 0.0
	totalOpex := 0.0
	totalDebtRepaid := 0.0
	totalMgmtFees := 0.0
	totalReserveYield := 0.0
	liquidationMonths := 0

	cumulativeYieldPaid := 0.0
	totalYieldPaid := 0.0
	bonusActive := false
	var earlyCloseMonth *int

	simMonths := cfg.TenorMonths
	if len(curves.BTCPrices) < simMonths {
		simMonths = len(curves.BTCPrices)
	}
	if len(curves.HashpriceBTCPerPHDay) < simMonths {
		simMonths = len(curves.HashpriceBTCPerPHDay)
	}

	for t := 0; t < simMonths; t++ {
		spot := curves.BTCPrices[t]
		hashprice := curves.HashpriceBTCPerPHDay[t]

		// Reserve compounds before anything draws on it.
		reserveYield := reserve * cfg.ReserveYieldAPR / 12.0
		reserve += reserveYield
		totalReserveYield += reserveYield

		// Production goes straight into the collateral pool.
		fleetPH := fleetHashrateTH / 1000.0
		btcProduced := hashprice * fleetPH * DaysPerMonth * effectiveUptime
		totalBTCMined += btcProduced
		btcCollateral += btcProduced

		elecKWh := fleetPowerKW * 24.0 * DaysPerMonth * effectiveUptime
		elecCost := elecKWh * cfg.ElectricityRate
		hostingFee := fleetPowerKW * cfg.HostingFeePerKWMon
		maintenance := btcProduced * spot * cfg.Miner.MaintenancePct
		opex := elecCost + hostingFee + maintenance
		totalOpex += opex

		// OPEX from reserve first, minting against collateral for the rest.
		opexFromReserve := opex
		if reserve < opexFromReserve {
			opexFromReserve = reserve
		}
		reserve -= opexFromReserve
		opexRemaining := opex - opexFromReserve

		mintedForOpex := 0.0
		opexShortfall := false
		if opexRemaining > 0 {
			collateralValue := btcCollateral * spot
			mintable := collateralValue*cfg.CollateralLTVPct/100.0 - debt
			if mintable < 0 {
				mintable = 0
			}
			mintedForOpex = opexRemaining
			if mintable < mintedForOpex {
				mintedForOpex = mintable
			}
			debt += mintedForOpex
			if mintedForOpex < opexRemaining {
				opexShortfall = true
			}
		}

		// Interest compounds into the debt.
		interest := debt * cfg.BorrowingAPR / 12.0
		debt += interest
		totalInterest += interest

		// Management fee also accrues to debt.
		mgmtFee := 0.0
		if cfg.Commercial.ManagementPct > 0 {
			mgmtFee = cfg.CapitalRaisedUSD * cfg.Commercial.ManagementPct / 100.0 / 12.0
			debt += mgmtFee
			totalMgmtFees += mgmtFee
		}

		// Investor yield: reserve first, then selling mined collateral.
		// Stops for good once the early-close threshold is reached.
		currentAPR := cfg.BaseYieldAPR
		if bonusActive {
			currentAPR += cfg.BonusYieldAPR
		}
		yieldObligation := cfg.CapitalRaisedUSD * currentAPR / 12.0

		yieldFromReserve := 0.0
		yieldFromBTCSale := 0.0
		yieldBTCSold := 0.0
		yieldPaid := 0.0

		if earlyCloseMonth == nil {
			yieldFromReserve = yieldObligation
			if reserve < yieldFromReserve {
				yieldFromReserve = reserve
			}
			reserve -= yieldFromReserve
			yieldRemaining := yieldObligation - yieldFromReserve

			if yieldRemaining > 0 && spot > 0 && btcCollateral > 0 {
				btcNeeded := yieldRemaining / spot
				yieldBTCSold = btcNeeded
				if btcCollateral < yieldBTCSold {
					yieldBTCSold = btcCollateral
				}
				yieldFromBTCSale = yieldBTCSold * spot
				btcCollateral -= yieldBTCSold
			}

			yieldPaid = yieldFromReserve + yieldFromBTCSale
			cumulativeYieldPaid += yieldPaid
			totalYieldPaid += yieldPaid

			if cfg.EarlyCloseThreshold > 0 &&
				cumulativeYieldPaid >= cfg.EarlyCloseThreshold*cfg.CapitalRaisedUSD {
				month := t
				earlyCloseMonth = &month
			}
		}

		yieldFulfillment := 1.0
		if yieldObligation > 0 {
			yieldFulfillment = yieldPaid / yieldObligation
		}

		collateralValue := btcCollateral * spot
		ltv := ltvCeiling
		if collateralValue > 0 {
			ltv = debt / collateralValue * 100.0
		}
		liquidationRisk := ltv >= cfg.LiquidationLTVPct
		if liquidationRisk {
			liquidationMonths++
		}

		// Strike ladder: sell collateral, repay debt, surplus to reserve.
		strikeSoldBTC := 0.0
		strikeReceived := 0.0
		strikeRepaid := 0.0
		for i := range strikes {
			if strikes[i].Triggered || btcCollateral <= 0 {
				continue
			}
			if spot >= strikes[i].StrikePrice {
				sellBTC := btcCollateral * strikes[i].BTCSellPct / 100.0
				proceeds := sellBTC * spot
				repay := proceeds
				if debt < repay {
					repay = debt
				}
				debt -= repay
				reserve += proceeds - repay

				btcCollateral -= sellBTC
				strikeSoldBTC += sellBTC
				strikeReceived += proceeds
				strikeRepaid += repay
				totalDebtRepaid += repay

				strikes[i].Triggered = true
				month := t
				strikes[i].TriggerMonth = &month
				strikes[i].BTCSold = utils.RoundBTC(sellBTC)
				strikes[i].USDReceived = utils.RoundUSD(proceeds)
				strikes[i].DebtRepaid = utils.RoundUSD(repay)

				bonusActive = true

				res.StrikeEvents = append(res.StrikeEvents, models.CollateralStrikeEvent{
					Month:            t,
					StrikePrice:      strikes[i].StrikePrice,
					BTCPriceUSD:      utils.RoundUSD(spot),
					BTCSold:          utils.RoundBTC(sellBTC),
					USDReceived:      utils.RoundUSD(proceeds),
					DebtRepaid:       utils.RoundUSD(repay),
					SurplusToReserve: utils.RoundUSD(proceeds - repay),
					RemainingDebt:    utils.RoundUSD(debt),
					RemainingBTC:     utils.RoundBTC(btcCollateral),
				})
			}
		}

		collateralValue = btcCollateral * spot
		ltv = ltvCeiling
		if collateralValue > 0 {
			ltv = debt / collateralValue * 100.0
		}
		if ltv > ltvCeiling {
			ltv = ltvCeiling
		}
		netEquity := collateralValue - debt + reserve

		res.MiningProduction = append(res.MiningProduction, models.CollateralProductionMonth{
			Month:          t,
			BTCPriceUSD:    utils.RoundUSD(spot),
			BTCProduced:    utils.RoundBTC(btcProduced),
			OpexUSD:        utils.RoundUSD(opex),
			ElecCostUSD:    utils.RoundUSD(elecCost),
			HostingFeeUSD:  utils.RoundUSD(hostingFee),
			MaintenanceUSD: utils.RoundUSD(maintenance),
		})

		res.MonthlyData = append(res.MonthlyData, models.CollateralMonth{
			Month:                     t,
			BTCPriceUSD:               utils.RoundUSD(spot),
			BTCMined:                  utils.RoundBTC(btcProduced),
			BTCCollateral:             utils.RoundBTC(btcCollateral),
			CollateralValueUSD:        utils.RoundUSD(collateralValue),
			StablecoinReserve:         utils.RoundUSD(reserve),
			StablecoinDebt:            utils.RoundUSD(debt),
			MintedForOpex:             utils.RoundUSD(mintedForOpex),
			InterestUSD:               utils.RoundUSD(interest),
			MgmtFeeUSD:                utils.RoundUSD(mgmtFee),
			ReserveYieldUSD:           utils.RoundUSD(reserveYield),
			CumulativeReserveYieldUSD: utils.RoundUSD(totalReserveYield),
			YieldPaidUSD:              utils.RoundUSD(yieldPaid),
			YieldFromReserveUSD:       utils.RoundUSD(yieldFromReserve),
			YieldFromBTCSaleUSD:       utils.RoundUSD(yieldFromBTCSale),
			YieldBTCSold:              utils.RoundBTC(yieldBTCSold),
			YieldObligationUSD:        utils.RoundUSD(yieldObligation),
			YieldAPRApplied:           utils.RoundRate(currentAPR),
			YieldFulfillment:          utils.RoundRate(yieldFulfillment),
			CumulativeYieldPaidUSD:    utils.RoundUSD(cumulativeYieldPaid),
			BonusYieldActive:          bonusActive,
			OpexUSD:                   utils.RoundUSD(opex),
			OpexFromReserve:           utils.RoundUSD(opexFromReserve),
			OpexShortfall:             opexShortfall,
			LTVPct:                    utils.RoundUSD(ltv),
			LiquidationRisk:           liquidationRisk,
			NetEquityUSD:              utils.RoundUSD(netEquity),
			StrikeSoldBTC:             utils.RoundBTC(strikeSoldBTC),
			StrikeReceivedUSD:         utils.RoundUSD(strikeReceived),
			StrikeDebtRepaid:          utils.RoundUSD(strikeRepaid),
		})
	}

	res.StrikeLadderStatus = strikes
	res.Metrics = collateralMetrics(cfg, res.MonthlyData, collateralRunTotals{
		effectiveCapital:    effectiveCapital,
		initialReserve:      initialReserve,
		btcPurchased:        btcPurchased,
		minerCapex:          minerCapex,
		mintedForCapex:      mintedForCapex,
		totalBTCMined:       totalBTCMined,
		totalOpex:           totalOpex,
		totalInterest:       totalInterest,
		totalDebtRepaid:     totalDebtRepaid,
		totalReserveYield:   totalReserveYield,
		totalYieldPaid:      totalYieldPaid,
		cumulativeYieldPaid: cumulativeYieldPaid,
		liquidationMonths:   liquidationMonths,
		earlyCloseMonth:     earlyCloseMonth,
		upfrontFee:          upfrontFee,
		totalMgmtFees:       totalMgmtFees,
		strikes:             strikes,
		simMonths:           simMonths,
	})
	return res, nil
}

type collateralRunTotals struct {
	effectiveCapital    float64
	initialReserve      float64
	btcPurchased        float64
	minerCapex          float64
	mintedForCapex      float64
	totalBTCMined       float64
	totalOpex           float64
	totalInterest       float64
	totalDebtRepaid     float64
	totalReserveYield   float64
	totalYieldPaid      float64
	cumulativeYieldPaid float64
	liquidationMonths   int
	earlyCloseMonth     *int
	upfrontFee          float64
	totalMgmtFees       float64
	strikes             []models.CollateralStrikeStatus
	simMonths           int
}

func collateralMetrics(
	cfg models.CollateralConfig,
	monthly []models.CollateralMonth,
	run collateralRunTotals,
) models.CollateralMetrics {
	m := models.CollateralMetrics{
		CapitalRaisedUSD:       utils.RoundUSD(cfg.CapitalRaisedUSD),
		EffectiveCapitalUSD:    utils.RoundUSD(run.effectiveCapital),
		BTCPurchased:           utils.RoundBTC(run.btcPurchased),
		BTCPurchasePriceUSD:    utils.RoundUSD(cfg.BuyingPriceUSD),
		InitialReserveUSD:      utils.RoundUSD(run.initialReserve),
		MinerCapexUSD:          utils.RoundUSD(run.minerCapex),
		MintedForCapexUSD:      utils.RoundUSD(run.mintedForCapex),
		TotalBTCMined:          utils.RoundBTC(run.totalBTCMined),
		TotalOpexPaidUSD:       utils.RoundUSD(run.totalOpex),
		TotalInterestPaidUSD:   utils.RoundUSD(run.totalInterest),
		TotalDebtRepaidUSD:     utils.RoundUSD(run.totalDebtRepaid),
		TotalReserveYieldUSD:   utils.RoundUSD(run.totalReserveYield),
		ReserveYieldAPR:        utils.RoundRate(cfg.ReserveYieldAPR),
		TotalYieldPaidUSD:      utils.RoundUSD(run.totalYieldPaid),
		CumulativeYieldPaidUSD: utils.RoundUSD(run.cumulativeYieldPaid),
		BaseYieldAPR:           utils.RoundRate(cfg.BaseYieldAPR),
		BonusYieldAPR:          utils.RoundRate(cfg.BonusYieldAPR),
		CombinedYieldAPR:       utils.RoundRate(cfg.BaseYieldAPR + cfg.BonusYieldAPR),
		EarlyCloseTriggered:    run.earlyCloseMonth != nil,
		EarlyCloseMonth:        run.earlyCloseMonth,
		EarlyCloseThreshold:    utils.RoundRate(cfg.EarlyCloseThreshold),
		LiquidationRiskMonths:  run.liquidationMonths,
		StrikesTotal:           len(run.strikes),
		UpfrontFeeUSD:          utils.RoundUSD(run.upfrontFee),
		TotalMgmtFeesUSD:       utils.RoundUSD(run.totalMgmtFees),
		EffectiveMonths:        run.simMonths,
	}

	if len(monthly) > 0 {
		final := monthly[len(monthly)-1]
		m.FinalBTCCollateral = final.BTCCollateral
		m.FinalCollateralValueUSD = final.CollateralValueUSD
		m.FinalStablecoinDebt = final.StablecoinDebt
		m.FinalStablecoinReserve = final.StablecoinReserve
		m.FinalNetEquityUSD = final.NetEquityUSD
		m.FinalLTVPct = final.LTVPct

		maxLTV := monthly[0].LTVPct
		minLTV := monthly[0].LTVPct
		for _, row := range monthly {
			if row.LTVPct > maxLTV {
				maxLTV = row.LTVPct
			}
			if row.LTVPct < minLTV {
				minLTV = row.LTVPct
			}
		}
		m.MaxLTVPct = utils.RoundUSD(maxLTV)
		m.MinLTVPct = utils.RoundUSD(minLTV)

		if cfg.CapitalRaisedUSD > 0 {
			m.TotalReturnPct = utils.RoundRate(
				(final.NetEquityUSD - cfg.CapitalRaisedUSD) / cfg.CapitalRaisedUSD)
			m.CumulativeYieldPct = utils.RoundRate(run.cumulativeYieldPaid / cfg.CapitalRaisedUSD)
			if run.simMonths > 0 {
				m.EffectiveYieldAPR = utils.RoundRate(
					(run.cumulativeYieldPaid / cfg.CapitalRaisedUSD) / (float64(run.simMonths) / 12.0))
			}
		}

		netGain := final.NetEquityUSD - cfg.CapitalRaisedUSD
		if cfg.Commercial.PerformancePct > 0 && netGain > 0 {
			m.PerformanceFeeUSD = utils.RoundUSD(netGain * cfg.Commercial.PerformancePct / 100.0)
		}
	}

	for _, s := range run.strikes {
		if s.Triggered {
			m.StrikesTriggered++
		}
	}
	m.TotalCommercialUSD = utils.RoundUSD(run.upfrontFee + run.totalMgmtFees + m.PerformanceFeeUSD)
	return m
}

// SimulateCollateralAllScenarios runs the collateral product across every
// provided scenario, keyed by scenario name.
func SimulateCollateralAllScenarios(
	cfg models.CollateralConfig,
	scenarioCurves map[string]models.ScenarioCurves,
) (map[string]*models.CollateralResult, error) {
	results := make(map[string]*models.CollateralResult, len(scenarioCurves))
	for name, curves := range scenarioCurves {
		res, err := SimulateCollateral(cfg, curves)
		if err != nil {
			return nil, err
		}
		results[name] = res
	}
	return results, nil
}
