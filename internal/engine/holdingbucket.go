package engine

import (
	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// SimulateHoldingBucket runs the BTC holding bucket. The allocation buys BTC
// at the entry price and splits it between capital reconstitution (sold once
// when the target price is hit) and an extra-yield strike ladder (each rung
// sold once at its strike). All sells latch permanently.
func SimulateHoldingBucket(
	cfg models.HoldingBucketConfig,
	btcPrices []float64,
	tenorMonths int,
) (*models.HoldingBucketResult, error) {
	if tenorMonths <= 0 {
		return nil, utils.NewValidationErrorf("tenor months must be positive, got %d", tenorMonths)
	}

	buyingPrice := cfg.BuyingPriceUSD
	if buyingPrice <= 0 {
		buyingPrice = 1.0
	}

	totalBTC := cfg.AllocatedUSD / buyingPrice
	capitalReconBTC := totalBTC * cfg.CapitalReconPct / 100.0
	extraYieldBTC := totalBTC * (100.0 - cfg.CapitalReconPct) / 100.0

	strikes := make([]models.StrikeStatus, 0, len(cfg.ExtraYieldStrikes))
	for _, s := range cfg.ExtraYieldStrikes {
		strikes = append(strikes, models.StrikeStatus{
			StrikePrice: s.StrikePrice,
			BTCAmount:   extraYieldBTC * s.BTCSharePct / 100.0,
		})
	}

	res := &models.HoldingBucketResult{}

	reconSold := false
	var reconSellMonth *int
	var reconSellPrice *float64
	reconRealized := 0.0
	totalExtraRealized := 0.0

	simMonths := tenorMonths
	if len(btcPrices) < simMonths {
		simMonths = len(btcPrices)
	}

	for t := 0; t < simMonths; t++ {
		spot := btcPrices[t]

		if !reconSold && capitalReconBTC > 0 && spot >= cfg.TargetSellPriceUSD {
			reconSold = true
			month := t
			price := spot
			reconSellMonth = &month
			reconSellPrice = &price
			reconRealized = capitalReconBTC * spot
		}

		remainingReconBTC := capitalReconBTC
		if reconSold {
			remainingReconBTC = 0
		}

		extraThisMonth := 0.0
		for i := range strikes {
			if !strikes[i].Sold && strikes[i].BTCAmount > 0 && spot >= strikes[i].StrikePrice {
				strikes[i].Sold = true
				month := t
				strikes[i].SellMonth = &month
				strikes[i].RealizedUSD = utils.RoundUSD(strikes[i].BTCAmount * spot)
				totalExtraRealized += strikes[i].BTCAmount * spot
				extraThisMonth += strikes[i].BTCAmount * spot
			}
		}

		remainingExtraBTC := 0.0
		for _, s := range strikes {
			if !s.Sold {
				remainingExtraBTC += s.BTCAmount
			}
		}

		unsoldBTC := remainingReconBTC + remainingExtraBTC
		currentValue := unsoldBTC*spot + reconRealized + totalExtraRealized
		unrealizedPnL := 0.0
		if unsoldBTC > 0 {
			unrealizedPnL = unsoldBTC*spot - unsoldBTC*buyingPrice
		}

		res.MonthlyData = append(res.MonthlyData, models.HoldingBucketMonth{
			Month:                  t,
			BTCPriceUSD:            utils.RoundUSD(spot),
			BTCQuantity:            utils.RoundBTC(unsoldBTC),
			CapitalReconBTC:        utils.RoundBTC(remainingReconBTC),
			ExtraYieldBTC:          utils.RoundBTC(remainingExtraBTC),
			BucketValueUSD:         utils.RoundUSD(currentValue),
			UnrealizedPnLUSD:       utils.RoundUSD(unrealizedPnL),
			ReconRealizedUSD:       utils.RoundUSD(reconRealized),
			ExtraYieldRealizedUSD:  utils.RoundUSD(totalExtraRealized),
			ExtraYieldThisMonthUSD: utils.RoundUSD(extraThisMonth),
			ReconSold:              reconSold,
		})
	}

	finalUnsoldBTC := 0.0
	if !reconSold {
		finalUnsoldBTC = capitalReconBTC
	}
	for _, s := range strikes {
		if !s.Sold {
			finalUnsoldBTC += s.BTCAmount
		}
	}
	finalSpot := buyingPrice
	if simMonths > 0 {
		finalSpot = btcPrices[simMonths-1]
	}
	finalValue := finalUnsoldBTC*finalSpot + reconRealized + totalExtraRealized

	totalReturnPct := 0.0
	if cfg.AllocatedUSD > 0 {
		totalReturnPct = (finalValue - cfg.AllocatedUSD) / cfg.AllocatedUSD
	}

	if reconSellPrice != nil {
		rounded := utils.RoundUSD(*reconSellPrice)
		reconSellPrice = &rounded
	}
	for i := range strikes {
		strikes[i].BTCAmount = utils.RoundBTC(strikes[i].BTCAmount)
	}

	res.Metrics = models.HoldingBucketMetrics{
		AllocatedUSD:       utils.RoundUSD(cfg.AllocatedUSD),
		BuyingPriceUSD:     utils.RoundUSD(buyingPrice),
		TargetSellPriceUSD: utils.RoundUSD(cfg.TargetSellPriceUSD),
		BTCQuantity:        utils.RoundBTC(totalBTC),
		CapitalReconPct:    utils.RoundUSD(cfg.CapitalReconPct),
		CapitalReconBTC:    utils.RoundBTC(capitalReconBTC),
		TargetHit:          reconSold,
		SellMonth:          reconSellMonth,
		SellPriceUSD:       reconSellPrice,
		ReconRealizedUSD:   utils.RoundUSD(reconRealized),
		ExtraYieldBTC:      utils.RoundBTC(extraYieldBTC),
		ExtraYieldStrikes:  strikes,
		ExtraYieldTotalUSD: utils.RoundUSD(totalExtraRealized),
		FinalValueUSD:      utils.RoundUSD(finalValue),
		TotalReturnPct:     utils.RoundRate(totalReturnPct),
	}
	return res, nil
}
