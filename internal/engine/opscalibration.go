package engine

import (
	"fmt"
	"sort"

	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// CalibrationInput pairs observed fleet history with the curves and
// assumptions the original projection was made under.
type CalibrationInput struct {
	History              []models.OpsHistoryEntry
	BTCPrices            []float64
	HashpriceBTCPerPHDay []float64
	HashrateTH           float64
	PowerW               float64
	AssumedUptime        float64
	ElectricityRate      float64
}

// CalibrateOps compares predicted against observed production and derives
// correction factors to apply to future runs. Production shortfalls beyond
// 15% raise a red flag; overshoots beyond 10% suggest the model was
// conservative.
func CalibrateOps(in CalibrationInput) (*models.CalibrationResult, error) {
	if len(in.History) == 0 {
		return nil, utils.NewValidationError("calibration requires at least one month of history")
	}
	if in.AssumedUptime <= 0 {
		return nil, utils.NewValidationErrorf("assumed uptime must be positive, got %v", in.AssumedUptime)
	}

	res := &models.CalibrationResult{}
	minerPH := in.HashrateTH / 1000.0

	var actualUptimes, actualProd, predictedProd []float64
	for i, entry := range in.History {
		if i >= len(in.BTCPrices) || i >= len(in.HashpriceBTCPerPHDay) {
			break
		}

		predictedBTC := in.HashpriceBTCPerPHDay[i] * minerPH * DaysPerMonth * in.AssumedUptime
		predictedEnergyKWh := (in.PowerW / 1000.0) * 24.0 * DaysPerMonth * in.AssumedUptime

		actualUptimes = append(actualUptimes, entry.Uptime)
		actualProd = append(actualProd, entry.BTCProduced)
		predictedProd = append(predictedProd, predictedBTC)

		variancePct := 0.0
		if predictedBTC > 0 {
			variancePct = (entry.BTCProduced - predictedBTC) / predictedBTC * 100
		}

		res.MonthlyComparison = append(res.MonthlyComparison, models.CalibrationMonth{
			Month:              entry.Month,
			PredictedBTC:       utils.RoundBTC(predictedBTC),
			ActualBTC:          utils.RoundBTC(entry.BTCProduced),
			VariancePct:        utils.RoundUSD(variancePct),
			PredictedEnergyKWh: utils.RoundUSD(predictedEnergyKWh),
			ActualEnergyKWh:    utils.RoundUSD(entry.EnergyKWh),
			ActualUptime:       utils.RoundRate(entry.Uptime),
		})
	}

	avgActualUptime := in.AssumedUptime
	if len(actualUptimes) > 0 {
		avgActualUptime = mean(actualUptimes)
	}
	avgActualProd := mean(actualProd)
	avgPredictedProd := mean(predictedProd)

	uptimeFactor := avgActualUptime / in.AssumedUptime
	productionAdj := 1.0
	if avgPredictedProd > 0 {
		productionAdj = avgActualProd / avgPredictedProd
	}

	if uptimeFactor < 0.9 {
		res.Flags = append(res.Flags, fmt.Sprintf(
			"WARNING: Realized uptime factor %.2f is below 0.90, model is optimistic", uptimeFactor))
	}
	if productionAdj < 0.85 {
		res.Flags = append(res.Flags, fmt.Sprintf(
			"RED FLAG: Production is %.0f%% below model, significant gap", (1-productionAdj)*100))
	}
	if productionAdj > 1.1 {
		res.Flags = append(res.Flags, fmt.Sprintf(
			"INFO: Production is %.0f%% above model, model may be conservative", (productionAdj-1)*100))
	}

	variances := make([]float64, 0, len(res.MonthlyComparison))
	for _, m := range res.MonthlyComparison {
		variances = append(variances, m.VariancePct)
	}
	if len(variances) > 0 {
		sort.Float64s(variances)
		p50 := variances[len(variances)/2]
		p90Idx := int(float64(len(variances)) * 0.9)
		if p90Idx > len(variances)-1 {
			p90Idx = len(variances) - 1
		}
		res.VarianceP50 = utils.RoundUSD(p50)
		res.VarianceP90 = utils.RoundUSD(variances[p90Idx])
	}

	res.RealizedUptimeFactor = utils.RoundRate(uptimeFactor)
	// Efficiency is proxied by the production ratio until per-machine
	// telemetry lands.
	res.RealizedEfficiencyFactor = utils.RoundRate(productionAdj)
	res.ProductionAdjustment = utils.RoundRate(productionAdj)
	return res, nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
