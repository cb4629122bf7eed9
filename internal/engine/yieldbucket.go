package engine

import (
	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// SimulateYieldBucket runs the deterministic compounding yield bucket. The
// APR schedule overrides the base APR per inclusive month range; the first
// matching entry wins.
func SimulateYieldBucket(cfg models.YieldBucketConfig, tenorMonths int) (*models.YieldBucketResult, error) {
	if tenorMonths <= 0 {
		return nil, utils.NewValidationErrorf("tenor months must be positive, got %d", tenorMonths)
	}
	if cfg.AllocatedUSD < 0 {
		return nil, utils.NewValidationErrorf("allocated capital must be non-negative, got %v", cfg.AllocatedUSD)
	}

	res := &models.YieldBucketResult{
		MonthlyData: make([]models.YieldBucketMonth, 0, tenorMonths),
	}

	cumulativeYield := 0.0
	currentValue := cfg.AllocatedUSD
	for t := 0; t < tenorMonths; t++ {
		apr := cfg.BaseAPR
		for _, entry := range cfg.APRSchedule {
			if entry.FromMonth <= t && t <= entry.ToMonth {
				apr = entry.APR
				break
			}
		}

		monthlyYield := currentValue * apr / 12.0
		cumulativeYield += monthlyYield
		currentValue += monthlyYield

		res.MonthlyData = append(res.MonthlyData, models.YieldBucketMonth{
			Month:              t,
			APRApplied:         utils.RoundRate(apr),
			MonthlyYieldUSD:    utils.RoundUSD(monthlyYield),
			CumulativeYieldUSD: utils.RoundUSD(cumulativeYield),
			BucketValueUSD:     utils.RoundUSD(currentValue),
		})
	}

	effectiveAPR := 0.0
	if cfg.AllocatedUSD > 0 {
		effectiveAPR = (cumulativeYield / cfg.AllocatedUSD) / (float64(tenorMonths) / 12.0)
	}
	res.Metrics.AllocatedUSD = utils.RoundUSD(cfg.AllocatedUSD)
	res.Metrics.FinalValueUSD = utils.RoundUSD(currentValue)
	res.Metrics.TotalYieldUSD = utils.RoundUSD(cumulativeYield)
	res.Metrics.EffectiveAPR = utils.RoundRate(effectiveAPR)
	return res, nil
}
