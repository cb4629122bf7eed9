package engine

import (
	"github.com/shopspring/decimal"

	"github.com/loicricci/Hearstconnect/internal/models"
)

// CommercialFeesInput drives the commercial fee calculator for one scenario.
// Percentages use a 0-100 scale.
type CommercialFeesInput struct {
	CapitalRaisedUSD float64
	TenorMonths      int
	Config           models.CommercialFeesConfig
	// CapitalizationMonthlyUSD is the mining bucket's monthly mark-to-market
	// capitalization, the pool ongoing fees are captured from.
	CapitalizationMonthlyUSD []float64
	YieldAllocatedUSD        float64
	HoldingAllocatedUSD      float64
	MiningAllocatedUSD       float64
}

// CalculateCommercialFees computes upfront, management, and performance fees.
// Fee arithmetic runs in decimal so the per-bucket deductions add up to the
// stated totals after cent rounding.
func CalculateCommercialFees(in CommercialFeesInput) *models.CommercialFeesResult {
	res := &models.CommercialFeesResult{
		UpfrontFeeBreakdown: map[string]float64{},
	}

	capital := decimal.NewFromFloat(in.CapitalRaisedUSD)
	hundred := decimal.NewFromInt(100)

	// 1) Upfront commercial fee, deducted proportionally from the buckets.
	if in.Config.UpfrontPct > 0 {
		yieldAlloc := decimal.NewFromFloat(in.YieldAllocatedUSD)
		holdingAlloc := decimal.NewFromFloat(in.HoldingAllocatedUSD)
		miningAlloc := decimal.NewFromFloat(in.MiningAllocatedUSD)
		totalAlloc := yieldAlloc.Add(holdingAlloc).Add(miningAlloc)

		if totalAlloc.IsPositive() {
			upfront := capital.Mul(decimal.NewFromFloat(in.Config.UpfrontPct)).Div(hundred)
			res.UpfrontFeeUSD = upfront.Round(2).InexactFloat64()
			res.UpfrontFeeBreakdown = map[string]float64{
				"yield_deduction_usd":   upfront.Mul(yieldAlloc).Div(totalAlloc).Round(2).InexactFloat64(),
				"holding_deduction_usd": upfront.Mul(holdingAlloc).Div(totalAlloc).Round(2).InexactFloat64(),
				"mining_deduction_usd":  upfront.Mul(miningAlloc).Div(totalAlloc).Round(2).InexactFloat64(),
			}
		}
	}

	// 2) Management fees: an annual percentage of the raised capital,
	// captured monthly and capped by the capitalization available.
	if in.Config.ManagementPct > 0 && len(in.CapitalizationMonthlyUSD) > 0 {
		monthlyRate := decimal.NewFromFloat(in.Config.ManagementPct).Div(hundred).Div(decimal.NewFromInt(12))
		monthlyFee := capital.Mul(monthlyRate)

		total := decimal.Zero
		for _, capUSD := range in.CapitalizationMonthlyUSD {
			available := decimal.NewFromFloat(capUSD)
			if available.IsNegative() {
				available = decimal.Zero
			}
			actual := monthlyFee
			if available.LessThan(actual) {
				actual = available
			}
			actual = actual.Round(2)
			res.ManagementFeesMonthly = append(res.ManagementFeesMonthly, actual.InexactFloat64())
			total = total.Add(actual)
		}
		res.ManagementFeesTotalUSD = total.Round(2).InexactFloat64()
	}

	// 3) Performance fee on the overhead: final capitalization above the
	// initial mining allocation, only when positive.
	if in.Config.PerformancePct > 0 && len(in.CapitalizationMonthlyUSD) > 0 {
		finalCap := decimal.NewFromFloat(in.CapitalizationMonthlyUSD[len(in.CapitalizationMonthlyUSD)-1])
		overhead := finalCap.Sub(decimal.NewFromFloat(in.MiningAllocatedUSD))
		if overhead.IsPositive() {
			perf := overhead.Mul(decimal.NewFromFloat(in.Config.PerformancePct)).Div(hundred)
			res.PerformanceFeeUSD = perf.Round(2).InexactFloat64()
			res.PerformanceFeeBaseUSD = overhead.Round(2).InexactFloat64()
		}
	}

	res.TotalCommercialUSD = decimal.NewFromFloat(res.UpfrontFeeUSD).
		Add(decimal.NewFromFloat(res.ManagementFeesTotalUSD)).
		Add(decimal.NewFromFloat(res.PerformanceFeeUSD)).
		Round(2).InexactFloat64()
	return res
}

// HasCommercialFees reports whether any fee component is configured.
func HasCommercialFees(cfg models.CommercialFeesConfig) bool {
	return cfg.UpfrontPct > 0 || cfg.ManagementPct > 0 || cfg.PerformancePct > 0
}
