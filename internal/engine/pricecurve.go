// Package engine implements the simulation core: deterministic curve
// generation, miner and hosting economics, product waterfalls, and the
// scenario orchestrator that ties them together.
package engine

import (
	"sort"

	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// GeneratePriceCurve produces a deterministic monthly BTC price curve from
// year-indexed anchor points. Prices are rounded to cents.
func GeneratePriceCurve(cfg models.PriceCurveConfig) ([]float64, error) {
	if cfg.Months <= 0 {
		return nil, utils.NewValidationErrorf("months must be positive, got %d", cfg.Months)
	}
	if cfg.StartPrice <= 0 {
		return nil, utils.NewValidationErrorf("start price must be positive, got %v", cfg.StartPrice)
	}

	if cfg.Interpolation == models.InterpolationCustom && len(cfg.CustomMonthlyPrices) > 0 {
		prices := make([]float64, 0, cfg.Months)
		for i := 0; i < cfg.Months && i < len(cfg.CustomMonthlyPrices); i++ {
			prices = append(prices, cfg.CustomMonthlyPrices[i])
		}
		// Pad a short custom curve by holding the last value.
		for len(prices) < cfg.Months {
			last := cfg.StartPrice
			if len(prices) > 0 {
				last = prices[len(prices)-1]
			}
			prices = append(prices, last)
		}
		return applyVolatility(prices, cfg.VolatilityEnabled, cfg.VolatilitySeed), nil
	}

	// Convert year-indexed anchors to month indices.
	monthAnchors := map[int]float64{}
	years := make([]int, 0, len(cfg.AnchorPoints))
	for y := range cfg.AnchorPoints {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		monthIdx := y * 12
		switch {
		case monthIdx < cfg.Months:
			monthAnchors[monthIdx] = cfg.AnchorPoints[y]
		case monthIdx == cfg.Months:
			monthAnchors[cfg.Months-1] = cfg.AnchorPoints[y]
		}
	}
	if _, ok := monthAnchors[0]; !ok {
		monthAnchors[0] = cfg.StartPrice
	}

	sortedMonths := make([]int, 0, len(monthAnchors))
	for m := range monthAnchors {
		sortedMonths = append(sortedMonths, m)
	}
	sort.Ints(sortedMonths)

	prices := make([]float64, 0, cfg.Months)
	if cfg.Interpolation == models.InterpolationStep {
		for m := 0; m < cfg.Months; m++ {
			val := cfg.StartPrice
			for _, am := range sortedMonths {
				if am > m {
					break
				}
				val = monthAnchors[am]
			}
			prices = append(prices, val)
		}
	} else {
		for m := 0; m < cfg.Months; m++ {
			lowerM, upperM := 0, cfg.Months-1
			lowerP := monthAnchors[0]
			upperP := lowerP
			if p, ok := monthAnchors[cfg.Months-1]; ok {
				upperP = p
			}
			for _, am := range sortedMonths {
				if am <= m {
					lowerM = am
					lowerP = monthAnchors[am]
				}
				if am >= m {
					upperM = am
					upperP = monthAnchors[am]
					break
				}
			}
			if upperM == lowerM {
				prices = append(prices, lowerP)
			} else {
				t := float64(m-lowerM) / float64(upperM-lowerM)
				prices = append(prices, utils.RoundUSD(lowerP+t*(upperP-lowerP)))
			}
		}
	}

	return applyVolatility(prices, cfg.VolatilityEnabled, cfg.VolatilitySeed), nil
}

// ApplyPriceBand shifts a base curve by a symmetric percentage band. A
// positive band tilts every month up, a negative one down.
func ApplyPriceBand(base []float64, bandPct float64) []float64 {
	out := make([]float64, len(base))
	for i, p := range base {
		out[i] = utils.RoundUSD(p * (1 + bandPct))
	}
	return out
}

func applyVolatility(prices []float64, enabled bool, seed int64) []float64 {
	out := make([]float64, len(prices))
	if !enabled {
		for i, p := range prices {
			out[i] = utils.RoundUSD(p)
		}
		return out
	}
	for i, p := range prices {
		factor := 1.0 + deterministicNoise(seed, i)*0.05
		out[i] = utils.RoundUSD(p * factor)
	}
	return out
}

// deterministicNoise maps (seed, index) to a reproducible value in [-1, 1].
// Knuth's multiplicative hash seeds three finalizer rounds so consecutive
// months do not correlate.
func deterministicNoise(seed int64, index int) float64 {
	x := uint64(seed) ^ (uint64(index) * 2654435761)
	for i := 0; i < 3; i++ {
		x = ((x ^ (x >> 16)) * 0x85ebca6b) & 0xFFFFFFFF
		x = ((x ^ (x >> 13)) * 0xc2b2ae35) & 0xFFFFFFFF
		x = (x ^ (x >> 16)) & 0xFFFFFFFF
	}
	return (float64(x)/float64(0xFFFFFFFF))*2.0 - 1.0
}
