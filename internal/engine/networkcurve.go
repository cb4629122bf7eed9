package engine

import (
	"fmt"
	"math"

	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

const (
	// BlocksPerDay is the expected Bitcoin block cadence.
	BlocksPerDay = 144.0
	// DaysPerMonth is the average month length used throughout the engine.
	DaysPerMonth = 30.44
	// currentSubsidy is the post-2024-halving block subsidy in BTC.
	currentSubsidy = 3.125
)

// halvingEvent marks a scheduled subsidy drop.
type halvingEvent struct {
	date    string // "YYYY-MM"
	subsidy float64
}

// Halvings occur every 210,000 blocks, roughly every four years.
var halvingSchedule = []halvingEvent{
	{"2024-04", 3.125},
	{"2028-04", 1.5625},
	{"2032-04", 0.78125},
	{"2036-04", 0.390625},
}

var feeRegimeMultipliers = map[string]float64{
	models.FeeRegimeLow:  0.5,
	models.FeeRegimeBase: 1.0,
	models.FeeRegimeHigh: 2.0,
}

// SubsidyForMonth returns the block subsidy in BTC for month monthIdx after
// startDate ("YYYY-MM"). With halvings disabled it pins the current subsidy.
func SubsidyForMonth(startDate string, monthIdx int, halvingEnabled bool) float64 {
	if !halvingEnabled {
		return currentSubsidy
	}
	y, m := parseYearMonth(startDate)
	curYear := y + (m-1+monthIdx)/12
	curMonth := (m-1+monthIdx)%12 + 1
	cur := fmt.Sprintf("%04d-%02d", curYear, curMonth)

	subsidy := currentSubsidy
	for _, h := range halvingSchedule {
		if cur >= h.date {
			subsidy = h.subsidy
		}
	}
	return subsidy
}

// GenerateNetworkCurve produces deterministic monthly difficulty, hashprice,
// fee, and hashrate series. An unknown fee regime falls back to base.
func GenerateNetworkCurve(cfg models.NetworkCurveConfig) (*models.NetworkCurve, error) {
	if cfg.Months <= 0 {
		return nil, utils.NewValidationErrorf("months must be positive, got %d", cfg.Months)
	}
	if cfg.StartingNetworkHashrateEH <= 0 {
		return nil, utils.NewValidationErrorf("starting network hashrate must be positive, got %v",
			cfg.StartingNetworkHashrateEH)
	}
	if _, _, ok := tryParseYearMonth(cfg.StartDate); !ok {
		return nil, utils.NewValidationErrorf("start date must be YYYY-MM, got %q", cfg.StartDate)
	}

	feeMult, ok := feeRegimeMultipliers[cfg.FeeRegime]
	if !ok {
		feeMult = 1.0
	}

	curve := &models.NetworkCurve{
		Difficulty:           make([]float64, 0, cfg.Months),
		HashpriceBTCPerPHDay: make([]float64, 0, cfg.Months),
		FeesPerBlockBTC:      make([]float64, 0, cfg.Months),
		NetworkHashrateEH:    make([]float64, 0, cfg.Months),
	}

	prevHashprice := -1.0
	for m := 0; m < cfg.Months; m++ {
		hashrateEH := cfg.StartingNetworkHashrateEH * math.Pow(1+cfg.MonthlyDifficultyGrowth, float64(m))
		hashrateTH := hashrateEH * 1e6
		difficulty := hashrateTH * (1 << 32) / 600.0

		subsidy := SubsidyForMonth(cfg.StartDate, m, cfg.HalvingEnabled)

		feesBTC := cfg.StartingFeesPerBlockBTC * feeMult
		feesBTC *= 1 + 0.001*float64(m) // mild secular fee growth
		feesBTC = utils.RoundTo(feesBTC, 6)

		hashpricePerTHDay := (subsidy + feesBTC) * BlocksPerDay / hashrateTH
		hashpricePerPHDay := hashpricePerTHDay * 1000.0

		curve.Difficulty = append(curve.Difficulty, utils.RoundTo(difficulty, 0))
		curve.HashpriceBTCPerPHDay = append(curve.HashpriceBTCPerPHDay, utils.RoundBTC(hashpricePerPHDay))
		curve.FeesPerBlockBTC = append(curve.FeesPerBlockBTC, feesBTC)
		curve.NetworkHashrateEH = append(curve.NetworkHashrateEH, utils.RoundUSD(hashrateEH))

		if prevHashprice > 0 && hashpricePerPHDay > prevHashprice*1.1 && cfg.MonthlyDifficultyGrowth > 0 {
			curve.Warnings = append(curve.Warnings, fmt.Sprintf(
				"Month %d: hashprice rising (+%.1f%%) while difficulty also rising, check fee assumptions",
				m, (hashpricePerPHDay/prevHashprice-1)*100))
		}
		prevHashprice = hashpricePerPHDay
	}

	if cfg.HalvingEnabled {
		curve.Warnings = append(curve.Warnings, halvingWarnings(cfg.StartDate, cfg.Months)...)
	}
	return curve, nil
}

func halvingWarnings(startDate string, months int) []string {
	sy, sm := parseYearMonth(startDate)
	var out []string
	for _, h := range halvingSchedule {
		hy, hm := parseYearMonth(h.date)
		idx := (hy-sy)*12 + (hm - sm)
		if idx >= 0 && idx < months {
			out = append(out, fmt.Sprintf(
				"Halving at month %d (%s): subsidy drops to %v BTC", idx, h.date, h.subsidy))
		}
	}
	return out
}

func parseYearMonth(s string) (year, month int) {
	year, month, _ = tryParseYearMonth(s)
	return year, month
}

func tryParseYearMonth(s string) (year, month int, ok bool) {
	if _, err := fmt.Sscanf(s, "%4d-%2d", &year, &month); err != nil {
		return 0, 0, false
	}
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}
