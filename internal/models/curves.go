package models

import "time"

// Interpolation modes for the deterministic price curve.
const (
	InterpolationLinear = "linear"
	InterpolationStep   = "step"
	InterpolationCustom = "custom"
)

// Fee regimes for network curve generation.
const (
	FeeRegimeLow  = "low"
	FeeRegimeBase = "base"
	FeeRegimeHigh = "high"
)

// PriceCurveConfig drives deterministic BTC price curve generation.
type PriceCurveConfig struct {
	StartPrice          float64         `json:"start_price"`
	Months              int             `json:"months"`
	AnchorPoints        map[int]float64 `json:"anchor_points"` // year index (0-10) -> target price
	Interpolation       string          `json:"interpolation_type"`
	CustomMonthlyPrices []float64       `json:"custom_monthly_prices,omitempty"`
	VolatilityEnabled   bool            `json:"volatility_enabled"`
	VolatilitySeed      int64           `json:"volatility_seed"`
}

// NetworkCurveConfig drives deterministic network curve generation.
type NetworkCurveConfig struct {
	StartDate                 string  `json:"start_date"` // "YYYY-MM"
	Months                    int     `json:"months"`
	StartingNetworkHashrateEH float64 `json:"starting_network_hashrate_eh"`
	MonthlyDifficultyGrowth   float64 `json:"monthly_difficulty_growth_rate"`
	HalvingEnabled            bool    `json:"halving_enabled"`
	FeeRegime                 string  `json:"fee_regime"`
	StartingFeesPerBlockBTC   float64 `json:"starting_fees_per_block_btc"`
}

// NetworkCurve is the set of monthly network series.
type NetworkCurve struct {
	Difficulty           []float64 `json:"difficulty"`
	HashpriceBTCPerPHDay []float64 `json:"hashprice_btc_per_ph_day"`
	FeesPerBlockBTC      []float64 `json:"fees_per_block_btc"`
	NetworkHashrateEH    []float64 `json:"network_hashrate_eh"`
	Warnings             []string  `json:"warnings"`
}

// BandedSeries is a forecast series with its confidence interval bounds.
type BandedSeries struct {
	Forecast []float64 `json:"forecast"`
	Lower    []float64 `json:"lower"`
	Upper    []float64 `json:"upper"`
}

// SeriesPoint is one dated observation of a historical series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ScenarioCurves is the curve pair driving one bear/base/bull scenario run.
type ScenarioCurves struct {
	BTCPrices            []float64 `json:"btc_prices"`
	HashpriceBTCPerPHDay []float64 `json:"hashprice_btc_per_ph_day"`
}
