package engine

import (
	"context"
	"math"
	"time"

	"github.com/loicricci/Hearstconnect/internal/datafetch"
	"github.com/loicricci/Hearstconnect/internal/forecast"
	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

// HistoricalData provides the monthly training series for forecast-driven
// curve generation. *datafetch.Service satisfies it.
type HistoricalData interface {
	GetBTCMonthlyPrices(ctx context.Context) ([]models.SeriesPoint, error)
	GetNetworkMonthlyData(ctx context.Context) ([]datafetch.NetworkMonthly, error)
}

// ForecastCurveOptions selects the model and horizon for forecast-driven
// curves. A zero confidence defaults to 0.95 inside the forecast package.
type ForecastCurveOptions struct {
	Model      string  `json:"model"`
	Months     int     `json:"months"`
	Confidence float64 `json:"confidence"`
}

// TrainingWindow describes the historical span a forecast was fitted on.
type TrainingWindow struct {
	Months int       `json:"months"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// PriceForecastCurve is a forecast-driven price curve with interval bounds.
type PriceForecastCurve struct {
	Prices              []float64          `json:"prices"`
	Lower               []float64          `json:"lower"`
	Upper               []float64          `json:"upper"`
	LastHistoricalPrice float64            `json:"last_historical_price"`
	Training            TrainingWindow     `json:"training"`
	Info                forecast.ModelInfo `json:"model_info"`
}

// GeneratePriceCurveForecast fits the selected model to historical monthly
// BTC prices and forecasts the curve with confidence bounds. Prices grow
// exponentially, so the fit runs on the log of the series.
func GeneratePriceCurveForecast(ctx context.Context, src HistoricalData, opts ForecastCurveOptions) (*PriceForecastCurve, error) {
	monthly, err := src.GetBTCMonthlyPrices(ctx)
	if err != nil {
		return nil, err
	}

	result, err := forecast.Run(datafetch.Values(monthly), opts.Model, forecast.Options{
		Periods:    opts.Months,
		Confidence: opts.Confidence,
		UseLog:     true,
	})
	if err != nil {
		return nil, err
	}

	return &PriceForecastCurve{
		Prices:              roundAllUSD(result.Forecast),
		Lower:               roundAllUSD(result.Lower),
		Upper:               roundAllUSD(result.Upper),
		LastHistoricalPrice: utils.RoundUSD(monthly[len(monthly)-1].Value),
		Training:            trainingWindow(monthly[0].Date, monthly[len(monthly)-1].Date, len(monthly)),
		Info:                result.Info,
	}, nil
}

// NetworkForecastConfig drives forecast-based network curve generation.
type NetworkForecastConfig struct {
	Model          string  `json:"model"`
	Months         int     `json:"months"`
	Confidence     float64 `json:"confidence"`
	HalvingEnabled bool    `json:"halving_enabled"`
	StartDate      string  `json:"start_date"` // "YYYY-MM"
}

// NetworkForecastCurve holds independently forecast network series with the
// difficulty and hashprice series derived from them.
type NetworkForecastCurve struct {
	Difficulty           models.BandedSeries `json:"difficulty"`
	NetworkHashrateEH    models.BandedSeries `json:"network_hashrate_eh"`
	FeesPerBlockBTC      models.BandedSeries `json:"fees_per_block_btc"`
	HashpriceBTCPerPHDay models.BandedSeries `json:"hashprice_btc_per_ph_day"`
	Warnings             []string            `json:"warnings"`
	Training             TrainingWindow      `json:"training"`
	HashrateInfo         forecast.ModelInfo  `json:"hashrate_model_info"`
	FeesInfo             forecast.ModelInfo  `json:"fees_model_info"`
}

// GenerateNetworkCurveForecast forecasts hashrate and fees independently,
// then derives difficulty from the hashrate bounds and hashprice from the
// forecast pair. The upper hashprice bound pairs high fees with low hashrate,
// the lower bound pairs low fees with high hashrate.
func GenerateNetworkCurveForecast(ctx context.Context, src HistoricalData, cfg NetworkForecastConfig) (*NetworkForecastCurve, error) {
	if _, _, ok := tryParseYearMonth(cfg.StartDate); !ok {
		return nil, utils.NewValidationErrorf("start date must be YYYY-MM, got %q", cfg.StartDate)
	}

	monthly, err := src.GetNetworkMonthlyData(ctx)
	if err != nil {
		return nil, err
	}

	opts := forecast.Options{
		Periods:    cfg.Months,
		Confidence: cfg.Confidence,
		UseLog:     true,
	}
	hashrates := make([]float64, len(monthly))
	fees := make([]float64, len(monthly))
	for i, m := range monthly {
		hashrates[i] = m.HashrateEH
		fees[i] = m.FeesPerBlockBTC
	}

	hr, err := forecast.Run(hashrates, cfg.Model, opts)
	if err != nil {
		return nil, err
	}
	fee, err := forecast.Run(fees, cfg.Model, opts)
	if err != nil {
		return nil, err
	}

	curve := &NetworkForecastCurve{
		Difficulty: models.BandedSeries{
			Forecast: difficultyFromHashrate(hr.Forecast),
			Lower:    difficultyFromHashrate(hr.Lower),
			Upper:    difficultyFromHashrate(hr.Upper),
		},
		NetworkHashrateEH: models.BandedSeries{
			Forecast: roundAllUSD(hr.Forecast),
			Lower:    roundAllUSD(hr.Lower),
			Upper:    roundAllUSD(hr.Upper),
		},
		FeesPerBlockBTC: models.BandedSeries{
			Forecast: roundAllTo(fee.Forecast, 6),
			Lower:    roundAllTo(fee.Lower, 6),
			Upper:    roundAllTo(fee.Upper, 6),
		},
		Training:     trainingWindow(monthly[0].Month, monthly[len(monthly)-1].Month, len(monthly)),
		HashrateInfo: hr.Info,
		FeesInfo:     fee.Info,
	}

	for m := 0; m < cfg.Months; m++ {
		subsidy := SubsidyForMonth(cfg.StartDate, m, cfg.HalvingEnabled)

		curve.HashpriceBTCPerPHDay.Forecast = append(curve.HashpriceBTCPerPHDay.Forecast,
			utils.RoundBTC(derivedHashprice(subsidy+fee.Forecast[m], hr.Forecast[m])))
		curve.HashpriceBTCPerPHDay.Upper = append(curve.HashpriceBTCPerPHDay.Upper,
			utils.RoundBTC(derivedHashprice(subsidy+fee.Upper[m], math.Max(hr.Lower[m], 0.001))))
		curve.HashpriceBTCPerPHDay.Lower = append(curve.HashpriceBTCPerPHDay.Lower,
			utils.RoundBTC(derivedHashprice(subsidy+fee.Lower[m], hr.Upper[m])))
	}

	if cfg.HalvingEnabled {
		curve.Warnings = append(curve.Warnings, halvingWarnings(cfg.StartDate, cfg.Months)...)
	}
	return curve, nil
}

// derivedHashprice converts BTC per block and network hashrate in EH/s to
// BTC per PH per day.
func derivedHashprice(btcPerBlock, hashrateEH float64) float64 {
	hashrateTH := hashrateEH * 1e6
	if hashrateTH <= 0 {
		return 0
	}
	return btcPerBlock * BlocksPerDay / hashrateTH * 1000.0
}

func difficultyFromHashrate(hashratesEH []float64) []float64 {
	out := make([]float64, len(hashratesEH))
	for i, hr := range hashratesEH {
		out[i] = utils.RoundTo(hr*1e6*(1<<32)/600.0, 0)
	}
	return out
}

func trainingWindow(start, end time.Time, months int) TrainingWindow {
	return TrainingWindow{Months: months, Start: start, End: end}
}

func roundAllUSD(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = utils.RoundUSD(v)
	}
	return out
}

func roundAllTo(series []float64, decimals int) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = utils.RoundTo(v, decimals)
	}
	return out
}
