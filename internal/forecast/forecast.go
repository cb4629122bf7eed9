// Package forecast fits time-series models to historical monthly data and
// produces point forecasts with confidence interval bounds.
//
// Supported models:
//   - auto_arima: stepwise AIC search over non-seasonal and seasonal orders
//   - holt_winters: exponential smoothing with additive trend + seasonality
//   - sarimax: seasonal ARIMA with fixed default orders
//
// All models support log-transformation for exponentially growing series.
package forecast

import (
	"fmt"
	"math"

	"github.com/loicricci/Hearstconnect/internal/utils"
)

// Model identifiers accepted by Run.
const (
	ModelAutoARIMA   = "auto_arima"
	ModelHoltWinters = "holt_winters"
	ModelSARIMAX     = "sarimax"
)

// AvailableModels lists the supported model identifiers.
var AvailableModels = []string{ModelAutoARIMA, ModelHoltWinters, ModelSARIMAX}

// MinTrainingMonths is the minimum history length required before any model
// is fitted.
const MinTrainingMonths = 24

// positiveFloor clamps forecasts away from zero: prices and hashrates are
// never negative.
const positiveFloor = 0.01

// Options control a forecast run.
type Options struct {
	Periods    int
	Confidence float64 // 0.80, 0.90 or 0.95
	UseLog     bool
}

// ModelInfo carries fit diagnostics back to the caller.
type ModelInfo struct {
	Model           string  `json:"model"`
	Order           []int   `json:"order,omitempty"`
	SeasonalOrder   []int   `json:"seasonal_order,omitempty"`
	AIC             float64 `json:"aic"`
	BIC             float64 `json:"bic,omitempty"`
	Seasonal        bool    `json:"seasonal"`
	ModelsEvaluated int     `json:"models_evaluated,omitempty"`
	LogTransformed  bool    `json:"log_transformed"`
}

// Result is a point forecast with interval bounds and diagnostics.
type Result struct {
	Forecast []float64 `json:"forecast"`
	Lower    []float64 `json:"lower"`
	Upper    []float64 `json:"upper"`
	Info     ModelInfo `json:"model_info"`
}

// Run fits the requested model to the series and forecasts opts.Periods
// months ahead. It returns utils.ErrInsufficientHistory when the series is
// shorter than MinTrainingMonths and utils.ErrModelFit when no candidate
// converges.
func Run(series []float64, modelType string, opts Options) (*Result, error) {
	if len(series) < MinTrainingMonths {
		return nil, fmt.Errorf("%w: got %d months, need >= %d",
			utils.ErrInsufficientHistory, len(series), MinTrainingMonths)
	}
	if opts.Periods <= 0 {
		return nil, utils.NewValidationErrorf("forecast periods must be positive, got %d", opts.Periods)
	}
	if opts.Confidence <= 0 || opts.Confidence >= 1 {
		opts.Confidence = 0.95
	}

	switch modelType {
	case ModelAutoARIMA:
		return fitAutoARIMA(series, opts)
	case ModelHoltWinters:
		return fitHoltWinters(series, opts)
	case ModelSARIMAX:
		return fitSARIMAX(series, opts)
	default:
		return nil, utils.NewValidationErrorf("unknown model type %q, available: %v",
			modelType, AvailableModels)
	}
}

// logTransform returns ln(max(v, 1)) for each value.
func logTransform(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = math.Log(math.Max(v, 1.0))
	}
	return out
}

func expAll(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = math.Exp(v)
	}
	return out
}

func ensurePositive(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = math.Max(v, positiveFloor)
	}
	return out
}
