package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/loicricci/Hearstconnect/internal/utils"
)

// holtWintersFit holds the smoothing state of an additive Holt-Winters model
// after a pass over the training series.
type holtWintersFit struct {
	alpha, beta, gamma float64
	level, trend       float64
	seasonal           []float64 // empty when the seasonal component is disabled
	resid              []float64
	sse                float64
}

// fitHoltWinters fits additive exponential smoothing with a coarse grid over
// the smoothing parameters, picking the triple with the lowest in-sample SSE.
// The seasonal component requires two full yearly cycles.
func fitHoltWinters(series []float64, opts Options) (*Result, error) {
	train := series
	if opts.UseLog {
		train = logTransform(series)
	}

	seasonal := len(train) >= 2*seasonalPeriod
	grid := []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9}

	var best *holtWintersFit
	for _, alpha := range grid {
		for _, beta := range grid {
			gammas := grid
			if !seasonal {
				gammas = []float64{0}
			}
			for _, gamma := range gammas {
				fit := smoothHoltWinters(train, alpha, beta, gamma, seasonal)
				if fit == nil {
					continue
				}
				if best == nil || fit.sse < best.sse {
					best = fit
				}
			}
		}
	}
	if best == nil {
		return nil, utils.ErrModelFit
	}

	h := opts.Periods
	forecast := make([]float64, h)
	for i := 0; i < h; i++ {
		v := best.level + float64(i+1)*best.trend
		if seasonal {
			v += best.seasonal[(len(best.resid)+i)%seasonalPeriod]
		}
		forecast[i] = v
	}

	// Interval width grows with the horizon the way the point estimates do
	// on monthly data: one residual standard deviation per year of horizon.
	n := float64(len(best.resid))
	sigma := math.Sqrt(best.sse / n)
	z := distuv.UnitNormal.Quantile((1 + opts.Confidence) / 2)
	lower := make([]float64, h)
	upper := make([]float64, h)
	for i := 0; i < h; i++ {
		margin := z * sigma * math.Sqrt(float64(i+1)/float64(seasonalPeriod))
		lower[i] = forecast[i] - margin
		upper[i] = forecast[i] + margin
	}

	if opts.UseLog {
		forecast, lower, upper = expAll(forecast), expAll(lower), expAll(upper)
	}

	k := 3.0
	if seasonal {
		k += float64(seasonalPeriod)
	}
	logLik := -0.5 * n * (math.Log(2*math.Pi*best.sse/n) + 1)

	return &Result{
		Forecast: ensurePositive(forecast),
		Lower:    ensurePositive(lower),
		Upper:    ensurePositive(upper),
		Info: ModelInfo{
			Model:          ModelHoltWinters,
			AIC:            utils.RoundUSD(-2*logLik + 2*(k+1)),
			BIC:            utils.RoundUSD(-2*logLik + math.Log(n)*(k+1)),
			Seasonal:       seasonal,
			LogTransformed: opts.UseLog,
		},
	}, nil
}

// smoothHoltWinters runs one smoothing pass and returns nil on numerical
// blowup.
func smoothHoltWinters(series []float64, alpha, beta, gamma float64, seasonal bool) *holtWintersFit {
	n := len(series)
	m := seasonalPeriod

	level := series[0]
	trend := 0.0
	if n > 1 {
		trend = series[1] - series[0]
	}

	var seas []float64
	if seasonal {
		// Initial seasonal indices: first-cycle deviations from the
		// first-year mean.
		mean := 0.0
		for i := 0; i < m; i++ {
			mean += series[i]
		}
		mean /= float64(m)
		seas = make([]float64, m)
		for i := 0; i < m; i++ {
			seas[i] = series[i] - mean
		}
		level = mean
		trend = 0.0
		if n >= 2*m {
			second := 0.0
			for i := m; i < 2*m; i++ {
				second += series[i]
			}
			trend = (second/float64(m) - mean) / float64(m)
		}
	}

	resid := make([]float64, n)
	sse := 0.0
	for t := 0; t < n; t++ {
		expected := level + trend
		if seasonal {
			expected += seas[t%m]
		}
		resid[t] = series[t] - expected
		sse += resid[t] * resid[t]

		deseason := series[t]
		if seasonal {
			deseason -= seas[t%m]
		}
		prevLevel := level
		level = alpha*deseason + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		if seasonal {
			seas[t%m] = gamma*(series[t]-level) + (1-gamma)*seas[t%m]
		}
		if math.IsNaN(level) || math.IsInf(level, 0) {
			return nil
		}
	}
	if sse <= 0 || math.IsNaN(sse) {
		return nil
	}

	return &holtWintersFit{
		alpha: alpha, beta: beta, gamma: gamma,
		level: level, trend: trend,
		seasonal: seas,
		resid:    resid,
		sse:      sse,
	}
}
