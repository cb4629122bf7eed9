package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/loicricci/Hearstconnect/internal/utils"
)

const seasonalPeriod = 12

// arimaOrder is a (p,d,q)(P,D,Q,m) specification. Seasonal AR/MA terms are
// modelled as additional lags at multiples of the seasonal period.
type arimaOrder struct {
	p, d, q    int
	sp, sd, sq int
}

func (o arimaOrder) String() string {
	return fmt.Sprintf("(%d,%d,%d)(%d,%d,%d,%d)",
		o.p, o.d, o.q, o.sp, o.sd, o.sq, seasonalPeriod)
}

// fittedARIMA is a conditional-least-squares ARIMA fit.
type fittedARIMA struct {
	order  arimaOrder
	arLags []int
	maLags []int
	coef   []float64 // intercept, AR coefficients, MA coefficients
	resid  []float64
	// stages holds the training series at each differencing level, in
	// application order: stages[0] is the (possibly log) original, the last
	// entry is the fully differenced series the recursion was fitted on.
	stages [][]float64
	sigma2 float64
	aic    float64
	bic    float64
}

// Candidate orders mirror a stepwise auto-ARIMA search.
var candidateOrders = [][3]int{
	{0, 1, 0}, {1, 1, 0}, {0, 1, 1}, {1, 1, 1},
	{2, 1, 0}, {0, 1, 2}, {2, 1, 1}, {1, 1, 2}, {2, 1, 2},
	{1, 0, 0}, {0, 0, 1}, {1, 0, 1},
}

var candidateSeasonal = [][3]int{
	{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 0, 1},
	{0, 1, 0}, {1, 1, 0}, {0, 1, 1}, {1, 1, 1},
}

// The seasonal grid needs at least three full yearly cycles.
const seasonalSearchMinMonths = 36

func fitAutoARIMA(series []float64, opts Options) (*Result, error) {
	train := series
	if opts.UseLog {
		train = logTransform(series)
	}

	seasonal := candidateSeasonal
	if len(train) < seasonalSearchMinMonths {
		seasonal = [][3]int{{0, 0, 0}}
	}

	var best *fittedARIMA
	var attempted []string
	evaluated := 0
	for _, o := range candidateOrders {
		for _, s := range seasonal {
			order := arimaOrder{p: o[0], d: o[1], q: o[2], sp: s[0], sd: s[1], sq: s[2]}
			evaluated++
			fit, err := fitARIMA(train, order)
			if err != nil {
				attempted = append(attempted, order.String())
				continue
			}
			if best == nil || fit.aic < best.aic {
				best = fit
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: auto ARIMA found no valid model (attempted %v)",
			utils.ErrModelFit, attempted)
	}

	forecast, lower, upper := best.forecast(opts.Periods, opts.Confidence)
	if opts.UseLog {
		forecast, lower, upper = expAll(forecast), expAll(lower), expAll(upper)
	}

	return &Result{
		Forecast: ensurePositive(forecast),
		Lower:    ensurePositive(lower),
		Upper:    ensurePositive(upper),
		Info: ModelInfo{
			Model:           ModelAutoARIMA,
			Order:           []int{best.order.p, best.order.d, best.order.q},
			SeasonalOrder:   []int{best.order.sp, best.order.sd, best.order.sq, seasonalPeriod},
			AIC:             utils.RoundUSD(best.aic),
			BIC:             utils.RoundUSD(best.bic),
			Seasonal:        best.order.sp+best.order.sd+best.order.sq > 0,
			ModelsEvaluated: evaluated,
			LogTransformed:  opts.UseLog,
		},
	}, nil
}

// fitSARIMAX fits the fixed default orders (1,1,1)(1,1,1,12), which behave
// well on monthly economic data. The seasonal part is dropped when the
// series is too short to difference at lag 12.
func fitSARIMAX(series []float64, opts Options) (*Result, error) {
	train := series
	if opts.UseLog {
		train = logTransform(series)
	}

	order := arimaOrder{p: 1, d: 1, q: 1, sp: 1, sd: 1, sq: 1}
	if len(train) < seasonalSearchMinMonths {
		order = arimaOrder{p: 1, d: 1, q: 1}
	}
	fit, err := fitARIMA(train, order)
	if err != nil {
		return nil, fmt.Errorf("%w: sarimax %s did not converge: %v", utils.ErrModelFit, order, err)
	}

	forecast, lower, upper := fit.forecast(opts.Periods, opts.Confidence)
	if opts.UseLog {
		forecast, lower, upper = expAll(forecast), expAll(lower), expAll(upper)
	}

	return &Result{
		Forecast: ensurePositive(forecast),
		Lower:    ensurePositive(lower),
		Upper:    ensurePositive(upper),
		Info: ModelInfo{
			Model:          ModelSARIMAX,
			Order:          []int{fit.order.p, fit.order.d, fit.order.q},
			SeasonalOrder:  []int{fit.order.sp, fit.order.sd, fit.order.sq, seasonalPeriod},
			AIC:            utils.RoundUSD(fit.aic),
			BIC:            utils.RoundUSD(fit.bic),
			Seasonal:       fit.order.sp+fit.order.sd+fit.order.sq > 0,
			LogTransformed: opts.UseLog,
		},
	}, nil
}

// fitARIMA estimates an ARIMA model by Hannan-Rissanen conditional least
// squares: a long autoregression provides innovation estimates, then the
// ARMA coefficients come from ordinary least squares on lagged values and
// lagged innovations.
func fitARIMA(series []float64, order arimaOrder) (*fittedARIMA, error) {
	stages := [][]float64{series}
	w := series
	for i := 0; i < order.d; i++ {
		w = differenceOnce(w, 1)
		stages = append(stages, w)
	}
	for i := 0; i < order.sd; i++ {
		if len(w) <= seasonalPeriod {
			return nil, fmt.Errorf("series too short for seasonal differencing %s", order)
		}
		w = differenceOnce(w, seasonalPeriod)
		stages = append(stages, w)
	}

	arLags := lagSet(order.p, order.sp)
	maLags := lagSet(order.q, order.sq)
	maxLag := 0
	for _, l := range arLags {
		if l > maxLag {
			maxLag = l
		}
	}
	for _, l := range maLags {
		if l > maxLag {
			maxLag = l
		}
	}

	k := 1 + len(arLags) + len(maLags)
	rows := len(w) - maxLag
	if rows < k+4 {
		return nil, fmt.Errorf("series too short for order %s", order)
	}

	resid0, err := longARResiduals(w, maxLag)
	if err != nil {
		return nil, err
	}

	x := mat.NewDense(rows, k, nil)
	y := mat.NewVecDense(rows, nil)
	for t := maxLag; t < len(w); t++ {
		r := t - maxLag
		x.Set(r, 0, 1.0)
		for j, lag := range arLags {
			x.Set(r, 1+j, w[t-lag])
		}
		for j, lag := range maLags {
			x.Set(r, 1+len(arLags)+j, resid0[t-lag])
		}
		y.SetVec(r, w[t])
	}

	coefVec := mat.NewVecDense(k, nil)
	var qr mat.QR
	qr.Factorize(x)
	if err := qr.SolveVecTo(coefVec, false, y); err != nil {
		return nil, fmt.Errorf("least squares solve failed: %v", err)
	}

	coef := make([]float64, k)
	for i := range coef {
		c := coefVec.AtVec(i)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("non-finite coefficient for order %s", order)
		}
		coef[i] = c
	}

	resid := make([]float64, len(w))
	copy(resid, resid0)
	sse := 0.0
	for t := maxLag; t < len(w); t++ {
		fit := coef[0]
		for j, lag := range arLags {
			fit += coef[1+j] * w[t-lag]
		}
		for j, lag := range maLags {
			fit += coef[1+len(arLags)+j] * resid[t-lag]
		}
		resid[t] = w[t] - fit
		sse += resid[t] * resid[t]
	}
	sigma2 := sse / float64(rows)
	if sigma2 <= 0 || math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return nil, fmt.Errorf("degenerate residual variance for order %s", order)
	}

	logLik := -0.5 * float64(rows) * (math.Log(2*math.Pi*sigma2) + 1)
	aic := -2*logLik + 2*float64(k+1)
	bic := -2*logLik + math.Log(float64(rows))*float64(k+1)

	return &fittedARIMA{
		order:  order,
		arLags: arLags,
		maLags: maLags,
		coef:   coef,
		resid:  resid,
		stages: stages,
		sigma2: sigma2,
		aic:    aic,
		bic:    bic,
	}, nil
}

// forecast iterates the fitted recursion h steps ahead with future
// innovations at zero, integrates the differencing back, and builds interval
// bounds from cumulative psi weights.
func (f *fittedARIMA) forecast(h int, confidence float64) (forecast, lower, upper []float64) {
	diffed := f.stages[len(f.stages)-1]
	w := append([]float64(nil), diffed...)
	resid := append([]float64(nil), f.resid...)

	fw := make([]float64, 0, h)
	for step := 0; step < h; step++ {
		t := len(w)
		v := f.coef[0]
		for j, lag := range f.arLags {
			v += f.coef[1+j] * at(w, t-lag)
		}
		for j, lag := range f.maLags {
			v += f.coef[1+len(f.arLags)+j] * at(resid, t-lag)
		}
		w = append(w, v)
		resid = append(resid, 0)
		fw = append(fw, v)
	}

	forecast = f.integrate(fw)

	psi := f.psiWeights(h)
	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	lower = make([]float64, h)
	upper = make([]float64, h)
	cum := 0.0
	for i := 0; i < h; i++ {
		cum += psi[i] * psi[i]
		margin := z * math.Sqrt(f.sigma2*cum)
		lower[i] = forecast[i] - margin
		upper[i] = forecast[i] + margin
	}
	return forecast, lower, upper
}

// integrate undoes the differencing stages in reverse application order,
// anchoring each stage on the tail of its training-time series.
func (f *fittedARIMA) integrate(fw []float64) []float64 {
	out := append([]float64(nil), fw...)
	// Seasonal stages were applied last, so they are undone first.
	stage := len(f.stages) - 2
	for i := 0; i < f.order.sd; i++ {
		out = undoDifference(out, f.stages[stage], seasonalPeriod)
		stage--
	}
	for i := 0; i < f.order.d; i++ {
		out = undoDifference(out, f.stages[stage], 1)
		stage--
	}
	return out
}

// undoDifference reconstructs x from g where g = x(t) - x(t-lag), using hist
// (the pre-difference training series) for values before the forecast origin.
func undoDifference(g, hist []float64, lag int) []float64 {
	x := make([]float64, len(g))
	for i := range g {
		prevIdx := i - lag
		var prev float64
		if prevIdx >= 0 {
			prev = x[prevIdx]
		} else {
			prev = hist[len(hist)+prevIdx]
		}
		x[i] = g[i] + prev
	}
	return x
}

// psiWeights returns the MA(inf) weights of the fitted recursion, accumulated
// through the regular and seasonal integration operators.
func (f *fittedARIMA) psiWeights(h int) []float64 {
	phi := make([]float64, h+1)
	theta := make([]float64, h+1)
	for j, lag := range f.arLags {
		if lag <= h {
			phi[lag] += f.coef[1+j]
		}
	}
	for j, lag := range f.maLags {
		if lag <= h {
			theta[lag] += f.coef[1+len(f.arLags)+j]
		}
	}

	psi := make([]float64, h)
	for i := 0; i < h; i++ {
		if i == 0 {
			psi[i] = 1.0
			continue
		}
		v := theta[i]
		for l := 1; l <= i; l++ {
			v += phi[l] * psi[i-l]
		}
		psi[i] = v
	}
	for d := 0; d < f.order.d; d++ {
		for i := 1; i < h; i++ {
			psi[i] += psi[i-1]
		}
	}
	for sd := 0; sd < f.order.sd; sd++ {
		for i := seasonalPeriod; i < h; i++ {
			psi[i] += psi[i-seasonalPeriod]
		}
	}
	return psi
}

// longARResiduals fits a long autoregression by least squares and returns
// its residuals (zeros over the warmup window).
func longARResiduals(w []float64, minLag int) ([]float64, error) {
	order := len(w) / 4
	if order < minLag {
		order = minLag
	}
	if order < 1 {
		order = 1
	}
	rows := len(w) - order
	if rows < order+2 {
		// Too short for a long AR: fall back to mean deviations.
		mean := 0.0
		for _, v := range w {
			mean += v
		}
		mean /= float64(len(w))
		resid := make([]float64, len(w))
		for i, v := range w {
			resid[i] = v - mean
		}
		return resid, nil
	}

	x := mat.NewDense(rows, order+1, nil)
	y := mat.NewVecDense(rows, nil)
	for t := order; t < len(w); t++ {
		r := t - order
		x.Set(r, 0, 1.0)
		for j := 1; j <= order; j++ {
			x.Set(r, j, w[t-j])
		}
		y.SetVec(r, w[t])
	}
	coef := mat.NewVecDense(order+1, nil)
	var qr mat.QR
	qr.Factorize(x)
	if err := qr.SolveVecTo(coef, false, y); err != nil {
		return nil, fmt.Errorf("long AR solve failed: %v", err)
	}

	resid := make([]float64, len(w))
	for t := order; t < len(w); t++ {
		fit := coef.AtVec(0)
		for j := 1; j <= order; j++ {
			fit += coef.AtVec(j) * w[t-j]
		}
		resid[t] = w[t] - fit
	}
	return resid, nil
}

// lagSet expands non-seasonal and seasonal orders into explicit lags.
func lagSet(nonSeasonal, seasonal int) []int {
	var lags []int
	for i := 1; i <= nonSeasonal; i++ {
		lags = append(lags, i)
	}
	for i := 1; i <= seasonal; i++ {
		lags = append(lags, i*seasonalPeriod)
	}
	return lags
}

// differenceOnce applies one round of lag-k differencing.
func differenceOnce(series []float64, lag int) []float64 {
	if len(series) <= lag {
		return nil
	}
	out := make([]float64, len(series)-lag)
	for t := lag; t < len(series); t++ {
		out[t-lag] = series[t] - series[t-lag]
	}
	return out
}

func at(s []float64, i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}
