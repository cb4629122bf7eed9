package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicricci/Hearstconnect/internal/datafetch"
	"github.com/loicricci/Hearstconnect/internal/forecast"
	"github.com/loicricci/Hearstconnect/internal/models"
	"github.com/loicricci/Hearstconnect/internal/utils"
)

type fakeHistory struct {
	prices  []models.SeriesPoint
	network []datafetch.NetworkMonthly
	err     error
}

func (f *fakeHistory) GetBTCMonthlyPrices(ctx context.Context) ([]models.SeriesPoint, error) {
	return f.prices, f.err
}

func (f *fakeHistory) GetNetworkMonthlyData(ctx context.Context) ([]datafetch.NetworkMonthly, error) {
	return f.network, f.err
}

func trainingMonth(i int) time.Time {
	return time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
}

func syntheticPriceHistory(n int) []models.SeriesPoint {
	points := make([]models.SeriesPoint, n)
	for i := 0; i < n; i++ {
		v := 30000.0 * math.Pow(1.015, float64(i)) * (1 + 0.02*math.Sin(float64(i)*1.7))
		points[i] = models.SeriesPoint{Date: trainingMonth(i), Value: v}
	}
	return points
}

func syntheticNetworkHistory(n int) []datafetch.NetworkMonthly {
	rows := make([]datafetch.NetworkMonthly, n)
	for i := 0; i < n; i++ {
		hr := 500.0 * math.Pow(1.01, float64(i)) * (1 + 0.01*math.Sin(float64(i)*1.3))
		rows[i] = datafetch.NetworkMonthly{
			Month:           trainingMonth(i),
			HashrateEH:      hr,
			Difficulty:      hr * 1e6 * (1 << 32) / 600.0,
			FeesPerBlockBTC: 0.1 * (1 + 0.05*math.Sin(float64(i)*0.9)),
		}
	}
	return rows
}

func TestGeneratePriceCurveForecast(t *testing.T) {
	src := &fakeHistory{prices: syntheticPriceHistory(48)}

	curve, err := GeneratePriceCurveForecast(context.Background(), src, ForecastCurveOptions{
		Model:      forecast.ModelHoltWinters,
		Months:     24,
		Confidence: 0.95,
	})
	require.NoError(t, err)

	require.Len(t, curve.Prices, 24)
	require.Len(t, curve.Lower, 24)
	require.Len(t, curve.Upper, 24)
	for i := range curve.Prices {
		assert.LessOrEqual(t, curve.Lower[i], curve.Prices[i], "month %d", i)
		assert.LessOrEqual(t, curve.Prices[i], curve.Upper[i], "month %d", i)
		assert.Equal(t, utils.RoundUSD(curve.Prices[i]), curve.Prices[i], "month %d", i)
	}

	assert.Equal(t, 48, curve.Training.Months)
	assert.Equal(t, trainingMonth(0), curve.Training.Start)
	assert.Equal(t, trainingMonth(47), curve.Training.End)
	assert.Equal(t, utils.RoundUSD(src.prices[47].Value), curve.LastHistoricalPrice)
	assert.Equal(t, forecast.ModelHoltWinters, curve.Info.Model)
}

func TestGeneratePriceCurveForecastInsufficientHistory(t *testing.T) {
	src := &fakeHistory{prices: syntheticPriceHistory(12)}

	_, err := GeneratePriceCurveForecast(context.Background(), src, ForecastCurveOptions{
		Model:  forecast.ModelHoltWinters,
		Months: 12,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrInsufficientHistory))
}

func TestGeneratePriceCurveForecastFetchError(t *testing.T) {
	src := &fakeHistory{err: errors.New("provider down")}

	_, err := GeneratePriceCurveForecast(context.Background(), src, ForecastCurveOptions{
		Model:  forecast.ModelHoltWinters,
		Months: 12,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestGenerateNetworkCurveForecast(t *testing.T) {
	src := &fakeHistory{network: syntheticNetworkHistory(48)}

	curve, err := GenerateNetworkCurveForecast(context.Background(), src, NetworkForecastConfig{
		Model:          forecast.ModelHoltWinters,
		Months:         18,
		Confidence:     0.95,
		HalvingEnabled: true,
		StartDate:      "2027-06",
	})
	require.NoError(t, err)

	for name, s := range map[string]models.BandedSeries{
		"difficulty": curve.Difficulty,
		"hashrate":   curve.NetworkHashrateEH,
		"fees":       curve.FeesPerBlockBTC,
		"hashprice":  curve.HashpriceBTCPerPHDay,
	} {
		require.Len(t, s.Forecast, 18, name)
		require.Len(t, s.Lower, 18, name)
		require.Len(t, s.Upper, 18, name)
		for i := range s.Forecast {
			assert.LessOrEqual(t, s.Lower[i], s.Forecast[i], "%s month %d", name, i)
			assert.LessOrEqual(t, s.Forecast[i], s.Upper[i], "%s month %d", name, i)
		}
	}

	// Difficulty must track the hashrate forecast.
	for i := range curve.Difficulty.Forecast {
		assert.InEpsilon(t,
			curve.NetworkHashrateEH.Forecast[i]*1e6*(1<<32)/600.0,
			curve.Difficulty.Forecast[i], 0.01, "month %d", i)
	}

	// The 2028-04 halving lands at month 10 from a 2027-06 start.
	require.NotEmpty(t, curve.Warnings)
	assert.Contains(t, curve.Warnings[0], "Halving at month 10")

	assert.Equal(t, 48, curve.Training.Months)
	assert.Equal(t, forecast.ModelHoltWinters, curve.HashrateInfo.Model)
	assert.Equal(t, forecast.ModelHoltWinters, curve.FeesInfo.Model)
}

func TestGenerateNetworkCurveForecastRejectsBadStartDate(t *testing.T) {
	src := &fakeHistory{network: syntheticNetworkHistory(48)}

	_, err := GenerateNetworkCurveForecast(context.Background(), src, NetworkForecastConfig{
		Model:     forecast.ModelHoltWinters,
		Months:    12,
		StartDate: "June 2027",
	})
	require.Error(t, err)

	var verr *utils.ValidationError
	assert.True(t, errors.As(err, &verr))
}
