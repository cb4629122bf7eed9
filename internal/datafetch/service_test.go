package datafetch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicricci/Hearstconnect/internal/datafetch"
	"github.com/loicricci/Hearstconnect/internal/models"
)

// fakeSeriesCache is an in-memory SeriesCache for tests
type fakeSeriesCache struct {
	data map[string][]models.SeriesPoint
	gets int
	sets int
}

func newFakeSeriesCache() *fakeSeriesCache {
	return &fakeSeriesCache{data: make(map[string][]models.SeriesPoint)}
}

func (c *fakeSeriesCache) Get(_ context.Context, name string) ([]models.SeriesPoint, bool) {
	c.gets++
	points, ok := c.data[name]
	return points, ok
}

func (c *fakeSeriesCache) Set(_ context.Context, name string, points []models.SeriesPoint) {
	c.sets++
	c.data[name] = points
}

// providerServer serves both the Yahoo chart and blockchain.info chart
// endpoints and counts upstream hits.
func providerServer(t *testing.T, hits *int) *httptest.Server {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")

		if strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			timestamps := dailyTimestamps(start, 60)
			closes := make([]*float64, 60)
			for i := range closes {
				closes[i] = fptr(42000 + float64(i)*10)
			}
			require.NoError(t, json.NewEncoder(w).Encode(yahooChartJSON(timestamps, closes)))
			return
		}

		var value float64
		switch strings.TrimPrefix(r.URL.Path, "/charts/") {
		case "hash-rate":
			value = 600
		case "difficulty":
			value = 7.2e13
		case "transaction-fees":
			value = 14.4
		default:
			http.NotFound(w, r)
			return
		}

		rows := make([]map[string]float64, 60)
		for i := range rows {
			rows[i] = map[string]float64{
				"x": float64(start.AddDate(0, 0, i).Unix()),
				"y": value,
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"values": rows,
		}))
	}))
}

func TestService_GetBTCMonthlyPrices(t *testing.T) {
	hits := 0
	server := providerServer(t, &hits)
	defer server.Close()

	logger, _ := logtest.NewNullLogger()
	cache := newFakeSeriesCache()
	service := datafetch.NewService(testClient(server.URL), cache, logger)

	monthly, err := service.GetBTCMonthlyPrices(context.Background())
	require.NoError(t, err)

	// 60 days starting Jan 1 span January and February.
	require.Len(t, monthly, 2)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), monthly[0].Date)
	assert.Equal(t, 42300.0, monthly[0].Value) // day index 30
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, cache.sets)

	// Second call is served from cache.
	again, err := service.GetBTCMonthlyPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, monthly, again)
	assert.Equal(t, 1, hits)
}

func TestService_GetNetworkMonthlyData(t *testing.T) {
	hits := 0
	server := providerServer(t, &hits)
	defer server.Close()

	logger, _ := logtest.NewNullLogger()
	cache := newFakeSeriesCache()
	service := datafetch.NewService(testClient(server.URL), cache, logger)

	rows, err := service.GetNetworkMonthlyData(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 600.0, rows[0].HashrateEH)
	assert.Equal(t, 7.2e13, rows[0].Difficulty)
	assert.InDelta(t, 0.1, rows[0].FeesPerBlockBTC, 1e-12)
	assert.Equal(t, 3, hits)
	assert.Equal(t, 3, cache.sets)

	// All three series cached now.
	_, err = service.GetNetworkMonthlyData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, hits)
}

func TestService_NoCache(t *testing.T) {
	hits := 0
	server := providerServer(t, &hits)
	defer server.Close()

	logger, _ := logtest.NewNullLogger()
	service := datafetch.NewService(testClient(server.URL), nil, logger)

	_, err := service.GetBTCMonthlyPrices(context.Background())
	require.NoError(t, err)
	_, err = service.GetBTCMonthlyPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}
