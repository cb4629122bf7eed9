package datafetch

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/loicricci/Hearstconnect/internal/models"
)

// SeriesCache is the subset of the Redis series cache the service needs.
type SeriesCache interface {
	Get(ctx context.Context, seriesName string) ([]models.SeriesPoint, bool)
	Set(ctx context.Context, seriesName string, points []models.SeriesPoint)
}

// Cache keys, one per upstream series.
const (
	cacheKeyBTCDaily   = "btc_daily_prices"
	cacheKeyHashrate   = "network_hashrate"
	cacheKeyDifficulty = "network_difficulty"
	cacheKeyFees       = "network_fees"
)

// Service wraps the provider client with caching and monthly resampling so
// forecasting code deals in month-grained series only.
type Service struct {
	client *Client
	cache  SeriesCache
	logger *logrus.Entry
}

// NewService creates a data service. cache may be nil, in which case every
// call goes upstream.
func NewService(client *Client, cache SeriesCache, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		logger: logger.WithField("component", "datafetch"),
	}
}

// GetBTCMonthlyPrices returns the BTC/USD price at the end of each calendar
// month, oldest first.
func (s *Service) GetBTCMonthlyPrices(ctx context.Context) ([]models.SeriesPoint, error) {
	daily, err := s.fetchCached(ctx, cacheKeyBTCDaily, s.client.FetchBTCPriceHistory)
	if err != nil {
		return nil, err
	}
	monthly := MonthlyLast(daily)
	s.logger.WithFields(logrus.Fields{
		"days":   len(daily),
		"months": len(monthly),
	}).Info("resampled BTC price history")
	return monthly, nil
}

// GetNetworkMonthlyData returns monthly averaged hashrate, difficulty and
// fee observations joined on their common months.
func (s *Service) GetNetworkMonthlyData(ctx context.Context) ([]NetworkMonthly, error) {
	hashrate, err := s.fetchCached(ctx, cacheKeyHashrate, s.client.FetchNetworkHashrateHistory)
	if err != nil {
		return nil, err
	}
	difficulty, err := s.fetchCached(ctx, cacheKeyDifficulty, s.client.FetchDifficultyHistory)
	if err != nil {
		return nil, err
	}
	fees, err := s.fetchCached(ctx, cacheKeyFees, s.client.FetchFeesHistory)
	if err != nil {
		return nil, err
	}

	joined := JoinNetworkMonthly(MonthlyMean(hashrate), MonthlyMean(difficulty), MonthlyMean(fees))
	s.logger.WithField("months", len(joined)).Info("joined monthly network history")
	return joined, nil
}

func (s *Service) fetchCached(
	ctx context.Context,
	key string,
	fetch func(context.Context) ([]models.SeriesPoint, error),
) ([]models.SeriesPoint, error) {
	if s.cache != nil {
		if points, ok := s.cache.Get(ctx, key); ok {
			s.logger.WithFields(logrus.Fields{
				"series": key,
				"points": len(points),
			}).Debug("cache hit")
			return points, nil
		}
	}

	points, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, points)
	}
	return points, nil
}
