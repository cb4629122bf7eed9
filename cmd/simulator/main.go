package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/loicricci/Hearstconnect/internal/cache"
	"github.com/loicricci/Hearstconnect/internal/config"
	"github.com/loicricci/Hearstconnect/internal/datafetch"
	"github.com/loicricci/Hearstconnect/internal/engine"
	"github.com/loicricci/Hearstconnect/internal/logging"
	"github.com/loicricci/Hearstconnect/internal/models"
)

func main() {
	capital := flag.Float64("capital", 1_000_000, "capital raised in USD")
	tenor := flag.Int("tenor", 0, "product tenor in months (0 uses the configured default)")
	startPrice := flag.Float64("start-price", 100_000, "BTC spot price at inception in USD")
	offline := flag.Bool("offline", false, "skip upstream data providers and use configured curves only")
	flag.Parse()

	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"offline":     *offline,
	}).Info("simulator starting")

	months := cfg.Simulation.DefaultTenorMonths
	if *tenor > 0 {
		months = *tenor
	}

	ctx := context.Background()

	priceCurve, err := buildPriceCurve(ctx, cfg, logger, *offline, *startPrice, months)
	if err != nil {
		logger.WithError(err).Fatal("failed to build price curve")
	}

	network, err := engine.GenerateNetworkCurve(models.NetworkCurveConfig{
		StartDate:                 time.Now().UTC().Format("2006-01"),
		Months:                    months,
		StartingNetworkHashrateEH: 900,
		MonthlyDifficultyGrowth:   0.01,
		HalvingEnabled:            true,
		FeeRegime:                 models.FeeRegimeBase,
		StartingFeesPerBlockBTC:   0.1,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to build network curve")
	}
	for _, warning := range network.Warnings {
		logger.Warn(warning)
	}

	hashLower, hashUpper := engine.DeterministicBand(network.HashpriceBTCPerPHDay, cfg.Simulation.DefaultBandPct)
	scenarios := engine.NewScenarioBuilder(logger).Build(
		engine.CurveSet{
			Name:   "btc_price",
			Series: priceCurve.Series,
			Lower:  priceCurve.Lower,
			Upper:  priceCurve.Upper,
		},
		engine.CurveSet{
			Name:   "hashprice",
			Series: network.HashpriceBTCPerPHDay,
			Lower:  hashLower,
			Upper:  hashUpper,
		},
	)

	results, err := engine.SimulateAllScenarios(demoProductConfig(*capital, *startPrice, months), scenarios)
	if err != nil {
		logger.WithError(err).Fatal("simulation failed")
	}

	for _, name := range engine.AllScenarios {
		res := results[name]
		logger.WithFields(logrus.Fields{
			"scenario":  name,
			"decision":  res.Decision,
			"net_value": res.Metrics.FinalPortfolioUSD,
		}).Info("scenario complete")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		logger.WithError(err).Fatal("failed to encode results")
	}
}

// buildPriceCurve forecasts the BTC price from live history when possible,
// falling back to a configured linear curve offline.
func buildPriceCurve(
	ctx context.Context,
	cfg *config.Config,
	logger *logrus.Logger,
	offline bool,
	startPrice float64,
	months int,
) (*curveWithBands, error) {
	if !offline {
		forecasted, err := forecastPriceCurve(ctx, cfg, logger, months)
		if err == nil {
			return forecasted, nil
		}
		logger.WithError(err).Warn("price forecast unavailable, using configured curve")
	}

	years := months / 12
	if years < 1 {
		years = 1
	}
	curve, err := engine.GeneratePriceCurve(models.PriceCurveConfig{
		StartPrice:        startPrice,
		Months:            months,
		AnchorPoints:      map[int]float64{years: startPrice * 1.5},
		Interpolation:     models.InterpolationLinear,
		VolatilityEnabled: true,
		VolatilitySeed:    cfg.Simulation.VolatilitySeed,
	})
	if err != nil {
		return nil, err
	}
	lower, upper := engine.DeterministicBand(curve, cfg.Simulation.DefaultBandPct)
	return &curveWithBands{Series: curve, Lower: lower, Upper: upper}, nil
}

func forecastPriceCurve(
	ctx context.Context,
	cfg *config.Config,
	logger *logrus.Logger,
	months int,
) (*curveWithBands, error) {
	client := datafetch.NewClient(&cfg.DataProvider)

	var seriesCache datafetch.SeriesCache
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("redis unavailable, running uncached")
		} else {
			seriesCache = cache.NewRedisSeriesCache(redisClient, time.Duration(cfg.Cache.TTLHours)*time.Hour)
		}
	}

	service := datafetch.NewService(client, seriesCache, logger)
	curve, err := engine.GeneratePriceCurveForecast(ctx, service, engine.ForecastCurveOptions{
		Model:      cfg.Forecast.DefaultModel,
		Months:     months,
		Confidence: cfg.Forecast.DefaultConfidence,
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"model":      curve.Info.Model,
		"order":      curve.Info.Order,
		"aic":        curve.Info.AIC,
		"months":     curve.Training.Months,
		"last_price": curve.LastHistoricalPrice,
		"seasonal":   curve.Info.Seasonal,
	}).Info("price forecast fitted")

	return &curveWithBands{
		Series: curve.Prices,
		Lower:  curve.Lower,
		Upper:  curve.Upper,
	}, nil
}

type curveWithBands struct {
	Series []float64
	Lower  []float64
	Upper  []float64
}

// demoProductConfig is the reference three-bucket product used when the
// simulator runs standalone.
func demoProductConfig(capital, startPrice float64, months int) models.MultiBucketConfig {
	yieldAlloc := capital * 0.3
	holdingAlloc := capital * 0.3
	miningAlloc := capital - yieldAlloc - holdingAlloc

	return models.MultiBucketConfig{
		CapitalRaisedUSD: capital,
		TenorMonths:      months,
		Yield: models.YieldBucketConfig{
			AllocatedUSD: yieldAlloc,
			BaseAPR:      0.06,
		},
		Holding: models.HoldingBucketConfig{
			AllocatedUSD:       holdingAlloc,
			BuyingPriceUSD:     startPrice,
			TargetSellPriceUSD: startPrice * 1.5,
			CapitalReconPct:    60,
		},
		Mining: models.MiningBucketConfig{
			AllocatedUSD: miningAlloc,
			Miner: models.MinerSpec{
				ID:             "s21",
				Name:           "Antminer S21",
				HashrateTH:     200,
				PowerW:         3500,
				PriceUSD:       4000,
				LifetimeMonths: 48,
				MaintenancePct: 0.02,
			},
			MinerCount:         int(miningAlloc / 4000),
			ElectricityRate:    0.05,
			HostingFeePerKWMon: 10,
			Uptime:             0.95,
			CurtailmentPct:     0.02,
			TenorMonths:        months,
			BaseYieldAPR:       0.08,
			BonusYieldAPR:      0.04,
		},
		Commercial: models.CommercialFeesConfig{
			UpfrontPct:     2,
			ManagementPct:  1,
			PerformancePct: 10,
		},
	}
}
