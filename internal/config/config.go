package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment  string             `mapstructure:"environment"`
	LogLevel     string             `mapstructure:"log_level"`
	Redis        RedisConfig        `mapstructure:"redis"`
	DataProvider DataProviderConfig `mapstructure:"data_provider"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Simulation   SimulationConfig   `mapstructure:"simulation"`
	Forecast     ForecastConfig     `mapstructure:"forecast"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DataProviderConfig struct {
	YahooURL      string `mapstructure:"yahoo_url"`
	BlockchainURL string `mapstructure:"blockchain_url"`
	Timeout       int    `mapstructure:"timeout"`
}

type CacheConfig struct {
	TTLHours int  `mapstructure:"ttl_hours"`
	Enabled  bool `mapstructure:"enabled"`
}

type SimulationConfig struct {
	DefaultTenorMonths int     `mapstructure:"default_tenor_months"`
	DefaultBandPct     float64 `mapstructure:"default_band_pct"`
	VolatilitySeed     int64   `mapstructure:"volatility_seed"`
}

type ForecastConfig struct {
	DefaultModel      string  `mapstructure:"default_model"`
	DefaultConfidence float64 `mapstructure:"default_confidence"`
	HorizonMonths     int     `mapstructure:"horizon_months"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if config.Simulation.DefaultTenorMonths <= 0 {
		return nil, fmt.Errorf("simulation default tenor must be positive, got %d",
			config.Simulation.DefaultTenorMonths)
	}
	if config.Forecast.DefaultConfidence <= 0 || config.Forecast.DefaultConfidence >= 1 {
		return nil, fmt.Errorf("forecast confidence must be in (0,1), got %v",
			config.Forecast.DefaultConfidence)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Data providers
	viper.SetDefault("data_provider.yahoo_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("data_provider.blockchain_url", "https://api.blockchain.info")
	viper.SetDefault("data_provider.timeout", 60)

	// Cache
	viper.SetDefault("cache.ttl_hours", 24)
	viper.SetDefault("cache.enabled", true)

	// Simulation
	viper.SetDefault("simulation.default_tenor_months", 36)
	viper.SetDefault("simulation.default_band_pct", 20.0)
	viper.SetDefault("simulation.volatility_seed", 42)

	// Forecast
	viper.SetDefault("forecast.default_model", "auto_arima")
	viper.SetDefault("forecast.default_confidence", 0.95)
	viper.SetDefault("forecast.horizon_months", 36)
}
