package datafetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/loicricci/Hearstconnect/internal/config"
	"github.com/loicricci/Hearstconnect/internal/models"
)

// minPriceDays is the least daily history accepted from the price provider.
const minPriceDays = 30

// blocksPerDay converts blockchain.info daily fee totals to per-block fees.
const blocksPerDay = 144.0

// Client fetches historical market and network series from the upstream
// data providers.
type Client struct {
	HTTPClient    *http.Client
	yahooURL      string
	blockchainURL string
	timeout       time.Duration
}

// NewClient creates a data provider client from configuration.
func NewClient(cfg *config.DataProviderConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		yahooURL:      strings.TrimSuffix(cfg.YahooURL, "/"),
		blockchainURL: strings.TrimSuffix(cfg.BlockchainURL, "/"),
		timeout:       timeout,
	}
}

// FetchBTCPriceHistory retrieves daily BTC/USD closing prices from Yahoo
// Finance, oldest first. Null closes and duplicate dates are dropped.
func (c *Client) FetchBTCPriceHistory(ctx context.Context) ([]models.SeriesPoint, error) {
	url := c.yahooURL + "/v8/finance/chart/BTC-USD?range=max&interval=1d"

	var response yahooChartResponse
	if err := c.makeRequest(ctx, url, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch BTC prices: %w", err)
	}
	if response.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error (%s): %s",
			response.Chart.Error.Code, response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 || len(response.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo returned no data for BTC-USD")
	}

	result := response.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	seen := make(map[time.Time]bool, len(result.Timestamp))
	points := make([]models.SeriesPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		if seen[day] {
			continue
		}
		seen[day] = true
		points = append(points, models.SeriesPoint{Date: day, Value: *closes[i]})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	if len(points) < minPriceDays {
		return nil, fmt.Errorf("insufficient BTC price data: only %d days returned", len(points))
	}
	return points, nil
}

// FetchNetworkHashrateHistory retrieves the historical network hashrate in
// EH/s. blockchain.info has changed units over the years, so the unit is
// detected from the magnitude of the latest observation.
func (c *Client) FetchNetworkHashrateHistory(ctx context.Context) ([]models.SeriesPoint, error) {
	points, err := c.fetchBlockchainChart(ctx, "hash-rate")
	if err != nil {
		return nil, err
	}

	divisor := 1.0
	recent := points[len(points)-1].Value
	switch {
	case recent > 1e15: // H/s
		divisor = 1e18
	case recent > 1e9: // TH/s
		divisor = 1e6
	case recent > 1e3: // PH/s
		divisor = 1e3
	}
	for i := range points {
		points[i].Value /= divisor
	}
	return points, nil
}

// FetchDifficultyHistory retrieves the historical mining difficulty.
func (c *Client) FetchDifficultyHistory(ctx context.Context) ([]models.SeriesPoint, error) {
	return c.fetchBlockchainChart(ctx, "difficulty")
}

// FetchFeesHistory retrieves historical transaction fees as BTC per block.
func (c *Client) FetchFeesHistory(ctx context.Context) ([]models.SeriesPoint, error) {
	points, err := c.fetchBlockchainChart(ctx, "transaction-fees")
	if err != nil {
		return nil, err
	}
	for i := range points {
		points[i].Value /= blocksPerDay
	}
	return points, nil
}

// fetchBlockchainChart is the generic fetcher for the blockchain.info
// charts API.
func (c *Client) fetchBlockchainChart(ctx context.Context, chartName string) ([]models.SeriesPoint, error) {
	url := fmt.Sprintf("%s/charts/%s?timespan=all&format=json&cors=true", c.blockchainURL, chartName)

	var response blockchainChartResponse
	if err := c.makeRequest(ctx, url, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch %s data: %w", chartName, err)
	}
	if len(response.Values) == 0 {
		return nil, fmt.Errorf("no %s data returned from blockchain.info", chartName)
	}

	points := make([]models.SeriesPoint, 0, len(response.Values))
	for _, v := range response.Values {
		points = append(points, models.SeriesPoint{
			Date:  time.Unix(v.X, 0).UTC().Truncate(24 * time.Hour),
			Value: v.Y,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// makeRequest is a helper method to make HTTP GET requests to the data providers
func (c *Client) makeRequest(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Hearstconnect/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("data provider error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
