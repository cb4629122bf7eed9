package datafetch

import (
	"sort"
	"time"

	"github.com/loicricci/Hearstconnect/internal/models"
)

// NetworkMonthly is one calendar month of averaged network observations.
type NetworkMonthly struct {
	Month           time.Time `json:"month"`
	HashrateEH      float64   `json:"hashrate_eh"`
	Difficulty      float64   `json:"difficulty"`
	FeesPerBlockBTC float64   `json:"fees_per_block_btc"`
}

// monthEnd returns the last day of the month containing t.
func monthEnd(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// MonthlyLast resamples a daily series to one point per calendar month,
// keeping the last observation and stamping it at month end.
func MonthlyLast(points []models.SeriesPoint) []models.SeriesPoint {
	last := make(map[time.Time]models.SeriesPoint)
	for _, p := range points {
		key := monthEnd(p.Date)
		if cur, ok := last[key]; !ok || p.Date.After(cur.Date) {
			last[key] = p
		}
	}
	return collectMonthly(last, func(p models.SeriesPoint) float64 { return p.Value })
}

// MonthlyMean resamples a daily series to one point per calendar month,
// averaging all observations and stamping them at month end.
func MonthlyMean(points []models.SeriesPoint) []models.SeriesPoint {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, p := range points {
		key := monthEnd(p.Date)
		sums[key] += p.Value
		counts[key]++
	}

	out := make([]models.SeriesPoint, 0, len(sums))
	for key, sum := range sums {
		out = append(out, models.SeriesPoint{Date: key, Value: sum / float64(counts[key])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func collectMonthly(byMonth map[time.Time]models.SeriesPoint, value func(models.SeriesPoint) float64) []models.SeriesPoint {
	out := make([]models.SeriesPoint, 0, len(byMonth))
	for key, p := range byMonth {
		out = append(out, models.SeriesPoint{Date: key, Value: value(p)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Values strips the dates off a series.
func Values(points []models.SeriesPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// JoinNetworkMonthly aligns monthly hashrate, difficulty and fee series on
// their common months, dropping months where any value is missing or not
// strictly positive.
func JoinNetworkMonthly(hashrate, difficulty, fees []models.SeriesPoint) []NetworkMonthly {
	hr := indexByMonth(hashrate)
	diff := indexByMonth(difficulty)
	fee := indexByMonth(fees)

	months := make([]time.Time, 0, len(hr))
	for m := range hr {
		if _, ok := diff[m]; !ok {
			continue
		}
		if _, ok := fee[m]; !ok {
			continue
		}
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]NetworkMonthly, 0, len(months))
	for _, m := range months {
		row := NetworkMonthly{
			Month:           m,
			HashrateEH:      hr[m],
			Difficulty:      diff[m],
			FeesPerBlockBTC: fee[m],
		}
		if row.HashrateEH <= 0 || row.Difficulty <= 0 || row.FeesPerBlockBTC <= 0 {
			continue
		}
		out = append(out, row)
	}
	return out
}

func indexByMonth(points []models.SeriesPoint) map[time.Time]float64 {
	out := make(map[time.Time]float64, len(points))
	for _, p := range points {
		out[p.Date] = p.Value
	}
	return out
}
