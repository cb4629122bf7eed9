package utils

import "math"

// Contract rounding: monetary values 2 dp, BTC quantities 8 dp, APRs and
// ratios 4 dp. Callers round once, when building output records.

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// RoundUSD rounds a monetary value to 2 decimal places.
func RoundUSD(v float64) float64 { return RoundTo(v, 2) }

// RoundBTC rounds a BTC quantity to 8 decimal places.
func RoundBTC(v float64) float64 { return RoundTo(v, 8) }

// RoundRate rounds an APR, rate or ratio to 4 decimal places.
func RoundRate(v float64) float64 { return RoundTo(v, 4) }
