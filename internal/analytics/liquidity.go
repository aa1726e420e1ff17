package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

const (
	// LiquidityWindow is how many recent transactions feed the liquidity snapshot.
	LiquidityWindow = 90
	// ThresholdAmount is the minimum-balance alert level.
	ThresholdAmount = 25000.0

	idleBalanceFloor   = 50000.0
	idleActivityCeil   = 1000.0
	highBalanceMark    = 100000.0
	lowBalanceMark     = 10000.0
	lowVolatilityMark  = 0.1
	highVolatilityMark = 0.5
)

type dayActivity struct {
	balances []float64
	activity decimal.Decimal
}

// AnalyzeLiquidity computes balance statistics, idle days and the liquidity score.
// Missing balances count as zero.
func AnalyzeLiquidity(txs []models.Transaction) models.LiquiditySnapshot {
	if len(txs) == 0 {
		return models.LiquiditySnapshot{ThresholdAmount: ThresholdAmount}
	}

	balances := make([]float64, len(txs))
	for i, tx := range txs {
		balances[i] = tx.Balance().InexactFloat64()
	}

	avg, lo, hi := meanMinMax(balances)

	var volatility float64
	if avg > 0 {
		volatility = populationStdDev(balances, avg) / avg
	}

	idle := countIdleDays(txs)
	minimum := roundTo(lo, 2)

	return models.LiquiditySnapshot{
		AverageBalance:    roundTo(avg, 2),
		MinimumBalance:    minimum,
		MaximumBalance:    roundTo(hi, 2),
		Volatility:        roundTo(volatility, 2),
		IdleDays:          idle,
		LiquidityScore:    roundTo(liquidityScore(avg, volatility, idle), 1),
		ThresholdExceeded: minimum < ThresholdAmount,
		ThresholdAmount:   ThresholdAmount,
	}
}

func meanMinMax(xs []float64) (mean, lo, hi float64) {
	lo, hi = xs[0], xs[0]
	var sum float64
	for _, x := range xs {
		sum += x
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return sum / float64(len(xs)), lo, hi
}

func populationStdDev(xs []float64, mean float64) float64 {
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// countIdleDays counts calendar days whose mean balance is above 50,000 while
// total absolute activity stays under 1,000.
func countIdleDays(txs []models.Transaction) int {
	days := make(map[string]*dayActivity)
	for _, tx := range txs {
		key := tx.Date.Format(time.DateOnly)
		d, ok := days[key]
		if !ok {
			d = &dayActivity{}
			days[key] = d
		}
		d.balances = append(d.balances, tx.Balance().InexactFloat64())
		d.activity = d.activity.Add(tx.Amount.Abs())
	}

	idle := 0
	for _, d := range days {
		var sum float64
		for _, b := range d.balances {
			sum += b
		}
		dayAvg := sum / float64(len(d.balances))
		if dayAvg > idleBalanceFloor && d.activity.InexactFloat64() < idleActivityCeil {
			idle++
		}
	}
	return idle
}

func liquidityScore(avg, volatility float64, idleDays int) float64 {
	score := 5.0

	switch {
	case avg > highBalanceMark:
		score += 2
	case avg > idleBalanceFloor:
		score++
	case avg < lowBalanceMark:
		score -= 2
	}

	switch {
	case volatility < lowVolatilityMark:
		score++
	case volatility > highVolatilityMark:
		score--
	}

	switch {
	case idleDays > 10:
		score--
	case idleDays < 3:
		score++
	}

	return math.Max(0, math.Min(10, score))
}
