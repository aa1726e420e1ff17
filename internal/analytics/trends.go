package analytics

import (
	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

// ParseMetric validates a trend metric.
func ParseMetric(s string) (models.TrendMetric, error) {
	switch m := models.TrendMetric(s); m {
	case models.MetricInflow, models.MetricOutflow, models.MetricBalance, models.MetricTransactions:
		return m, nil
	default:
		return "", BadRequest("invalid trend metric %q", s)
	}
}

// CalculateTrends buckets transactions and reports each period's value with its
// change from the period before. The first period always has zero change.
//
// The transactions metric reports inflow+outflow with no change figures; per
// period counts are not tracked by the buckets.
func CalculateTrends(txs []models.Transaction, metric models.TrendMetric, g models.Granularity) []models.TrendPoint {
	accs := bucketize(byDateAsc(txs), ParseGranularity(string(g)))

	points := make([]models.TrendPoint, 0, len(accs))
	var prev decimal.Decimal
	for i, acc := range accs {
		value := metricValue(acc, metric)
		point := models.TrendPoint{Period: acc.key, Value: round2(value)}

		if i > 0 && metric != models.MetricTransactions {
			change := value.Sub(prev)
			point.Change = round2(change)
			if prev.IsPositive() {
				point.ChangePercent = round2(change.Div(prev).Mul(decimal.NewFromInt(100)))
			}
		}

		points = append(points, point)
		prev = value
	}
	return points
}

func metricValue(acc *bucketAcc, metric models.TrendMetric) decimal.Decimal {
	switch metric {
	case models.MetricInflow:
		return acc.inflow
	case models.MetricOutflow:
		return acc.outflow
	case models.MetricBalance:
		return acc.balance
	default:
		return acc.inflow.Add(acc.outflow)
	}
}
