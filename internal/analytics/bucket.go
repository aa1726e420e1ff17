package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

type bucketAcc struct {
	key     string
	inflow  decimal.Decimal
	outflow decimal.Decimal
	balance decimal.Decimal
}

// ParseGranularity maps a request value to a granularity, falling back to daily.
func ParseGranularity(s string) models.Granularity {
	switch g := models.Granularity(s); g {
	case models.Daily, models.Weekly, models.Monthly, models.Yearly:
		return g
	default:
		return models.Daily
	}
}

// PeriodKey formats the bucket key of t. Weekly keys are the Sunday that starts
// the week, in t's own location.
func PeriodKey(t time.Time, g models.Granularity) string {
	switch g {
	case models.Weekly:
		return t.AddDate(0, 0, -int(t.Weekday())).Format(time.DateOnly)
	case models.Monthly:
		return t.Format("2006-01")
	case models.Yearly:
		return t.Format("2006")
	default:
		return t.Format(time.DateOnly)
	}
}

// BucketByPeriod folds transactions into calendar buckets ordered by period key.
// A bucket's balance is the balanceAfter of its latest transaction that has one.
func BucketByPeriod(txs []models.Transaction, g models.Granularity) []models.PeriodBucket {
	accs := bucketize(byDateAsc(txs), ParseGranularity(string(g)))

	buckets := make([]models.PeriodBucket, 0, len(accs))
	for _, acc := range accs {
		buckets = append(buckets, models.PeriodBucket{
			Period:  acc.key,
			Inflow:  round2(acc.inflow),
			Outflow: round2(acc.outflow),
			NetFlow: round2(acc.inflow.Sub(acc.outflow)),
			Balance: round2(acc.balance),
		})
	}
	return buckets
}

func byDateAsc(txs []models.Transaction) []models.Transaction {
	ordered := make([]models.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})
	return ordered
}

// bucketize keeps buckets in first-seen order, then sorts them by key.
func bucketize(txs []models.Transaction, g models.Granularity) []*bucketAcc {
	index := make(map[string]*bucketAcc)
	var accs []*bucketAcc

	for _, tx := range txs {
		key := PeriodKey(tx.Date, g)
		acc, ok := index[key]
		if !ok {
			acc = &bucketAcc{key: key}
			index[key] = acc
			accs = append(accs, acc)
		}
		if tx.IsInflow() {
			acc.inflow = acc.inflow.Add(tx.Amount)
		} else {
			acc.outflow = acc.outflow.Add(tx.Amount.Abs())
		}
		if tx.BalanceAfter.Valid {
			acc.balance = tx.BalanceAfter.Decimal
		}
	}

	sort.Slice(accs, func(i, j int) bool { return accs[i].key < accs[j].key })
	return accs
}
