package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

type groupTotal struct {
	name   string
	amount decimal.Decimal
	count  int
}

// groupByCategory sums absolute amounts per category, in first-seen order.
func groupByCategory(txs []models.Transaction) ([]*groupTotal, map[string]*groupTotal) {
	index := make(map[string]*groupTotal)
	var groups []*groupTotal
	for _, tx := range txs {
		name := tx.CategoryName()
		g, ok := index[name]
		if !ok {
			g = &groupTotal{name: name}
			index[name] = g
			groups = append(groups, g)
		}
		g.amount = g.amount.Add(tx.Amount.Abs())
		g.count++
	}
	return groups, index
}

// BuildCategoryBreakdown groups the current window by category and compares
// each category with its total in the previous window.
func BuildCategoryBreakdown(current, previous []models.Transaction) []models.CategoryBreakdown {
	groups, _ := groupByCategory(current)
	_, prevIndex := groupByCategory(previous)

	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.amount)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if c := groups[i].amount.Cmp(groups[j].amount); c != 0 {
			return c > 0
		}
		return groups[i].name < groups[j].name
	})

	out := make([]models.CategoryBreakdown, 0, len(groups))
	for _, g := range groups {
		prev := decimal.Zero
		if p, ok := prevIndex[g.name]; ok {
			prev = p.amount
		}
		out = append(out, models.CategoryBreakdown{
			Category:   g.name,
			Amount:     round2(g.amount),
			Count:      g.count,
			Percentage: percentOf(g.amount, total),
			Trend:      categoryTrend(g.amount, prev),
		})
	}
	return out
}

func categoryTrend(current, previous decimal.Decimal) models.CategoryTrend {
	if !previous.IsPositive() {
		return models.TrendNew
	}
	switch current.Cmp(previous) {
	case 1:
		return models.TrendUp
	case -1:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}
