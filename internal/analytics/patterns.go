package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

const (
	maxPatternVendors = 5
	// seasonality is not derived from the data yet.
	placeholderSeasonality = "medium"
)

// AnalyzeCategoryPatterns describes spend per category: average size, how
// often it happens and which vendors dominate it. Inflows are ignored.
func AnalyzeCategoryPatterns(txs []models.Transaction) []models.SpendingPattern {
	spending := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Amount.IsNegative() {
			spending = append(spending, tx)
		}
	}

	groups, _ := groupByCategory(spending)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].amount.Cmp(groups[j].amount) > 0
	})

	byCategory := make(map[string][]models.Transaction, len(groups))
	for _, tx := range spending {
		name := tx.CategoryName()
		byCategory[name] = append(byCategory[name], tx)
	}

	patterns := make([]models.SpendingPattern, 0, len(groups))
	for _, g := range groups {
		avg := g.amount.Div(decimal.NewFromInt(int64(g.count)))
		patterns = append(patterns, models.SpendingPattern{
			Category:         g.name,
			TotalAmount:      round2(g.amount),
			TransactionCount: g.count,
			AverageAmount:    round2(avg),
			Frequency:        spendingFrequency(g.count),
			Seasonality:      placeholderSeasonality,
			TopVendors:       topCategoryVendors(byCategory[g.name], g.amount),
		})
	}
	return patterns
}

func spendingFrequency(count int) string {
	switch {
	case count > 30:
		return "high"
	case count > 10:
		return "medium"
	default:
		return "low"
	}
}

func topCategoryVendors(txs []models.Transaction, categoryTotal decimal.Decimal) []models.VendorShare {
	vendors := groupOutgoingByVendor(txs)
	if len(vendors) > maxPatternVendors {
		vendors = vendors[:maxPatternVendors]
	}
	shares := make([]models.VendorShare, 0, len(vendors))
	for _, v := range vendors {
		shares = append(shares, models.VendorShare{
			Name:       v.name,
			Amount:     round2(v.sum.Abs()),
			Percentage: percentOf(v.sum.Abs(), categoryTotal),
		})
	}
	return shares
}
