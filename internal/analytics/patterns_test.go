package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasury-analytics/internal/models"
)

func TestAnalyzeCategoryPatterns(t *testing.T) {
	txs := []models.Transaction{
		mkTx("2024-06-01", -600, cat("Payroll"), party("ADP")),
		mkTx("2024-06-15", -600, cat("Payroll"), party("ADP")),
		mkTx("2024-06-02", -90, cat("Software"), party("GitHub")),
		mkTx("2024-06-03", -30, cat("Software"), party("Slack")),
		mkTx("2024-06-04", 5000, cat("Sales"), party("Customer")),
	}

	got := AnalyzeCategoryPatterns(txs)

	require.Len(t, got, 2)
	assert.Equal(t, "Payroll", got[0].Category)
	assert.Equal(t, 1200.0, got[0].TotalAmount)
	assert.Equal(t, 600.0, got[0].AverageAmount)
	assert.Equal(t, 2, got[0].TransactionCount)
	assert.Equal(t, "low", got[0].Frequency)
	assert.Equal(t, "medium", got[0].Seasonality)
	assert.Equal(t, []models.VendorShare{{Name: "ADP", Amount: 1200, Percentage: 100}}, got[0].TopVendors)

	assert.Equal(t, "Software", got[1].Category)
	assert.Equal(t, 60.0, got[1].AverageAmount)
	assert.Equal(t, []models.VendorShare{
		{Name: "GitHub", Amount: 90, Percentage: 75},
		{Name: "Slack", Amount: 30, Percentage: 25},
	}, got[1].TopVendors)
}

func TestAnalyzeCategoryPatterns_Frequency(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{1, "low"},
		{10, "low"},
		{11, "medium"},
		{30, "medium"},
		{31, "high"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.count), func(t *testing.T) {
			var txs []models.Transaction
			for i := 0; i < tt.count; i++ {
				txs = append(txs, mkTx("2024-06-01", -1, cat("Fees")))
			}
			got := AnalyzeCategoryPatterns(txs)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Frequency)
		})
	}
}

func TestAnalyzeCategoryPatterns_TopFiveVendors(t *testing.T) {
	var txs []models.Transaction
	for i := 1; i <= 7; i++ {
		txs = append(txs, mkTx("2024-06-01", -float64(i*10), cat("Supplies"), party(fmt.Sprintf("v%d", i))))
	}
	// spend without a counterparty still counts toward the category
	txs = append(txs, mkTx("2024-06-01", -20, cat("Supplies")))

	got := AnalyzeCategoryPatterns(txs)

	require.Len(t, got, 1)
	require.Len(t, got[0].TopVendors, 5)
	assert.Equal(t, "v7", got[0].TopVendors[0].Name)
	assert.Equal(t, "v3", got[0].TopVendors[4].Name)
	// 70 of 300
	assert.Equal(t, 23.33, got[0].TopVendors[0].Percentage)
}

func TestAnalyzeCategoryPatterns_NoSpend(t *testing.T) {
	got := AnalyzeCategoryPatterns([]models.Transaction{mkTx("2024-06-01", 10)})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
