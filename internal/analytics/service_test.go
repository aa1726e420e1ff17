package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_analytics "treasury-analytics/internal/analytics/mocks"
	"treasury-analytics/internal/models"
	"treasury-analytics/internal/store"
)

var fixedNow = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

func seededService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.CreateClient(ctx, "client-1", "Client One"))
	require.NoError(t, mem.InsertTransactions(ctx, []models.Transaction{
		mkTx("2024-05-01 09:00", -200, bal(10000), cat("Supplies"), party("Acme"), kind("card")),
		mkTx("2024-06-01 09:00", 1000, bal(11000), cat("Sales"), party("Customer"), kind("wire")),
		mkTx("2024-06-01 12:00", -300, bal(10700), cat("Supplies"), party("Acme"), kind("card")),
		mkTx("2024-06-02 09:00", 500, bal(11200), cat("Sales"), party("Customer"), kind("wire")),
		mkTx("2024-06-03 09:00", -100, bal(11100), cat("Supplies"), party("Globex"), kind("ach")),
		mkTx("2024-06-03 10:00", -100, bal(11000), cat("Supplies"), party("Acme"), kind("wire")),
	}))
	return NewService(mem, zerolog.Nop(), WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
}

func june() models.Filters {
	return models.Filters{}.WithRange(mustTime("2024-06-01"), mustTime("2024-06-03 23:59"))
}

func TestService_UnknownClient(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	calls := map[string]func() error{
		"overview": func() error { _, err := svc.GetOverviewMetrics(ctx, "nope", models.Filters{}); return err },
		"cash flow": func() error {
			_, err := svc.GetCashFlowAnalytics(ctx, "nope", models.Filters{}, models.Daily)
			return err
		},
		"liquidity":  func() error { _, err := svc.GetLiquidityAnalytics(ctx, "nope"); return err },
		"categories": func() error { _, err := svc.GetCategoryAnalytics(ctx, "nope", models.Filters{}); return err },
		"vendors":    func() error { _, err := svc.GetVendorAnalytics(ctx, "nope", models.Filters{}); return err },
		"patterns":   func() error { _, err := svc.GetSpendingPatterns(ctx, "nope", models.Filters{}); return err },
		"trends": func() error {
			_, err := svc.GetTrends(ctx, "nope", "not-a-metric", models.Monthly, models.Filters{})
			return err
		},
		"dashboard": func() error { _, err := svc.GetDashboard(ctx, "nope", models.Range30Days, models.ComparePrevious); return err },
		"export":    func() error { _, _, err := svc.ExportAnalytics(ctx, "nope", "xml", models.Filters{}); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.True(t, IsNotFound(err), "got %v", err)
		})
	}
}

func TestService_GetOverviewMetrics(t *testing.T) {
	svc := seededService(t)

	got, err := svc.GetOverviewMetrics(context.Background(), "client-1", june())

	require.NoError(t, err)
	assert.Equal(t, 1500.0, got.TotalInflow)
	assert.Equal(t, 500.0, got.TotalOutflow)
	assert.Equal(t, 1000.0, got.NetCashFlow)
	assert.Equal(t, 5, got.TransactionCount)
	assert.Equal(t, 400.0, got.AverageTransaction)
	assert.Equal(t, 3.0, got.LiquidityRatio)
	// closing balances 10,700 / 11,200 / 11,000
	assert.Equal(t, 10966.67, got.AverageDailyBalance)
	assert.Equal(t, 11000.0, got.CurrentBalance)
}

func TestService_GetCashFlowAnalytics(t *testing.T) {
	svc := seededService(t)

	got, err := svc.GetCashFlowAnalytics(context.Background(), "client-1", models.Filters{}, "bogus")

	require.NoError(t, err)
	assert.Equal(t, models.Daily, got.Period)
	require.Len(t, got.Buckets, 4)
	assert.Equal(t, "2024-05-01", got.Buckets[0].Period)
	assert.Equal(t, models.PeriodBucket{Period: "2024-06-03", Outflow: 200, NetFlow: -200, Balance: 11000}, got.Buckets[3])
}

func TestService_CashFlowUsesLocation(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.CreateClient(ctx, "client-1", "Client One"))
	require.NoError(t, mem.InsertTransactions(ctx, []models.Transaction{mkTx("2024-06-01 02:00", 10)}))

	svc := NewService(mem, zerolog.Nop(), WithLocation(time.FixedZone("EST", -5*3600)))
	got, err := svc.GetCashFlowAnalytics(ctx, "client-1", models.Filters{}, models.Daily)

	require.NoError(t, err)
	require.Len(t, got.Buckets, 1)
	assert.Equal(t, "2024-05-31", got.Buckets[0].Period)
}

func TestService_GetLiquidityAnalytics(t *testing.T) {
	svc := seededService(t)

	got, err := svc.GetLiquidityAnalytics(context.Background(), "client-1")

	require.NoError(t, err)
	assert.Equal(t, 10000.0, got.MinimumBalance)
	assert.Equal(t, 11200.0, got.MaximumBalance)
	assert.Equal(t, 10833.33, got.AverageBalance)
	assert.True(t, got.ThresholdExceeded)
	assert.Equal(t, ThresholdAmount, got.ThresholdAmount)
}

func TestService_GetCategoryAnalytics_DefaultWindow(t *testing.T) {
	svc := seededService(t)

	// 30 days back from the clock; the May transaction falls in the previous window
	got, err := svc.GetCategoryAnalytics(context.Background(), "client-1", models.Filters{})

	require.NoError(t, err)
	assert.Equal(t, []models.CategoryBreakdown{
		{Category: "Sales", Amount: 1500, Count: 2, Percentage: 75, Trend: models.TrendNew},
		{Category: "Supplies", Amount: 500, Count: 3, Percentage: 25, Trend: models.TrendUp},
	}, got)
}

func TestService_GetCategoryAnalytics_ExplicitWindow(t *testing.T) {
	svc := seededService(t)

	got, err := svc.GetCategoryAnalytics(context.Background(), "client-1", june())

	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, models.TrendNew, c.Trend)
	}
}

func TestService_GetVendorAnalytics(t *testing.T) {
	svc := seededService(t)

	got, err := svc.GetVendorAnalytics(context.Background(), "client-1", models.Filters{})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.VendorBreakdown{
		VendorName: "Acme", TotalAmount: 600, TransactionCount: 3, Percentage: 85.71,
		PaymentMethods: []string{"card", "wire"},
	}, got[0])
	assert.Equal(t, models.VendorBreakdown{
		VendorName: "Globex", TotalAmount: 100, TransactionCount: 1, Percentage: 14.29,
		PaymentMethods: []string{"ach"},
	}, got[1])
}

func TestService_GetSpendingPatterns(t *testing.T) {
	svc := seededService(t)

	got, err := svc.GetSpendingPatterns(context.Background(), "client-1", models.Filters{})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Supplies", got[0].Category)
	assert.Equal(t, 700.0, got[0].TotalAmount)
	assert.Equal(t, "Acme", got[0].TopVendors[0].Name)
}

func TestService_GetTrends(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	got, err := svc.GetTrends(ctx, "client-1", "balance", models.Monthly, models.Filters{})
	require.NoError(t, err)
	assert.Equal(t, []models.TrendPoint{
		{Period: "2024-05", Value: 10000},
		{Period: "2024-06", Value: 11000, Change: 1000, ChangePercent: 10},
	}, got)

	_, err = svc.GetTrends(ctx, "client-1", "profit", models.Monthly, models.Filters{})
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))
}

func TestService_ExportAnalytics(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		out, format, err := svc.ExportAnalytics(ctx, "client-1", "json", june())
		require.NoError(t, err)
		assert.Equal(t, ExportJSON, format)
		assert.Equal(t, "application/json", format.ContentType())

		var doc models.AnalyticsExport
		require.NoError(t, json.Unmarshal(out, &doc))
		assert.Equal(t, "client-1", doc.ClientID)
		assert.True(t, fixedNow.Equal(doc.GeneratedAt))
		assert.Equal(t, 1500.0, doc.Overview.TotalInflow)
		require.Len(t, doc.CashFlow, 1)
		assert.Equal(t, "2024-06", doc.CashFlow[0].Period)
		assert.Len(t, doc.Categories, 2)
	})

	t.Run("csv", func(t *testing.T) {
		out, format, err := svc.ExportAnalytics(ctx, "client-1", "csv", june())
		require.NoError(t, err)
		assert.Equal(t, "text/csv", format.ContentType())

		text := string(out)
		assert.True(t, strings.HasPrefix(text, "section,key,value\n"))
		assert.Contains(t, text, "overview,total_inflow,1500.00\n")
		assert.Contains(t, text, "overview,transaction_count,5\n")
		assert.Contains(t, text, "\nperiod,inflow,outflow,net_flow,balance\n2024-06,1500.00,500.00,1000.00,11000.00\n")
		assert.Contains(t, text, "\ncategory,amount,count,percentage,trend\nSales,1500.00,2,75.00,new\n")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, _, err := svc.ExportAnalytics(ctx, "client-1", "xml", june())
		require.Error(t, err)
		assert.True(t, IsBadRequest(err))
	})
}

func TestService_StoreErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mock_analytics.NewMockTransactionStore(ctrl)
	dbErr := errors.New("connection reset")

	st.EXPECT().ClientExists(gomock.Any(), "client-1").Return(true, nil)
	st.EXPECT().ListTransactions(gomock.Any(), "client-1", gomock.Any()).Return(nil, dbErr)

	svc := NewService(st, zerolog.Nop())
	_, err := svc.GetCashFlowAnalytics(context.Background(), "client-1", models.Filters{}, models.Daily)

	require.ErrorIs(t, err, dbErr)
	assert.Equal(t, 500, StatusCode(err))
}

func TestService_ClientLookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mock_analytics.NewMockTransactionStore(ctrl)
	dbErr := errors.New("timeout")

	st.EXPECT().ClientExists(gomock.Any(), "client-1").Return(false, dbErr)

	svc := NewService(st, zerolog.Nop())
	_, err := svc.GetLiquidityAnalytics(context.Background(), "client-1")

	require.ErrorIs(t, err, dbErr)
	assert.False(t, IsNotFound(err))
}

func TestService_LiquidityQueriesMostRecentWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mock_analytics.NewMockTransactionStore(ctrl)

	st.EXPECT().ClientExists(gomock.Any(), "client-1").Return(true, nil)
	st.EXPECT().
		ListTransactions(gomock.Any(), "client-1", models.TransactionQuery{Order: models.OrderDesc, Limit: LiquidityWindow}).
		Return([]models.Transaction{mkTx("2024-06-01", 10, bal(30000))}, nil)

	svc := NewService(st, zerolog.Nop())
	got, err := svc.GetLiquidityAnalytics(context.Background(), "client-1")

	require.NoError(t, err)
	assert.Equal(t, 30000.0, got.AverageBalance)
	assert.False(t, got.ThresholdExceeded)
}
