package analytics

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"treasury-analytics/internal/models"
)

const (
	dashboardCashFlowPoints = 30
	dashboardCategories     = 10
	dashboardTrendMonths    = 3
)

// ResolveWindow turns a date range into the window ending at now. Unknown
// ranges fall back to 30 days; the range actually used is returned.
func ResolveWindow(now time.Time, r models.DateRange) (models.Window, models.DateRange) {
	var start time.Time
	switch r {
	case models.Range7Days:
		start = now.AddDate(0, 0, -7)
	case models.Range90Days:
		start = now.AddDate(0, 0, -90)
	case models.Range6Months:
		start = now.AddDate(0, -6, 0)
	case models.Range1Year:
		start = now.AddDate(-1, 0, 0)
	default:
		r = models.Range30Days
		start = now.AddDate(0, 0, -30)
	}
	return models.Window{Start: start, End: now}, r
}

// ComparisonWindow returns the window current is compared against, or nil when
// comparison is off. Unknown modes compare with the previous window.
func ComparisonWindow(current models.Window, mode models.CompareMode) *models.Window {
	switch mode {
	case models.CompareNone:
		return nil
	case models.CompareYearOverYear:
		return &models.Window{
			Start: current.Start.AddDate(-1, 0, 0),
			End:   current.End.AddDate(-1, 0, 0),
		}
	default:
		// bounds are inclusive, so the previous window stops just before current starts
		length := current.End.Sub(current.Start)
		return &models.Window{Start: current.Start.Add(-length), End: current.Start.Add(-time.Nanosecond)}
	}
}

// GetDashboard composes KPI cards and charts for the requested range. With
// compareMode "none" no comparison data is fetched and every KPI is stable.
func (s *Service) GetDashboard(ctx context.Context, clientID string, dateRange models.DateRange, compareMode models.CompareMode) (*models.Dashboard, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}

	now := s.now()
	current, dateRange := ResolveWindow(now, dateRange)
	if compareMode != models.CompareNone && compareMode != models.CompareYearOverYear {
		compareMode = models.ComparePrevious
	}
	comparison := ComparisonWindow(current, compareMode)

	currentFilters := models.Filters{}.WithRange(current.Start, current.End)
	trendFilters := models.Filters{}.WithRange(now.AddDate(0, -dashboardTrendMonths, 0), now)

	var (
		metrics     *models.OverviewMetrics
		compared    *models.OverviewMetrics
		cashFlow    *models.CashFlowAnalytics
		categories  []models.CategoryBreakdown
		trendPoints []models.TrendPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metrics, err = s.overview(gctx, clientID, currentFilters)
		return err
	})
	g.Go(func() error {
		var err error
		cashFlow, err = s.cashFlow(gctx, clientID, currentFilters, models.Daily)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories(gctx, clientID, currentFilters)
		return err
	})
	g.Go(func() error {
		var err error
		trendPoints, err = s.trends(gctx, clientID, models.MetricBalance, models.Monthly, trendFilters)
		return err
	})
	if comparison != nil {
		g.Go(func() error {
			var err error
			compared, err = s.overview(gctx, clientID, models.Filters{}.WithRange(comparison.Start, comparison.End))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points := cashFlow.Buckets
	if len(points) > dashboardCashFlowPoints {
		points = points[len(points)-dashboardCashFlowPoints:]
	}
	if len(categories) > dashboardCategories {
		categories = categories[:dashboardCategories]
	}

	s.log.Debug().
		Str("client_id", clientID).
		Str("date_range", string(dateRange)).
		Str("compare_mode", string(compareMode)).
		Msg("dashboard composed")

	return &models.Dashboard{
		Metrics:           *metrics,
		ComparisonMetrics: compared,
		Charts: models.DashboardCharts{
			CashFlow:   points,
			Categories: categories,
			Trends:     trendPoints,
		},
		KPIs: BuildKPIs(metrics, compared),
		Period: models.DashboardPeriod{
			DateRange:   dateRange,
			CompareMode: compareMode,
			Current:     current,
			Comparison:  comparison,
		},
	}, nil
}

// BuildKPIs produces the six dashboard cards. comparison may be nil.
func BuildKPIs(current, comparison *models.OverviewMetrics) []models.KPI {
	pick := func(get func(*models.OverviewMetrics) float64) (float64, *float64) {
		if comparison == nil {
			return get(current), nil
		}
		c := get(comparison)
		return get(current), &c
	}

	defs := []struct {
		id, title string
		format    models.KPIFormat
		get       func(*models.OverviewMetrics) float64
	}{
		{"net_cash_flow", "Net Cash Flow", models.FormatCurrency, func(m *models.OverviewMetrics) float64 { return m.NetCashFlow }},
		{"average_daily_balance", "Average Daily Balance", models.FormatCurrency, func(m *models.OverviewMetrics) float64 { return m.AverageDailyBalance }},
		{"liquidity_ratio", "Liquidity Ratio", models.FormatRatio, func(m *models.OverviewMetrics) float64 { return m.LiquidityRatio }},
		{"total_inflow", "Total Inflow", models.FormatCurrency, func(m *models.OverviewMetrics) float64 { return m.TotalInflow }},
		{"total_outflow", "Total Outflow", models.FormatCurrency, func(m *models.OverviewMetrics) float64 { return m.TotalOutflow }},
		{"transaction_count", "Transaction Count", models.FormatNumber, func(m *models.OverviewMetrics) float64 { return float64(m.TransactionCount) }},
	}

	kpis := make([]models.KPI, 0, len(defs))
	for _, d := range defs {
		value, cmp := pick(d.get)
		kpi := models.KPI{ID: d.id, Title: d.title, Value: value, Format: d.format, Trend: models.TrendStable}
		if cmp != nil {
			kpi.Change, kpi.ChangePercent = kpiChange(value, *cmp)
			kpi.Trend = trendOf(kpi.Change)
		}
		kpis = append(kpis, kpi)
	}
	return kpis
}

// kpiChange divides by 1 when the comparison value is zero, so a move from 0
// to x reports x*100 percent.
func kpiChange(current, comparison float64) (change, percent float64) {
	change = roundTo(current-comparison, 2)
	base := comparison
	if base == 0 {
		base = 1
	}
	return change, roundTo(change/math.Abs(base)*100, 2)
}

func trendOf(change float64) models.CategoryTrend {
	switch {
	case change > 0:
		return models.TrendUp
	case change < 0:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}
