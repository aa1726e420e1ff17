package models

import "time"

// Granularity is the calendar width of a cash-flow bucket.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// PeriodBucket accumulates inflow, outflow and closing balance for one period.
type PeriodBucket struct {
	Period  string  `json:"period"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	NetFlow float64 `json:"netFlow"`
	Balance float64 `json:"balance"`
}

// CashFlowAnalytics is the bucketed cash flow of a client.
type CashFlowAnalytics struct {
	Period  Granularity    `json:"period"`
	Buckets []PeriodBucket `json:"buckets"`
}

// LiquiditySnapshot summarises balance behaviour over recent transactions.
type LiquiditySnapshot struct {
	AverageBalance    float64 `json:"averageBalance"`
	MinimumBalance    float64 `json:"minimumBalance"`
	MaximumBalance    float64 `json:"maximumBalance"`
	Volatility        float64 `json:"volatility"`
	IdleDays          int     `json:"idleDays"`
	LiquidityScore    float64 `json:"liquidityScore"`
	ThresholdExceeded bool    `json:"thresholdExceeded"`
	ThresholdAmount   float64 `json:"thresholdAmount"`
}

// CategoryTrend is the direction of a category against the previous period.
type CategoryTrend string

const (
	TrendUp     CategoryTrend = "up"
	TrendDown   CategoryTrend = "down"
	TrendStable CategoryTrend = "stable"
	TrendNew    CategoryTrend = "new"
)

// CategoryBreakdown is the share of activity attributed to one category.
type CategoryBreakdown struct {
	Category   string        `json:"category"`
	Amount     float64       `json:"amount"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
	Trend      CategoryTrend `json:"trend"`
}

// VendorBreakdown is the spend attributed to one counterparty.
type VendorBreakdown struct {
	VendorName       string   `json:"vendorName"`
	TotalAmount      float64  `json:"totalAmount"`
	TransactionCount int      `json:"transactionCount"`
	Percentage       float64  `json:"percentage"`
	PaymentMethods   []string `json:"paymentMethods"`
}

// VendorShare is a vendor's part of one category's spend.
type VendorShare struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// SpendingPattern describes how a client spends within one category.
type SpendingPattern struct {
	Category         string        `json:"category"`
	TotalAmount      float64       `json:"totalAmount"`
	TransactionCount int           `json:"transactionCount"`
	AverageAmount    float64       `json:"averageAmount"`
	Frequency        string        `json:"frequency"`
	Seasonality      string        `json:"seasonality"`
	TopVendors       []VendorShare `json:"topVendors"`
}

// TrendMetric selects the bucket value a trend is computed over.
type TrendMetric string

const (
	MetricInflow       TrendMetric = "inflow"
	MetricOutflow      TrendMetric = "outflow"
	MetricBalance      TrendMetric = "balance"
	MetricTransactions TrendMetric = "transactions"
)

// TrendPoint is one period of a trend with its change from the previous one.
type TrendPoint struct {
	Period        string  `json:"period"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// OverviewMetrics are the headline figures for a date window.
type OverviewMetrics struct {
	TotalInflow         float64    `json:"totalInflow"`
	TotalOutflow        float64    `json:"totalOutflow"`
	NetCashFlow         float64    `json:"netCashFlow"`
	TransactionCount    int        `json:"transactionCount"`
	AverageTransaction  float64    `json:"averageTransaction"`
	AverageDailyBalance float64    `json:"averageDailyBalance"`
	CurrentBalance      float64    `json:"currentBalance"`
	LiquidityRatio      float64    `json:"liquidityRatio"`
	StartDate           *time.Time `json:"startDate,omitempty"`
	EndDate             *time.Time `json:"endDate,omitempty"`
}

// DateRange is a dashboard look-back window.
type DateRange string

const (
	Range7Days   DateRange = "7d"
	Range30Days  DateRange = "30d"
	Range90Days  DateRange = "90d"
	Range6Months DateRange = "6m"
	Range1Year   DateRange = "1y"
)

// CompareMode selects the window the dashboard compares against.
type CompareMode string

const (
	ComparePrevious     CompareMode = "previous"
	CompareYearOverYear CompareMode = "year_over_year"
	CompareNone         CompareMode = "none"
)

// Window is a closed time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// KPIFormat tells the dashboard how to render a KPI value.
type KPIFormat string

const (
	FormatCurrency KPIFormat = "currency"
	FormatNumber   KPIFormat = "number"
	FormatRatio    KPIFormat = "ratio"
)

// KPI is one dashboard card.
type KPI struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Value         float64       `json:"value"`
	Change        float64       `json:"change"`
	ChangePercent float64       `json:"changePercent"`
	Trend         CategoryTrend `json:"trend"`
	Format        KPIFormat     `json:"format"`
}

// DashboardCharts are the chart series shown under the KPI cards.
type DashboardCharts struct {
	CashFlow   []PeriodBucket      `json:"cashFlow"`
	Categories []CategoryBreakdown `json:"categories"`
	Trends     []TrendPoint        `json:"trends"`
}

// DashboardPeriod echoes the resolved windows back to the caller.
type DashboardPeriod struct {
	DateRange   DateRange   `json:"dateRange"`
	CompareMode CompareMode `json:"compareMode"`
	Current     Window      `json:"current"`
	Comparison  *Window     `json:"comparison,omitempty"`
}

// Dashboard is the composed relationship-manager dashboard.
type Dashboard struct {
	Metrics           OverviewMetrics  `json:"metrics"`
	ComparisonMetrics *OverviewMetrics `json:"comparisonMetrics,omitempty"`
	Charts            DashboardCharts  `json:"charts"`
	KPIs              []KPI            `json:"kpis"`
	Period            DashboardPeriod  `json:"period"`
}

// AnalyticsExport is the document produced by an export.
type AnalyticsExport struct {
	ClientID    string              `json:"clientId"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Overview    OverviewMetrics     `json:"overview"`
	CashFlow    []PeriodBucket      `json:"cashFlow"`
	Categories  []CategoryBreakdown `json:"categories"`
}
