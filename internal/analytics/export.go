package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"golang.org/x/sync/errgroup"

	"treasury-analytics/internal/models"
)

// ExportFormat is the encoding of an analytics export.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv"
	}
	return "application/json"
}

// ParseExportFormat validates an export format.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportJSON, ExportCSV:
		return f, nil
	default:
		return "", BadRequest("unsupported export format %q", s)
	}
}

// ExportAnalytics renders overview, monthly cash flow and categories in the
// requested format.
func (s *Service) ExportAnalytics(ctx context.Context, clientID, format string, f models.Filters) ([]byte, ExportFormat, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, "", err
	}
	ef, err := ParseExportFormat(format)
	if err != nil {
		return nil, "", err
	}

	var (
		overview   *models.OverviewMetrics
		cashFlow   *models.CashFlowAnalytics
		categories []models.CategoryBreakdown
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = s.overview(gctx, clientID, f)
		return err
	})
	g.Go(func() error {
		var err error
		cashFlow, err = s.cashFlow(gctx, clientID, f, models.Monthly)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories(gctx, clientID, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	doc := models.AnalyticsExport{
		ClientID:    clientID,
		GeneratedAt: s.now().UTC(),
		Overview:    *overview,
		CashFlow:    cashFlow.Buckets,
		Categories:  categories,
	}

	var out []byte
	switch ef {
	case ExportCSV:
		out, err = encodeCSV(doc)
	default:
		out, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, "", err
	}
	return out, ef, nil
}

func money(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func encodeCSV(doc models.AnalyticsExport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	o := doc.Overview
	records := [][]string{
		{"section", "key", "value"},
		{"overview", "total_inflow", money(o.TotalInflow)},
		{"overview", "total_outflow", money(o.TotalOutflow)},
		{"overview", "net_cash_flow", money(o.NetCashFlow)},
		{"overview", "transaction_count", strconv.Itoa(o.TransactionCount)},
		{"overview", "average_daily_balance", money(o.AverageDailyBalance)},
		{"overview", "liquidity_ratio", money(o.LiquidityRatio)},
		{},
		{"period", "inflow", "outflow", "net_flow", "balance"},
	}
	for _, b := range doc.CashFlow {
		records = append(records, []string{b.Period, money(b.Inflow), money(b.Outflow), money(b.NetFlow), money(b.Balance)})
	}
	records = append(records, []string{}, []string{"category", "amount", "count", "percentage", "trend"})
	for _, c := range doc.Categories {
		records = append(records, []string{c.Category, money(c.Amount), strconv.Itoa(c.Count), money(c.Percentage), string(c.Trend)})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
