package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"treasury-analytics/internal/models"
)

// GetOverviewMetrics returns headline totals and balance figures for the window.
func (s *Service) GetOverviewMetrics(ctx context.Context, clientID string, f models.Filters) (*models.OverviewMetrics, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.overview(ctx, clientID, f)
}

func (s *Service) overview(ctx context.Context, clientID string, f models.Filters) (*models.OverviewMetrics, error) {
	var (
		inflow, outflow, all models.Aggregate
		txs                  []models.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inflow, err = s.store.Aggregate(gctx, clientID, f.WithFlow(models.FlowInflow))
		return err
	})
	g.Go(func() error {
		var err error
		outflow, err = s.store.Aggregate(gctx, clientID, f.WithFlow(models.FlowOutflow))
		return err
	})
	g.Go(func() error {
		var err error
		all, err = s.store.Aggregate(gctx, clientID, f.WithFlow(models.FlowAll))
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.list(gctx, clientID, models.TransactionQuery{Filters: f, Order: models.OrderAsc})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalIn := inflow.Sum
	totalOut := outflow.Sum.Abs()

	m := &models.OverviewMetrics{
		TotalInflow:      round2(totalIn),
		TotalOutflow:     round2(totalOut),
		NetCashFlow:      round2(totalIn.Sub(totalOut)),
		TransactionCount: all.Count,
		StartDate:        f.StartDate,
		EndDate:          f.EndDate,
	}
	if all.Count > 0 {
		m.AverageTransaction = round2(totalIn.Add(totalOut).Div(decimal.NewFromInt(int64(all.Count))))
	}
	if !totalOut.IsZero() {
		m.LiquidityRatio = round2(totalIn.Div(totalOut))
	}
	m.AverageDailyBalance, m.CurrentBalance = dailyBalances(txs)
	return m, nil
}

// dailyBalances averages each day's closing balance and returns the latest
// known balance. txs must be ordered by date ascending.
func dailyBalances(txs []models.Transaction) (average, current float64) {
	closing := make(map[string]decimal.Decimal)
	var days []string
	last := decimal.Zero
	for _, tx := range txs {
		if !tx.BalanceAfter.Valid {
			continue
		}
		day := tx.Date.Format(time.DateOnly)
		if _, seen := closing[day]; !seen {
			days = append(days, day)
		}
		closing[day] = tx.BalanceAfter.Decimal
		last = tx.BalanceAfter.Decimal
	}
	if len(days) == 0 {
		return 0, 0
	}

	sum := decimal.Zero
	for _, d := range days {
		sum = sum.Add(closing[d])
	}
	return round2(sum.Div(decimal.NewFromInt(int64(len(days))))), round2(last)
}
