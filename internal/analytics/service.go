package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"treasury-analytics/internal/models"
)

// DefaultCategoryWindow is the look-back used when a category request has no start date.
const DefaultCategoryWindow = 30 * 24 * time.Hour

// Service computes cash-flow and liquidity analytics for one client at a time.
// Every call re-reads the store; nothing is cached here.
type Service struct {
	store TransactionStore
	log   zerolog.Logger
	now   func() time.Time
	loc   *time.Location
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the calendar used for day and week boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates an analytics service backed by store.
func NewService(store TransactionStore, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ensureClient(ctx context.Context, clientID string) error {
	ok, err := s.store.ClientExists(ctx, clientID)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound("client %s not found", clientID)
	}
	return nil
}

func (s *Service) list(ctx context.Context, clientID string, q models.TransactionQuery) ([]models.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, clientID, q)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].Date = txs[i].Date.In(s.loc)
	}
	return txs, nil
}

// GetCashFlowAnalytics buckets the client's matching transactions by period.
func (s *Service) GetCashFlowAnalytics(ctx context.Context, clientID string, f models.Filters, g models.Granularity) (*models.CashFlowAnalytics, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.cashFlow(ctx, clientID, f, g)
}

func (s *Service) cashFlow(ctx context.Context, clientID string, f models.Filters, g models.Granularity) (*models.CashFlowAnalytics, error) {
	txs, err := s.list(ctx, clientID, models.TransactionQuery{Filters: f, Order: models.OrderAsc})
	if err != nil {
		return nil, err
	}
	g = ParseGranularity(string(g))
	return &models.CashFlowAnalytics{Period: g, Buckets: BucketByPeriod(txs, g)}, nil
}

// GetLiquidityAnalytics summarises the client's most recent balances.
func (s *Service) GetLiquidityAnalytics(ctx context.Context, clientID string) (*models.LiquiditySnapshot, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	txs, err := s.list(ctx, clientID, models.TransactionQuery{Order: models.OrderDesc, Limit: LiquidityWindow})
	if err != nil {
		return nil, err
	}
	snapshot := AnalyzeLiquidity(txs)
	s.log.Debug().
		Str("client_id", clientID).
		Int("transactions", len(txs)).
		Float64("score", snapshot.LiquidityScore).
		Msg("liquidity analysed")
	return &snapshot, nil
}

// GetCategoryAnalytics breaks the window down by category and compares it with
// the window of equal length just before it.
func (s *Service) GetCategoryAnalytics(ctx context.Context, clientID string, f models.Filters) ([]models.CategoryBreakdown, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.categories(ctx, clientID, f)
}

func (s *Service) categories(ctx context.Context, clientID string, f models.Filters) ([]models.CategoryBreakdown, error) {
	end := s.now()
	if f.EndDate != nil {
		end = *f.EndDate
	}
	start := end.Add(-DefaultCategoryWindow)
	if f.StartDate != nil {
		start = *f.StartDate
	}
	length := end.Sub(start)
	// the previous window ends just before the current one starts
	prevStart, prevEnd := start.Add(-length), start.Add(-time.Nanosecond)

	var current, previous []models.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.list(gctx, clientID, models.TransactionQuery{Filters: f.WithRange(start, end), Order: models.OrderAsc})
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.list(gctx, clientID, models.TransactionQuery{Filters: f.WithRange(prevStart, prevEnd), Order: models.OrderAsc})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildCategoryBreakdown(current, previous), nil
}

// GetVendorAnalytics ranks counterparties by outgoing spend.
func (s *Service) GetVendorAnalytics(ctx context.Context, clientID string, f models.Filters) ([]models.VendorBreakdown, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}

	txs, err := s.list(ctx, clientID, models.TransactionQuery{Filters: f.WithFlow(models.FlowOutflow), Order: models.OrderAsc})
	if err != nil {
		return nil, err
	}

	names := TopVendorNames(txs)
	methods := make([][]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			types, err := s.store.TransactionTypes(gctx, clientID, name)
			if err != nil {
				return err
			}
			methods[i] = types
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byVendor := make(map[string][]string, len(names))
	for i, name := range names {
		byVendor[name] = methods[i]
	}
	return BuildVendorBreakdown(txs, byVendor), nil
}

// GetSpendingPatterns runs AnalyzeCategoryPatterns over the matching transactions.
func (s *Service) GetSpendingPatterns(ctx context.Context, clientID string, f models.Filters) ([]models.SpendingPattern, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	txs, err := s.list(ctx, clientID, models.TransactionQuery{Filters: f.WithFlow(models.FlowOutflow), Order: models.OrderAsc})
	if err != nil {
		return nil, err
	}
	return AnalyzeCategoryPatterns(txs), nil
}

// GetTrends computes the period-over-period trend of one metric.
func (s *Service) GetTrends(ctx context.Context, clientID, metric string, g models.Granularity, f models.Filters) ([]models.TrendPoint, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	m, err := ParseMetric(metric)
	if err != nil {
		return nil, err
	}
	return s.trends(ctx, clientID, m, g, f)
}

func (s *Service) trends(ctx context.Context, clientID string, m models.TrendMetric, g models.Granularity, f models.Filters) ([]models.TrendPoint, error) {
	txs, err := s.list(ctx, clientID, models.TransactionQuery{Filters: f, Order: models.OrderAsc})
	if err != nil {
		return nil, err
	}
	return CalculateTrends(txs, m, g), nil
}
