package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

// MemoryStore is an in-memory transaction store, safe for concurrent use.
// Data is lost on restart; it backs the -demo mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	clients map[string]string
	txs     []models.Transaction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clients: make(map[string]string)}
}

// CreateClient registers a client; existing clients are left untouched.
func (s *MemoryStore) CreateClient(ctx context.Context, id, name string) error {
	if id == "" {
		return fmt.Errorf("client ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		s.clients[id] = name
	}
	return nil
}

// InsertTransactions appends txs. Their clients must exist.
func (s *MemoryStore) InsertTransactions(ctx context.Context, txs []models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range txs {
		if _, ok := s.clients[t.ClientID]; !ok {
			return fmt.Errorf("inserting transaction %s: unknown client %s", t.ID, t.ClientID)
		}
	}
	for _, t := range txs {
		s.txs = append(s.txs, t.Normalize())
	}
	return nil
}

// CountTransactions returns the number of stored transactions.
func (s *MemoryStore) CountTransactions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs), nil
}

// ClientExists implements analytics.TransactionStore.
func (s *MemoryStore) ClientExists(ctx context.Context, clientID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.clients[clientID]
	return ok, nil
}

// ListTransactions implements analytics.TransactionStore.
func (s *MemoryStore) ListTransactions(ctx context.Context, clientID string, q models.TransactionQuery) ([]models.Transaction, error) {
	out := s.matching(clientID, q.Filters)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			if q.Order == models.OrderDesc {
				return a.Date.After(b.Date)
			}
			return a.Date.Before(b.Date)
		}
		if q.Order == models.OrderDesc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Aggregate implements analytics.TransactionStore.
func (s *MemoryStore) Aggregate(ctx context.Context, clientID string, f models.Filters) (models.Aggregate, error) {
	agg := models.Aggregate{Sum: decimal.Zero}
	for _, t := range s.matching(clientID, f) {
		agg.Sum = agg.Sum.Add(t.Amount)
		agg.Count++
	}
	return agg, nil
}

// TransactionTypes implements analytics.TransactionStore.
func (s *MemoryStore) TransactionTypes(ctx context.Context, clientID, counterparty string) ([]string, error) {
	types := make([]string, 0)
	for _, t := range s.matching(clientID, models.Filters{Counterparty: counterparty}) {
		if !slices.Contains(types, t.Type) {
			types = append(types, t.Type)
		}
	}
	sort.Strings(types)
	return types, nil
}

func (s *MemoryStore) matching(clientID string, f models.Filters) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Transaction, 0)
	for _, t := range s.txs {
		if t.ClientID == clientID && matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// matches mirrors whereClause for in-memory rows.
func matches(t models.Transaction, f models.Filters) bool {
	if f.StartDate != nil && t.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.Date.After(*f.EndDate) {
		return false
	}
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	if len(f.Categories) > 0 {
		if t.Category == nil {
			if !slices.Contains(f.Categories, models.UncategorizedLabel) {
				return false
			}
		} else if !slices.Contains(f.Categories, *t.Category) {
			return false
		}
	}
	if len(f.TransactionTypes) > 0 && !slices.Contains(f.TransactionTypes, t.Type) {
		return false
	}
	if f.MinAmount != nil && t.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && t.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.Counterparty != "" && (t.Counterparty == nil || *t.Counterparty != f.Counterparty) {
		return false
	}
	switch f.Flow {
	case models.FlowInflow:
		return t.Amount.IsPositive()
	case models.FlowOutflow:
		return t.Amount.IsNegative()
	}
	return true
}
