package analytics

import (
	"context"

	"treasury-analytics/internal/models"
)

// TransactionStore is the read-only view of the transaction table the engine needs.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mock_analytics -source=interface.go TransactionStore
type TransactionStore interface {
	ClientExists(ctx context.Context, clientID string) (bool, error)
	ListTransactions(ctx context.Context, clientID string, q models.TransactionQuery) ([]models.Transaction, error)
	Aggregate(ctx context.Context, clientID string, f models.Filters) (models.Aggregate, error)
	TransactionTypes(ctx context.Context, clientID, counterparty string) ([]string, error)
}
