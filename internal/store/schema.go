package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS clients (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id VARCHAR(64) PRIMARY KEY,
		client_id VARCHAR(64) NOT NULL REFERENCES clients(id),
		account_id VARCHAR(64) NOT NULL,
		date TIMESTAMP NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		balance_after NUMERIC(18,2),
		category VARCHAR(100),
		counterparty VARCHAR(255),
		type VARCHAR(50) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_client_date ON transactions(client_id, date);
	CREATE INDEX IF NOT EXISTS idx_transactions_client_counterparty ON transactions(client_id, counterparty);
`

// EnsureSchema creates the tables the analytics read from.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Seeder is what demo seeding needs from a store.
type Seeder interface {
	CreateClient(ctx context.Context, id, name string) error
	InsertTransactions(ctx context.Context, txs []models.Transaction) error
	CountTransactions(ctx context.Context) (int, error)
}

// DemoClientID is the client created by SeedDemoData.
const DemoClientID = "demo-client"

// SeedDemoData seeds one client with a few months of treasury activity.
// Idempotent: it only runs when no transactions are present.
func SeedDemoData(ctx context.Context, s Seeder, now time.Time) error {
	n, err := s.CountTransactions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if err := s.CreateClient(ctx, DemoClientID, "Demo Manufacturing Ltd"); err != nil {
		return err
	}
	if err := s.InsertTransactions(ctx, DemoTransactions(DemoClientID, now, 120)); err != nil {
		return fmt.Errorf("seeding demo transactions: %w", err)
	}
	return nil
}

type demoFlow struct {
	category     string
	counterparty string
	kind         string
	min, max     float64
	inflow       bool
	everyDays    int
}

var demoFlows = []demoFlow{
	{"Sales", "Northwind Traders", "wire", 18000, 42000, true, 7},
	{"Sales", "Contoso Retail", "ach", 6000, 15000, true, 3},
	{"Interest", "First Treasury Bank", "ach", 150, 400, true, 30},
	{"Payroll", "Gusto Payroll", "ach", 22000, 26000, false, 14},
	{"Rent", "Harbor Properties", "check", 8500, 8500, false, 30},
	{"Suppliers", "Acme Components", "wire", 4000, 12000, false, 5},
	{"Suppliers", "Globex Logistics", "ach", 900, 3500, false, 4},
	{"Utilities", "City Power & Light", "card", 600, 1400, false, 30},
	{"Software", "Cloudworks Inc", "card", 200, 900, false, 10},
	{"Travel", "Skyway Airlines", "card", 300, 2400, false, 9},
	{"", "", "fee", 15, 45, false, 6},
}

// DemoTransactions generates deterministic activity for the last days days,
// with a running balance starting at 150,000.
func DemoTransactions(clientID string, now time.Time, days int) []models.Transaction {
	rng := rand.New(rand.NewPCG(42, uint64(days)))
	balance := decimal.NewFromInt(150000)
	start := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.UTC).AddDate(0, 0, -days)

	var txs []models.Transaction
	for d := 0; d <= days; d++ {
		day := start.AddDate(0, 0, d)
		for i, f := range demoFlows {
			if (d+i)%f.everyDays != 0 {
				continue
			}
			amount := decimal.NewFromFloat(f.min + rng.Float64()*(f.max-f.min)).Round(2)
			if !f.inflow {
				amount = amount.Neg()
			}
			balance = balance.Add(amount)

			t := models.Transaction{
				ID:           uuid.NewString(),
				ClientID:     clientID,
				AccountID:    clientID + "-operating",
				Date:         day.Add(time.Duration(i) * 17 * time.Minute),
				Amount:       amount,
				BalanceAfter: decimal.NewNullDecimal(balance),
				Type:         f.kind,
				Description:  fmt.Sprintf("%s %s", f.kind, day.Format(time.DateOnly)),
			}
			if f.category != "" {
				t.Category = &f.category
			}
			if f.counterparty != "" {
				t.Counterparty = &f.counterparty
			}
			txs = append(txs, t)
		}
	}
	return txs
}
