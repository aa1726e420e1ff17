package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"treasury-analytics/internal/models"
)

// SQLStore reads and writes transactions through database/sql. Queries are
// written with ? placeholders and rebound for Postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// New wraps an open database handle.
func New(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// DB exposes the underlying handle for health checks.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ClientExists reports whether clientID is a known client.
func (s *SQLStore) ClientExists(ctx context.Context, clientID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM clients WHERE id = ?`), clientID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking client %s: %w", clientID, err)
	}
	return true, nil
}

const transactionColumns = `id, client_id, account_id, date, amount, balance_after, category, counterparty, type, description`

// ListTransactions returns the client's transactions matching q.
func (s *SQLStore) ListTransactions(ctx context.Context, clientID string, q models.TransactionQuery) ([]models.Transaction, error) {
	where, args := whereClause(clientID, q.Filters)

	order := "ASC"
	if q.Order == models.OrderDesc {
		order = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY date %s, id %s`, transactionColumns, where, order, order)
	if q.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var (
			t            models.Transaction
			date         scanTime
			category     sql.NullString
			counterparty sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.ClientID, &t.AccountID, &date, &t.Amount, &t.BalanceAfter,
			&category, &counterparty, &t.Type, &t.Description); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Date = date.Time
		if category.Valid {
			t.Category = &category.String
		}
		if counterparty.Valid {
			t.Counterparty = &counterparty.String
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return txs, nil
}

// Aggregate sums the signed amount of the matching transactions.
func (s *SQLStore) Aggregate(ctx context.Context, clientID string, f models.Filters) (models.Aggregate, error) {
	where, args := whereClause(clientID, f)
	query := `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM transactions WHERE ` + where

	var agg models.Aggregate
	if err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&agg.Sum, &agg.Count); err != nil {
		return models.Aggregate{}, fmt.Errorf("aggregating transactions: %w", err)
	}
	return agg, nil
}

// TransactionTypes lists the distinct transaction types used with counterparty.
func (s *SQLStore) TransactionTypes(ctx context.Context, clientID, counterparty string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT DISTINCT type FROM transactions WHERE client_id = ? AND counterparty = ? ORDER BY type`),
		clientID, counterparty)
	if err != nil {
		return nil, fmt.Errorf("querying transaction types: %w", err)
	}
	defer rows.Close()

	types := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning transaction type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// CreateClient inserts a client unless it already exists.
func (s *SQLStore) CreateClient(ctx context.Context, id, name string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO clients (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING`), id, name)
	if err != nil {
		return fmt.Errorf("creating client %s: %w", id, err)
	}
	return nil
}

// InsertTransactions writes txs in a single database transaction.
func (s *SQLStore) InsertTransactions(ctx context.Context, txs []models.Transaction) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = dbtx.Rollback()
	}()

	stmt, err := dbtx.PrepareContext(ctx, s.rebind(
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		t = t.Normalize()
		if _, err := stmt.ExecContext(ctx, t.ID, t.ClientID, t.AccountID, t.Date.UTC(), t.Amount,
			t.BalanceAfter, t.Category, t.Counterparty, t.Type, t.Description); err != nil {
			return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
		}
	}
	return dbtx.Commit()
}

// CountTransactions returns the number of stored transactions.
func (s *SQLStore) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("checking transactions count: %w", err)
	}
	return n, nil
}

func whereClause(clientID string, f models.Filters) (string, []any) {
	conds := []string{"client_id = ?"}
	args := []any{clientID}

	if f.StartDate != nil {
		conds = append(conds, "date >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		conds = append(conds, "date <= ?")
		args = append(args, f.EndDate.UTC())
	}
	if f.AccountID != "" {
		conds = append(conds, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if len(f.Categories) > 0 {
		cond := "category IN (" + placeholders(len(f.Categories)) + ")"
		for _, c := range f.Categories {
			if c == models.UncategorizedLabel {
				cond = "(" + cond + " OR category IS NULL)"
				break
			}
		}
		conds = append(conds, cond)
		for _, c := range f.Categories {
			args = append(args, c)
		}
	}
	if len(f.TransactionTypes) > 0 {
		conds = append(conds, "type IN ("+placeholders(len(f.TransactionTypes))+")")
		for _, t := range f.TransactionTypes {
			args = append(args, t)
		}
	}
	if f.MinAmount != nil {
		conds = append(conds, "amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		conds = append(conds, "amount <= ?")
		args = append(args, *f.MaxAmount)
	}
	if f.Counterparty != "" {
		conds = append(conds, "counterparty = ?")
		args = append(args, f.Counterparty)
	}
	switch f.Flow {
	case models.FlowInflow:
		conds = append(conds, "amount > 0")
	case models.FlowOutflow:
		conds = append(conds, "amount < 0")
	}

	return strings.Join(conds, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// scanTime accepts the representations drivers use for timestamps.
type scanTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

func (t *scanTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into time", src)
	}
}

func (t *scanTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised time %q", s)
}
