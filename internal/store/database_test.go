package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"treasury-analytics/internal/models"
)

func TestNormalizeDatabaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"postgresql://u:p@db:5432/treasury", "postgres://u:p@db:5432/treasury?sslmode=disable"},
		{"postgres://u@db/treasury?connect_timeout=5", "postgres://u@db/treasury?connect_timeout=5&sslmode=disable"},
		{"postgres://u@db/treasury?sslmode=require", "postgres://u@db/treasury?sslmode=require"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDatabaseURL(tt.in))
	}
}

func TestRebind(t *testing.T) {
	query := "client_id = ? AND type IN (?, ?)"

	assert.Equal(t, "client_id = $1 AND type IN ($2, $3)", New(nil, DriverPostgres).rebind(query))
	assert.Equal(t, query, New(nil, DriverSQLite).rebind(query))
}

func TestWhereClause(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.FixedZone("EST", -5*3600))
	f := models.Filters{
		StartDate:  &start,
		Categories: []string{"Rent", models.UncategorizedLabel},
		Flow:       models.FlowOutflow,
	}

	where, args := whereClause("c-1", f)

	assert.Equal(t, "client_id = ? AND date >= ? AND (category IN (?, ?) OR category IS NULL) AND amount < 0", where)
	assert.Equal(t, []any{"c-1", start.UTC(), "Rent", models.UncategorizedLabel}, args)
}

func TestDemoTransactions(t *testing.T) {
	now := time.Date(2024, 9, 15, 18, 0, 0, 0, time.UTC)

	a := DemoTransactions("demo", now, 60)
	b := DemoTransactions("demo", now, 60)

	assert.NotEmpty(t, a)
	assert.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, a[i].Amount.Equal(b[i].Amount))
		assert.Equal(t, "demo", a[i].ClientID)
		assert.False(t, a[i].Date.After(now))
		if i > 0 {
			assert.False(t, a[i].Date.Before(a[i-1].Date), "ordered by date")
			want := a[i-1].BalanceAfter.Decimal.Add(a[i].Amount)
			assert.True(t, want.Equal(a[i].BalanceAfter.Decimal))
		}
	}
}
