package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

type txOpt func(*models.Transaction)

func bal(b float64) txOpt {
	return func(t *models.Transaction) { t.BalanceAfter = decimal.NewNullDecimal(decimal.NewFromFloat(b)) }
}

func cat(c string) txOpt {
	return func(t *models.Transaction) { t.Category = &c }
}

func party(p string) txOpt {
	return func(t *models.Transaction) { t.Counterparty = &p }
}

func kind(k string) txOpt {
	return func(t *models.Transaction) { t.Type = k }
}

func forClient(id string) txOpt {
	return func(t *models.Transaction) { t.ClientID = id }
}

// mkTx builds a transaction at "2006-01-02" or "2006-01-02 15:04" UTC.
func mkTx(at string, amount float64, opts ...txOpt) models.Transaction {
	t := models.Transaction{
		ID:        uuid.NewString(),
		ClientID:  "client-1",
		AccountID: "acct-1",
		Date:      mustTime(at),
		Amount:    decimal.NewFromFloat(amount),
		Type:      "ach",
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func mustTime(at string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04", time.DateOnly} {
		if t, err := time.ParseInLocation(layout, at, time.UTC); err == nil {
			return t
		}
	}
	panic("bad test time " + at)
}
