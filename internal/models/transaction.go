package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one signed-amount movement on a client account.
// Positive amounts are inflows, negative amounts are outflows.
type Transaction struct {
	ID           string              `json:"id"`
	ClientID     string              `json:"clientId"`
	AccountID    string              `json:"accountId"`
	Date         time.Time           `json:"date"`
	Amount       decimal.Decimal     `json:"amount"`
	BalanceAfter decimal.NullDecimal `json:"balanceAfter"`
	Category     *string             `json:"category"`
	Counterparty *string             `json:"counterparty"`
	Type         string              `json:"type"`
	Description  string              `json:"description"`
}

// IsInflow reports whether the transaction adds money to the account.
func (t Transaction) IsInflow() bool {
	return t.Amount.IsPositive()
}

// Balance returns balanceAfter, treating a missing value as zero.
func (t Transaction) Balance() decimal.Decimal {
	if !t.BalanceAfter.Valid {
		return decimal.Zero
	}
	return t.BalanceAfter.Decimal
}

// CategoryName returns the category or "Uncategorized" when absent.
func (t Transaction) CategoryName() string {
	if t.Category == nil || *t.Category == "" {
		return UncategorizedLabel
	}
	return *t.Category
}

// Normalize returns a copy with empty category and counterparty stored as absent.
func (t Transaction) Normalize() Transaction {
	if t.Category != nil && *t.Category == "" {
		t.Category = nil
	}
	if t.Counterparty != nil && *t.Counterparty == "" {
		t.Counterparty = nil
	}
	return t
}

// UncategorizedLabel groups transactions without a category.
const UncategorizedLabel = "Uncategorized"

// Flow restricts a query to one direction of money movement.
type Flow string

const (
	FlowAll     Flow = ""
	FlowInflow  Flow = "inflow"
	FlowOutflow Flow = "outflow"
)

// Filters narrows the transactions an analytics call looks at.
// Nil pointers and empty slices mean "no restriction".
type Filters struct {
	StartDate        *time.Time       `json:"startDate,omitempty"`
	EndDate          *time.Time       `json:"endDate,omitempty"`
	AccountID        string           `json:"accountId,omitempty"`
	Categories       []string         `json:"categories,omitempty"`
	TransactionTypes []string         `json:"transactionTypes,omitempty"`
	MinAmount        *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount        *decimal.Decimal `json:"maxAmount,omitempty"`
	Counterparty     string           `json:"counterparty,omitempty"`
	Flow             Flow             `json:"flow,omitempty"`
}

// WithRange returns a copy of f restricted to [start, end].
func (f Filters) WithRange(start, end time.Time) Filters {
	f.StartDate = &start
	f.EndDate = &end
	return f
}

// WithFlow returns a copy of f restricted to one direction.
func (f Filters) WithFlow(flow Flow) Filters {
	f.Flow = flow
	return f
}

// SortOrder is the date ordering of a transaction listing.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// TransactionQuery is a filtered, ordered and optionally limited listing.
type TransactionQuery struct {
	Filters Filters
	Order   SortOrder
	Limit   int
}

// Aggregate is the signed sum and row count of a filtered set.
type Aggregate struct {
	Sum   decimal.Decimal `json:"sum"`
	Count int             `json:"count"`
}
