package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

// parseFilters reads the shared analytics filters from the query string.
// Date-only end dates cover the whole day.
func parseFilters(c *gin.Context, loc *time.Location) (models.Filters, error) {
	var f models.Filters

	if v := c.Query("startDate"); v != "" {
		t, _, err := parseDate(v, loc)
		if err != nil {
			return f, fmt.Errorf("invalid startDate: %w", err)
		}
		f.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, dateOnly, err := parseDate(v, loc)
		if err != nil {
			return f, fmt.Errorf("invalid endDate: %w", err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.EndDate = &t
	}

	f.AccountID = c.Query("accountId")
	f.Counterparty = c.Query("counterparty")
	f.Categories = listParam(c, "categories")
	f.TransactionTypes = listParam(c, "types")

	if v := c.Query("minAmount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("invalid minAmount: %w", err)
		}
		f.MinAmount = &d
	}
	if v := c.Query("maxAmount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("invalid maxAmount: %w", err)
		}
		f.MaxAmount = &d
	}

	return f, nil
}

func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

// listParam accepts both repeated keys and comma separated values.
func listParam(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
