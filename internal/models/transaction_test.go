package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Normalize(t *testing.T) {
	empty, rent, acme := "", "Rent", "Acme"

	got := Transaction{Category: &empty, Counterparty: &empty}.Normalize()
	assert.Nil(t, got.Category)
	assert.Nil(t, got.Counterparty)
	assert.Equal(t, UncategorizedLabel, got.CategoryName())

	kept := Transaction{Category: &rent, Counterparty: &acme}.Normalize()
	assert.Equal(t, "Rent", *kept.Category)
	assert.Equal(t, "Acme", *kept.Counterparty)
}
