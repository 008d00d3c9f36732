package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSaleOutstanding(t *testing.T) {
	sale := &Sale{
		TotalAmount: decimal.RequireFromString("270.00"),
		PaidAmount:  decimal.RequireFromString("100.50"),
	}
	assert.Equal(t, "169.5", sale.Outstanding().String())

	sale.PaidAmount = sale.TotalAmount
	assert.True(t, sale.Outstanding().IsZero())
}
