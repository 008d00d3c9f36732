package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalePaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    SalePaymentStatus
		to      SalePaymentStatus
		allowed bool
	}{
		{SalePaymentStatusPending, SalePaymentStatusPartial, true},
		{SalePaymentStatusPending, SalePaymentStatusPaid, true},
		{SalePaymentStatusPartial, SalePaymentStatusPartial, true},
		{SalePaymentStatusPartial, SalePaymentStatusPaid, true},
		{SalePaymentStatusPartial, SalePaymentStatusPending, false},
		{SalePaymentStatusPaid, SalePaymentStatusPartial, false},
		{SalePaymentStatusPaid, SalePaymentStatusPending, false},
		{SalePaymentStatusPaid, SalePaymentStatusPaid, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestEnumJSONRoundTrip(t *testing.T) {
	t.Run("sale type", func(t *testing.T) {
		var st SaleType
		require.NoError(t, json.Unmarshal([]byte(`"Wholesale"`), &st))
		assert.Equal(t, SaleTypeWholesale, st)
		assert.Error(t, json.Unmarshal([]byte(`"Bulk"`), &st))
	})

	t.Run("payment method", func(t *testing.T) {
		var m PaymentMethod
		require.NoError(t, json.Unmarshal([]byte(`"Credit"`), &m))
		assert.Equal(t, PaymentMethodCredit, m)
		assert.Error(t, json.Unmarshal([]byte(`"Cheque"`), &m))
		assert.Error(t, json.Unmarshal([]byte(`12`), &m))
	})

	t.Run("payment status", func(t *testing.T) {
		var s SalePaymentStatus
		require.NoError(t, json.Unmarshal([]byte(`"Partial"`), &s))
		assert.Equal(t, SalePaymentStatusPartial, s)
		assert.Error(t, json.Unmarshal([]byte(`"Void"`), &s))
	})
}
