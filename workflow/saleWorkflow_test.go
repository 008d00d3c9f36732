package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSaleInput() *models.NewSale {
	customerId := 1
	return &models.NewSale{
		CustomerId:    &customerId,
		SaleType:      models.SaleTypeWholesale,
		PaymentMethod: models.PaymentMethodCredit,
		Items: []models.NewSaleItem{
			{ProductId: 1, Quantity: 2},
		},
	}
}

func TestValidateNewSale(t *testing.T) {
	t.Run("accepts a valid credit sale", func(t *testing.T) {
		assert.NoError(t, validateNewSale(validSaleInput()))
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		input := validSaleInput()
		input.Items = nil
		assert.Error(t, validateNewSale(input))
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		input := validSaleInput()
		input.Items = append(input.Items, models.NewSaleItem{ProductId: 2, Quantity: 0})

		err := validateNewSale(input)
		var invalid *InvalidQuantityError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 2, invalid.ProductId)
	})

	t.Run("rejects credit sales without a customer", func(t *testing.T) {
		input := validSaleInput()
		input.CustomerId = nil
		assert.Error(t, validateNewSale(input))
	})

	t.Run("rejects unknown enum values", func(t *testing.T) {
		input := validSaleInput()
		input.SaleType = models.SaleType("Bulk")
		assert.Error(t, validateNewSale(input))

		input = validSaleInput()
		input.PaymentMethod = models.PaymentMethod("Cheque")
		assert.Error(t, validateNewSale(input))
	})
}
