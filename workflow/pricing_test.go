package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveUnitPrice(t *testing.T) {
	wholesale := dec("80")
	product := &models.Product{UnitPrice: dec("100"), WholesalePrice: &wholesale}

	t.Run("retail uses unit price", func(t *testing.T) {
		price := ResolveUnitPrice(product, nil, models.SaleTypeRetail)
		assert.True(t, price.Equal(dec("100")), price.String())
	})

	t.Run("wholesale uses wholesale price when set", func(t *testing.T) {
		price := ResolveUnitPrice(product, nil, models.SaleTypeWholesale)
		assert.True(t, price.Equal(dec("80")), price.String())
	})

	t.Run("wholesale falls back to unit price", func(t *testing.T) {
		noWholesale := &models.Product{UnitPrice: dec("100")}
		price := ResolveUnitPrice(noWholesale, nil, models.SaleTypeWholesale)
		assert.True(t, price.Equal(dec("100")), price.String())

		zero := decimal.Zero
		zeroWholesale := &models.Product{UnitPrice: dec("100"), WholesalePrice: &zero}
		price = ResolveUnitPrice(zeroWholesale, nil, models.SaleTypeWholesale)
		assert.True(t, price.Equal(dec("100")), price.String())
	})

	t.Run("customer discount applies to resolved price", func(t *testing.T) {
		customer := &models.Customer{DiscountPercentage: dec("10")}

		price := ResolveUnitPrice(product, customer, models.SaleTypeRetail)
		assert.True(t, price.Equal(dec("90")), price.String())

		price = ResolveUnitPrice(product, customer, models.SaleTypeWholesale)
		assert.True(t, price.Equal(dec("72")), price.String())
	})

	t.Run("zero discount is a no-op", func(t *testing.T) {
		customer := &models.Customer{DiscountPercentage: decimal.Zero}
		price := ResolveUnitPrice(product, customer, models.SaleTypeRetail)
		assert.True(t, price.Equal(dec("100")), price.String())
	})
}

func TestItemSubtotal(t *testing.T) {
	t.Run("rounds once after multiplication", func(t *testing.T) {
		// 10% off 100 = 90, times 3 = 270.00.
		customer := &models.Customer{DiscountPercentage: dec("10")}
		product := &models.Product{UnitPrice: dec("100")}

		price := ResolveUnitPrice(product, customer, models.SaleTypeRetail)
		subtotal := ItemSubtotal(3, price)
		assert.Equal(t, "270", subtotal.String())
	})

	t.Run("fractional discount does not compound rounding", func(t *testing.T) {
		// 12.5% off 9.99 = 8.74125; times 7 = 61.18875, rounds to 61.19.
		// Rounding the unit price first would give 8.74 * 7 = 61.18.
		customer := &models.Customer{DiscountPercentage: dec("12.5")}
		product := &models.Product{UnitPrice: dec("9.99")}

		price := ResolveUnitPrice(product, customer, models.SaleTypeRetail)
		subtotal := ItemSubtotal(7, price)
		assert.Equal(t, "61.19", subtotal.String())
	})

	t.Run("two decimal places at most", func(t *testing.T) {
		subtotal := ItemSubtotal(3, dec("0.105"))
		assert.True(t, subtotal.Equal(dec("0.32")), subtotal.String())
	})
}
