package workflow

import (
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/shopspring/decimal"
)

var decimalOneHundred = decimal.NewFromInt(100)

// ResolveUnitPrice picks the wholesale price for wholesale-typed sales when
// the product has one, else the unit price, then applies the customer
// discount unrounded. Rounding happens once, in ItemSubtotal.
func ResolveUnitPrice(product *models.Product, customer *models.Customer, saleType models.SaleType) decimal.Decimal {
	price := product.UnitPrice
	if saleType == models.SaleTypeWholesale && product.WholesalePrice != nil && !product.WholesalePrice.IsZero() {
		price = *product.WholesalePrice
	}

	if customer != nil && customer.DiscountPercentage.GreaterThan(decimal.Zero) {
		discount := price.Mul(customer.DiscountPercentage).Div(decimalOneHundred)
		price = price.Sub(discount)
	}
	return price
}

// ItemSubtotal multiplies quantity by the resolved unit price and rounds to
// the currency's minor unit. This is the only rounding point, so rounding
// error never compounds across the quantity multiplication.
func ItemSubtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
