package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors are typed so the HTTP boundary can map them to 4xx responses
// with display data. All of them are detected before any mutation.

// InvalidQuantityError reports a non-positive requested quantity.
type InvalidQuantityError struct {
	ProductId int
	Requested int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity for product_id=%d: requested=%d, quantity must be positive", e.ProductId, e.Requested)
}

// InsufficientStockError reports that the requested quantity exceeds the
// stock on hand across all of the product's batches.
type InsufficientStockError struct {
	ProductId int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product_id=%d: requested=%d available=%d", e.ProductId, e.Requested, e.Available)
}

// CreditLimitExceededError reports that posting the sale would push the
// customer's running balance above their credit limit.
type CreditLimitExceededError struct {
	CustomerId  int
	CreditLimit decimal.Decimal
	Balance     decimal.Decimal
	SaleAmount  decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for customer_id=%d: limit=%s balance=%s sale_amount=%s",
		e.CustomerId, e.CreditLimit.String(), e.Balance.String(), e.SaleAmount.String())
}

// InvalidPaymentAmountError reports a non-positive payment or one larger than
// the sale's outstanding amount.
type InvalidPaymentAmountError struct {
	SaleId      int
	Amount      decimal.Decimal
	Outstanding decimal.Decimal
	Reason      string
}

func (e *InvalidPaymentAmountError) Error() string {
	return fmt.Sprintf("invalid payment amount for sale_id=%d: amount=%s outstanding=%s (%s)",
		e.SaleId, e.Amount.String(), e.Outstanding.String(), e.Reason)
}
