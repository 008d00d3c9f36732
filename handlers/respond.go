package handlers

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"bitbucket.org/mmdatafocus/pharmacy_backend/workflow"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps domain errors onto HTTP statuses. Typed posting errors
// are business-rule violations (422) carrying display data; everything the
// caller can't act on stays a bare 500.
func respondError(c *gin.Context, err error) {
	var invalidQty *workflow.InvalidQuantityError
	var insufficient *workflow.InsufficientStockError
	var creditLimit *workflow.CreditLimitExceededError
	var invalidPayment *workflow.InvalidPaymentAmountError

	switch {
	case errors.As(err, &invalidQty):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "invalid_quantity",
			"details": gin.H{
				"product_id": invalidQty.ProductId,
				"requested":  invalidQty.Requested,
			},
		})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "insufficient_stock",
			"details": gin.H{
				"product_id": insufficient.ProductId,
				"requested":  insufficient.Requested,
				"available":  insufficient.Available,
			},
		})
	case errors.As(err, &creditLimit):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "credit_limit_exceeded",
			"details": gin.H{
				"customer_id":  creditLimit.CustomerId,
				"credit_limit": creditLimit.CreditLimit,
				"balance":      creditLimit.Balance,
				"sale_amount":  creditLimit.SaleAmount,
			},
		})
	case errors.As(err, &invalidPayment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "invalid_payment_amount",
			"details": gin.H{
				"sale_id":     invalidPayment.SaleId,
				"amount":      invalidPayment.Amount,
				"outstanding": invalidPayment.Outstanding,
				"reason":      invalidPayment.Reason,
			},
		})
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, workflow.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
	case errors.Is(err, workflow.ErrIdempotencyInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "request already in progress"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
	_ = c.Error(err)
}

// respondBindError maps gin binding failures to 400, surfacing per-field
// validator messages when available.
func respondBindError(c *gin.Context, err error) {
	if fields := utils.ProcessValidationErrors(err); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
