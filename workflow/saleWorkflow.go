package workflow

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const saleWorkflowModule = "saleWorkflow.go"
const recordSaleHandlerName = "RecordSale"

// ErrDuplicateRequest is returned when an Idempotency-Key has already been
// posted successfully; the caller should re-read instead of re-posting.
var ErrDuplicateRequest = errors.New("duplicate request")

// RecordSale posts a sale: FEFO allocation for every line, derived total,
// optional customer balance increment — all inside one transaction guarded by
// the per-business posting lock. If any line fails allocation, nothing is
// persisted.
//
// idempotencyKey may be empty; when set, a retried POST with the same key
// returns ErrDuplicateRequest instead of double-posting.
func RecordSale(ctx context.Context, input *models.NewSale, idempotencyKey string) (*models.Sale, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := validateNewSale(input); err != nil {
		return nil, err
	}

	// Best-effort Redis lock; correctness is carried by the MySQL advisory
	// lock and the FOR UPDATE reads below.
	release, err := utils.BusinessLock(ctx, businessId, "SalePosting", saleWorkflowModule, "RecordSale")
	if err != nil {
		return nil, err
	}
	defer release()

	if err := AcquireBusinessPostingLock(db, businessId); err != nil {
		config.LogError(logger, saleWorkflowModule, "RecordSale", "AcquireBusinessPostingLock", businessId, err)
		return nil, err
	}
	defer ReleaseBusinessPostingLock(db, businessId)

	var sale *models.Sale
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if idempotencyKey != "" {
			skip, err := BeginIdempotency(tx, businessId, recordSaleHandlerName, idempotencyKey)
			if err != nil {
				return err
			}
			if skip {
				return ErrDuplicateRequest
			}
		}
		var txErr error
		sale, txErr = postSale(tx, ctx, businessId, userId, input)
		if txErr != nil {
			return txErr
		}
		if idempotencyKey != "" {
			return MarkIdempotencySucceeded(tx, businessId, recordSaleHandlerName, idempotencyKey)
		}
		return nil
	})
	if err != nil {
		// On rollback the STARTED idempotency row vanishes with the rest of
		// the transaction, so a retry with the same key is free to post again.
		return nil, err
	}
	return sale, nil
}

func validateNewSale(input *models.NewSale) error {
	if !input.SaleType.IsValid() {
		return errors.New("invalid sale type")
	}
	if !input.PaymentMethod.IsValid() {
		return errors.New("invalid payment method")
	}
	if len(input.Items) == 0 {
		return errors.New("sale must have at least one item")
	}
	if input.PaymentMethod == models.PaymentMethodCredit && input.CustomerId == nil {
		return errors.New("credit sales require a customer")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return &InvalidQuantityError{ProductId: item.ProductId, Requested: item.Quantity}
		}
	}
	return nil
}

// postSale does the actual posting inside the caller's transaction.
func postSale(tx *gorm.DB, ctx context.Context, businessId string, userId int, input *models.NewSale) (*models.Sale, error) {
	logger := config.GetLogger()

	var customer *models.Customer
	if input.CustomerId != nil {
		var err error
		customer, err = models.GetCustomerForUpdate(tx, ctx, businessId, *input.CustomerId)
		if err != nil {
			config.LogError(logger, saleWorkflowModule, "postSale", "GetCustomerForUpdate", *input.CustomerId, err)
			return nil, err
		}
		if customer.IsActive != nil && !*customer.IsActive {
			return nil, errors.New("customer is inactive")
		}
	}

	total := decimal.Zero
	items := make([]*models.SaleItem, 0, len(input.Items))
	for _, line := range input.Items {
		var product models.Product
		if err := tx.WithContext(ctx).
			Where("business_id = ? AND id = ?", businessId, line.ProductId).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorRecordNotFound
			}
			config.LogError(logger, saleWorkflowModule, "postSale", "LoadProduct", line.ProductId, err)
			return nil, err
		}
		if product.IsActive != nil && !*product.IsActive {
			return nil, errors.New("product is inactive")
		}

		allocations, err := AllocateStock(tx, ctx, businessId, line.ProductId, line.Quantity)
		if err != nil {
			return nil, err
		}

		unitPrice := ResolveUnitPrice(&product, customer, input.SaleType)
		subtotal := ItemSubtotal(line.Quantity, unitPrice)
		total = total.Add(subtotal)

		batches := make([]*models.SaleItemBatch, 0, len(allocations))
		for _, alloc := range allocations {
			batches = append(batches, &models.SaleItemBatch{
				StockBatchId: alloc.BatchId,
				Quantity:     alloc.QuantityTaken,
			})
		}
		items = append(items, &models.SaleItem{
			ProductId: line.ProductId,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  subtotal,
			Batches:   batches,
		})
	}

	saleDate := time.Now()
	paidAmount := decimal.Zero
	paymentStatus := models.SalePaymentStatusPending
	if input.PaidInFull {
		paidAmount = total
		paymentStatus = models.SalePaymentStatusPaid
	}
	outstanding := total.Sub(paidAmount)

	var dueDate *time.Time
	if customer != nil && paymentStatus != models.SalePaymentStatusPaid {
		due := saleDate.AddDate(0, 0, customer.PaymentTermsDays)
		dueDate = &due

		// Credit limit 0 means unlimited.
		if customer.CreditLimit.IsPositive() &&
			customer.CurrentBalance.Add(outstanding).GreaterThan(customer.CreditLimit) {
			return nil, &CreditLimitExceededError{
				CustomerId:  customer.ID,
				CreditLimit: customer.CreditLimit,
				Balance:     customer.CurrentBalance,
				SaleAmount:  outstanding,
			}
		}
	}
	if customer == nil && !input.PaidInFull {
		return nil, errors.New("walk-in sales must be paid in full")
	}

	saleNumber, err := models.NextSaleNumber(tx, ctx, businessId)
	if err != nil {
		config.LogError(logger, saleWorkflowModule, "postSale", "NextSaleNumber", businessId, err)
		return nil, err
	}

	sale := &models.Sale{
		BusinessId:    businessId,
		SaleNumber:    saleNumber,
		CustomerId:    input.CustomerId,
		UserId:        userId,
		SaleType:      input.SaleType,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: paymentStatus,
		TotalAmount:   total,
		PaidAmount:    paidAmount,
		SaleDate:      saleDate,
		DueDate:       dueDate,
		Items:         items,
	}
	if err := tx.WithContext(ctx).Create(sale).Error; err != nil {
		config.LogError(logger, saleWorkflowModule, "postSale", "CreateSale", sale.SaleNumber, err)
		return nil, err
	}

	if customer != nil && outstanding.IsPositive() {
		newBalance := customer.CurrentBalance.Add(outstanding)
		if err := tx.WithContext(ctx).Model(&models.Customer{}).
			Where("business_id = ? AND id = ?", businessId, customer.ID).
			Update("current_balance", newBalance).Error; err != nil {
			config.LogError(logger, saleWorkflowModule, "postSale", "UpdateCustomerBalance", customer.ID, err)
			return nil, err
		}
		customer.CurrentBalance = newBalance
		sale.Customer = customer
	}
	return sale, nil
}
