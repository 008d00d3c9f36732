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

const paymentWorkflowModule = "paymentWorkflow.go"

// RecordPayment applies a payment against a sale: appends an immutable
// SalePayment row, bumps PaidAmount, advances the status machine and releases
// the matching slice of the customer's running balance. The sale header row is
// locked for the whole transaction so concurrent payments serialize.
func RecordPayment(ctx context.Context, saleId int, input *models.NewSalePayment) (*models.Sale, error) {
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
	if !input.PaymentMethod.IsValid() {
		return nil, errors.New("invalid payment method")
	}

	release, err := utils.BusinessLock(ctx, businessId, "PaymentPosting", paymentWorkflowModule, "RecordPayment")
	if err != nil {
		return nil, err
	}
	defer release()

	if err := AcquireBusinessPostingLock(db, businessId); err != nil {
		config.LogError(logger, paymentWorkflowModule, "RecordPayment", "AcquireBusinessPostingLock", businessId, err)
		return nil, err
	}
	defer ReleaseBusinessPostingLock(db, businessId)

	var sale *models.Sale
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		sale, txErr = postPayment(tx, ctx, businessId, userId, saleId, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func postPayment(tx *gorm.DB, ctx context.Context, businessId string, userId int, saleId int, input *models.NewSalePayment) (*models.Sale, error) {
	logger := config.GetLogger()

	sale, err := models.GetSaleForUpdate(tx, ctx, businessId, saleId)
	if err != nil {
		return nil, err
	}

	outstanding := sale.Outstanding()
	if sale.PaymentStatus == models.SalePaymentStatusPaid {
		return nil, &InvalidPaymentAmountError{
			SaleId: saleId, Amount: input.Amount, Outstanding: outstanding,
			Reason: "sale is already fully paid",
		}
	}
	if !input.Amount.IsPositive() {
		return nil, &InvalidPaymentAmountError{
			SaleId: saleId, Amount: input.Amount, Outstanding: outstanding,
			Reason: "amount must be positive",
		}
	}
	if input.Amount.GreaterThan(outstanding) {
		return nil, &InvalidPaymentAmountError{
			SaleId: saleId, Amount: input.Amount, Outstanding: outstanding,
			Reason: "amount exceeds outstanding balance",
		}
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}
	payment := &models.SalePayment{
		BusinessId:      businessId,
		SaleId:          saleId,
		CustomerId:      sale.CustomerId,
		UserId:          userId,
		Amount:          input.Amount,
		PaymentMethod:   input.PaymentMethod,
		ReferenceNumber: input.ReferenceNumber,
		PaymentDate:     paymentDate,
	}
	if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
		config.LogError(logger, paymentWorkflowModule, "postPayment", "CreateSalePayment", saleId, err)
		return nil, err
	}

	newPaid := sale.PaidAmount.Add(input.Amount)
	newStatus := models.SalePaymentStatusPartial
	if newPaid.Equal(sale.TotalAmount) {
		newStatus = models.SalePaymentStatusPaid
	}
	if newStatus != sale.PaymentStatus && !sale.PaymentStatus.CanTransitionTo(newStatus) {
		return nil, errors.New("invalid payment status transition")
	}
	if err := tx.WithContext(ctx).Model(&models.Sale{}).
		Where("business_id = ? AND id = ?", businessId, saleId).
		Updates(map[string]interface{}{"paid_amount": newPaid, "payment_status": newStatus}).Error; err != nil {
		config.LogError(logger, paymentWorkflowModule, "postPayment", "UpdateSale", saleId, err)
		return nil, err
	}
	sale.PaidAmount = newPaid
	sale.PaymentStatus = newStatus

	if sale.CustomerId != nil {
		customer, err := models.GetCustomerForUpdate(tx, ctx, businessId, *sale.CustomerId)
		if err != nil {
			config.LogError(logger, paymentWorkflowModule, "postPayment", "GetCustomerForUpdate", *sale.CustomerId, err)
			return nil, err
		}
		newBalance := customer.CurrentBalance.Sub(input.Amount)
		// The overpayment check above keeps this non-negative for balances
		// maintained through this package; clamp anyway so a drifted balance
		// never goes below zero.
		if newBalance.IsNegative() {
			newBalance = decimal.Zero
		}
		if err := tx.WithContext(ctx).Model(&models.Customer{}).
			Where("business_id = ? AND id = ?", businessId, customer.ID).
			Update("current_balance", newBalance).Error; err != nil {
			config.LogError(logger, paymentWorkflowModule, "postPayment", "UpdateCustomerBalance", customer.ID, err)
			return nil, err
		}
	}
	return sale, nil
}
