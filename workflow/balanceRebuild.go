package workflow

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const balanceRebuildModule = "balanceRebuild.go"

// RebuildCustomerBalance recomputes a customer's running balance from the
// sales ledger (sum of outstanding amounts over unpaid sales) and overwrites
// current_balance with it. This is the repair path for balances that drifted
// outside the posting workflows; under normal operation it is a no-op.
func RebuildCustomerBalance(tx *gorm.DB, ctx context.Context, businessId string, customerId int) (decimal.Decimal, error) {
	logger := config.GetLogger()

	customer, err := models.GetCustomerForUpdate(tx, ctx, businessId, customerId)
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.NullDecimal
	if err := tx.WithContext(ctx).Model(&models.Sale{}).
		Select("COALESCE(SUM(total_amount - paid_amount), 0)").
		Where("business_id = ? AND customer_id = ? AND payment_status <> ?",
			businessId, customerId, models.SalePaymentStatusPaid).
		Scan(&total).Error; err != nil {
		config.LogError(logger, balanceRebuildModule, "RebuildCustomerBalance", "SumOutstanding", customerId, err)
		return decimal.Zero, err
	}

	balance := decimal.Zero
	if total.Valid {
		balance = total.Decimal
	}

	if !balance.Equal(customer.CurrentBalance) {
		if err := tx.WithContext(ctx).Model(&models.Customer{}).
			Where("business_id = ? AND id = ?", businessId, customerId).
			Update("current_balance", balance).Error; err != nil {
			config.LogError(logger, balanceRebuildModule, "RebuildCustomerBalance", "UpdateCustomerBalance", customerId, err)
			return decimal.Zero, err
		}
	}
	return balance, nil
}

// RebuildAllCustomerBalances runs RebuildCustomerBalance for every customer of
// the business, each in its own transaction under the posting lock.
func RebuildAllCustomerBalances(ctx context.Context, businessId string) (int, error) {
	db := config.GetDB()

	if businessId == "" {
		return 0, errors.New("business id is required")
	}
	if err := AcquireBusinessPostingLock(db, businessId); err != nil {
		return 0, err
	}
	defer ReleaseBusinessPostingLock(db, businessId)

	var customerIds []int
	if err := db.WithContext(ctx).Model(&models.Customer{}).
		Where("business_id = ?", businessId).
		Order("id ASC").
		Pluck("id", &customerIds).Error; err != nil {
		return 0, err
	}

	rebuilt := 0
	for _, id := range customerIds {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := RebuildCustomerBalance(tx, ctx, businessId, id)
			return err
		})
		if err != nil {
			return rebuilt, err
		}
		rebuilt++
	}
	return rebuilt, nil
}
