package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
)

// DashboardSummary is the landing-page aggregate: today's trading numbers
// plus the two stock alerts (low stock, soon to expire).
type DashboardSummary struct {
	TodaySalesTotal    decimal.Decimal `json:"today_sales_total"`
	TodaySalesCount    int64           `json:"today_sales_count"`
	OutstandingCredit  decimal.Decimal `json:"outstanding_credit"`
	LowStockCount      int64           `json:"low_stock_count"`
	ExpiringBatchCount int64           `json:"expiring_batch_count"`
}

func nullDecimalOrZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// GetDashboardSummary computes the aggregates with raw SQL; "today" follows
// the business timezone, and the expiry window is 30 days.
func GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	business, err := GetBusinessById(ctx, businessId)
	if err != nil {
		return nil, err
	}

	start, end, err := utils.TodayRange(business.Timezone)
	if err != nil {
		return nil, err
	}

	var summary DashboardSummary

	var todayTotal decimal.NullDecimal
	if err := db.WithContext(ctx).Model(&Sale{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("business_id = ? AND sale_date >= ? AND sale_date < ?", businessId, start, end).
		Scan(&todayTotal).Error; err != nil {
		return nil, err
	}
	summary.TodaySalesTotal = nullDecimalOrZero(todayTotal)

	if err := db.WithContext(ctx).Model(&Sale{}).
		Where("business_id = ? AND sale_date >= ? AND sale_date < ?", businessId, start, end).
		Count(&summary.TodaySalesCount).Error; err != nil {
		return nil, err
	}

	var outstanding decimal.NullDecimal
	if err := db.WithContext(ctx).Model(&Sale{}).
		Select("COALESCE(SUM(total_amount - paid_amount), 0)").
		Where("business_id = ? AND payment_status <> ?", businessId, SalePaymentStatusPaid).
		Scan(&outstanding).Error; err != nil {
		return nil, err
	}
	summary.OutstandingCredit = nullDecimalOrZero(outstanding)

	// Products whose total on-hand quantity is at or below their reorder level.
	if err := db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM products p
		WHERE p.business_id = ? AND p.is_active = 1
		  AND p.reorder_level > 0
		  AND (SELECT COALESCE(SUM(b.quantity), 0) FROM stock_batches b
		       WHERE b.business_id = p.business_id AND b.product_id = p.id) <= p.reorder_level`,
		businessId).Scan(&summary.LowStockCount).Error; err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, 30)
	if err := db.WithContext(ctx).Model(&StockBatch{}).
		Where("business_id = ? AND quantity > 0 AND expiry_date <= ?", businessId, cutoff).
		Count(&summary.ExpiringBatchCount).Error; err != nil {
		return nil, err
	}

	return &summary, nil
}
