package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockBatch is one received lot of a product, tracked with its own expiry
// date and remaining quantity. Quantity is decremented only by allocation
// inside the sale transaction and incremented only by replenishment.
type StockBatch struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id"`
	ProductId    int             `gorm:"index;not null" json:"product_id" binding:"required"`
	BatchNumber  string          `gorm:"size:100;not null" json:"batch_number" binding:"required"`
	SupplierName string          `gorm:"size:255" json:"supplier_name"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	ExpiryDate   time.Time       `gorm:"index;not null" json:"expiry_date" binding:"required"`
	ReceivedDate time.Time       `gorm:"not null" json:"received_date"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStockBatch struct {
	ProductId    int             `json:"product_id" binding:"required"`
	BatchNumber  string          `json:"batch_number" binding:"required"`
	SupplierName string          `json:"supplier_name"`
	Quantity     int             `json:"quantity" binding:"required"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ExpiryDate   time.Time       `json:"expiry_date" binding:"required"`
	ReceivedDate *time.Time      `json:"received_date"`
}

func (input *NewStockBatch) validate(ctx context.Context, businessId string) error {
	if input.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if input.UnitCost.IsNegative() {
		return errors.New("unit cost cannot be negative")
	}
	if err := utils.ValidateResourceId[Product](ctx, businessId, input.ProductId); err != nil {
		return errors.New("product not found")
	}
	return nil
}

// ReceiveStockBatch records replenishment. An existing (product, batch number)
// pair is topped up; otherwise a new batch row is created.
func ReceiveStockBatch(ctx context.Context, input *NewStockBatch) (*StockBatch, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	receivedDate := time.Now().UTC()
	if input.ReceivedDate != nil {
		receivedDate = *input.ReceivedDate
	}

	var batch StockBatch
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ? AND batch_number = ?", input.ProductId, input.BatchNumber).
			First(&batch).Error
		if err == nil {
			batch.Quantity += input.Quantity
			batch.UnitCost = input.UnitCost
			batch.ExpiryDate = input.ExpiryDate
			return tx.Save(&batch).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		batch = StockBatch{
			BusinessId:   businessId,
			ProductId:    input.ProductId,
			BatchNumber:  input.BatchNumber,
			SupplierName: input.SupplierName,
			Quantity:     input.Quantity,
			UnitCost:     input.UnitCost,
			ExpiryDate:   input.ExpiryDate,
			ReceivedDate: receivedDate,
		}
		return tx.Create(&batch).Error
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetAvailableBatches returns a product's batches with quantity > 0 in FEFO
// order (expiry ascending, id ascending tie-break). Read-only; no locks.
func GetAvailableBatches(ctx context.Context, db *gorm.DB, productId int) ([]*StockBatch, error) {
	var batches []*StockBatch
	if err := db.WithContext(ctx).
		Where("product_id = ? AND quantity > 0", productId).
		Order("expiry_date ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// GetAvailableBatchesForUpdate is the allocator's candidate query: same rows
// as GetAvailableBatches but locked with SELECT ... FOR UPDATE so concurrent
// sales against the same product serialize their decrements.
func GetAvailableBatchesForUpdate(tx *gorm.DB, ctx context.Context, businessId string, productId int) ([]*StockBatch, error) {
	var batches []*StockBatch
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ? AND product_id = ? AND quantity > 0", businessId, productId).
		Order("expiry_date ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// GetTotalAvailable sums the remaining quantity across a product's batches.
func GetTotalAvailable(ctx context.Context, db *gorm.DB, productId int) (int, error) {
	var total *int
	if err := db.WithContext(ctx).Model(&StockBatch{}).
		Where("product_id = ? AND quantity > 0", productId).
		Select("SUM(quantity)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ListExpiringBatches returns batches that expire within the given number of
// days and still have stock on hand.
func ListExpiringBatches(ctx context.Context, withinDays int) ([]*StockBatch, error) {
	var batches []*StockBatch
	db := config.GetDB()
	cutoff := time.Now().UTC().AddDate(0, 0, withinDays)
	if err := db.WithContext(ctx).
		Where("quantity > 0 AND expiry_date <= ?", cutoff).
		Order("expiry_date ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}
