package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sale is the header record. TotalAmount is derived: it equals the sum of the
// item subtotals at commit time, never an input.
type Sale struct {
	ID            int               `gorm:"primary_key" json:"id"`
	BusinessId    string            `gorm:"index;not null" json:"business_id"`
	SaleNumber    string            `gorm:"size:50;not null" json:"sale_number"`
	CustomerId    *int              `gorm:"index;default:null" json:"customer_id"`
	UserId        int               `gorm:"index;not null" json:"user_id"`
	SaleType      SaleType          `gorm:"type:enum('Retail', 'Wholesale');default:'Retail'" json:"sale_type"`
	PaymentMethod PaymentMethod     `gorm:"type:enum('Cash', 'Card', 'Mobile', 'Credit');default:'Cash'" json:"payment_method"`
	PaymentStatus SalePaymentStatus `gorm:"type:enum('Pending', 'Partial', 'Paid');default:'Pending'" json:"payment_status"`
	TotalAmount   decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	SaleDate      time.Time         `gorm:"index;not null" json:"sale_date"`
	DueDate       *time.Time        `gorm:"default:null" json:"due_date"`
	Items         []*SaleItem       `gorm:"foreignKey:SaleId" json:"items"`
	Customer      *Customer         `gorm:"foreignKey:CustomerId" json:"customer,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// SaleItem is immutable after creation. Subtotal is quantity * unit price,
// rounded to the currency's minor unit exactly once when persisted.
type SaleItem struct {
	ID        int              `gorm:"primary_key" json:"id"`
	SaleId    int              `gorm:"index;not null" json:"sale_id"`
	ProductId int              `gorm:"index;not null" json:"product_id"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Subtotal  decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	Batches   []*SaleItemBatch `gorm:"foreignKey:SaleItemId" json:"batches"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// SaleItemBatch records which stock batch each unit came from, preserving the
// exact FEFO split for audit and rebuild tooling.
type SaleItemBatch struct {
	ID           int       `gorm:"primary_key" json:"id"`
	SaleItemId   int       `gorm:"index;not null" json:"sale_item_id"`
	StockBatchId int       `gorm:"index;not null" json:"stock_batch_id"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewSaleItem struct {
	ProductId int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required"`
}

type NewSale struct {
	CustomerId    *int          `json:"customer_id"`
	SaleType      SaleType      `json:"sale_type" binding:"required"`
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required"`
	PaidInFull    bool          `json:"paid_in_full"`
	Items         []NewSaleItem `json:"items" binding:"required,dive,required"`
}

type NewSalePayment struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod   PaymentMethod   `json:"payment_method" binding:"required"`
	ReferenceNumber string          `json:"reference_number"`
	PaymentDate     *time.Time      `json:"payment_date"`
}

func lockingClauseForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// Outstanding is the unpaid remainder of the sale total.
func (s *Sale) Outstanding() decimal.Decimal {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// NextSaleNumber issues "SAL-000123" style numbers, sequenced per business.
// The Redis counter is an optimization; the fallback recomputes from the table.
func NextSaleNumber(tx *gorm.DB, ctx context.Context, businessId string) (string, error) {
	seq, err := config.GetRedisCounter(ctx, "SaleSeq:"+businessId)
	if err != nil || seq == 0 {
		var count int64
		if err := tx.WithContext(ctx).Model(&Sale{}).
			Where("business_id = ?", businessId).Count(&count).Error; err != nil {
			return "", err
		}
		seq = count + 1
	}
	return fmt.Sprintf("SAL-%06d", seq), nil
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	var sale Sale
	db := config.GetDB()
	if err := db.WithContext(ctx).
		Preload("Items").Preload("Items.Batches").Preload("Customer").
		Where("id = ?", id).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// GetSaleForUpdate locks the sale header row for payment posting.
func GetSaleForUpdate(tx *gorm.DB, ctx context.Context, businessId string, id int) (*Sale, error) {
	var sale Sale
	if err := tx.WithContext(ctx).
		Clauses(lockingClauseForUpdate()).
		Where("business_id = ? AND id = ?", businessId, id).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func ListSales(ctx context.Context, customerId int, status SalePaymentStatus, limit int, offset int) ([]*Sale, error) {
	var sales []*Sale
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Sale{}).Preload("Items")
	if customerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", customerId)
	}
	if status != "" {
		if !status.IsValid() {
			return nil, errors.New("invalid payment status")
		}
		dbCtx = dbCtx.Where("payment_status = ?", status)
	}
	if limit <= 0 {
		limit = config.SearchLimit
	}
	if err := dbCtx.Order("sale_date DESC, id DESC").Limit(limit).Offset(offset).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
