package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"github.com/shopspring/decimal"
)

// SalePayment is append-only; the running customer balance is reconciled in
// the payment workflow and can always be rebuilt from these rows.
type SalePayment struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null" json:"business_id"`
	SaleId          int             `gorm:"index;not null" json:"sale_id"`
	CustomerId      *int            `gorm:"index;default:null" json:"customer_id"`
	UserId          int             `gorm:"not null" json:"user_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentMethod   PaymentMethod   `gorm:"type:enum('Cash', 'Card', 'Mobile', 'Credit');default:'Cash'" json:"payment_method"`
	ReferenceNumber string          `gorm:"size:255;default:null" json:"reference_number"`
	PaymentDate     time.Time       `gorm:"index;not null" json:"payment_date"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func ListSalePayments(ctx context.Context, saleId int) ([]*SalePayment, error) {
	var payments []*SalePayment
	db := config.GetDB()
	if err := db.WithContext(ctx).
		Where("sale_id = ?", saleId).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
