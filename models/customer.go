package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer carries the wholesale credit fields. CurrentBalance is guarded:
// only the workflow package mutates it, inside the sale/payment transaction.
type Customer struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	BusinessId         string          `gorm:"index;not null" json:"business_id"`
	Name               string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Email              string          `gorm:"size:100" json:"email"`
	Phone              string          `gorm:"size:20" json:"phone"`
	Address            string          `gorm:"type:text" json:"address"`
	CreditLimit        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
	CurrentBalance     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_balance"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_percentage"`
	PaymentTermsDays   int             `gorm:"default:0" json:"payment_terms_days"`
	Notes              string          `gorm:"type:text" json:"notes"`
	IsActive           *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name               string          `json:"name" binding:"required"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	Address            string          `json:"address"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	PaymentTermsDays   int             `json:"payment_terms_days"`
	Notes              string          `json:"notes"`
}

func (input *NewCustomer) validate(ctx context.Context, businessId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, businessId, id); err != nil {
			return err
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Customer](ctx, businessId, "name", input.Name, id); err != nil {
		return err
	}
	// validate email
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email")
		}
		if err := utils.ValidateUnique[Customer](ctx, businessId, "email", input.Email, id); err != nil {
			return err
		}
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	if input.CreditLimit.IsNegative() {
		return errors.New("credit limit cannot be negative")
	}
	if input.DiscountPercentage.IsNegative() || input.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("discount percentage must be between 0 and 100")
	}
	if input.PaymentTermsDays < 0 {
		return errors.New("payment terms days cannot be negative")
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		BusinessId:         businessId,
		Name:               input.Name,
		Email:              input.Email,
		Phone:              input.Phone,
		Address:            input.Address,
		CreditLimit:        input.CreditLimit,
		CurrentBalance:     decimal.Zero,
		DiscountPercentage: input.DiscountPercentage,
		PaymentTermsDays:   input.PaymentTermsDays,
		Notes:              input.Notes,
		IsActive:           utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	var customer Customer
	if err := db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}

	// CurrentBalance is deliberately not updatable here.
	customer.Name = input.Name
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.CreditLimit = input.CreditLimit
	customer.DiscountPercentage = input.DiscountPercentage
	customer.PaymentTermsDays = input.PaymentTermsDays
	customer.Notes = input.Notes

	if err := db.WithContext(ctx).Save(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	var customer Customer
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func ListCustomers(ctx context.Context, name string, limit int, offset int) ([]*Customer, error) {
	var customers []*Customer
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Customer{})
	if name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+name+"%")
	}
	if limit <= 0 {
		limit = config.SearchLimit
	}
	if err := dbCtx.Order("name ASC").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// GetCustomerForUpdate locks the customer row for balance mutation.
func GetCustomerForUpdate(tx *gorm.DB, ctx context.Context, businessId string, id int) (*Customer, error) {
	var customer Customer
	if err := tx.WithContext(ctx).
		Clauses(lockingClauseForUpdate()).
		Where("business_id = ? AND id = ?", businessId, id).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &customer, nil
}
