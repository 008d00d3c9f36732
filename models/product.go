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

type Product struct {
	ID             int              `gorm:"primary_key" json:"id"`
	BusinessId     string           `gorm:"index;not null" json:"business_id"`
	Name           string           `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku            string           `gorm:"size:100" json:"sku"`
	GenericName    string           `gorm:"size:255" json:"generic_name"`
	Description    string           `gorm:"type:text" json:"description"`
	UnitPrice      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"unit_price" binding:"required"`
	WholesalePrice *decimal.Decimal `gorm:"type:decimal(20,4);default:null" json:"wholesale_price"`
	ReorderLevel   int              `gorm:"default:0" json:"reorder_level"`
	IsActive       *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name           string           `json:"name" binding:"required"`
	Sku            string           `json:"sku"`
	GenericName    string           `json:"generic_name"`
	Description    string           `json:"description"`
	UnitPrice      decimal.Decimal  `json:"unit_price" binding:"required"`
	WholesalePrice *decimal.Decimal `json:"wholesale_price"`
	ReorderLevel   int              `json:"reorder_level"`
}

// ProductStock is the stock-check view: total available quantity plus the
// FEFO-ordered batches the allocator would draw from.
type ProductStock struct {
	Product   Product       `json:"product"`
	Available int           `json:"available"`
	Batches   []*StockBatch `json:"batches"`
}

func (input *NewProduct) validate(ctx context.Context, businessId string, id int) error {
	if err := utils.ValidateUnique[Product](ctx, businessId, "name", input.Name, id); err != nil {
		return err
	}
	if input.Sku != "" {
		if err := utils.ValidateUnique[Product](ctx, businessId, "sku", input.Sku, id); err != nil {
			return err
		}
	}
	if input.UnitPrice.IsNegative() {
		return errors.New("unit price cannot be negative")
	}
	if input.WholesalePrice != nil && input.WholesalePrice.IsNegative() {
		return errors.New("wholesale price cannot be negative")
	}
	if input.ReorderLevel < 0 {
		return errors.New("reorder level cannot be negative")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	product := Product{
		BusinessId:     businessId,
		Name:           input.Name,
		Sku:            input.Sku,
		GenericName:    input.GenericName,
		Description:    input.Description,
		UnitPrice:      input.UnitPrice,
		WholesalePrice: input.WholesalePrice,
		ReorderLevel:   input.ReorderLevel,
		IsActive:       utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[Product](ctx, businessId, id); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	var product Product
	if err := db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Sku = input.Sku
	product.GenericName = input.GenericName
	product.Description = input.Description
	product.UnitPrice = input.UnitPrice
	product.WholesalePrice = input.WholesalePrice
	product.ReorderLevel = input.ReorderLevel

	if err := db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	var product Product
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &product, nil
}

func ListProducts(ctx context.Context, name string, limit int, offset int) ([]*Product, error) {
	var products []*Product
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Product{})
	if name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+name+"%")
	}
	if limit <= 0 {
		limit = config.SearchLimit
	}
	if err := dbCtx.Order("name ASC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProductStock loads a product with its available batches in FEFO order.
// Exposed for stock-check UIs; the allocator runs its own locked query.
func GetProductStock(ctx context.Context, productId int) (*ProductStock, error) {
	product, err := GetProduct(ctx, productId)
	if err != nil {
		return nil, err
	}

	batches, err := GetAvailableBatches(ctx, config.GetDB(), productId)
	if err != nil {
		return nil, err
	}

	available := 0
	for _, b := range batches {
		available += b.Quantity
	}
	return &ProductStock{Product: *product, Available: available, Batches: batches}, nil
}
