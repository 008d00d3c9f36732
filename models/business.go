package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Business struct {
	ID          uuid.UUID `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	ContactName string    `gorm:"size:100" json:"contact_name"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Address     string    `gorm:"type:text" json:"address"`
	Country     string    `gorm:"size:100" json:"country"`
	City        string    `gorm:"size:100" json:"city"`
	Timezone    string    `gorm:"size:50" json:"timezone"`
	LicenseNo   string    `gorm:"size:100" json:"license_no"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBusiness struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Timezone    string `json:"timezone"`
	LicenseNo   string `json:"license_no"`
}

/*
caches:
	Business:$businessId
*/

func (business Business) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("Business:" + business.ID.String())
}

func CreateBusiness(ctx context.Context, input *NewBusiness) (*Business, error) {
	db := config.GetDB()

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email")
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = "Asia/Yangon"
	}

	business := Business{
		ID:          uuid.New(),
		Name:        input.Name,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		Country:     input.Country,
		City:        input.City,
		Timezone:    timezone,
		LicenseNo:   input.LicenseNo,
		IsActive:    utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func GetBusinessById(ctx context.Context, businessId string) (*Business, error) {
	var business Business

	redisKey := "Business:" + businessId
	exists, err := config.GetRedisObject(redisKey, &business)
	if err != nil {
		return nil, err
	}
	if exists {
		return &business, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", businessId).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := config.SetRedisObject(redisKey, &business, 0); err != nil {
		return nil, err
	}
	return &business, nil
}

// GetBusinessById2 reads through the caller's transaction; used inside posting
// where the business row must come from the same connection.
func GetBusinessById2(tx *gorm.DB, businessId string) (*Business, error) {
	var business Business
	if err := tx.Where("id = ?", businessId).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &business, nil
}
