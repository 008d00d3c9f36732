package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index" json:"business_id"`
	Username   string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email      *string   `gorm:"size:100;unique" json:"email"`
	Phone      string    `gorm:"size:20" json:"phone"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Role       UserRole  `gorm:"type:enum('Owner', 'Manager', 'Cashier');default:'Cashier'" json:"role"`
	IsActive   *bool     `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role" binding:"required"`
}

/*
caches:
	User:$username
*/

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.Username)
}

func (input *NewUser) validate(ctx context.Context, businessId string, id int) error {
	if !input.Role.IsValid() {
		return errors.New("invalid user role")
	}
	if err := utils.ValidateUnique[User](ctx, "", "username", input.Username, id); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateUser(ctx context.Context, businessId string, input *NewUser) (*User, error) {
	db := config.GetDB()

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		BusinessId: businessId,
		Username:   html.EscapeString(strings.TrimSpace(input.Username)),
		Name:       input.Name,
		Email:      utils.NilIfEmpty(input.Email),
		Phone:      input.Phone,
		Password:   string(hashed),
		Role:       input.Role,
		IsActive:   utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	db := config.GetDB()
	// login happens before tenant context exists; bypass the guard explicitly
	lookupCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	if err := db.WithContext(lookupCtx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func GetUserById(ctx context.Context, id int) (*User, error) {
	var user User
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and returns a signed JWT plus the user.
func Login(ctx context.Context, username string, password string) (string, *User, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, errors.New("invalid username or password")
	}
	if user.IsActive != nil && !*user.IsActive {
		return "", nil, errors.New("user is inactive")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return "", nil, errors.New("invalid username or password")
	}
	token, err := utils.JwtGenerate(user.ID, user.BusinessId, string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
