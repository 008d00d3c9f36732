package models

import (
	"encoding/json"
	"errors"
)

type SaleType string

const (
	SaleTypeRetail    SaleType = "Retail"
	SaleTypeWholesale SaleType = "Wholesale"
)

func (t SaleType) IsValid() bool {
	return t == SaleTypeRetail || t == SaleTypeWholesale
}

func (t SaleType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *SaleType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("sale type must be string")
	}
	switch str {
	case "Retail":
		*t = SaleTypeRetail
	case "Wholesale":
		*t = SaleTypeWholesale
	default:
		return errors.New("invalid sale type")
	}
	return nil
}

type SalePaymentStatus string

const (
	SalePaymentStatusPending SalePaymentStatus = "Pending"
	SalePaymentStatusPartial SalePaymentStatus = "Partial"
	SalePaymentStatusPaid    SalePaymentStatus = "Paid"
)

func (s SalePaymentStatus) IsValid() bool {
	return s == SalePaymentStatusPending || s == SalePaymentStatusPartial || s == SalePaymentStatusPaid
}

// CanTransitionTo enforces the monotonic Pending -> Partial -> Paid machine.
// Paid is terminal; no transition back to Pending once any payment is recorded.
func (s SalePaymentStatus) CanTransitionTo(next SalePaymentStatus) bool {
	switch s {
	case SalePaymentStatusPending:
		return next == SalePaymentStatusPartial || next == SalePaymentStatusPaid
	case SalePaymentStatusPartial:
		return next == SalePaymentStatusPartial || next == SalePaymentStatusPaid
	case SalePaymentStatusPaid:
		return false
	default:
		return false
	}
}

func (s SalePaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *SalePaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("payment status must be string")
	}
	switch str {
	case "Pending":
		*s = SalePaymentStatusPending
	case "Partial":
		*s = SalePaymentStatusPartial
	case "Paid":
		*s = SalePaymentStatusPaid
	default:
		return errors.New("invalid payment status")
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodCard   PaymentMethod = "Card"
	PaymentMethodMobile PaymentMethod = "Mobile"
	PaymentMethodCredit PaymentMethod = "Credit"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodCredit:
		return true
	}
	return false
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("payment method must be string")
	}
	method := PaymentMethod(str)
	if !method.IsValid() {
		return errors.New("invalid payment method")
	}
	*m = method
	return nil
}

type UserRole string

const (
	UserRoleOwner   UserRole = "Owner"
	UserRoleManager UserRole = "Manager"
	UserRoleCashier UserRole = "Cashier"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleOwner || r == UserRoleManager || r == UserRoleCashier
}

type IdempotencyStatus string

const (
	IdempotencyStatusStarted   IdempotencyStatus = "STARTED"
	IdempotencyStatusSucceeded IdempotencyStatus = "SUCCEEDED"
	IdempotencyStatusFailed    IdempotencyStatus = "FAILED"
)
