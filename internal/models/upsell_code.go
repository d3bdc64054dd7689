package models

import (
	"fmt"
	"time"
)

// UpsellCodeStatus is the lifecycle of a single-use upsell code.
type UpsellCodeStatus string

const (
	UpsellPending UpsellCodeStatus = "pending"
	UpsellUsed    UpsellCodeStatus = "used"
)

// UpsellCode is a short-lived code a staff member generates so a guest can
// pay for an add-on at the front desk. Redeeming it creates the add-on on
// the outside booking already marked paid.
type UpsellCode struct {
	ID               int64            `json:"id" db:"id"`
	Code             string           `json:"code" db:"code"`
	StaffID          int64            `json:"staffId" db:"staff_id"`
	OutsideBookingID int64            `json:"outsideBookingId" db:"outside_booking_id"`
	AddOnID          int64            `json:"addOnId" db:"add_on_id"`
	OptionID         *int64           `json:"optionId,omitempty" db:"add_on_option_id"`
	Quantity         int              `json:"qty" db:"qty"`
	UnitPrice        float64          `json:"unitPrice" db:"unit_price"`
	Status           UpsellCodeStatus `json:"status" db:"status"`
	ExpiresAt        time.Time        `json:"expiresAt" db:"expires_at"`
	RedeemedAt       *time.Time       `json:"redeemedAt,omitempty" db:"redeemed_at"`
	PaymentID        *string          `json:"paymentId,omitempty" db:"payment_id"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
}

// CreateUpsellCodeRequest generates a code bound to one booking and add-on.
type CreateUpsellCodeRequest struct {
	OutsideBookingID int64   `json:"outsideBookingId"`
	AddOnID          int64   `json:"addOnId"`
	OptionID         *int64  `json:"optionId,omitempty"`
	Quantity         int     `json:"qty"`
	UnitPrice        float64 `json:"unitPrice"`
}

// Validate checks required fields and ranges.
func (r *CreateUpsellCodeRequest) Validate() error {
	if r.OutsideBookingID <= 0 {
		return fmt.Errorf("outsideBookingId is required")
	}
	if r.AddOnID <= 0 {
		return fmt.Errorf("addOnId is required")
	}
	if r.Quantity <= 0 {
		r.Quantity = 1
	}
	if r.UnitPrice < 0 {
		return fmt.Errorf("unitPrice must not be negative")
	}
	return nil
}

// RedeemUpsellCodeRequest redeems a code against the guest's booking.
type RedeemUpsellCodeRequest struct {
	Code             string `json:"code"`
	OutsideBookingID int64  `json:"outsideBookingId"`
}

// Validate checks required fields.
func (r *RedeemUpsellCodeRequest) Validate() error {
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	if r.OutsideBookingID <= 0 {
		return fmt.Errorf("outsideBookingId is required")
	}
	return nil
}
