package models

import (
	"fmt"
	"time"
)

// AddOnRequestStatus tracks a guest's add-on request through staff review.
type AddOnRequestStatus string

const (
	AddOnRequestPending   AddOnRequestStatus = "pending"
	AddOnRequestConfirmed AddOnRequestStatus = "confirmed"
	AddOnRequestRejected  AddOnRequestStatus = "rejected"
	AddOnRequestReady     AddOnRequestStatus = "ready"
)

// Valid reports whether s is one of the known request states.
func (s AddOnRequestStatus) Valid() bool {
	switch s {
	case AddOnRequestPending, AddOnRequestConfirmed, AddOnRequestRejected, AddOnRequestReady:
		return true
	}
	return false
}

// BookingAddOn links an add-on to a native booking.
type BookingAddOn struct {
	ID            int64              `json:"id" db:"id"`
	BookingID     int64              `json:"bookingId" db:"booking_id"`
	AddOnID       int64              `json:"addOnId" db:"add_on_id"`
	OptionID      *int64             `json:"optionId,omitempty" db:"add_on_option_id"`
	Quantity      int                `json:"qty" db:"qty"`
	UnitPrice     float64            `json:"unitPrice" db:"unit_price"`
	Status        AddOnRequestStatus `json:"status" db:"status"`
	PaymentStatus PaymentStatus      `json:"paymentStatus" db:"payment_status"`
	PaymentID     *string            `json:"paymentId,omitempty" db:"payment_id"`
	CreatedAt     time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" db:"updated_at"`

	// Joined for staff panels.
	AddOnName  *string `json:"addOnName,omitempty" db:"add_on_name"`
	OptionName *string `json:"optionName,omitempty" db:"option_name"`
}

// OutsideBookingAddOn links an add-on to an outside booking. Same shape as
// BookingAddOn but kept separate because its lifecycle (staff confirmation,
// upsell redemption) differs.
type OutsideBookingAddOn struct {
	ID               int64              `json:"id" db:"id"`
	OutsideBookingID int64              `json:"outsideBookingId" db:"outside_booking_id"`
	AddOnID          int64              `json:"addOnId" db:"add_on_id"`
	OptionID         *int64             `json:"optionId,omitempty" db:"add_on_option_id"`
	Quantity         int                `json:"qty" db:"qty"`
	UnitPrice        float64            `json:"unitPrice" db:"unit_price"`
	Status           AddOnRequestStatus `json:"status" db:"status"`
	PaymentStatus    PaymentStatus      `json:"paymentStatus" db:"payment_status"`
	PaymentID        *string            `json:"paymentId,omitempty" db:"payment_id"`
	CreatedAt        time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time          `json:"updatedAt" db:"updated_at"`

	AddOnName  *string `json:"addOnName,omitempty" db:"add_on_name"`
	OptionName *string `json:"optionName,omitempty" db:"option_name"`

	// Joined booking columns for the staff request queue.
	GuestName           *string    `json:"guestName,omitempty" db:"guest_name"`
	GuestEmail          *string    `json:"guestEmail,omitempty" db:"guest_email"`
	RoomNumber          *int       `json:"roomNumber,omitempty" db:"room_number"`
	BookingConfirmation *string    `json:"bookingConfirmation,omitempty" db:"booking_confirmation"`
	CheckIn             *time.Time `json:"checkIn,omitempty" db:"check_in"`
	CheckOut            *time.Time `json:"checkOut,omitempty" db:"check_out"`
}

// AddOnRequestItem is one entry in a bulk add-on replace.
type AddOnRequestItem struct {
	AddOnID  int64  `json:"addOnId"`
	OptionID *int64 `json:"optionId,omitempty"`
	Quantity int    `json:"qty"`
}

// Validate checks the item fields.
func (i *AddOnRequestItem) Validate() error {
	if i.AddOnID <= 0 {
		return fmt.Errorf("addOnId is required")
	}
	if i.Quantity <= 0 {
		return fmt.Errorf("qty must be positive")
	}
	return nil
}

// ReplaceAddOnsRequest replaces the full add-on set of an outside booking.
type ReplaceAddOnsRequest struct {
	AddOns []AddOnRequestItem `json:"addOns"`
}

// Validate checks every item.
func (r *ReplaceAddOnsRequest) Validate() error {
	for idx := range r.AddOns {
		if err := r.AddOns[idx].Validate(); err != nil {
			return fmt.Errorf("addOns[%d]: %w", idx, err)
		}
	}
	return nil
}

// UpdateAddOnStatusRequest is the staff decision on a pending request.
type UpdateAddOnStatusRequest struct {
	Status AddOnRequestStatus `json:"status"`
}

// Validate accepts only decision states, never pending.
func (r *UpdateAddOnStatusRequest) Validate() error {
	if r.Status != AddOnRequestConfirmed && r.Status != AddOnRequestRejected && r.Status != AddOnRequestReady {
		return fmt.Errorf("status must be confirmed, rejected or ready")
	}
	return nil
}
