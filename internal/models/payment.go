package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaymentEvent is one webhook delivery from the payment provider. The
// provider event id is the primary key so replays overwrite in place.
type PaymentEvent struct {
	EventID    string          `json:"eventId" db:"event_id"`
	Type       string          `json:"type" db:"type"`
	SessionID  *string         `json:"sessionId,omitempty" db:"session_id"`
	Reference  *string         `json:"reference,omitempty" db:"reference"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
	ReceivedAt time.Time       `json:"receivedAt" db:"received_at"`
}

// Checkout target kinds carried in session metadata so the webhook can
// route the paid event back to the right row.
const (
	CheckoutKindBooking      = "booking"
	CheckoutKindAddOn        = "booking_addon"
	CheckoutKindOutsideAddOn = "outside_booking_addon"
	CheckoutKindRoomUpgrade  = "room_upgrade"
	CheckoutKindUpsell       = "upsell_code"
)

// CreateCheckoutRequest starts a hosted checkout session for a booking.
type CreateCheckoutRequest struct {
	BookingID  int64   `json:"bookingId"`
	SuccessURL string  `json:"successUrl"`
	CancelURL  string  `json:"cancelUrl"`
	Code       *string `json:"code,omitempty"`
}

// Validate checks required fields.
func (r *CreateCheckoutRequest) Validate() error {
	if r.BookingID <= 0 {
		return fmt.Errorf("bookingId is required")
	}
	if r.SuccessURL == "" || r.CancelURL == "" {
		return fmt.Errorf("successUrl and cancelUrl are required")
	}
	return nil
}

// CreateAddOnCheckoutRequest starts a session for a confirmed add-on
// request on an outside booking.
type CreateAddOnCheckoutRequest struct {
	OutsideAddOnID int64  `json:"outsideAddOnId"`
	SuccessURL     string `json:"successUrl"`
	CancelURL      string `json:"cancelUrl"`
}

// Validate checks required fields.
func (r *CreateAddOnCheckoutRequest) Validate() error {
	if r.OutsideAddOnID <= 0 {
		return fmt.Errorf("outsideAddOnId is required")
	}
	if r.SuccessURL == "" || r.CancelURL == "" {
		return fmt.Errorf("successUrl and cancelUrl are required")
	}
	return nil
}

// CreateUpsellCheckoutRequest starts a session so the guest can pay an
// upsell code online instead of at the front desk.
type CreateUpsellCheckoutRequest struct {
	UpsellCodeID int64  `json:"upsellCodeId"`
	SuccessURL   string `json:"successUrl"`
	CancelURL    string `json:"cancelUrl"`
}

// Validate checks required fields.
func (r *CreateUpsellCheckoutRequest) Validate() error {
	if r.UpsellCodeID <= 0 {
		return fmt.Errorf("upsellCodeId is required")
	}
	if r.SuccessURL == "" || r.CancelURL == "" {
		return fmt.Errorf("successUrl and cancelUrl are required")
	}
	return nil
}

// ProcessApplePayRequest charges a wallet token against a booking.
type ProcessApplePayRequest struct {
	BookingID int64  `json:"bookingId"`
	Token     string `json:"token"`
}

// Validate checks required fields.
func (r *ProcessApplePayRequest) Validate() error {
	if r.BookingID <= 0 {
		return fmt.Errorf("bookingId is required")
	}
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}

// ApplePayResult reports the outcome of a wallet charge. Paid is true only
// when the charge settled immediately.
type ApplePayResult struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Status          string `json:"status"`
	Paid            bool   `json:"paid"`
}

// CheckoutSessionResponse is returned to the client to redirect.
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
