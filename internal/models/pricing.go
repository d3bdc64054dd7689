package models

import (
	"fmt"
	"time"
)

// QuoteRequest asks for the price of a stay, optionally with a discount
// code applied.
type QuoteRequest struct {
	HotelID  int64   `json:"hotelId" form:"hotelId"`
	RoomID   int64   `json:"roomId" form:"roomId"`
	CheckIn  string  `json:"checkIn" form:"checkIn"`
	CheckOut string  `json:"checkOut" form:"checkOut"`
	Rooms    int     `json:"rooms" form:"rooms"`
	Code     *string `json:"code,omitempty" form:"code"`
}

// Validate checks fields and date ordering.
func (r *QuoteRequest) Validate() error {
	if r.HotelID <= 0 || r.RoomID <= 0 {
		return fmt.Errorf("hotelId and roomId are required")
	}
	if r.Rooms <= 0 {
		r.Rooms = 1
	}
	ci, err := time.Parse("2006-01-02", r.CheckIn)
	if err != nil {
		return fmt.Errorf("checkIn must be YYYY-MM-DD")
	}
	co, err := time.Parse("2006-01-02", r.CheckOut)
	if err != nil {
		return fmt.Errorf("checkOut must be YYYY-MM-DD")
	}
	if !co.After(ci) {
		return fmt.Errorf("checkOut must be after checkIn")
	}
	return nil
}

// Dates returns the parsed check-in/out. Call Validate first.
func (r *QuoteRequest) Dates() (time.Time, time.Time) {
	ci, _ := time.Parse("2006-01-02", r.CheckIn)
	co, _ := time.Parse("2006-01-02", r.CheckOut)
	return ci, co
}

// Quote is a priced stay.
type Quote struct {
	Nights       int      `json:"nights"`
	Rooms        int      `json:"rooms"`
	NightlyRate  float64  `json:"nightlyRate"`
	Base         float64  `json:"base"`
	Discount     float64  `json:"discount"`
	Total        float64  `json:"total"`
	CodeApplied  *string  `json:"codeApplied,omitempty"`
	Percentage   *float64 `json:"percentage,omitempty"`
	SpecialPrice *float64 `json:"specialPrice,omitempty"`
}

// UpgradeQuoteRequest prices moving an existing stay to a pricier room.
type UpgradeQuoteRequest struct {
	BookingConfirmation string `json:"bookingConfirmation"`
	NewRoomID           int64  `json:"newRoomId"`
}

// Validate checks required fields.
func (r *UpgradeQuoteRequest) Validate() error {
	if r.BookingConfirmation == "" {
		return fmt.Errorf("bookingConfirmation is required")
	}
	if r.NewRoomID <= 0 {
		return fmt.Errorf("newRoomId is required")
	}
	return nil
}

// UpgradeQuote is the price delta for a room upgrade over the stay.
type UpgradeQuote struct {
	Nights    int     `json:"nights"`
	OldRate   float64 `json:"oldRate"`
	NewRate   float64 `json:"newRate"`
	UnitPrice float64 `json:"unitPrice"`
}
