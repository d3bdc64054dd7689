package models

import (
	"fmt"
	"time"
)

// DiscountCode is a short numeric code a staff member hands to a guest.
// Exactly one of Percentage or SpecialPrice is set: a percentage code
// discounts the computed stay total, a special-price code replaces it.
type DiscountCode struct {
	ID           int64      `json:"id" db:"id"`
	Code         string     `json:"code" db:"code"`
	StaffID      int64      `json:"staffId" db:"staff_id"`
	HotelID      *int64     `json:"hotelId,omitempty" db:"hotel_id"`
	Percentage   *float64   `json:"percentage,omitempty" db:"percentage"`
	SpecialPrice *float64   `json:"specialPrice,omitempty" db:"special_price"`
	StartsAt     *time.Time `json:"startsAt,omitempty" db:"starts_at"`
	EndsAt       *time.Time `json:"endsAt,omitempty" db:"ends_at"`
	MaxUses      *int       `json:"maxUses,omitempty" db:"max_uses"`
	TimesUsed    int        `json:"timesUsed" db:"times_used"`
	Active       bool       `json:"active" db:"active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`

	// Joined for validation responses.
	StaffName *string `json:"staffName,omitempty" db:"staff_name"`
}

// Expired reports whether the code is outside its validity window at t.
func (c *DiscountCode) Expired(t time.Time) bool {
	if c.StartsAt != nil && t.Before(*c.StartsAt) {
		return true
	}
	if c.EndsAt != nil && t.After(*c.EndsAt) {
		return true
	}
	return false
}

// Exhausted reports whether the code has reached its use limit.
func (c *DiscountCode) Exhausted() bool {
	return c.MaxUses != nil && c.TimesUsed >= *c.MaxUses
}

// StaffCodeInfo resolves a front-desk staff code for a guest client: the
// discount the staff role grants plus who issued it and at which hotel.
type StaffCodeInfo struct {
	Percentage float64 `json:"percentage" db:"percentage"`
	StaffName  string  `json:"validatedBy" db:"staff_name"`
	HotelID    int64   `json:"hotelId" db:"hotel_id"`
	HotelName  string  `json:"hotelName" db:"hotel_name"`
	HotelImage *string `json:"hotelImage,omitempty" db:"hotel_image"`
	City       *string `json:"city,omitempty" db:"city"`
	Country    *string `json:"country,omitempty" db:"country"`
}

// CreateDiscountCodeRequest creates a code for the authenticated staff
// member. Percentage and SpecialPrice are mutually exclusive.
type CreateDiscountCodeRequest struct {
	HotelID      *int64   `json:"hotelId,omitempty"`
	Percentage   *float64 `json:"percentage,omitempty"`
	SpecialPrice *float64 `json:"specialDiscountPrice,omitempty"`
	StartsAt     *string  `json:"startsAt,omitempty"` // RFC 3339
	EndsAt       *string  `json:"endsAt,omitempty"`
	MaxUses      *int     `json:"maxUses,omitempty"`
}

// Validate enforces the value ranges.
func (r *CreateDiscountCodeRequest) Validate() error {
	if r.Percentage == nil && r.SpecialPrice == nil {
		return fmt.Errorf("percentage or specialDiscountPrice is required")
	}
	if r.Percentage != nil && r.SpecialPrice != nil {
		return fmt.Errorf("percentage and specialDiscountPrice are mutually exclusive")
	}
	if r.Percentage != nil && (*r.Percentage < 1 || *r.Percentage > 100) {
		return fmt.Errorf("percentage must be between 1 and 100")
	}
	if r.SpecialPrice != nil && (*r.SpecialPrice < 10 || *r.SpecialPrice > 200000) {
		return fmt.Errorf("specialDiscountPrice must be between 10 and 200000")
	}
	if r.MaxUses != nil && *r.MaxUses <= 0 {
		return fmt.Errorf("maxUses must be positive")
	}
	if _, _, err := r.Window(); err != nil {
		return err
	}
	return nil
}

// Window parses the optional validity window.
func (r *CreateDiscountCodeRequest) Window() (*time.Time, *time.Time, error) {
	var startsAt, endsAt *time.Time
	if r.StartsAt != nil {
		t, err := time.Parse(time.RFC3339, *r.StartsAt)
		if err != nil {
			return nil, nil, fmt.Errorf("startsAt must be RFC 3339")
		}
		startsAt = &t
	}
	if r.EndsAt != nil {
		t, err := time.Parse(time.RFC3339, *r.EndsAt)
		if err != nil {
			return nil, nil, fmt.Errorf("endsAt must be RFC 3339")
		}
		endsAt = &t
	}
	if startsAt != nil && endsAt != nil && !endsAt.After(*startsAt) {
		return nil, nil, fmt.Errorf("endsAt must be after startsAt")
	}
	return startsAt, endsAt, nil
}
