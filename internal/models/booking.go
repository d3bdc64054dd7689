package models

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a stay
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus is the settlement state of a stay or pivot row
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking is a stay created natively in the system
type Booking struct {
	ID             int64         `json:"id" db:"id"`
	UserID         *int64        `json:"userId,omitempty" db:"user_id"`
	HotelID        int64         `json:"hotelId" db:"hotel_id"`
	RoomID         int64         `json:"roomId" db:"room_id"`
	DiscountCodeID *int64        `json:"discountCodeId,omitempty" db:"discount_code_id"`
	CheckIn        time.Time     `json:"checkIn" db:"check_in"`
	CheckOut       time.Time     `json:"checkOut" db:"check_out"`
	Adults         int           `json:"adults" db:"adults"`
	Children       int           `json:"children" db:"children"`
	Rooms          int           `json:"rooms" db:"rooms"`
	GuestName      string        `json:"guestName" db:"guest_name"`
	GuestEmail     string        `json:"guestEmail" db:"guest_email"`
	GuestPhone     *string       `json:"guestPhone,omitempty" db:"guest_phone"`
	Total          float64       `json:"total" db:"total"`
	Status         BookingStatus `json:"status" db:"status"`
	PaymentStatus  PaymentStatus `json:"paymentStatus" db:"payment_status"`
	PaymentID      *string       `json:"paymentId,omitempty" db:"payment_id"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// Commission is the amount a staff member earns when a booking is sold with
// their discount code.
type Commission struct {
	ID        int64     `json:"id" db:"id"`
	BookingID int64     `json:"bookingId" db:"booking_id"`
	StaffID   int64     `json:"staffId" db:"staff_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CreateBookingRequest is the payload for POST /bookings
type CreateBookingRequest struct {
	UserID       *int64  `json:"userId,omitempty"`
	HotelID      int64   `json:"hotelId"`
	RoomID       int64   `json:"roomId"`
	CheckIn      string  `json:"checkIn"`  // YYYY-MM-DD
	CheckOut     string  `json:"checkOut"` // YYYY-MM-DD
	Adults       int     `json:"adults"`
	Children     int     `json:"children"`
	Rooms        int     `json:"rooms"`
	GuestName    string  `json:"guestName"`
	GuestEmail   string  `json:"guestEmail"`
	GuestPhone   *string `json:"guestPhone,omitempty"`
	DiscountCode string  `json:"discountCode,omitempty"`
}

// Validate checks required fields and date sanity
func (r *CreateBookingRequest) Validate() error {
	if r.HotelID <= 0 || r.RoomID <= 0 {
		return fmt.Errorf("hotelId and roomId are required")
	}
	if strings.TrimSpace(r.GuestName) == "" || !strings.Contains(r.GuestEmail, "@") {
		return fmt.Errorf("guestName and a valid guestEmail are required")
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
	if r.Adults <= 0 {
		return fmt.Errorf("at least one adult is required")
	}
	return nil
}

// Dates returns the parsed check-in/check-out. Call Validate first.
func (r *CreateBookingRequest) Dates() (time.Time, time.Time) {
	ci, _ := time.Parse("2006-01-02", r.CheckIn)
	co, _ := time.Parse("2006-01-02", r.CheckOut)
	return ci, co
}

// StaySource distinguishes native bookings from channel imports
type StaySource string

const (
	StayInsider StaySource = "insider"
	StayOutside StaySource = "outside"
)

// Stay is the unified booking shape the frontend consumes, covering both
// native and outside bookings.
type Stay struct {
	ID                  int64         `json:"id"`
	Source              StaySource    `json:"source"`
	BookingConfirmation string        `json:"bookingConfirmation,omitempty"`
	HotelID             *int64        `json:"hotelId"`
	HotelName           *string       `json:"hotelName"`
	Location            string        `json:"location"`
	Image               *string       `json:"image"`
	Rating              *float64      `json:"rating"`
	CheckIn             time.Time     `json:"checkIn"`
	CheckOut            time.Time     `json:"checkOut"`
	Nights              int           `json:"nights"`
	Status              BookingStatus `json:"status"`
	PaymentStatus       PaymentStatus `json:"paymentStatus"`
	RoomType            *string       `json:"roomType"`
	RoomNumber          *int          `json:"roomNumber"`
	Guests              *int          `json:"guests"`
	Total               float64       `json:"total"`
	Outside             bool          `json:"outside"`
}
