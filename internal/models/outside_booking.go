package models

import (
	"fmt"
	"strings"
	"time"
)

// OutsideBooking is a stay imported from an external channel (OTA, front
// desk system). It is identified by the channel's confirmation string.
type OutsideBooking struct {
	ID                  int64         `json:"id" db:"id"`
	UserID              *int64        `json:"userId,omitempty" db:"user_id"`
	BookingConfirmation string        `json:"bookingConfirmation" db:"booking_confirmation"`
	HotelID             *int64        `json:"hotelId,omitempty" db:"hotel_id"`
	RoomNumber          int           `json:"roomNumber" db:"room_number"`
	RoomType            string        `json:"roomType" db:"room_type"`
	CheckIn             time.Time     `json:"checkIn" db:"check_in"`
	CheckOut            time.Time     `json:"checkOut" db:"check_out"`
	GuestName           string        `json:"guestName" db:"guest_name"`
	GuestLastName       string        `json:"guestLastName" db:"guest_last_name"`
	GuestEmail          string        `json:"guestEmail" db:"guest_email"`
	GuestPhone          *string       `json:"guestPhone,omitempty" db:"guest_phone"`
	Status              BookingStatus `json:"status" db:"status"`
	PaymentStatus       PaymentStatus `json:"paymentStatus" db:"payment_status"`
	PaymentID           *string       `json:"paymentId,omitempty" db:"payment_id"`
	Outside             bool          `json:"outside" db:"outside"`
	CreatedAt           time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time     `json:"updatedAt" db:"updated_at"`
}

// ImportReservationRequest is the payload for POST /outside-bookings: a
// reservation pulled from a channel that needs guest confirmation.
type ImportReservationRequest struct {
	ArrivalDate         string  `json:"arrivalDate"`   // YYYY-MM-DD
	DepartureDate       string  `json:"departureDate"` // YYYY-MM-DD
	FirstName           string  `json:"firstName"`
	LastName            string  `json:"lastName"`
	BookingConfirmation string  `json:"bookingConfirmation"`
	RoomType            string  `json:"roomType"`
	RoomNumber          int     `json:"roomNumber"`
	Email               string  `json:"email"`
	PhoneNumber         string  `json:"phoneNumber"`
	HotelID             *int64  `json:"hotelId,omitempty"`
	Phone               *string `json:"-"`
}

// Validate checks required fields
func (r *ImportReservationRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.BookingConfirmation) == "":
		return fmt.Errorf("bookingConfirmation is required")
	case strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "":
		return fmt.Errorf("firstName and lastName are required")
	case strings.TrimSpace(r.RoomType) == "":
		return fmt.Errorf("roomType is required")
	case r.RoomNumber <= 0:
		return fmt.Errorf("roomNumber is required")
	case !strings.Contains(r.Email, "@"):
		return fmt.Errorf("valid email is required")
	case strings.TrimSpace(r.PhoneNumber) == "":
		return fmt.Errorf("phoneNumber is required")
	}
	if _, err := time.Parse("2006-01-02", r.ArrivalDate); err != nil {
		return fmt.Errorf("arrivalDate must be YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", r.DepartureDate); err != nil {
		return fmt.Errorf("departureDate must be YYYY-MM-DD")
	}
	return nil
}

// Dates returns the parsed arrival/departure. Call Validate first.
func (r *ImportReservationRequest) Dates() (time.Time, time.Time) {
	ci, _ := time.Parse("2006-01-02", r.ArrivalDate)
	co, _ := time.Parse("2006-01-02", r.DepartureDate)
	return ci, co
}
