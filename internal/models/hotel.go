package models

import (
	"encoding/json"
	"time"
)

// Hotel is a property in the back office
type Hotel struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Location    *string         `json:"location,omitempty" db:"location"`
	Description *string         `json:"description,omitempty" db:"description"`
	Image       *string         `json:"image,omitempty" db:"image"`
	Phone       *string         `json:"phone,omitempty" db:"phone"`
	Email       *string         `json:"email,omitempty" db:"email"`
	StarRating  *int            `json:"starRating,omitempty" db:"star_rating"`
	Rating      float64         `json:"rating" db:"rating"`
	Price       *float64        `json:"price,omitempty" db:"price"`
	Category    *string         `json:"category,omitempty" db:"category"`
	Amenities   json.RawMessage `json:"amenities,omitempty" db:"amenities"`
	Lat         *float64        `json:"lat,omitempty" db:"lat"`
	Lng         *float64        `json:"lng,omitempty" db:"lng"`
	Address     *string         `json:"address,omitempty" db:"address"`
	City        *string         `json:"city,omitempty" db:"city"`
	Country     *string         `json:"country,omitempty" db:"country"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Room is a bookable room inside a hotel
type Room struct {
	ID          int64      `json:"id" db:"id"`
	HotelID     int64      `json:"hotelId" db:"hotel_id"`
	RoomNumber  int        `json:"roomNumber" db:"room_number"`
	Name        *string    `json:"name,omitempty" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Image       *string    `json:"image,omitempty" db:"image"`
	Price       float64    `json:"price" db:"price"` // nightly rate
	Capacity    int        `json:"capacity" db:"capacity"`
	Beds        *string    `json:"beds,omitempty" db:"beds"`
	Available   int        `json:"available" db:"available"`
	Suite       bool       `json:"suite" db:"suite"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

// HotelFilter narrows hotel listings
type HotelFilter struct {
	Location  string
	Category  string
	MinRating float64
}
