package models

import (
	"encoding/json"
	"time"
)

// AddOnType governs how an add-on is priced and requested
type AddOnType string

const (
	// AddOnTypeChoice is a yes/no extra priced once
	AddOnTypeChoice AddOnType = "choice"
	// AddOnTypeQuantity multiplies the unit price by a guest-chosen qty
	AddOnTypeQuantity AddOnType = "quantity"
	// AddOnTypeOptions offers priced variants; qty is implicitly 1
	AddOnTypeOptions AddOnType = "options"
)

// AddOn is a catalog entry guests can purchase on top of a stay
type AddOn struct {
	ID          int64           `json:"id" db:"id"`
	Slug        string          `json:"slug" db:"slug"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Icon        *string         `json:"icon,omitempty" db:"icon"`
	Subtitle    *string         `json:"subtitle,omitempty" db:"subtitle"`
	Footnote    *string         `json:"footnote,omitempty" db:"footnote"`
	Type        AddOnType       `json:"type" db:"type"`
	Price       float64         `json:"price" db:"price"`
	DefaultQty  *int            `json:"defaultQty,omitempty" db:"default_qty"`
	Meta        json.RawMessage `json:"meta,omitempty" db:"meta"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`

	Options []AddOnOption `json:"options,omitempty" db:"-"`
}

// AddOnOption is a priced variant of an options-type add-on
type AddOnOption struct {
	ID      int64   `json:"id" db:"id"`
	AddOnID int64   `json:"addOnId" db:"add_on_id"`
	Name    string  `json:"name" db:"name"`
	Price   float64 `json:"price" db:"price"`
}

// HotelAddOn overrides catalog values for a single hotel. Nil fields fall
// back to the base AddOn.
type HotelAddOn struct {
	ID          int64    `json:"id" db:"id"`
	HotelID     int64    `json:"hotelId" db:"hotel_id"`
	AddOnID     int64    `json:"addOnId" db:"add_on_id"`
	Active      bool     `json:"active" db:"active"`
	Price       *float64 `json:"price,omitempty" db:"price"`
	DefaultQty  *int     `json:"defaultQty,omitempty" db:"default_qty"`
	Name        *string  `json:"name,omitempty" db:"name"`
	Description *string  `json:"description,omitempty" db:"description"`
	Icon        *string  `json:"icon,omitempty" db:"icon"`
	Subtitle    *string  `json:"subtitle,omitempty" db:"subtitle"`
	Footnote    *string  `json:"footnote,omitempty" db:"footnote"`
}

// HotelAddOnOption overrides an option's price for a single hotel
type HotelAddOnOption struct {
	ID            int64    `json:"id" db:"id"`
	HotelAddOnID  int64    `json:"hotelAddOnId" db:"hotel_add_on_id"`
	AddOnOptionID int64    `json:"addOnOptionId" db:"add_on_option_id"`
	Price         *float64 `json:"price,omitempty" db:"price"`
	Active        bool     `json:"active" db:"active"`
}

// CatalogAddOn is the add-on shape the frontend consumes
type CatalogAddOn struct {
	ID          int64           `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Price       float64         `json:"price"`
	IconName    string          `json:"iconName"`
	Subtitle    *string         `json:"subtitle"`
	Footnote    *string         `json:"footnote"`
	Type        AddOnType       `json:"type"`
	DefaultQty  *int            `json:"defaultQty"`
	Options     []CatalogOption `json:"options"`
}

// CatalogOption is an option flattened for the frontend
type CatalogOption struct {
	ID    int64   `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}
