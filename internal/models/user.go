package models

import (
	"fmt"
	"strings"
	"time"
)

// User is a guest account. Outside-booking guests may get one auto-created
// with a placeholder password until they follow the magic link.
type User struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

// Staff is a hotel employee account
type Staff struct {
	ID           int64     `json:"id" db:"id"`
	RoleID       int64     `json:"roleId" db:"staff_role_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Joined from staff_roles when loaded with role
	RoleName      string  `json:"roleName,omitempty" db:"role_name"`
	DiscountPct   float64 `json:"discountPct,omitempty" db:"default_discount_pct"`
	CommissionPct float64 `json:"commissionPct,omitempty" db:"commission_pct"`
}

// StaffRole defines the discount a staff member may offer and the commission
// they earn on bookings sold with their code.
type StaffRole struct {
	ID                 int64   `json:"id" db:"id"`
	Name               string  `json:"name" db:"name"`
	DefaultDiscountPct float64 `json:"defaultDiscountPct" db:"default_discount_pct"`
	CommissionPct      float64 `json:"commissionPct" db:"commission_pct"`
}

// Manager role name used for privileged operations
const RoleHotelManager = "Hotel Manager"

// HotelStaff links a staff member to a hotel and carries the 4-digit staff
// code guests quote at the front desk. The code is unique per hotel.
type HotelStaff struct {
	ID        int64      `json:"id" db:"id"`
	HotelID   int64      `json:"hotelId" db:"hotel_id"`
	StaffID   int64      `json:"staffId" db:"staff_id"`
	StaffCode string     `json:"staffCode" db:"staff_code"`
	IsPrimary bool       `json:"isPrimary" db:"is_primary"`
	Since     *time.Time `json:"since,omitempty" db:"since"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// StaffHotelLink is a HotelStaff row flattened with its hotel for responses
type StaffHotelLink struct {
	HotelID   int64   `json:"id" db:"hotel_id"`
	HotelName string  `json:"name" db:"hotel_name"`
	Image     *string `json:"image,omitempty" db:"image"`
	City      *string `json:"city,omitempty" db:"city"`
	Country   *string `json:"country,omitempty" db:"country"`
	StaffCode string  `json:"staffCode" db:"staff_code"`
	IsPrimary bool    `json:"isPrimary" db:"is_primary"`
}

// LoginAudit records a successful or failed sign-in with device info
type LoginAudit struct {
	ID        int64     `json:"id" db:"id"`
	ActorType string    `json:"actorType" db:"actor_type"` // user | staff
	ActorID   *int64    `json:"actorId,omitempty" db:"actor_id"`
	Email     string    `json:"email" db:"email"`
	Success   bool      `json:"success" db:"success"`
	IPAddress string    `json:"ipAddress" db:"ip_address"`
	Browser   string    `json:"browser" db:"browser"`
	OS        string    `json:"os" db:"os"`
	Mobile    bool      `json:"mobile" db:"mobile"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RegisterStaffRequest is the payload for POST /auth/staff/register
type RegisterStaffRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	RoleID   int64   `json:"staffRoleId"`
	HotelIDs []int64 `json:"hotelIds"`
}

// Validate checks required fields
func (r *RegisterStaffRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if r.RoleID <= 0 {
		return fmt.Errorf("staffRoleId is required")
	}
	if len(r.HotelIDs) == 0 {
		return fmt.Errorf("hotelIds array required")
	}
	return nil
}

// RegisterUserRequest is the payload for POST /auth/user/register
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields
func (r *RegisterUserRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

// LoginRequest is the shared login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AutoSignupRequest creates or reuses a user for an imported booking
type AutoSignupRequest struct {
	Email            string  `json:"email"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Phone            *string `json:"phone,omitempty"`
	OutsideBookingID *int64  `json:"outsideBookingId,omitempty"`
}

// Validate checks required fields
func (r *AutoSignupRequest) Validate() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("firstName and lastName are required")
	}
	return nil
}

// UpdateProfileRequest is the payload for PUT /users/me
type UpdateProfileRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// ChangePasswordRequest is the payload for PUT /users/me/password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
