package services

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
)

var (
	// ErrCodeNotFound indicates no active code matches the given value
	ErrCodeNotFound = fmt.Errorf("code not found")

	// ErrCodeExpired indicates the code is outside its validity window
	ErrCodeExpired = fmt.Errorf("code has expired")

	// ErrCodeExhausted indicates the code reached its use limit
	ErrCodeExhausted = fmt.Errorf("code has no uses left")

	// ErrCodeSpaceExhausted indicates generation could not find a free code
	ErrCodeSpaceExhausted = fmt.Errorf("unable to generate a unique code")
)

// CodeService generates and validates the short numeric codes handed to
// guests: discount codes, upsell codes and front-desk staff codes.
type CodeService struct {
	discounts *database.DiscountCodeRepository
	upsells   *database.UpsellCodeRepository
	staff     *database.StaffRepository

	length      int
	maxAttempts int
}

// NewCodeService creates a new code service
func NewCodeService(
	discounts *database.DiscountCodeRepository,
	upsells *database.UpsellCodeRepository,
	staff *database.StaffRepository,
	length, maxAttempts int,
) *CodeService {
	return &CodeService{
		discounts:   discounts,
		upsells:     upsells,
		staff:       staff,
		length:      length,
		maxAttempts: maxAttempts,
	}
}

// CreateDiscountCode issues a discount code for the staff member. A
// flat-price code defaults to one use and a 24 hour window so a forgotten
// code cannot keep selling rooms at that price.
func (s *CodeService) CreateDiscountCode(staffID int64, req *models.CreateDiscountCodeRequest) (*models.DiscountCode, error) {
	startsAt, endsAt, err := req.Window()
	if err != nil {
		return nil, err
	}

	value, err := s.uniqueCode(s.discounts.CodeExists)
	if err != nil {
		return nil, err
	}

	maxUses := req.MaxUses
	if req.SpecialPrice != nil {
		if maxUses == nil {
			one := 1
			maxUses = &one
		}
		if endsAt == nil {
			e := time.Now().Add(24 * time.Hour)
			endsAt = &e
		}
	}

	code := &models.DiscountCode{
		Code:         value,
		StaffID:      staffID,
		HotelID:      req.HotelID,
		Percentage:   req.Percentage,
		SpecialPrice: req.SpecialPrice,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		MaxUses:      maxUses,
		Active:       true,
	}

	if err := s.discounts.Create(code); err != nil {
		return nil, fmt.Errorf("failed to store discount code: %w", err)
	}

	return code, nil
}

// ValidateDiscountCode resolves a code value to a usable discount. The
// caller gets a distinct error for unknown, expired and exhausted codes.
func (s *CodeService) ValidateDiscountCode(value string) (*models.DiscountCode, error) {
	code, err := s.discounts.GetByCode(value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}

	if code.Expired(time.Now()) {
		return nil, ErrCodeExpired
	}
	if code.Exhausted() {
		return nil, ErrCodeExhausted
	}

	return code, nil
}

// Consume burns one use of an already validated code
func (s *CodeService) Consume(code *models.DiscountCode) error {
	ok, err := s.discounts.ConsumeUse(code.ID)
	if err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}
	if !ok {
		return ErrCodeExhausted
	}
	code.TimesUsed++

	return nil
}

// ConsumeDiscountCode validates a code and burns one use
func (s *CodeService) ConsumeDiscountCode(value string) (*models.DiscountCode, error) {
	code, err := s.ValidateDiscountCode(value)
	if err != nil {
		return nil, err
	}

	if err := s.Consume(code); err != nil {
		return nil, err
	}

	return code, nil
}

// NewStaffCode generates a front-desk code unique within the hotel and free
// among active discount codes, since registration issues each staff code as
// a matching default discount code.
func (s *CodeService) NewStaffCode(hotelID int64) (string, error) {
	return s.uniqueCode(func(code string) (bool, error) {
		taken, err := s.staff.StaffCodeExists(hotelID, code)
		if err != nil || taken {
			return taken, err
		}
		return s.discounts.CodeExists(code)
	})
}

// NewUpsellCode generates a code unique among live upsell codes
func (s *CodeService) NewUpsellCode() (string, error) {
	return s.uniqueCode(s.upsells.PendingCodeExists)
}

// uniqueCode draws random codes until one is free, giving up after the
// configured number of attempts
func (s *CodeService) uniqueCode(exists func(string) (bool, error)) (string, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := s.randomCode()
		if err != nil {
			return "", err
		}

		taken, err := exists(code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}

// randomCode draws a uniformly random numeric code of the configured length
func (s *CodeService) randomCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.length; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}

	return fmt.Sprintf("%0*d", s.length, n), nil
}
