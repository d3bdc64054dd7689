package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
)

var (
	// ErrUpsellCodeUsed indicates the code was already redeemed
	ErrUpsellCodeUsed = fmt.Errorf("upsell code already used")

	// ErrUpsellWrongBooking indicates the code belongs to another booking
	ErrUpsellWrongBooking = fmt.Errorf("upsell code does not match this booking")
)

// UpsellService issues and redeems the single-use codes staff hand to
// guests paying for an extra at the front desk. Redemption books the
// add-on on the outside booking already settled.
type UpsellService struct {
	codes   *CodeService
	upsells *database.UpsellCodeRepository
	pivots  *database.BookingAddOnRepository
	outside *database.OutsideBookingRepository

	ttl time.Duration
}

// NewUpsellService creates a new upsell service
func NewUpsellService(
	codes *CodeService,
	upsells *database.UpsellCodeRepository,
	pivots *database.BookingAddOnRepository,
	outside *database.OutsideBookingRepository,
	ttl time.Duration,
) *UpsellService {
	return &UpsellService{
		codes:   codes,
		upsells: upsells,
		pivots:  pivots,
		outside: outside,
		ttl:     ttl,
	}
}

// Create issues a code bound to one booking and add-on
func (s *UpsellService) Create(staffID int64, req *models.CreateUpsellCodeRequest) (*models.UpsellCode, error) {
	if _, err := s.outside.GetByID(req.OutsideBookingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	value, err := s.codes.NewUpsellCode()
	if err != nil {
		return nil, err
	}

	code := &models.UpsellCode{
		Code:             value,
		StaffID:          staffID,
		OutsideBookingID: req.OutsideBookingID,
		AddOnID:          req.AddOnID,
		OptionID:         req.OptionID,
		Quantity:         req.Quantity,
		UnitPrice:        req.UnitPrice,
		Status:           models.UpsellPending,
		ExpiresAt:        time.Now().Add(s.ttl),
	}

	if err := s.upsells.Create(code); err != nil {
		return nil, fmt.Errorf("failed to store upsell code: %w", err)
	}

	return code, nil
}

// Redeem burns a code and books its add-on on the outside booking, marked
// ready and paid since the guest settled at the desk. The repository guard
// makes a second redemption of the same code fail cleanly.
func (s *UpsellService) Redeem(req *models.RedeemUpsellCodeRequest) (*models.OutsideBookingAddOn, error) {
	code, err := s.upsells.GetByCode(req.Code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up upsell code: %w", err)
	}

	if code.Status == models.UpsellUsed {
		return nil, ErrUpsellCodeUsed
	}
	if time.Now().After(code.ExpiresAt) {
		return nil, ErrCodeExpired
	}
	if code.OutsideBookingID != req.OutsideBookingID {
		return nil, ErrUpsellWrongBooking
	}

	now := time.Now()
	ok, err := s.upsells.Redeem(code.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem code: %w", err)
	}
	if !ok {
		return nil, ErrUpsellCodeUsed
	}

	row := &models.OutsideBookingAddOn{
		OutsideBookingID: code.OutsideBookingID,
		AddOnID:          code.AddOnID,
		OptionID:         code.OptionID,
		Quantity:         code.Quantity,
		UnitPrice:        code.UnitPrice,
		Status:           models.AddOnRequestReady,
		PaymentStatus:    models.PaymentPaid,
	}

	if err := s.pivots.CreateOutside(row); err != nil {
		return nil, fmt.Errorf("failed to book add-on: %w", err)
	}

	return row, nil
}
