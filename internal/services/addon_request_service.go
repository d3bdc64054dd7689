package services

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/pkg/mailer"
)

var (
	// ErrRequestNotFound indicates the pivot row does not exist
	ErrRequestNotFound = fmt.Errorf("add-on request not found")

	// ErrRequestAlreadyDecided indicates the request left the pending state
	ErrRequestAlreadyDecided = fmt.Errorf("add-on request already processed")

	// ErrBookingNotFound indicates the referenced booking does not exist
	ErrBookingNotFound = fmt.Errorf("booking not found")

	// ErrAddOnNotFound indicates the referenced add-on does not exist
	ErrAddOnNotFound = fmt.Errorf("add-on not found")
)

// AddOnRequestService runs the guest request workflow on outside bookings:
// guests file requests, staff confirm or reject, payment marks them ready.
type AddOnRequestService struct {
	pivots  *database.BookingAddOnRepository
	outside *database.OutsideBookingRepository
	catalog *database.AddOnRepository
	mail    *mailer.Mailer
	logger  *logrus.Logger
}

// NewAddOnRequestService creates a new add-on request service
func NewAddOnRequestService(
	pivots *database.BookingAddOnRepository,
	outside *database.OutsideBookingRepository,
	catalog *database.AddOnRepository,
	mail *mailer.Mailer,
	logger *logrus.Logger,
) *AddOnRequestService {
	return &AddOnRequestService{
		pivots:  pivots,
		outside: outside,
		catalog: catalog,
		mail:    mail,
		logger:  logger,
	}
}

// Request files a pending add-on request on an outside booking, pricing it
// with the hotel's effective price.
func (s *AddOnRequestService) Request(outsideBookingID int64, item *models.AddOnRequestItem) (*models.OutsideBookingAddOn, error) {
	booking, err := s.outside.GetByID(outsideBookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	price, err := s.price(booking, item)
	if err != nil {
		return nil, err
	}

	row := &models.OutsideBookingAddOn{
		OutsideBookingID: booking.ID,
		AddOnID:          item.AddOnID,
		OptionID:         item.OptionID,
		Quantity:         item.Quantity,
		UnitPrice:        price,
		Status:           models.AddOnRequestPending,
		PaymentStatus:    models.PaymentUnpaid,
	}

	if err := s.pivots.CreateOutside(row); err != nil {
		return nil, fmt.Errorf("failed to store request: %w", err)
	}

	return row, nil
}

// Replace swaps an outside booking's whole unpaid add-on set
func (s *AddOnRequestService) Replace(outsideBookingID int64, items []models.AddOnRequestItem) ([]models.OutsideBookingAddOn, error) {
	booking, err := s.outside.GetByID(outsideBookingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	rows := make([]models.OutsideBookingAddOn, 0, len(items))
	for i := range items {
		item := &items[i]
		price, err := s.price(booking, item)
		if err != nil {
			return nil, err
		}

		rows = append(rows, models.OutsideBookingAddOn{
			OutsideBookingID: booking.ID,
			AddOnID:          item.AddOnID,
			OptionID:         item.OptionID,
			Quantity:         item.Quantity,
			UnitPrice:        price,
			Status:           models.AddOnRequestPending,
			PaymentStatus:    models.PaymentUnpaid,
		})
	}

	if err := s.pivots.ReplaceForOutsideBooking(booking.ID, rows); err != nil {
		return nil, fmt.Errorf("failed to replace add-ons: %w", err)
	}

	return s.pivots.ListByOutsideBooking(booking.ID)
}

// ListForBooking returns an outside booking's add-on rows
func (s *AddOnRequestService) ListForBooking(outsideBookingID int64) ([]models.OutsideBookingAddOn, error) {
	if _, err := s.outside.GetByID(outsideBookingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	return s.pivots.ListByOutsideBooking(outsideBookingID)
}

// PendingForHotel returns the staff review queue for a hotel
func (s *AddOnRequestService) PendingForHotel(hotelID int64) ([]models.OutsideBookingAddOn, error) {
	return s.pivots.ListPendingForHotel(hotelID)
}

// Decide moves a pending request to confirmed, rejected or ready. Email to
// the guest is best effort: a delivery failure never rolls back the
// decision.
func (s *AddOnRequestService) Decide(requestID int64, status models.AddOnRequestStatus) (*models.OutsideBookingAddOn, error) {
	row, err := s.pivots.GetOutsideByID(requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	ok, err := s.pivots.UpdateOutsideStatus(requestID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}
	if !ok {
		return nil, ErrRequestAlreadyDecided
	}
	row.Status = status

	s.notify(row, status)

	return row, nil
}

// notify emails the guest about a confirm/reject decision
func (s *AddOnRequestService) notify(row *models.OutsideBookingAddOn, status models.AddOnRequestStatus) {
	if status != models.AddOnRequestConfirmed && status != models.AddOnRequestRejected {
		return
	}

	booking, err := s.outside.GetByID(row.OutsideBookingID)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load booking for notification")
		return
	}

	addOnName := ""
	if addOn, err := s.catalog.GetByID(row.AddOnID); err == nil {
		addOnName = addOn.Name
	}

	err = s.mail.SendAddOnDecision(
		booking.GuestEmail, booking.GuestName, addOnName,
		status == models.AddOnRequestConfirmed,
	)
	if err != nil {
		s.logger.WithError(err).WithField("to", booking.GuestEmail).Warn("failed to send decision email")
	}
}

// price resolves the hotel-effective unit price for a request item. An
// options-type add-on always bills a single unit, whatever quantity the
// client sent.
func (s *AddOnRequestService) price(booking *models.OutsideBooking, item *models.AddOnRequestItem) (float64, error) {
	addOn, err := s.catalog.GetByID(item.AddOnID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrAddOnNotFound
		}
		return 0, fmt.Errorf("failed to load add-on: %w", err)
	}

	if addOn.Type == models.AddOnTypeOptions {
		item.Quantity = 1
	}

	hotelID := int64(0)
	if booking.HotelID != nil {
		hotelID = *booking.HotelID
	}

	price, err := s.catalog.EffectivePrice(hotelID, item.AddOnID, item.OptionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrAddOnNotFound
		}
		return 0, fmt.Errorf("failed to price add-on: %w", err)
	}

	return price, nil
}
