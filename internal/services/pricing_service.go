package services

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
)

var (
	// ErrRoomNotFound indicates the requested room does not exist
	ErrRoomNotFound = fmt.Errorf("room not found")

	// ErrRoomMismatch indicates the room does not belong to the hotel
	ErrRoomMismatch = fmt.Errorf("room does not belong to hotel")
)

// PricingService computes stay totals, discounts and upgrade deltas
type PricingService struct {
	hotels *database.HotelRepository
	codes  *CodeService
	logger *logrus.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService(hotels *database.HotelRepository, codes *CodeService, logger *logrus.Logger) *PricingService {
	return &PricingService{hotels: hotels, codes: codes, logger: logger}
}

// Nights counts billable nights between check-in and check-out. Partial
// days round up, and every stay bills at least one night.
func Nights(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	nights := int(math.Ceil(hours / 24))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// Quote prices a stay, applying the discount code if one is given. The
// code is only validated here, not consumed.
func (s *PricingService) Quote(req *models.QuoteRequest) (*models.Quote, error) {
	quote, err := s.baseQuote(req)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != "" {
		code, err := s.codes.ValidateDiscountCode(*req.Code)
		if err != nil {
			return nil, err
		}
		s.apply(quote, code)
	}

	return quote, nil
}

// QuoteWithCode prices a stay against an already validated code, or none.
// Callers that burn a use afterwards go through here so the code is read
// exactly once.
func (s *PricingService) QuoteWithCode(req *models.QuoteRequest, code *models.DiscountCode) (*models.Quote, error) {
	quote, err := s.baseQuote(req)
	if err != nil {
		return nil, err
	}

	if code != nil {
		s.apply(quote, code)
	}

	return quote, nil
}

func (s *PricingService) baseQuote(req *models.QuoteRequest) (*models.Quote, error) {
	room, err := s.hotels.GetRoom(req.RoomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room.HotelID != req.HotelID {
		return nil, ErrRoomMismatch
	}

	checkIn, checkOut := req.Dates()
	nights := Nights(checkIn, checkOut)

	quote := &models.Quote{
		Nights:      nights,
		Rooms:       req.Rooms,
		NightlyRate: room.Price,
		Base:        room.Price * float64(nights) * float64(req.Rooms),
	}
	quote.Total = quote.Base

	return quote, nil
}

// apply folds a discount code into the quote
func (s *PricingService) apply(quote *models.Quote, code *models.DiscountCode) {
	quote.CodeApplied = &code.Code

	if code.SpecialPrice != nil {
		quote.SpecialPrice = code.SpecialPrice
		quote.Discount = quote.Base - *code.SpecialPrice
		quote.Total = *code.SpecialPrice
		return
	}

	pct := *code.Percentage
	quote.Percentage = &pct
	quote.Discount = quote.Base * pct / 100
	quote.Total = quote.Base - quote.Discount
}

// UpgradeQuote prices moving an outside booking to a different room. The
// unit price is the nightly rate delta over the remaining stay; a negative
// delta is allowed for downgrades but logged.
func (s *PricingService) UpgradeQuote(booking *models.OutsideBooking, newRoom *models.Room) (*models.UpgradeQuote, error) {
	if booking.HotelID == nil || newRoom.HotelID != *booking.HotelID {
		return nil, ErrRoomMismatch
	}

	currentRoom, err := s.hotels.GetRoomByNumber(*booking.HotelID, booking.RoomNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load current room: %w", err)
	}

	nights := Nights(booking.CheckIn, booking.CheckOut)
	unit := (newRoom.Price - currentRoom.Price) * float64(nights)

	if unit < 0 {
		s.logger.WithFields(logrus.Fields{
			"booking":  booking.BookingConfirmation,
			"old_rate": currentRoom.Price,
			"new_rate": newRoom.Price,
		}).Warn("negative upgrade price")
	}

	return &models.UpgradeQuote{
		Nights:    nights,
		OldRate:   currentRoom.Price,
		NewRate:   newRoom.Price,
		UnitPrice: unit,
	}, nil
}
