package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/internal/services"
	"github.com/insiderbookings/backoffice/pkg/jwt"
)

// BookingHandler handles native bookings and the unified stay view
type BookingHandler struct {
	bookingRepo *database.BookingRepository
	outsideRepo *database.OutsideBookingRepository
	hotelRepo   *database.HotelRepository
	staffRepo   *database.StaffRepository
	codes       *services.CodeService
	pricing     *services.PricingService
	logger      *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	bookingRepo *database.BookingRepository,
	outsideRepo *database.OutsideBookingRepository,
	hotelRepo *database.HotelRepository,
	staffRepo *database.StaffRepository,
	codes *services.CodeService,
	pricing *services.PricingService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingRepo: bookingRepo,
		outsideRepo: outsideRepo,
		hotelRepo:   hotelRepo,
		staffRepo:   staffRepo,
		codes:       codes,
		pricing:     pricing,
		logger:      logger,
	}
}

// Quote prices a stay without creating anything
// @Router /api/v1/bookings/quote [get]
func (h *BookingHandler) Quote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.pricing.Quote(&req)
	if err != nil {
		h.writePricingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// CreateBooking creates a native booking, pricing it server side. A valid
// discount code is consumed and earns the issuing staff member commission.
// @Router /api/v1/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rooms <= 0 {
		req.Rooms = 1
	}

	quoteReq := &models.QuoteRequest{
		HotelID:  req.HotelID,
		RoomID:   req.RoomID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Rooms:    req.Rooms,
	}

	var code *models.DiscountCode
	if req.DiscountCode != "" {
		validated, err := h.codes.ValidateDiscountCode(req.DiscountCode)
		if err != nil {
			h.writeCodeError(c, err)
			return
		}
		code = validated
	}

	quote, err := h.pricing.QuoteWithCode(quoteReq, code)
	if err != nil {
		h.writePricingError(c, err)
		return
	}

	// The use is burned only after pricing succeeds, so a failed attempt
	// cannot waste a single-use code.
	if code != nil {
		if err := h.codes.Consume(code); err != nil {
			h.writeCodeError(c, err)
			return
		}
	}

	checkIn, checkOut := req.Dates()
	booking := &models.Booking{
		UserID:        req.UserID,
		HotelID:       req.HotelID,
		RoomID:        req.RoomID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Adults:        req.Adults,
		Children:      req.Children,
		Rooms:         req.Rooms,
		GuestName:     req.GuestName,
		GuestEmail:    req.GuestEmail,
		GuestPhone:    req.GuestPhone,
		Total:         quote.Total,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
	}
	if code != nil {
		booking.DiscountCodeID = &code.ID
	}

	if err := h.bookingRepo.Create(booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	if code != nil {
		h.recordCommission(booking, code)
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking, "quote": quote})
}

// recordCommission credits the issuing staff member with their role's cut
// of the discounted total. Best effort: the booking stands either way.
func (h *BookingHandler) recordCommission(booking *models.Booking, code *models.DiscountCode) {
	staff, err := h.staffRepo.GetByID(code.StaffID)
	if err != nil {
		h.logger.WithError(err).Warn("failed to load staff for commission")
		return
	}
	if staff.CommissionPct <= 0 {
		return
	}

	commission := &models.Commission{
		BookingID: booking.ID,
		StaffID:   staff.ID,
		Amount:    booking.Total * staff.CommissionPct / 100,
	}
	if err := h.bookingRepo.CreateCommission(commission); err != nil {
		h.logger.WithError(err).Warn("failed to record commission")
	}
}

// GetBooking returns one booking. Guests only see their own.
// @Router /api/v1/bookings/:id [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.bookingRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load booking"})
		return
	}

	actor := middleware.MustGetActorContext(c)
	if actor.Type == jwt.ActorUser && (booking.UserID == nil || *booking.UserID != actor.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// CancelBooking cancels a booking. Guests cancel their own, staff any.
// @Router /api/v1/bookings/:id/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.bookingRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load booking"})
		return
	}

	actor := middleware.MustGetActorContext(c)
	if actor.Type == jwt.ActorUser && (booking.UserID == nil || *booking.UserID != actor.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
		return
	}

	if time.Until(booking.CheckIn) < 24*time.Hour {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot cancel booking less than 24 hours before check-in"})
		return
	}

	if err := h.bookingRepo.Cancel(id); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusConflict, gin.H{"error": "Booking already cancelled"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		return
	}

	paymentStatus := booking.PaymentStatus
	if paymentStatus == models.PaymentPaid {
		paymentStatus = models.PaymentRefunded
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "paymentStatus": paymentStatus})
}

// MyStays returns the authenticated user's native and outside bookings as
// one list, newest first within each source.
// @Router /api/v1/bookings/me [get]
func (h *BookingHandler) MyStays(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	native, err := h.bookingRepo.GetByUserID(actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}

	outside, err := h.outsideRepo.GetByUserID(actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load outside bookings"})
		return
	}

	stays := make([]models.Stay, 0, len(native)+len(outside))
	for i := range native {
		stays = append(stays, h.nativeStay(&native[i]))
	}
	for i := range outside {
		stays = append(stays, h.outsideStay(&outside[i]))
	}

	c.JSON(http.StatusOK, gin.H{"stays": stays, "count": len(stays)})
}

// HotelBookings returns a hotel's stays for staff panels
// @Router /api/v1/hotels/:id/bookings [get]
func (h *BookingHandler) HotelBookings(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	actor := middleware.MustGetActorContext(c)
	if actor.RoleName != models.RoleHotelManager {
		ok, err := h.staffRepo.WorksAtHotel(actor.ID, hotelID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check hotel access"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not work at this hotel"})
			return
		}
	}

	native, err := h.bookingRepo.GetByHotelID(hotelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}

	outside, err := h.outsideRepo.GetByHotelID(hotelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load outside bookings"})
		return
	}

	stays := make([]models.Stay, 0, len(native)+len(outside))
	for i := range native {
		stays = append(stays, h.nativeStay(&native[i]))
	}
	for i := range outside {
		stays = append(stays, h.outsideStay(&outside[i]))
	}

	c.JSON(http.StatusOK, gin.H{"stays": stays, "count": len(stays)})
}

// StaffBookings returns the bookings sold with the authenticated staff
// member's discount codes
// @Router /api/v1/bookings/staff/me [get]
func (h *BookingHandler) StaffBookings(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	bookings, err := h.bookingRepo.GetByStaffCodes(actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// MyCommissions returns the authenticated staff member's earnings
func (h *BookingHandler) MyCommissions(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	commissions, err := h.bookingRepo.ListCommissions(actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load commissions"})
		return
	}

	var total float64
	for i := range commissions {
		total += commissions[i].Amount
	}

	c.JSON(http.StatusOK, gin.H{"commissions": commissions, "total": total})
}

func (h *BookingHandler) nativeStay(b *models.Booking) models.Stay {
	guests := b.Adults + b.Children
	stay := models.Stay{
		ID:            b.ID,
		Source:        models.StayInsider,
		HotelID:       &b.HotelID,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Nights:        services.Nights(b.CheckIn, b.CheckOut),
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Guests:        &guests,
		Total:         b.Total,
	}

	if hotel, err := h.hotelRepo.GetByID(b.HotelID); err == nil {
		stay.HotelName = &hotel.Name
		stay.Image = hotel.Image
		stay.Rating = &hotel.Rating
		if hotel.Location != nil {
			stay.Location = *hotel.Location
		}
	}

	return stay
}

func (h *BookingHandler) outsideStay(b *models.OutsideBooking) models.Stay {
	stay := models.Stay{
		ID:                  b.ID,
		Source:              models.StayOutside,
		BookingConfirmation: b.BookingConfirmation,
		HotelID:             b.HotelID,
		CheckIn:             b.CheckIn,
		CheckOut:            b.CheckOut,
		Nights:              services.Nights(b.CheckIn, b.CheckOut),
		Status:              b.Status,
		PaymentStatus:       b.PaymentStatus,
		RoomType:            &b.RoomType,
		RoomNumber:          &b.RoomNumber,
		Outside:             true,
	}

	if b.HotelID != nil {
		if hotel, err := h.hotelRepo.GetByID(*b.HotelID); err == nil {
			stay.HotelName = &hotel.Name
			stay.Image = hotel.Image
			stay.Rating = &hotel.Rating
			if hotel.Location != nil {
				stay.Location = *hotel.Location
			}
		}
	}

	return stay
}

// writePricingError maps pricing/code errors to client responses
func (h *BookingHandler) writePricingError(c *gin.Context, err error) {
	switch err {
	case services.ErrRoomNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
	case services.ErrRoomMismatch:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room does not belong to this hotel"})
	case services.ErrCodeNotFound, services.ErrCodeExpired, services.ErrCodeExhausted:
		h.writeCodeError(c, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to price stay"})
	}
}

func (h *BookingHandler) writeCodeError(c *gin.Context, err error) {
	switch err {
	case services.ErrCodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Code not found"})
	case services.ErrCodeExpired:
		c.JSON(http.StatusGone, gin.H{"error": "Code has expired"})
	case services.ErrCodeExhausted:
		c.JSON(http.StatusConflict, gin.H{"error": "Code has no uses left"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate code"})
	}
}
