package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/internal/services"
	"github.com/insiderbookings/backoffice/pkg/jwt"
	"github.com/insiderbookings/backoffice/pkg/mailer"
)

// OutsideBookingHandler handles reservations imported from external channels
type OutsideBookingHandler struct {
	outsideRepo *database.OutsideBookingRepository
	hotelRepo   *database.HotelRepository
	pricing     *services.PricingService
	mail        *mailer.Mailer
	logger      *logrus.Logger

	clientURL            string
	trustChannelPayments bool
}

// NewOutsideBookingHandler creates a new OutsideBookingHandler
func NewOutsideBookingHandler(
	outsideRepo *database.OutsideBookingRepository,
	hotelRepo *database.HotelRepository,
	pricing *services.PricingService,
	mail *mailer.Mailer,
	logger *logrus.Logger,
	clientURL string,
	trustChannelPayments bool,
) *OutsideBookingHandler {
	return &OutsideBookingHandler{
		outsideRepo:          outsideRepo,
		hotelRepo:            hotelRepo,
		pricing:              pricing,
		mail:                 mail,
		logger:               logger,
		clientURL:            clientURL,
		trustChannelPayments: trustChannelPayments,
	}
}

// Import registers a channel reservation. The stay arrives confirmed; whether
// it is recorded as paid depends on the channel-payment trust policy. The
// guest gets an invitation email to claim the stay.
// @Router /api/v1/outside-bookings [post]
func (h *OutsideBookingHandler) Import(c *gin.Context) {
	var req models.ImportReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.outsideRepo.GetByConfirmation(req.BookingConfirmation); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation already imported"})
		return
	} else if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check reservation"})
		return
	}

	checkIn, checkOut := req.Dates()

	paymentStatus := models.PaymentUnpaid
	if h.trustChannelPayments {
		paymentStatus = models.PaymentPaid
	}

	phone := req.PhoneNumber
	booking := &models.OutsideBooking{
		BookingConfirmation: req.BookingConfirmation,
		HotelID:             req.HotelID,
		RoomNumber:          req.RoomNumber,
		RoomType:            req.RoomType,
		CheckIn:             checkIn,
		CheckOut:            checkOut,
		GuestName:           req.FirstName,
		GuestLastName:       req.LastName,
		GuestEmail:          req.Email,
		GuestPhone:          &phone,
		Status:              models.BookingConfirmed,
		PaymentStatus:       paymentStatus,
		Outside:             true,
	}

	if err := h.outsideRepo.Create(booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import reservation"})
		return
	}

	link := fmt.Sprintf("%s/claim?confirmation=%s", h.clientURL, booking.BookingConfirmation)
	err := h.mail.SendReservationImported(
		booking.GuestEmail, booking.GuestName, booking.BookingConfirmation,
		booking.RoomType, req.ArrivalDate, link,
	)
	if err != nil {
		h.logger.WithError(err).WithField("to", booking.GuestEmail).Warn("failed to send claim email")
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// Lookup finds a reservation by confirmation and guest last name, the two
// things a guest knows without an account.
// @Router /api/v1/outside-bookings/lookup [get]
func (h *OutsideBookingHandler) Lookup(c *gin.Context) {
	confirmation := c.Query("confirmation")
	lastName := c.Query("lastName")
	if confirmation == "" || lastName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation and lastName are required"})
		return
	}

	booking, err := h.outsideRepo.GetByConfirmation(confirmation)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up reservation"})
		return
	}

	// Last name check keeps confirmations from being enumerable
	if !strings.EqualFold(booking.GuestLastName, lastName) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GetByID returns one outside booking. Guests only see their own.
func (h *OutsideBookingHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.outsideRepo.GetByID(id)
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

// UpgradeQuote prices moving the stay to a different room
// @Router /api/v1/outside-bookings/upgrade-quote [post]
func (h *OutsideBookingHandler) UpgradeQuote(c *gin.Context) {
	var req models.UpgradeQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.outsideRepo.GetByConfirmation(req.BookingConfirmation)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reservation"})
		return
	}

	newRoom, err := h.hotelRepo.GetRoom(req.NewRoomID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}

	quote, err := h.pricing.UpgradeQuote(booking, newRoom)
	if err != nil {
		switch err {
		case services.ErrRoomNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Current room not found"})
		case services.ErrRoomMismatch:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Room does not belong to this hotel"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to price upgrade"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}
