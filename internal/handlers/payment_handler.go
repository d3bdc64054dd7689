package handlers

import (
	"database/sql"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/internal/services"
	"github.com/insiderbookings/backoffice/pkg/jwt"
)

// PaymentHandler bridges bookings and add-ons to hosted checkout
type PaymentHandler struct {
	payments    *services.PaymentService
	bookingRepo *database.BookingRepository
	pivotRepo   *database.BookingAddOnRepository
	upsellRepo  *database.UpsellCodeRepository
	logger      *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	payments *services.PaymentService,
	bookingRepo *database.BookingRepository,
	pivotRepo *database.BookingAddOnRepository,
	upsellRepo *database.UpsellCodeRepository,
	logger *logrus.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		payments:    payments,
		bookingRepo: bookingRepo,
		pivotRepo:   pivotRepo,
		upsellRepo:  upsellRepo,
		logger:      logger,
	}
}

// CreateBookingCheckout opens a checkout session for a booking total
// @Router /api/v1/payments/checkout [post]
func (h *PaymentHandler) CreateBookingCheckout(c *gin.Context) {
	var req models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingRepo.GetByID(req.BookingID)
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

	if booking.PaymentStatus == models.PaymentPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking already paid"})
		return
	}

	session, err := h.payments.CreateBookingCheckout(booking, req.SuccessURL, req.CancelURL)
	if err != nil {
		if err == services.ErrNothingToPay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to pay"})
			return
		}
		h.logger.WithError(err).Error("failed to create checkout session")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// CreateAddOnCheckout opens a session for a confirmed add-on request
// @Router /api/v1/payments/addon-checkout [post]
func (h *PaymentHandler) CreateAddOnCheckout(c *gin.Context) {
	var req models.CreateAddOnCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.pivotRepo.GetOutsideByID(req.OutsideAddOnID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Add-on request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load add-on request"})
		return
	}

	// Only staff-confirmed requests are payable
	if row.Status != models.AddOnRequestConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "Add-on request is not confirmed"})
		return
	}
	if row.PaymentStatus == models.PaymentPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Add-on already paid"})
		return
	}

	session, err := h.payments.CreateAddOnCheckout(row, req.SuccessURL, req.CancelURL)
	if err != nil {
		if err == services.ErrNothingToPay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to pay"})
			return
		}
		h.logger.WithError(err).Error("failed to create checkout session")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// CreateUpsellCheckout opens a session so the guest can pay a pending
// upsell code online
// @Router /api/v1/payments/upsell-checkout [post]
func (h *PaymentHandler) CreateUpsellCheckout(c *gin.Context) {
	var req models.CreateUpsellCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.upsellRepo.GetByID(req.UpsellCodeID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Upsell code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load upsell code"})
		return
	}

	if code.Status != models.UpsellPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Code already used"})
		return
	}
	if time.Now().After(code.ExpiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "Code has expired"})
		return
	}

	session, err := h.payments.CreateUpsellCheckout(code, req.SuccessURL, req.CancelURL)
	if err != nil {
		if err == services.ErrNothingToPay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to pay"})
			return
		}
		h.logger.WithError(err).Error("failed to create checkout session")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// ProcessApplePay charges a wallet token against a booking total
// @Router /api/v1/payments/apple-pay [post]
func (h *PaymentHandler) ProcessApplePay(c *gin.Context) {
	var req models.ProcessApplePayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingRepo.GetByID(req.BookingID)
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

	if booking.PaymentStatus == models.PaymentPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Booking already paid"})
		return
	}

	result, err := h.payments.ProcessApplePay(booking, req.Token)
	if err != nil {
		if err == services.ErrNothingToPay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to pay"})
			return
		}
		h.logger.WithError(err).Error("failed to process wallet payment")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": result})
}

// Webhook receives provider events. Signature failures are 400, replays and
// unknown event types are acknowledged with 200.
// @Router /api/v1/payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.payments.HandleWebhook(payload, signature); err != nil {
		if err == services.ErrBadSignature {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		h.logger.WithError(err).Error("failed to process webhook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
