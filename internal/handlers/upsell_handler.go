package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/internal/services"
)

// UpsellHandler handles single-use upsell codes
type UpsellHandler struct {
	upsellRepo *database.UpsellCodeRepository
	upsells    *services.UpsellService
}

// NewUpsellHandler creates a new UpsellHandler
func NewUpsellHandler(upsellRepo *database.UpsellCodeRepository, upsells *services.UpsellService) *UpsellHandler {
	return &UpsellHandler{upsellRepo: upsellRepo, upsells: upsells}
}

// CreateCode issues an upsell code for a front-desk sale. Staff only.
// @Router /api/v1/upsell-codes [post]
func (h *UpsellHandler) CreateCode(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	var req models.CreateUpsellCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.upsells.Create(actor.ID, &req)
	if err != nil {
		switch err {
		case services.ErrBookingNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case services.ErrCodeSpaceExhausted:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to generate a unique code, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create code"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"code": code})
}

// MyCodes lists the authenticated staff member's upsell codes
// @Router /api/v1/upsell-codes [get]
func (h *UpsellHandler) MyCodes(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	codes, err := h.upsellRepo.ListByStaff(actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"codes": codes, "count": len(codes)})
}

// GetCode returns one upsell code so a guest client can show what it buys
// @Router /api/v1/upsell-codes/:id [get]
func (h *UpsellHandler) GetCode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code ID"})
		return
	}

	code, err := h.upsellRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

// RedeemCode burns a code against the guest's booking and books the add-on
// as paid
// @Router /api/v1/upsell-codes/redeem [post]
func (h *UpsellHandler) RedeemCode(c *gin.Context) {
	var req models.RedeemUpsellCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.upsells.Redeem(&req)
	if err != nil {
		switch err {
		case services.ErrCodeNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Code not found"})
		case services.ErrCodeExpired:
			c.JSON(http.StatusGone, gin.H{"error": "Code has expired"})
		case services.ErrUpsellCodeUsed:
			c.JSON(http.StatusConflict, gin.H{"error": "Code already used"})
		case services.ErrUpsellWrongBooking:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code does not match this booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem code"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"addOn": row})
}
