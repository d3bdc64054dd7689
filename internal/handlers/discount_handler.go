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

// DiscountHandler handles discount code issuance and validation
type DiscountHandler struct {
	discountRepo *database.DiscountCodeRepository
	staffRepo    *database.StaffRepository
	codes        *services.CodeService
}

// NewDiscountHandler creates a new DiscountHandler
func NewDiscountHandler(
	discountRepo *database.DiscountCodeRepository,
	staffRepo *database.StaffRepository,
	codes *services.CodeService,
) *DiscountHandler {
	return &DiscountHandler{discountRepo: discountRepo, staffRepo: staffRepo, codes: codes}
}

// CreateCode issues a discount code for the authenticated staff member.
// Flat-price codes are reserved for hotel managers.
// @Router /api/v1/discount-codes [post]
func (h *DiscountHandler) CreateCode(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	var req models.CreateDiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SpecialPrice != nil && actor.RoleName != models.RoleHotelManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient privileges"})
		return
	}

	code, err := h.codes.CreateDiscountCode(actor.ID, &req)
	if err != nil {
		if err == services.ErrCodeSpaceExhausted {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to generate a unique code, try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create code"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"code": code})
}

// MyCodes lists the authenticated staff member's codes
// @Router /api/v1/discount-codes [get]
func (h *DiscountHandler) MyCodes(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	codes, err := h.discountRepo.ListByStaff(actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"codes": codes, "count": len(codes)})
}

// ValidateCode checks a code for a guest before checkout. Distinct statuses
// for unknown, expired and exhausted codes.
// @Router /api/v1/discount-codes/validate [post]
func (h *DiscountHandler) ValidateCode(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	code, err := h.codes.ValidateDiscountCode(req.Code)
	if err != nil {
		switch err {
		case services.ErrCodeNotFound:
			c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "Code not found"})
		case services.ErrCodeExpired:
			c.JSON(http.StatusGone, gin.H{"valid": false, "error": "Code has expired"})
		case services.ErrCodeExhausted:
			c.JSON(http.StatusConflict, gin.H{"valid": false, "error": "Code has no uses left"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":        true,
		"code":         code.Code,
		"percentage":   code.Percentage,
		"specialPrice": code.SpecialPrice,
		"staffName":    code.StaffName,
	})
}

// ValidateStaffCode resolves a front-desk staff code for a guest client,
// returning the discount it grants and where it is good.
// @Router /api/v1/discounts/validate [post]
func (h *DiscountHandler) ValidateStaffCode(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	info, err := h.staffRepo.ResolveStaffCode(req.Code)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "Invalid discount code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"percentage":  info.Percentage,
		"validatedBy": info.StaffName,
		"hotel": gin.H{
			"id":      info.HotelID,
			"name":    info.HotelName,
			"image":   info.HotelImage,
			"city":    info.City,
			"country": info.Country,
		},
	})
}

// DeactivateCode turns one of the staff member's codes off
// @Router /api/v1/discount-codes/:id [delete]
func (h *DiscountHandler) DeactivateCode(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code ID"})
		return
	}

	if err := h.discountRepo.Deactivate(id, actor.ID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code deactivated"})
}
