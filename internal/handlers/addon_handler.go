package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/internal/services"
)

// AddOnHandler handles the add-on catalog and the guest request workflow
type AddOnHandler struct {
	addOnRepo *database.AddOnRepository
	staffRepo *database.StaffRepository
	requests  *services.AddOnRequestService
}

// NewAddOnHandler creates a new AddOnHandler
func NewAddOnHandler(
	addOnRepo *database.AddOnRepository,
	staffRepo *database.StaffRepository,
	requests *services.AddOnRequestService,
) *AddOnHandler {
	return &AddOnHandler{addOnRepo: addOnRepo, staffRepo: staffRepo, requests: requests}
}

// ListCatalog returns the base add-on catalog
// @Router /api/v1/addons [get]
func (h *AddOnHandler) ListCatalog(c *gin.Context) {
	addOns, err := h.addOnRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list add-ons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"addOns": addOns, "count": len(addOns)})
}

// ListHotelCatalog returns the catalog a hotel actually offers, with its
// price and copy overrides applied
// @Router /api/v1/hotels/:id/addons [get]
func (h *AddOnHandler) ListHotelCatalog(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	catalog, err := h.addOnRepo.ListForHotel(hotelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list add-ons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"addOns": catalog, "count": len(catalog)})
}

// SetHotelAddOn configures a hotel's override for one add-on. Staff only.
func (h *AddOnHandler) SetHotelAddOn(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	if !h.staffWorksHere(c, hotelID) {
		return
	}

	var override models.HotelAddOn
	if err := c.ShouldBindJSON(&override); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if override.AddOnID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "addOnId is required"})
		return
	}
	override.HotelID = hotelID

	if err := h.addOnRepo.SetHotelAddOn(&override); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save override"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotelAddOn": override})
}

// RequestAddOn files a pending add-on request on an outside booking
// @Router /api/v1/outside-bookings/:id/addons [post]
func (h *AddOnHandler) RequestAddOn(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var item models.AddOnRequestItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := item.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.requests.Request(bookingID, &item)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": row})
}

// ReplaceAddOns swaps an outside booking's unpaid add-on set in one shot
// @Router /api/v1/outside-bookings/:id/addons [put]
func (h *AddOnHandler) ReplaceAddOns(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.ReplaceAddOnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.requests.Replace(bookingID, req.AddOns)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"addOns": rows, "count": len(rows)})
}

// ListBookingAddOns returns an outside booking's add-on rows
// @Router /api/v1/outside-bookings/:id/addons [get]
func (h *AddOnHandler) ListBookingAddOns(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	rows, err := h.requests.ListForBooking(bookingID)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"addOns": rows, "count": len(rows)})
}

// PendingRequests returns the staff review queue for a hotel
// @Router /api/v1/hotels/:id/addon-requests [get]
func (h *AddOnHandler) PendingRequests(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	if !h.staffWorksHere(c, hotelID) {
		return
	}

	rows, err := h.requests.PendingForHotel(hotelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": rows, "count": len(rows)})
}

// DecideRequest confirms, rejects or readies a pending request. A request
// that already left pending yields 409.
// @Router /api/v1/addon-requests/:id [patch]
func (h *AddOnHandler) DecideRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req models.UpdateAddOnStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.requests.Decide(requestID, req.Status)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": row})
}

func (h *AddOnHandler) writeRequestError(c *gin.Context, err error) {
	switch err {
	case services.ErrBookingNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case services.ErrAddOnNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Add-on not found"})
	case services.ErrRequestNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
	case services.ErrRequestAlreadyDecided:
		c.JSON(http.StatusConflict, gin.H{"error": "Request already processed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
	}
}

func (h *AddOnHandler) staffWorksHere(c *gin.Context, hotelID int64) bool {
	actor := middleware.MustGetActorContext(c)
	if actor.RoleName == models.RoleHotelManager {
		return true
	}

	ok, err := h.staffRepo.WorksAtHotel(actor.ID, hotelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check hotel access"})
		return false
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not work at this hotel"})
		return false
	}

	return true
}
