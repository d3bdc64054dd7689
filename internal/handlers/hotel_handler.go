package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
)

// HotelHandler handles hotel and room operations
type HotelHandler struct {
	hotelRepo *database.HotelRepository
	staffRepo *database.StaffRepository
}

// NewHotelHandler creates a new HotelHandler
func NewHotelHandler(hotelRepo *database.HotelRepository, staffRepo *database.StaffRepository) *HotelHandler {
	return &HotelHandler{hotelRepo: hotelRepo, staffRepo: staffRepo}
}

// ListHotels returns hotels matching the query filters
// @Router /api/v1/hotels [get]
func (h *HotelHandler) ListHotels(c *gin.Context) {
	filter := models.HotelFilter{
		Location: c.Query("location"),
		Category: c.Query("category"),
	}
	if v := c.Query("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minRating must be a number"})
			return
		}
		filter.MinRating = rating
	}

	hotels, err := h.hotelRepo.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list hotels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotels": hotels, "count": len(hotels)})
}

// GetHotel returns one hotel with its rooms
// @Router /api/v1/hotels/:id [get]
func (h *HotelHandler) GetHotel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	hotel, err := h.hotelRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load hotel"})
		return
	}

	rooms, err := h.hotelRepo.ListRooms(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotel": hotel, "rooms": rooms})
}

// CreateHotel creates a hotel. Manager only.
func (h *HotelHandler) CreateHotel(c *gin.Context) {
	var hotel models.Hotel
	if err := c.ShouldBindJSON(&hotel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if hotel.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.hotelRepo.Create(&hotel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hotel"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"hotel": hotel})
}

// UpdateHotel replaces a hotel's fields. Manager only.
func (h *HotelHandler) UpdateHotel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	var hotel models.Hotel
	if err := c.ShouldBindJSON(&hotel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	hotel.ID = id

	if err := h.hotelRepo.Update(&hotel); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update hotel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotel": hotel})
}

// DeleteHotel removes a hotel. Manager only.
func (h *HotelHandler) DeleteHotel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	if err := h.hotelRepo.Delete(id); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete hotel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hotel deleted"})
}

// CreateRoom adds a room to a hotel. Staff only, and the staff member must
// work at the hotel.
func (h *HotelHandler) CreateRoom(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	if !h.staffWorksHere(c, hotelID) {
		return
	}

	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if room.RoomNumber <= 0 || room.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomNumber and a positive price are required"})
		return
	}
	room.HotelID = hotelID

	if err := h.hotelRepo.CreateRoom(&room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// UpdateRoom replaces a room's fields. Staff only.
func (h *HotelHandler) UpdateRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("roomId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	existing, err := h.hotelRepo.GetRoom(roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}

	if !h.staffWorksHere(c, existing.HotelID) {
		return
	}

	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	room.ID = roomID
	room.HotelID = existing.HotelID

	if err := h.hotelRepo.UpdateRoom(&room); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

// DeleteRoom soft-deletes a room. Staff only.
func (h *HotelHandler) DeleteRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("roomId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	existing, err := h.hotelRepo.GetRoom(roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}

	if !h.staffWorksHere(c, existing.HotelID) {
		return
	}

	if err := h.hotelRepo.SoftDeleteRoom(roomID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}

// MyHotels returns the hotels the authenticated staff member works at
func (h *HotelHandler) MyHotels(c *gin.Context) {
	actor := middleware.MustGetActorContext(c)

	hotels, err := h.staffRepo.ListHotels(actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load hotels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotels": hotels, "count": len(hotels)})
}

// staffWorksHere enforces that the authenticated staff member is attached
// to the hotel, writing the error response itself on failure
func (h *HotelHandler) staffWorksHere(c *gin.Context, hotelID int64) bool {
	actor := middleware.MustGetActorContext(c)

	// Managers operate across hotels
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
