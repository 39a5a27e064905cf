package booking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/config"
	"github.com/salonhq/salon-api/internal/handler"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/service/availability"
	"github.com/salonhq/salon-api/internal/service/booking"
)

type Handler struct {
	service      *booking.Service
	availability *availability.Service
	profiles     config.BookingConfig
}

func NewHandler(service *booking.Service, availabilitySvc *availability.Service, profiles config.BookingConfig) *Handler {
	return &Handler{
		service:      service,
		availability: availabilitySvc,
		profiles:     profiles,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("/availability", h.GetAvailability)
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", h.UpdateStatus)
		bookings.PUT("/:id", h.UpdateCustomer)
		bookings.DELETE("/:id", h.DeleteBooking)
		bookings.PUT("/:id/items/:itemId", h.UpdateItem)
		bookings.PATCH("/:id/items/:itemId/status", h.UpdateItemStatus)
		bookings.DELETE("/:id/items/:itemId", h.DeleteItem)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	var req model.UpdateBookingCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateCustomer(c.Request.Context(), id, req.CustomerName, req.Phone, req.Gender, req.Age)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) UpdateItem(c *gin.Context) {
	bookingID, itemID, ok := h.itemIDs(c)
	if !ok {
		return
	}

	var req model.UpdateBookingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateItem(c.Request.Context(), bookingID, itemID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) UpdateItemStatus(c *gin.Context) {
	bookingID, itemID, ok := h.itemIDs(c)
	if !ok {
		return
	}

	var req model.UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateItemStatus(c.Request.Context(), bookingID, itemID, req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteItem(c *gin.Context) {
	bookingID, itemID, ok := h.itemIDs(c)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), bookingID, itemID); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// GetAvailability returns the slot grid for a date and tier. Query params:
// date, tier_id, optional staff_id, optional type (scheduled|walk_in,
// default scheduled).
func (h *Handler) GetAvailability(c *gin.Context) {
	date, err := time.Parse(model.DateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date format"))
		return
	}

	tierID, err := uuid.Parse(c.Query("tier_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid tier ID"))
		return
	}

	q := availability.Query{
		Date:      date,
		VariantID: tierID,
		Profile:   h.profiles.Scheduled,
		Now:       time.Now(),
	}

	if id := c.Query("staff_id"); id != "" {
		staffID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff ID"))
			return
		}
		q.StaffID = &staffID
	}

	switch c.DefaultQuery("type", "scheduled") {
	case "scheduled":
	case "walk_in":
		q.Profile = h.profiles.WalkIn
	default:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("type must be scheduled or walk_in"))
		return
	}

	slots, err := h.availability.Slots(c.Request.Context(), q)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) itemIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return uuid.Nil, uuid.Nil, false
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid item ID"))
		return uuid.Nil, uuid.Nil, false
	}
	return bookingID, itemID, true
}
