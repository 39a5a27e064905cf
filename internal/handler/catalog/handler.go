package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/handler"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/service/catalog"
	"github.com/salonhq/salon-api/internal/service/pricing"
)

type Handler struct {
	service *catalog.Service
	pricing *pricing.Service
}

func NewHandler(service *catalog.Service, pricingSvc *pricing.Service) *Handler {
	return &Handler{service: service, pricing: pricingSvc}
}

// RegisterRoutes wires the public read endpoints. Price writes go through
// RegisterAdminRoutes so the router can put them behind authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:id/services", h.ListServices)
	r.GET("/services/:id/tiers", h.ListTiers)
	r.GET("/tiers/:id", h.GetTier)
	r.GET("/tiers/:id/prices", h.GetPriceHistory)
}

func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/tiers/:id/prices", h.AppendPrice)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(categories))
}

func (h *Handler) ListServices(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid category ID"))
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), categoryID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}

func (h *Handler) ListTiers(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
		return
	}

	tiers, err := h.service.ListVariants(c.Request.Context(), serviceID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tiers))
}

func (h *Handler) GetTier(c *gin.Context) {
	tierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid tier ID"))
		return
	}

	tier, err := h.service.GetVariant(c.Request.Context(), tierID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tier))
}

func (h *Handler) GetPriceHistory(c *gin.Context) {
	tierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid tier ID"))
		return
	}

	entries, err := h.pricing.History(c.Request.Context(), tierID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) AppendPrice(c *gin.Context) {
	tierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid tier ID"))
		return
	}

	var req model.AppendPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	entry, err := h.pricing.AppendPrice(c.Request.Context(), tierID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(entry))
}
