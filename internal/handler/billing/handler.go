package billing

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salonhq/salon-api/internal/handler"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/service/billing"
	"github.com/salonhq/salon-api/internal/service/coupon"
)

type Handler struct {
	service *billing.Service
	coupons *coupon.Service
}

func NewHandler(service *billing.Service, coupons *coupon.Service) *Handler {
	return &Handler{service: service, coupons: coupons}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bills := r.Group("/bills")
	{
		bills.POST("", h.CreateBill)
		bills.GET("", h.ListBills)
		bills.GET("/:id", h.GetBill)
	}
	r.GET("/coupons/:code", h.GetCoupon)
}

func (h *Handler) CreateBill(c *gin.Context) {
	var req model.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	summary, err := h.service.CreateBill(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(summary))
}

// ListBills returns the bills of one day, one summary per bill, newest
// first. The date query param defaults to today.
func (h *Handler) ListBills(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(model.DateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date format"))
			return
		}
		date = parsed
	}

	summaries, err := h.service.BillsForDate(c.Request.Context(), date)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(summaries))
}

func (h *Handler) GetBill(c *gin.Context) {
	bill, err := h.service.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bill))
}

func (h *Handler) GetCoupon(c *gin.Context) {
	found, err := h.coupons.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}
