package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
)

type OrderHandler struct {
	useCase domain.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{useCase: uc, log: logger}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.GET("/lookup", h.Lookup)
		orders.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *OrderHandler) Lookup(c *gin.Context) {
	code := c.Query("code")
	email := c.Query("email")
	if code == "" || email == "" {
		ErrorResponse(c, http.StatusBadRequest, "Both 'code' and 'email' query parameters are required")
		return
	}

	order, err := h.useCase.Lookup(c.Request.Context(), code, email)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		if statusCode == http.StatusInternalServerError {
			h.log.Errorf("Orders: lookup failed for code %s: %v", code, err)
			ErrorResponse(c, statusCode, "Failed to retrieve order")
			return
		}
		ErrorResponse(c, statusCode, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", gin.H{"order": order})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var body struct {
		Status *domain.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if body.Status == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: 'status' field is required")
		return
	}

	order, err := h.useCase.UpdateStatus(c.Request.Context(), id, *body.Status)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		if statusCode == http.StatusInternalServerError {
			h.log.Errorf("Orders: status update failed for %s: %v", id, err)
			ErrorResponse(c, statusCode, "Failed to update order status")
			return
		}
		ErrorResponse(c, statusCode, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Order status updated successfully", gin.H{"order": order})
}
