package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
)

type CartHandler struct {
	useCase domain.CartUseCase
	log     *logrus.Logger
}

func NewCartHandler(uc domain.CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{useCase: uc, log: logger}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	carts := router.Group("/cart/:identifier")
	{
		carts.GET("", h.GetCart)
		carts.POST("/items", h.AddItem)
		carts.PATCH("/items/:productId", h.UpdateItemQuantity)
		carts.DELETE("/items/:productId", h.RemoveItem)
		carts.DELETE("", h.Clear)
	}
}

func (h *CartHandler) respondWithError(c *gin.Context, context string, err error) {
	statusCode := mapErrorToStatus(err)
	if statusCode == http.StatusInternalServerError {
		h.log.Errorf("Cart: %s failed: %v", context, err)
		ErrorResponse(c, statusCode, "Cart operation failed")
		return
	}
	ErrorResponse(c, statusCode, err.Error())
}

func parseProductID(c *gin.Context) (int64, bool) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID")
		return 0, false
	}
	return productID, true
}

func (h *CartHandler) GetCart(c *gin.Context) {
	identifier := c.Param("identifier")

	snapshot, err := h.useCase.GetCart(c.Request.Context(), identifier)
	if err != nil {
		h.respondWithError(c, "get", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", snapshot)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	identifier := c.Param("identifier")

	var body struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	snapshot, err := h.useCase.AddItem(c.Request.Context(), identifier, body.ProductID, body.Quantity)
	if err != nil {
		h.respondWithError(c, "add item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item added to cart", snapshot)
}

func (h *CartHandler) UpdateItemQuantity(c *gin.Context) {
	identifier := c.Param("identifier")
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if body.Quantity == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: 'quantity' field is required")
		return
	}

	snapshot, err := h.useCase.UpdateItemQuantity(c.Request.Context(), identifier, productID, *body.Quantity)
	if err != nil {
		h.respondWithError(c, "update quantity", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart item updated", snapshot)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	identifier := c.Param("identifier")
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	snapshot, err := h.useCase.RemoveItem(c.Request.Context(), identifier, productID)
	if err != nil {
		h.respondWithError(c, "remove item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed from cart", snapshot)
}

func (h *CartHandler) Clear(c *gin.Context) {
	identifier := c.Param("identifier")

	if err := h.useCase.Clear(c.Request.Context(), identifier); err != nil {
		h.respondWithError(c, "clear", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart cleared", nil)
}
