package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
)

// ProductHandler exposes the read-only catalog.
type ProductHandler struct {
	products domain.ProductRepository
	log      *logrus.Logger
}

func NewProductHandler(products domain.ProductRepository, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: logger}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/:id", h.GetByID)
	}
}

type productResponse struct {
	domain.Product
	Available int `json:"available"`
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.log.Errorf("Products: list failed: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{Product: p, Available: p.Available()})
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", out)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		if statusCode == http.StatusInternalServerError {
			h.log.Errorf("Products: get %d failed: %v", id, err)
			ErrorResponse(c, statusCode, "Failed to retrieve product")
			return
		}
		ErrorResponse(c, statusCode, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully",
		productResponse{Product: *product, Available: product.Available()})
}
