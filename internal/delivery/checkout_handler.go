package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
)

type CheckoutHandler struct {
	useCase domain.CheckoutUseCase
	log     *logrus.Logger
}

func NewCheckoutHandler(uc domain.CheckoutUseCase, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{useCase: uc, log: logger}
}

func (h *CheckoutHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/checkout", h.Checkout)
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Checkout: failed to bind request body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.useCase.Checkout(c.Request.Context(), &req)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		if statusCode == http.StatusInternalServerError {
			h.log.Errorf("Checkout: unexpected failure: %v", err)
			ErrorResponse(c, statusCode, "Checkout failed, please try again")
			return
		}
		ErrorResponse(c, statusCode, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Order created successfully", gin.H{"order": order})
}
