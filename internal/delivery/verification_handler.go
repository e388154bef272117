package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vandien284/scenta-sub000/internal/domain"
)

type VerificationHandler struct {
	useCase domain.VerificationUseCase
	log     *logrus.Logger
}

func NewVerificationHandler(uc domain.VerificationUseCase, logger *logrus.Logger) *VerificationHandler {
	return &VerificationHandler{useCase: uc, log: logger}
}

func (h *VerificationHandler) RegisterRoutes(router gin.IRouter) {
	verification := router.Group("/verification")
	{
		verification.POST("", h.SendCode)
		verification.POST("/:id/check", h.CheckCode)
	}
}

func (h *VerificationHandler) SendCode(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.useCase.SendCode(c.Request.Context(), body.Email)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		if statusCode == http.StatusInternalServerError {
			h.log.Errorf("Verification: send code failed: %v", err)
			ErrorResponse(c, statusCode, "Failed to send verification code")
			return
		}
		ErrorResponse(c, statusCode, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Verification code sent", gin.H{
		"id":         record.ID,
		"expires_at": record.ExpiresAt,
	})
}

func (h *VerificationHandler) CheckCode(c *gin.Context) {
	id := c.Param("id")

	var body struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.useCase.CheckCode(c.Request.Context(), id, body.Code)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		if statusCode == http.StatusInternalServerError {
			h.log.Errorf("Verification: check failed for %s: %v", id, err)
			ErrorResponse(c, statusCode, "Failed to check verification code")
			return
		}
		ErrorResponse(c, statusCode, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Verification code accepted", gin.H{
		"id":          record.ID,
		"verified_at": record.VerifiedAt,
	})
}
