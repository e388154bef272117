package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vandien284/scenta-sub000/internal/domain"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// mapErrorToStatus translates the domain error taxonomy into HTTP statuses:
// 400 validation, 404 missing, 409 stock or consumed-code conflicts,
// 410 expired code, 423 locked code, 500 everything unexpected.
func mapErrorToStatus(err error) int {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, domain.ErrVerificationExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrVerificationLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrVerificationNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrVerificationConsumed),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrVerificationMismatch),
		errors.Is(err, domain.ErrVerificationUnverified),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrNoSelection),
		errors.Is(err, domain.ErrNoValidItems),
		errors.Is(err, domain.ErrUnsupportedPayment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
