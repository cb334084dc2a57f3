package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"tradesim/internal/domain"
)

// Response represents a standardized API response.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse sends a success response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// SuccessMessageResponse sends a success response with a message.
func SuccessMessageResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: message,
	})
}

// CreatedResponse sends a 201 Created response.
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// BadRequestResponse sends a 400 Bad Request response.
func BadRequestResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Response{
		Status:  "error",
		Message: message,
	})
}

// DomainErrorResponse maps a service error to its HTTP status code.
func DomainErrorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case domain.IsValidationError(err),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrPremiumRequired):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrPositionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrQuoteUnavailable):
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, Response{
		Status: "error",
		Error:  err.Error(),
	})
}
