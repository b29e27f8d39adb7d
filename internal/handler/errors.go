package handler

import (
	"errors"
	"net/http"

	"warehouse/internal/apperr"
	"warehouse/pkg/response"

	"github.com/gin-gonic/gin"
)

// fail maps a service error to the matching HTTP status. Unrecognized errors
// become 500 without leaking internals to the client.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrInvalidChangeType),
		errors.Is(err, apperr.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, apperr.ErrInsufficientStock):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
	}
}
