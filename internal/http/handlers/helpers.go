package handlers

import (
	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/http/validation"
	"imeigate.com/app/internal/shared/apperr"
)

// bindJSON binds and validates the request body, translating failures
// into a 400 with per-field messages.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		fields := validation.FromBindError(err, dst)
		return apperr.InvalidErr("Request validation failed.", fields)
	}
	return nil
}
