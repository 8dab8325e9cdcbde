package middleware

import (
	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/shared/apperr"
)

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			Fail(c, apperr.UnauthorizedErr("authentication required"))
			return
		}
		c.Next()
	}
}

// RequireStaff admits staff and admin accounts.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			Fail(c, apperr.UnauthorizedErr("authentication required"))
			return
		}
		if !u.IsStaff() {
			Fail(c, apperr.ForbiddenErr("staff access required"))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			Fail(c, apperr.UnauthorizedErr("authentication required"))
			return
		}
		if u.Role != "admin" {
			Fail(c, apperr.ForbiddenErr("admin access required"))
			return
		}
		c.Next()
	}
}
