package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/modules/accounts"
)

const (
	ctxKeyUser     = "auth_user"
	ctxKeyRawToken = "auth_raw_token"
)

// TokenResolver maps a raw bearer token to its account.
type TokenResolver interface {
	ResolveToken(ctx context.Context, rawToken string) (*accounts.User, error)
}

// ContextUser is the authenticated account as seen by handlers.
type ContextUser struct {
	ID              string
	Email           string
	Role            string
	FirstName       *string
	LastName        *string
	Phone           *string
	Address         *string
	EmailVerifiedAt *time.Time
}

func (u ContextUser) IsStaff() bool {
	return u.Role == accounts.RoleStaff || u.Role == accounts.RoleAdmin
}

// TokenAuth resolves "Authorization: Bearer <token>" into a ContextUser.
// A missing or bad token is not an error here; RequireAuth enforces it
// on the routes that need it.
func TokenAuth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.Next()
			return
		}

		u, err := resolver.ResolveToken(c.Request.Context(), raw)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ctxKeyUser, ContextUser{
			ID:              u.ID,
			Email:           u.Email,
			Role:            u.Role,
			FirstName:       u.FirstName,
			LastName:        u.LastName,
			Phone:           u.Phone,
			Address:         u.Address,
			EmailVerifiedAt: u.EmailVerifiedAt,
		})
		c.Set(ctxKeyRawToken, raw)

		c.Next()
	}
}

// CurrentUser retrieves the authenticated user from the gin context.
func CurrentUser(c *gin.Context) (ContextUser, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return ContextUser{}, false
	}
	u, ok := v.(ContextUser)
	if !ok || u.ID == "" {
		return ContextUser{}, false
	}
	return u, true
}

// CurrentRawToken returns the bearer token the request authenticated with.
func CurrentRawToken(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyRawToken); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
