package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/http/middleware"
	"imeigate.com/app/internal/modules/accounts"
	"imeigate.com/app/internal/shared/apperr"
)

type AuthHandler struct {
	Accounts *accounts.Service
	Verify   *accounts.VerifyService
}

func NewAuthHandler(svc *accounts.Service, verify *accounts.VerifyService) *AuthHandler {
	return &AuthHandler{Accounts: svc, Verify: verify}
}

type registerInput struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8,max=128"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	u, token, err := h.Accounts.Register(c.Request.Context(), accounts.RegisterInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Address:   in.Address,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrEmailTaken) {
			middleware.Fail(c, apperr.ConflictErr(err.Error()))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userJSON(u),
	})
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	u, token, err := h.Accounts.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			middleware.Fail(c, apperr.UnauthorizedErr(err.Error()))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userJSON(u),
	})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := middleware.CurrentRawToken(c)
	if raw != "" {
		if err := h.Accounts.Logout(c.Request.Context(), raw); err != nil {
			middleware.Fail(c, apperr.Wrap(err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"detail": "logged out"})
}

// GET /api/v1/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	full, err := h.Accounts.Profile(c.Request.Context(), u.ID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(full)})
}

type updateProfileInput struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
	ImageURL  *string `json:"image_url" binding:"omitempty,max=500"`
}

// PATCH /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in updateProfileInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	full, err := h.Accounts.UpdateProfile(c.Request.Context(), u.ID, accounts.UpdateProfileInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Address:   in.Address,
		ImageURL:  in.ImageURL,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(full)})
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in changePasswordInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	err := h.Accounts.ChangePassword(c.Request.Context(), u.ID,
		in.CurrentPassword, in.NewPassword, middleware.CurrentRawToken(c))
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			middleware.Fail(c, apperr.UnauthorizedErr("current password is incorrect"))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "password changed"})
}

// POST /api/v1/auth/verify-email/send
func (h *AuthHandler) SendVerification(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	full, err := h.Accounts.Profile(c.Request.Context(), u.ID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	if err := h.Verify.Start(c.Request.Context(), full); err != nil {
		switch {
		case errors.Is(err, accounts.ErrAlreadyVerified):
			middleware.Fail(c, apperr.ConflictErr(err.Error()))
		case errors.Is(err, accounts.ErrTooManyRequests):
			middleware.Fail(c, apperr.ConflictErr(err.Error()))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "verification code sent"})
}

type confirmVerificationInput struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// POST /api/v1/auth/verify-email/confirm
func (h *AuthHandler) ConfirmVerification(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)

	var in confirmVerificationInput
	if err := bindJSON(c, &in); err != nil {
		middleware.Fail(c, err)
		return
	}

	if err := h.Verify.Confirm(c.Request.Context(), u.ID, in.Code); err != nil {
		switch {
		case errors.Is(err, accounts.ErrCodeInvalid),
			errors.Is(err, accounts.ErrCodeExpired),
			errors.Is(err, accounts.ErrTooManyAttempts):
			middleware.Fail(c, apperr.InvalidErr(err.Error(), nil))
		default:
			middleware.Fail(c, apperr.Wrap(err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "email verified"})
}

func userJSON(u *accounts.User) gin.H {
	return gin.H{
		"id":                u.ID,
		"email":             u.Email,
		"first_name":        u.FirstName,
		"last_name":         u.LastName,
		"phone":             u.Phone,
		"address":           u.Address,
		"image_url":         u.ImageURL,
		"role":              u.Role,
		"email_verified_at": formatTimePtr(u.EmailVerifiedAt),
		"created_at":        u.CreatedAt.Format(time.RFC3339),
	}
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
