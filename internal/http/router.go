package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"imeigate.com/app/internal/http/handlers"
	"imeigate.com/app/internal/http/middleware"
)

type RouterDeps struct {
	Logger *slog.Logger

	Resolver middleware.TokenResolver

	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Devices  *handlers.DevicesHandler
	Payments *handlers.PaymentsHandler
	Webhooks *handlers.WebhookHandler
	IMEIs    *handlers.IMEIsHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))
	r.Use(middleware.TokenAuth(d.Resolver))

	r.GET("/healthz", d.Health.Check)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)

		authed := auth.Group("", middleware.RequireAuth())
		authed.POST("/logout", d.Auth.Logout)
		authed.GET("/profile", d.Auth.Profile)
		authed.PATCH("/profile", d.Auth.UpdateProfile)
		authed.POST("/change-password", d.Auth.ChangePassword)
		authed.POST("/verify-email/send", d.Auth.SendVerification)
		authed.POST("/verify-email/confirm", d.Auth.ConfirmVerification)
	}

	devices := v1.Group("/devices", middleware.RequireAuth())
	{
		devices.GET("", d.Devices.List)
		devices.POST("", d.Devices.Create)
		devices.GET("/:id", d.Devices.Get)
		devices.PATCH("/:id", d.Devices.Update)
		devices.DELETE("/:id", d.Devices.Delete)
		devices.POST("/:id/image", d.Devices.UploadImage)
	}

	pay := v1.Group("/payments")
	{
		pay.POST("", middleware.RequireAuth(), d.Payments.Create)
		pay.GET("", middleware.RequireAuth(), d.Payments.List)

		// gateway-facing endpoints, reached without a bearer token
		pay.POST("/webhook", d.Webhooks.Handle)
		pay.GET("/success", d.Payments.Success)
		pay.POST("/success", d.Payments.Success)
		pay.GET("/fail", d.Payments.Fail)
		pay.POST("/fail", d.Payments.Fail)
		pay.GET("/cancel", d.Payments.Cancel)
		pay.POST("/cancel", d.Payments.Cancel)
	}

	imeis := v1.Group("/imeis", middleware.RequireStaff())
	{
		imeis.GET("", d.IMEIs.List)
		imeis.POST("", d.IMEIs.Create)
		// removal is destructive; staff can add but only admins may delete
		imeis.DELETE("/:id", middleware.RequireAdmin(), d.IMEIs.Delete)
	}

	return r
}
