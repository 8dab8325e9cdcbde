package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"imeigate.com/app/internal/config"
	apphttp "imeigate.com/app/internal/http"
	"imeigate.com/app/internal/http/handlers"
	"imeigate.com/app/internal/mailer"
	"imeigate.com/app/internal/modules/accounts"
	"imeigate.com/app/internal/modules/devices"
	"imeigate.com/app/internal/modules/imeis"
	"imeigate.com/app/internal/modules/payments"
	"imeigate.com/app/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx := context.Background()

	files, err := storage.FromEnv(ctx)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	logger.Info("storage ready", "driver", files.Driver)

	var mail mailer.Service
	if cfg.MailDriver == "smtp" {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		mail = &mailer.Mock{}
	}

	accountsSvc := accounts.NewService(db, cfg.TokenTTL)
	verifySvc := accounts.NewVerifyService(db, mail, cfg.SMTP.From, cfg.SMTP.FromName)
	devicesSvc := devices.NewService(db, files.Storage)
	imeisSvc := imeis.NewService(db)

	provider := payments.NewSSLCommerz(cfg.SSLCommerz)
	store := payments.NewGormStore(db)
	paymentsSvc := payments.NewService(store, provider, cfg.PublicDomain)
	webhookSvc := payments.NewWebhookService(store)
	webhookSvc.SetLogger(logger)

	r := apphttp.NewRouter(apphttp.RouterDeps{
		Logger:   logger,
		Resolver: accountsSvc,
		Health:   handlers.NewHealthHandler(db),
		Auth:     handlers.NewAuthHandler(accountsSvc, verifySvc),
		Devices:  handlers.NewDevicesHandler(devicesSvc),
		Payments: handlers.NewPaymentsHandler(paymentsSvc, paymentsSvc),
		Webhooks: handlers.NewWebhookHandler(logger, provider, webhookSvc),
		IMEIs:    handlers.NewIMEIsHandler(imeisSvc),
	})

	logger.Info("listening", "addr", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
