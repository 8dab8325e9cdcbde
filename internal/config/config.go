package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // "", "starttls", "tls"
	SkipVerifyTLS bool
	From          string
	FromName      string
}

type SSLCommerzConfig struct {
	StoreID       string
	StorePassword string
	APIURL        string
	Timeout       time.Duration
}

type Config struct {
	HTTPAddr     string
	DBDSN        string
	PublicDomain string // base URL the gateway redirects/calls back to
	TokenTTL     time.Duration

	MailDriver string // "smtp" or "mock"
	SMTP       SMTPConfig

	SSLCommerz SSLCommerzConfig
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:     envOr("HTTP_ADDR", ":8080"),
		DBDSN:        os.Getenv("DB_DSN"),
		PublicDomain: envOr("PUBLIC_DOMAIN", "http://127.0.0.1:8080"),
		TokenTTL:     envDurationOr("TOKEN_TTL", 720*time.Hour),
		MailDriver:   envOr("MAIL_DRIVER", "mock"),
		SMTP: SMTPConfig{
			Host:          os.Getenv("SMTP_HOST"),
			Port:          envOr("SMTP_PORT", "1025"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			TLSMode:       os.Getenv("SMTP_TLS_MODE"),
			SkipVerifyTLS: envBool("SMTP_SKIP_VERIFY_TLS"),
			From:          envOr("MAIL_FROM", "no-reply@local.test"),
			FromName:      envOr("MAIL_FROM_NAME", "IMEI Gate"),
		},
		SSLCommerz: SSLCommerzConfig{
			StoreID:       os.Getenv("SSL_STORE_ID"),
			StorePassword: os.Getenv("SSL_STORE_PASSWORD"),
			APIURL:        envOr("SSL_SANDBOX_URL", "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"),
			Timeout:       envDurationOr("SSL_TIMEOUT", 15*time.Second),
		},
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("config: DB_DSN is required")
	}
	if cfg.SSLCommerz.StoreID == "" || cfg.SSLCommerz.StorePassword == "" {
		return Config{}, fmt.Errorf("config: SSL_STORE_ID and SSL_STORE_PASSWORD are required")
	}
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string) bool {
	b, _ := strconv.ParseBool(os.Getenv(k))
	return b
}

func envDurationOr(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
