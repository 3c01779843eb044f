package config

import (
	"fmt"
	"os"
	"strconv"

	"auth_service/internal/mailer"
)

// AppConfig holds non-database application settings
type AppConfig struct {
	Port           string
	EnvMode        string
	JWTSecret      string
	JWTExpDays     int64
	FrontendOrigin string
	SMTP           mailer.SMTPConfig
}

// Production reports whether the service runs in production mode.
// Controls the Secure cookie flag.
func (c *AppConfig) Production() bool {
	return c.EnvMode == "production"
}

// LoadAppConfig loads application configuration from environment variables
func LoadAppConfig() (*AppConfig, error) {
	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}

	jwtExpDays := int64(30)
	if v := os.Getenv("JWT_EXPIRATION_DAYS"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_DAYS: %w", err)
		}
		jwtExpDays = parsed
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		smtpPort = parsed
	}

	fromName := os.Getenv("MAIL_FROM_NAME")
	if fromName == "" {
		fromName = "JZ Mart"
	}

	return &AppConfig{
		Port:           getEnv("SERVER_PORT", "8080"),
		EnvMode:        getEnv("APP_ENV", "development"),
		JWTSecret:      jwtSecret,
		JWTExpDays:     jwtExpDays,
		FrontendOrigin: os.Getenv("FRONTEND_URL"),
		SMTP: mailer.SMTPConfig{
			Host:      getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:      smtpPort,
			Username:  os.Getenv("EMAIL_USER"),
			Password:  os.Getenv("EMAIL_PASS"),
			FromEmail: getEnv("FROM_EMAIL", os.Getenv("EMAIL_USER")),
			FromName:  fromName,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
