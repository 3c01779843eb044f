package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_service/internal/config"
	"auth_service/internal/handler"
	"auth_service/internal/mailer"
	"auth_service/internal/middleware"
	"auth_service/internal/repository"
	"auth_service/internal/service"
	"auth_service/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("Failed to load DB config: %v", err)
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load app config: %v", err)
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(appCfg.JWTSecret, appCfg.JWTExpDays)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	otpRepo := repository.NewOtpRepository(dbPool)

	// --- Initialize Services ---
	otpMailer := mailer.NewSMTPMailer(appCfg.SMTP)
	otpService := service.NewOtpService(otpRepo, userRepo, otpMailer)
	authService := service.NewAuthService(userRepo, otpService, jwtUtil)

	// --- Initialize Handlers ---
	cookieMaxAge := int(jwtUtil.ExpirationDuration().Seconds())
	authHandler := handler.NewAuthHandler(authService, otpService, cookieMaxAge, appCfg.Production())

	// --- Setup Gin Router ---
	if appCfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS: the configured frontend origin with credentialed cookies
	router.Use(func(c *gin.Context) {
		origin := appCfg.FrontendOrigin
		if origin == "" {
			origin = "http://localhost:3000"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	sessionMW := middleware.SessionAuthMiddleware(jwtUtil, userRepo)

	// --- Register Routes ---
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, sessionMW)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, World!")
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(context.Background()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Page not found"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + appCfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s in %s mode", appCfg.Port, appCfg.EnvMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
