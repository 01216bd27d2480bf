package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solar_registration/internal/api"
	"solar_registration/internal/config"
	"solar_registration/internal/repository"
	"solar_registration/internal/service"
	"solar_registration/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.LogLevel,
		Directory:  cfg.LogDir,
		MaxAgeDays: cfg.LogFileMaxAge,
		Stdout:     cfg.LogStdout,
	}); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()
	logger.Info("Starting Solar Client Registration service")

	db, err := config.InitDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database: " + err.Error())
	}
	defer db.Close()

	repo, err := repository.New(db)
	if err != nil {
		logger.Fatal(err.Error())
	}

	svc := service.NewService(repo, cfg)

	router := setupRouter(svc)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on port %d", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: " + err.Error())
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced shutdown: " + err.Error())
	}

	// Write any queued registrations before the store closes
	svc.Close()

	logger.Info("Server stopped gracefully")
}

func setupRouter(svc *service.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(api.RequestID())
	r.Use(api.Logger())
	r.Use(api.CORS())

	api.SetupRoutes(r, svc)

	return r
}
