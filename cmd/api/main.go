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

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/envisage-infotech/hr-interview-desk/pkg/validator"

	"github.com/envisage-infotech/hr-interview-desk/internal/adapter/handler"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/cache"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/n8n"
	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/external/vapi"
	"github.com/envisage-infotech/hr-interview-desk/internal/usecase/calendar"
	"github.com/envisage-infotech/hr-interview-desk/internal/usecase/records"
	"github.com/envisage-infotech/hr-interview-desk/internal/usecase/session"
	"github.com/envisage-infotech/hr-interview-desk/internal/usecase/settings"
	"github.com/envisage-infotech/hr-interview-desk/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize voice platform client
	log.Println("📞 Initializing voice platform client...")
	vapiClient := vapi.NewClient(&cfg.Vapi, logger)
	vapiDialer := vapi.NewDialer(&cfg.Vapi, logger)
	if cfg.Vapi.UseMock {
		log.Println("⚠️  Voice platform running in MOCK mode (no real platform needed)")
	}

	// Initialize settings store
	log.Println("⚙️  Initializing settings store...")
	var settingsStore settings.Store
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		settingsStore = settings.NewRedisStore(redisClient)
	} else {
		log.Println("📦 Redis disabled, using in-memory settings store")
		settingsStore = settings.NewMemoryStore()
	}
	settingsService := settings.NewService(settingsStore, cfg.Webhook.BaseURL, logger)

	// Initialize call-record repository
	log.Println("🗂️  Initializing call-record repository...")
	recordRepo := records.NewRepository(vapiClient, logger)

	// Initialize speech capture. The factory is nil when no audio source
	// is configured; sessions then run without local transcription.
	log.Println("🎤 Initializing speech capture...")
	captureFactory := session.NewAssemblyAIFactory(&cfg.Speech, nil, logger)
	capture := session.NewCapture(captureFactory, logger)
	if captureFactory == nil {
		log.Println("⚠️  Speech capture unavailable (no API key or audio source)")
	}

	// Initialize session controller
	log.Println("📲 Initializing session controller...")
	sessionController := session.NewController(
		vapiDialer,
		vapiClient,
		recordRepo,
		settingsService,
		capture,
		session.Config{
			AssistantID: cfg.Vapi.AssistantID,
			SettleDelay: cfg.Session.SettleDelay,
			EndedDelay:  cfg.Session.EndedDelay,
		},
		logger,
	)

	// Initialize calendar service
	log.Println("📅 Initializing calendar service...")
	n8nClient := n8n.NewClient(cfg.Webhook.BaseURL, cfg.Webhook.EventsPath, logger)
	calendarService := calendar.NewService(n8nClient, logger)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	recordsHandler := handler.NewRecordsHandler(recordRepo, vapiClient, logger)
	sessionHandler := handler.NewSessionHandler(sessionController, logger)
	calendarHandler := handler.NewCalendarHandler(calendarService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, recordsHandler, sessionHandler, calendarHandler, settingsHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Make sure no call session outlives the process.
	sessionController.StopCall()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
