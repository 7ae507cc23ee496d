package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-portal/config"
	deliveryHttp "hospital-portal/internal/delivery/http"
	"hospital-portal/internal/delivery/http/handler"
	"hospital-portal/internal/delivery/http/middleware"
	"hospital-portal/internal/delivery/ws"
	"hospital-portal/internal/infrastructure/authgate"
	"hospital-portal/internal/infrastructure/cache"
	"hospital-portal/internal/infrastructure/database"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/repository"
	"hospital-portal/internal/sector"
	"hospital-portal/internal/service"
	syncpkg "hospital-portal/internal/sync"
	"hospital-portal/internal/usecase"
	"hospital-portal/pkg/jwt"
	"hospital-portal/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Channel     notify.Channel
	SyncManager *syncpkg.Manager
	Hub         *ws.Hub
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Apply schema migrations
	if err := database.RunMigrations(cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize the change notification channel
	channel, err := newNotifyChannel(cfg, db, redisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open notification channel: %w", err)
	}
	app.Channel = channel
	logrus.Infof("Change notification channel ready (backend: %s)", cfg.Notify.Backend)

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// newNotifyChannel selects the change notification backend. Redis and
// postgres reach every portal instance; memory only works for one.
func newNotifyChannel(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (notify.Channel, error) {
	log := logrus.StandardLogger()

	switch cfg.Notify.Backend {
	case "redis":
		return notify.NewRedisChannel(redisClient, log), nil
	case "postgres":
		return notify.NewPostgresChannel(db, database.DSN(cfg.DB), log)
	case "memory":
		return notify.NewMemoryChannel(log), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
}

// initializeServer wires every layer and configures the HTTP server
func (app *App) initializeServer() error {
	cfg := app.Config
	db := app.DB
	redisClient := app.RedisClient
	channel := app.Channel
	log := logrus.StandardLogger()

	// Token verification against the external auth provider's secret
	verifier := jwt.NewVerifier(cfg.Auth)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Admin client of the external auth provider
	identityGate := authgate.NewClient(authgate.Config{
		BaseURL:    cfg.Auth.GateURL,
		ServiceKey: cfg.Auth.GateKey,
		Timeout:    cfg.Auth.GateTimeout,
	}, log)

	// Initialize repositories
	profileRepo := repository.NewProfileRepository()
	roomRepo := repository.NewRoomRepository()
	allocationRepo := repository.NewRoomAllocationRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(db, log, auditLogRepo)
	selectionStore := sector.NewRedisSelectionStore(redisClient)

	// Initialize usecases
	sessionUsecase := usecase.NewSessionUsecase(db, log, profileRepo, redisClient)
	profileUsecase := usecase.NewProfileUsecase(db, log, profileRepo, auditService, identityGate, channel, redisClient)
	roomUsecase := usecase.NewRoomUsecase(db, log, roomRepo, auditService, channel)
	allocationUsecase := usecase.NewRoomAllocationUsecase(db, log, allocationRepo, roomRepo, profileRepo, auditService, channel)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// One sync session per signed-in user
	app.SyncManager = syncpkg.NewManager(db, channel, selectionStore, profileRepo, roomRepo, allocationRepo, log, syncpkg.ManagerConfig{
		IdleTTL:       cfg.Sync.SessionTTL,
		SweepInterval: cfg.Sync.SweepInterval,
	})

	// Browser push hub
	app.Hub = ws.NewHub(channel, verifier, log)
	if err := app.Hub.Start(); err != nil {
		return fmt.Errorf("failed to start push hub: %w", err)
	}

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionUsecase, app.SyncManager, customValidator)
	profileHandler := handler.NewProfileHandler(profileUsecase, customValidator)
	roomHandler := handler.NewRoomHandler(roomUsecase, app.SyncManager, customValidator)
	allocationHandler := handler.NewAllocationHandler(allocationUsecase, app.SyncManager, customValidator)
	boardHandler := handler.NewBoardHandler(app.SyncManager)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(verifier, sessionUsecase)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		sessionHandler,
		profileHandler,
		roomHandler,
		allocationHandler,
		boardHandler,
		auditLogHandler,
		app.Hub,
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}

	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close tears down sync sessions, the push hub and all connections
func (app *App) Close() {
	// Stop sync sessions first so their subscriptions drain
	if app.SyncManager != nil {
		app.SyncManager.Stop()
	}

	// Stop the push hub
	if app.Hub != nil {
		app.Hub.Stop()
	}

	// Close the notification channel
	if app.Channel != nil {
		app.Channel.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
