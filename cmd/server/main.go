package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cafeteria/menu-backend/internal/config"
	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/handlers"
	"github.com/cafeteria/menu-backend/internal/middleware"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/cafeteria/menu-backend/pkg/jwt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting cafeteria menu backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB.DB, cfg.Database.MigrationsPath, logger); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	userRepository := database.NewUserRepository(db)
	staffDirectoryRepository := database.NewStaffDirectoryRepository(db)

	var auditService *services.AuditService
	if cfg.Security.EnableAuditLog {
		auditService = services.NewAuditService(database.NewAuditLogRepository(db), logger)
	}

	loginThrottle := services.NewLoginThrottle(services.LoginThrottleConfig{
		MaxFailures:   cfg.LoginThrottle.MaxFailures,
		Lockout:       cfg.LoginThrottle.Lockout,
		SweepInterval: cfg.LoginThrottle.SweepInterval,
	}, logger)
	loginThrottle.Start(ctx)

	authService, err := services.NewAuthService(
		userRepository,
		staffDirectoryRepository,
		jwtService,
		loginThrottle,
		auditService,
		cfg.Security.BcryptCost,
		logger,
	)
	if err != nil {
		logger.Fatalf("Failed to initialize auth service: %v", err)
	}

	staffService := services.NewStaffService(staffDirectoryRepository, userRepository, logger)
	menuService := services.NewMenuService(db, logger)
	selectionService := services.NewSelectionService(db, logger)
	ratingService := services.NewRatingService(
		database.NewMenuRepository(db),
		database.NewMenuRatingRepository(db),
		logger,
	)
	overviewService := services.NewOverviewService(db)

	if cfg.StaffDirectoryFile != "" {
		seedStaffDirectory(ctx, cfg.StaffDirectoryFile, staffService, logger)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, jwtService, logger)
	menuHandler := handlers.NewMenuHandler(menuService, logger)
	selectionHandler := handlers.NewSelectionHandler(selectionService, logger)
	ratingHandler := handlers.NewRatingHandler(ratingService, logger)
	adminHandler := handlers.NewAdminHandler(overviewService, staffService, logger)

	// Initialize Gin router
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}
	router.Use(cors.New(corsConfig(cfg.CORS)))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	requireAuth := middleware.AuthMiddleware(jwtService, logger)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/admin/signup", middleware.OptionalAuth(jwtService), authHandler.AdminSignup)
			auth.POST("/admin/login", authHandler.AdminLogin)
		}

		menus := api.Group("/menus", requireAuth)
		{
			menus.GET("", menuHandler.ListMenus)
			menus.GET("/active", menuHandler.GetActiveMenu)
			menus.POST("", requireAdmin, menuHandler.CreateMenu)
			menus.PATCH("", requireAdmin, menuHandler.UpdateMenu)
			menus.DELETE("", requireAdmin, menuHandler.DeleteMenu)
		}
		api.POST("/menu", requireAuth, requireAdmin, menuHandler.CreateMenu)

		items := api.Group("/menu-items", requireAuth)
		{
			items.GET("", menuHandler.ListItems)
			items.GET("/meals", menuHandler.Meals)
			items.POST("", requireAdmin, menuHandler.AddItems)
			items.DELETE("", requireAdmin, menuHandler.DeleteItem)
		}

		selections := api.Group("/selections", requireAuth)
		{
			selections.GET("", selectionHandler.List)
			selections.POST("", selectionHandler.Submit)
		}

		api.POST("/menu-ratings", requireAuth, ratingHandler.Rate)

		users := api.Group("/users", requireAuth, requireAdmin)
		{
			users.GET("/staff", adminHandler.ListStaffUsers)
			users.GET("/eligible-staff", adminHandler.ListEligibleStaff)
		}

		admin := api.Group("/admin", requireAuth, requireAdmin)
		{
			admin.GET("/overview", adminHandler.Overview)
			admin.GET("/selections", adminHandler.StaffSelections)
			admin.GET("/menu-ratings", ratingHandler.List)
			admin.GET("/staff-directory", adminHandler.ListStaffDirectory)
			admin.POST("/staff-directory", adminHandler.AddStaffDirectoryEntry)
			admin.DELETE("/staff-directory/:id", adminHandler.DeleteStaffDirectoryEntry)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stops the throttle sweeper
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

func seedStaffDirectory(ctx context.Context, path string, staffService *services.StaffService, logger *logrus.Logger) {
	names, err := config.LoadStaffDirectory(path)
	if err != nil {
		logger.Fatalf("Failed to load staff directory file: %v", err)
	}

	added, err := staffService.SeedDirectory(ctx, names)
	if err != nil {
		logger.Fatalf("Failed to seed staff directory: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"file":  path,
		"names": len(names),
		"added": added,
	}).Info("Staff directory seeded")
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length", "Retry-After", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}

	corsCfg.AllowOrigins = cfg.AllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      c.Request.URL.RawQuery,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
			"has_auth":   c.GetHeader("Authorization") != "",
		}

		if user, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = user.UserID
			fields["role"] = user.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
