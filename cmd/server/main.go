package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shinjadong/careon-blog-ai/internal/api/handlers"
	"github.com/shinjadong/careon-blog-ai/internal/api/middleware"
	"github.com/shinjadong/careon-blog-ai/internal/auth"
	"github.com/shinjadong/careon-blog-ai/internal/calibration"
	"github.com/shinjadong/careon-blog-ai/internal/config"
	"github.com/shinjadong/careon-blog-ai/internal/database"
	"github.com/shinjadong/careon-blog-ai/internal/logger"
	"github.com/shinjadong/careon-blog-ai/internal/profile"
	"github.com/shinjadong/careon-blog-ai/internal/store"
	"github.com/shinjadong/careon-blog-ai/internal/websocket"
)

func main() {
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Debug); err != nil {
		logger.Error().Err(err).Msg("failed to initialize logger")
		os.Exit(1)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info().Str("path", cfg.DatabasePath).Msg("opening database")
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open database")
		os.Exit(1)
	}
	defer db.Close()

	st := store.New(db.DB)
	registry := profile.NewRegistry(st)

	sessions := calibration.NewMemoryStore(cfg.SessionTTL)
	defer sessions.Close()
	calibrator := calibration.NewManager(st, sessions)

	// Auth is optional: without an admin secret the API runs open, which is
	// how single-operator desktop deployments use it.
	var jwtManager *auth.JWTManager
	if cfg.AdminSecret != "" {
		jwtManager, err = auth.NewJWTManager(cfg.AdminSecret)
		if err != nil {
			logger.Error().Err(err).Msg("failed to create JWT manager")
			os.Exit(1)
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"service": "careon-blog-ai", "status": "running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	deviceHandler := handlers.NewDeviceHandler(cfg, registry, st)
	calibrationHandler := handlers.NewCalibrationHandler(calibrator)
	automationHandler := handlers.NewAutomationHandler(cfg, registry, st, nil)
	streamer := websocket.NewStreamer(cfg)

	v1 := router.Group("/api/v1")

	if jwtManager != nil {
		authHandler := handlers.NewAuthHandler(jwtManager, cfg.AdminPasswordHash)
		v1.POST("/auth/login", authHandler.Login)
		v1 = router.Group("/api/v1")
		v1.Use(middleware.AuthMiddleware(jwtManager))
	}

	devices := v1.Group("/devices")
	{
		devices.GET("/scan", deviceHandler.ScanDevices)
		devices.POST("/connect/:serial", deviceHandler.ConnectDevice)
		devices.GET("/screenshot/:serial", deviceHandler.Screenshot)
		devices.GET("/stream/:serial", streamer.Stream)

		devices.GET("/profiles", deviceHandler.ListProfiles)
		devices.GET("/profiles/:id", deviceHandler.GetProfile)
		devices.PATCH("/profiles/:id", deviceHandler.UpdateProfile)
		devices.DELETE("/profiles/:id", deviceHandler.DeleteProfile)
		devices.GET("/profiles/:id/coordinates", deviceHandler.ListCoordinates)

		devices.POST("/coordinates", deviceHandler.CreateCoordinate)
		devices.PATCH("/coordinates/:id", deviceHandler.UpdateCoordinate)
		devices.DELETE("/coordinates/:id", deviceHandler.DeleteCoordinate)
	}

	cal := v1.Group("/calibration")
	{
		cal.GET("/guide", calibrationHandler.Guide)
		cal.POST("/sessions", calibrationHandler.StartSession)
		cal.GET("/sessions/:id", calibrationHandler.GetSession)
		cal.POST("/sessions/:id/click", calibrationHandler.SubmitClick)
		cal.DELETE("/sessions/:id", calibrationHandler.CancelSession)
	}

	v1.POST("/automation/post", automationHandler.PostBlog)

	logger.Info().Str("addr", cfg.Addr).Msg("careon server starting")
	if err := router.Run(cfg.Addr); err != nil {
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
