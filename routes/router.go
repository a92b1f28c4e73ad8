package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/deltatracker/achievements"
	"github.com/cppla/deltatracker/analytics"
	"github.com/cppla/deltatracker/config"
	"github.com/cppla/deltatracker/controllers"
	"github.com/cppla/deltatracker/middleware"
	"github.com/cppla/deltatracker/quotes"
	"github.com/cppla/deltatracker/store"
	"github.com/cppla/deltatracker/utils"
)

// Deps carries the services the HTTP layer talks to.
type Deps struct {
	Engine *achievements.Engine
	Stats  *analytics.Aggregator
	Store  store.Port
	Quotes *quotes.Pool
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(d Deps) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController()
	scanController := controllers.NewScanController(d.Engine, d.Stats, d.Store)
	eventController := controllers.NewEventController(d.Engine, d.Quotes)
	achievementController := controllers.NewAchievementController(d.Engine)
	statsController := controllers.NewStatsController(d.Stats, d.Store)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/token", authController.Token)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)

	// SSE sits outside the rate limiter; it is one long request.
	api.GET("/achievements/stream", middleware.AuthRequired(), achievementController.Stream)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/scans", scanController.Create)
	protected.GET("/scans/history", scanController.History)
	protected.GET("/scans/export", scanController.Export)
	protected.DELETE("/scans/:id", scanController.Delete)
	protected.DELETE("/scans", scanController.Clear)

	events := protected.Group("/events")
	events.POST("/tilt", eventController.Tilt())
	events.POST("/cheater", eventController.Cheater())
	events.POST("/cheater/undo", eventController.UndoCheater())
	events.POST("/red", eventController.Red())
	events.POST("/red/undo", eventController.UndoRed())
	events.POST("/launch", eventController.Launch())
	events.POST("/activate", eventController.Activate())

	protected.GET("/quotes/random", eventController.RandomQuote)

	protected.GET("/achievements", achievementController.List)
	protected.GET("/achievements/progress", achievementController.Progress)
	protected.POST("/achievements/:id/tap", achievementController.Tap)
	protected.POST("/achievements/easter-egg", achievementController.EasterEgg)
	protected.POST("/achievements/reset", achievementController.Reset)

	protected.GET("/stats/dashboard", statsController.Dashboard)
	protected.GET("/stats/daily", statsController.Daily)
	protected.GET("/stats/counters", statsController.Counters)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
