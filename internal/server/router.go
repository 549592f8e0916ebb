// Package server assembles the HTTP router from configuration and a store.
package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Kosench/keyed-url-shortener/internal/config"
	"github.com/Kosench/keyed-url-shortener/internal/database"
	"github.com/Kosench/keyed-url-shortener/internal/handler"
	"github.com/Kosench/keyed-url-shortener/internal/keygen"
	"github.com/Kosench/keyed-url-shortener/internal/metrics"
	"github.com/Kosench/keyed-url-shortener/internal/middleware"
	"github.com/Kosench/keyed-url-shortener/internal/repository"
	"github.com/Kosench/keyed-url-shortener/internal/service"
)

const Version = "1.0.0"

// NewRouter wires repository, key generator, service and handlers over db
// and registers every collector on reg, which also backs /metrics.
func NewRouter(cfg *config.Config, db *sql.DB, reg *prometheus.Registry, logger *zap.Logger) (*gin.Engine, error) {
	driver := database.Driver(cfg.Database.Driver)

	urlRepo, err := repository.NewURLRepository(db, driver, cfg.Database.QueryTimeout)
	if err != nil {
		return nil, err
	}

	m := metrics.New(reg)
	if err := metrics.RegisterDBStats(reg, db, string(driver)); err != nil {
		return nil, fmt.Errorf("failed to register database metrics: %w", err)
	}

	gen := keygen.NewGenerator(urlRepo, keygen.Config{
		KeyLength:    cfg.App.KeyLength,
		SecretLength: cfg.App.SecretLength,
		MaxAttempts:  cfg.App.MaxKeyAttempts,
	})
	urlService := service.NewURLService(urlRepo, gen, cfg.GetBaseURL(), m, logger)
	urlHandler := handler.NewURLHandler(urlService, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(logger),
		middleware.Metrics(m),
		cors.New(cors.Config{
			AllowOrigins:     cfg.GetAllowedOrigins(),
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	)

	status := &statusHandler{db: db, driver: driver}

	router.GET("/", urlHandler.Welcome)
	router.GET("/health", status.Health)
	router.GET("/info", status.Info)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	router.POST("/url", urlHandler.CreateURL)

	admin := router.Group("/admin")
	{
		admin.GET("/:secretKey", urlHandler.GetAdminInfo)
		admin.POST("/:secretKey", urlHandler.ActivateURL)
		admin.DELETE("/:secretKey", urlHandler.DeactivateURL)
	}

	router.GET("/:key", urlHandler.RedirectURL)
	router.NoRoute(urlHandler.NotFound)

	return router, nil
}

type statusHandler struct {
	db     *sql.DB
	driver database.Driver
}

func (h *statusHandler) Health(c *gin.Context) {
	if err := database.HealthCheck(c.Request.Context(), h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"services": gin.H{"database": "unhealthy"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"services": gin.H{"database": "healthy"},
	})
}

func (h *statusHandler) Info(c *gin.Context) {
	version, _ := database.GetVersion(c.Request.Context(), h.db, h.driver)

	c.JSON(http.StatusOK, gin.H{
		"service":          "URL Shortener",
		"version":          Version,
		"database_driver":  string(h.driver),
		"database_version": version,
	})
}
