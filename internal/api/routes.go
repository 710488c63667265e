package api

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"casaleon/server/internal/web"
)

// RouterConfig holds the HTTP settings of the server
type RouterConfig struct {
	AllowedOrigins []string
	LeadsPerMinute int
	AssetsDir      string
}

// NewRouter builds the engine with logging, CORS, templates and every route
func NewRouter(handler *Handler, cfg RouterConfig, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	router.SetHTMLTemplate(web.Templates())

	if cfg.AssetsDir != "" {
		if info, err := os.Stat(cfg.AssetsDir); err == nil && info.IsDir() {
			router.Static("/assets", cfg.AssetsDir)
		} else {
			logger.WithField("assets_dir", cfg.AssetsDir).Warn("Assets directory not found, not serving /assets")
		}
	}

	SetupRoutes(router, handler, NewIPRateLimiter(cfg.LeadsPerMinute))
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler, limiter *IPRateLimiter) {
	router.GET("/", handler.Home)
	router.GET("/propiedad", handler.Property)

	forms := router.Group("/", limiter.Middleware())
	{
		forms.POST("/leads/owner", handler.PostOwnerLead)
		forms.POST("/propiedad/visita", handler.PostVisitLead)
	}

	api := router.Group("/api")
	{
		api.GET("/properties", handler.GetProperties)
		api.GET("/properties/:id", handler.GetProperty)
		api.GET("/map.geojson", handler.GetMapFeatures)
		api.GET("/deeplink", handler.ResolveDeepLink)
		api.GET("/contact-link", handler.GetContactLink)

		leadRoutes := api.Group("/leads", limiter.Middleware())
		leadRoutes.POST("/owner", handler.SubmitOwnerLead)
		leadRoutes.POST("/visit", handler.SubmitVisitLead)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}

	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowed
	return cfg
}
