package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrattend/internal/auth"
	"qrattend/internal/httpmiddleware"
)

// RouterConfig holds the middleware settings of the HTTP surface.
type RouterConfig struct {
	CORSOrigins []string
	Limiter     httpmiddleware.Limiter
	WebDir      string
}

// NewRouter wires middleware and routes.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.Logger("/healthz", "/metrics"))
	r.Use(httpmiddleware.Metrics())
	r.Use(httpmiddleware.CORS(cfg.CORSOrigins))
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	if cfg.Limiter != nil {
		api.Use(httpmiddleware.RateLimit(cfg.Limiter))
	}
	{
		api.POST("/register", h.Register)
		api.POST("/scan", h.Scan)
		api.GET("/subjects", h.Subjects)
		api.GET("/students/:roll_no/qr", h.StudentQR)
		api.POST("/admin/token", h.AdminToken)
	}

	admin := api.Group("/admin", auth.RequireRole(h.admin.SigningKey, h.admin.Issuer, auth.RoleAdmin))
	{
		admin.GET("/data", h.Data)
		admin.POST("/clear", h.Clear)
		admin.POST("/artifacts/rebuild", h.RebuildArtifacts)
	}

	if cfg.WebDir != "" {
		if _, err := os.Stat(filepath.Join(cfg.WebDir, "index.html")); err == nil {
			r.StaticFile("/", filepath.Join(cfg.WebDir, "index.html"))
			r.Static("/static", filepath.Join(cfg.WebDir, "static"))
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found", "code": "ROUTE_NOT_FOUND"})
	})
	return r
}
