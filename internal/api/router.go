package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.healthCheck)

	a := r.Group("/api/clients/:clientId/analytics")
	a.GET("/overview", h.getOverview)
	a.GET("/cash-flow", h.getCashFlow)
	a.GET("/liquidity", h.getLiquidity)
	a.GET("/categories", h.getCategories)
	a.GET("/vendors", h.getVendors)
	a.GET("/patterns", h.getPatterns)
	a.GET("/trends", h.getTrends)
	a.GET("/dashboard", h.getDashboard)
	a.GET("/export", h.getExport)

	return r
}
