package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

type HealthChecker interface {
	Health() error
}

type Handlers struct {
	Products     *Handler
	Reports      *ReportHandler
	Alerts       *AlertHandler
	AlertLimiter *RateLimiter
}

func RegisterRoutes(router *gin.Engine, h Handlers, checkers ...HealthChecker) {
	router.POST("/products", h.Products.CreateProduct)
	router.GET("/products", h.Products.ListProducts)
	router.GET("/products/categories", h.Products.ListCategories)
	router.GET("/products/:id", h.Products.GetProduct)
	router.PUT("/products/:id", h.Products.UpdateProduct)
	router.PATCH("/products/:id/quantity", h.Products.UpdateQuantity)
	router.DELETE("/products/:id", h.Products.DeleteProduct)

	router.GET("/dashboard", h.Reports.Dashboard)
	router.GET("/reports/summary", h.Reports.Summary)
	router.GET("/reports/export", h.Reports.ExportCSV)

	alertRoutes := router.Group("/alerts")
	if h.AlertLimiter != nil {
		alertRoutes.Use(h.AlertLimiter.Middleware())
	}
	alertRoutes.GET("/low-stock", h.Alerts.Status)
	alertRoutes.POST("/low-stock", h.Alerts.Trigger)
	alertRoutes.POST("/low-stock/test", h.Alerts.SendTest)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		for _, checker := range checkers {
			if err := checker.Health(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": healthStatusUnhealthy})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": healthStatusOK})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
