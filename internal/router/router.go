package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cartcore-backend/config"
	"github.com/ikkim/cartcore-backend/internal/app/controller"
	"github.com/ikkim/cartcore-backend/internal/metrics"
	"github.com/ikkim/cartcore-backend/internal/middleware"
	pkgredis "github.com/ikkim/cartcore-backend/pkg/redis"
)

// Options wires the optional collaborators of the router.
type Options struct {
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	IdempotencyStore pkgredis.IdempotencyStore
	HealthCheck      func(ctx context.Context) error
}

type Router struct {
	cartController  *controller.CartController
	orderController *controller.OrderController
	stockController *controller.StockWSController
	authMiddleware  *middleware.AuthMiddleware
	config          *config.Config
	opts            Options
}

func NewRouter(
	cartController *controller.CartController,
	orderController *controller.OrderController,
	stockController *controller.StockWSController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
	opts Options,
) *Router {
	return &Router{
		cartController:  cartController,
		orderController: orderController,
		stockController: stockController,
		authMiddleware:  authMiddleware,
		config:          cfg,
		opts:            opts,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.QueryMetricsMiddleware(r.opts.Metrics))
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)

	if r.opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.opts.MetricsHandler))
	}

	if r.stockController != nil {
		router.GET("/ws/stock", r.stockController.Stream)
	}

	v1 := router.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())
	{
		cart := v1.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.PATCH("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveFromCart)
		}

		v1.POST("/purchase",
			middleware.Idempotency(r.opts.IdempotencyStore, r.config.Idempotency.TTL),
			r.orderController.Purchase,
		)

		orders := v1.Group("/orders")
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
		}
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	if r.opts.HealthCheck != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := r.opts.HealthCheck(ctx); err != nil {
			middleware.GetLoggerFromContext(c).Error("Health check failed", err, nil)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "cartcore API is running",
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Idempotency-Key, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
