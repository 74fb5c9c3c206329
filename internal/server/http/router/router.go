package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StoreFacade, collector *metrics.Collector, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	cartHandler := handlers.NewCartHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, logger)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(collector.Handler()))

	api := engine.Group("/api")

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	userAuth := user.Group("")
	userAuth.Use(middleware.ActorRequired(facade))
	userAuth.GET("/addresses", cartHandler.ListAddresses)
	userAuth.POST("/addresses", cartHandler.CreateAddress)
	userAuth.POST("/checkout", orderHandler.Checkout)
	userAuth.GET("/orders", orderHandler.List)
	userAuth.GET("/orders/:id", orderHandler.Get)
	userAuth.POST("/orders/:id/cancel", orderHandler.Cancel)

	cart := api.Group("/cart")
	cart.Use(middleware.AuthRequired(facade))
	cart.GET("", cartHandler.Get)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:product_id", cartHandler.UpdateItem)
	cart.DELETE("/items/:product_id", cartHandler.RemoveItem)
	cart.POST("/coupon", cartHandler.ApplyCoupon)
	cart.DELETE("/coupon", cartHandler.RemoveCoupon)

	admin := api.Group("/admin")
	admin.Use(middleware.ActorRequired(facade), middleware.AdminRequired())
	admin.GET("/orders", adminHandler.Orders)
	admin.POST("/orders/:id/status", adminHandler.AdvanceStatus)
	admin.POST("/orders/:id/cancel", orderHandler.Cancel)
	admin.GET("/coupons", adminHandler.Coupons)
	admin.POST("/coupons", adminHandler.UpsertCoupon)
	admin.DELETE("/coupons/:code", adminHandler.DeleteCoupon)
	admin.POST("/products", adminHandler.CreateProduct)
	admin.PUT("/products/:id", adminHandler.UpdateProduct)

	payments := api.Group("/payments")
	payments.POST("/callback", paymentHandler.Callback)
	payments.POST("/stripe/webhook", paymentHandler.StripeWebhook)

	return engine
}
