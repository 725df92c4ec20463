package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Routes builds the full gin engine. Tests mount it on httptest servers.
func (h *Handler) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	// 100 requests/minute with burst 200, per IP.
	limiter := NewRateLimiter(rate.Limit(100.0/60.0), 200)
	go limiter.CleanupVisitors()
	r.Use(RateLimit(limiter))

	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/user", h.GetCurrentUser)

		api.GET("/products", h.GetProducts)

		api.GET("/cart", h.GetCart)
		api.POST("/cart", h.AddToCart)
		api.PUT("/cart/:id", h.UpdateCartItem)
		api.DELETE("/cart/:id", h.RemoveFromCart)
		api.DELETE("/cart", h.ClearCart)

		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.GetOrders)

		api.POST("/admin/login", h.AdminLogin)
		admin := api.Group("/admin")
		admin.Use(h.AdminAuthMiddleware())
		{
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
		}
	}

	r.Static("/static", "./static")

	return r
}
