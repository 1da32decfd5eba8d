package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loomline/loomline-backend-go/handlers"
	customMiddleware "github.com/loomline/loomline-backend-go/middleware"
)

func SetupRoutes(e *echo.Echo) {
	// Public routes
	e.POST("/users/register", handlers.RegisterUser)
	e.POST("/users/login", handlers.LoginUser)
	e.POST("/admin/login", handlers.AdminLogin)
	e.GET("/products", handlers.GetProducts)
	e.GET("/products/:id", handlers.GetProduct)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Admin-only catalog writes
	admin := e.Group("", customMiddleware.SessionMiddleware(), customMiddleware.AdminMiddleware())
	admin.POST("/products", handlers.CreateProduct)
	admin.PUT("/products/:id", handlers.UpdateProduct)
	admin.POST("/admin/deleteProduct", handlers.DeleteProduct)

	// Session-scoped routes
	session := e.Group("", customMiddleware.SessionMiddleware())
	session.GET("/users/cart", handlers.GetCart)
	session.POST("/users/cart", handlers.AddToCart)
	session.PATCH("/users/cart", handlers.UpdateCartQuantity)
	session.DELETE("/users/cart", handlers.RemoveFromCart)

	session.POST("/users/wishlist", handlers.ToggleWishlist)
	session.GET("/users/wishlist", handlers.GetWishlist)

	session.POST("/orders", handlers.CreateOrder)
	session.GET("/orders", handlers.GetOrders)
}
