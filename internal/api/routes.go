package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts every endpoint under /api. requireAuth guards the
// order, profile and logout routes.
func RegisterRoutes(e *echo.Echo, orders *OrderHandler, products *ProductHandler, users *UserHandler, requireAuth ...echo.MiddlewareFunc) {
	g := e.Group("/api")

	g.POST("/auth/register", users.Register)
	g.POST("/auth/login", users.Login)
	g.POST("/auth/logout", users.Logout, requireAuth...)

	g.GET("/products", products.ListProducts)
	g.GET("/products/:id", products.GetProduct)
	g.GET("/categories", products.ListCategories)

	g.POST("/orders", orders.CreateOrder, requireAuth...)
	g.GET("/orders", orders.ListOrders, requireAuth...)
	g.GET("/orders/:id", orders.GetOrder, requireAuth...)

	g.GET("/user/profile", users.GetProfile, requireAuth...)
	g.PUT("/user/profile", users.UpdateProfile, requireAuth...)

	g.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "storefront-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})
}
