package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/handlers/payement"
	"atelier_back_end/internal/middleware"
	"atelier_back_end/internal/ws"
)

// Deps regroupe les dépendances des handlers
type Deps struct {
	Orders    *handlers.OrderHandler
	Customers *handlers.CustomerHandler
	Payments  *payement.PaymentHandler
	Hub       *ws.Hub
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Auth
	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)

	// Checkout public
	api.POST("/orders", middleware.CheckoutRateLimit(), deps.Orders.CreateOrder)
	api.POST("/payments/create-intent", middleware.CheckoutRateLimit(), deps.Payments.CreatePaymentIntent)
	api.POST("/payments/confirm", middleware.CheckoutRateLimit(), deps.Payments.ConfirmPayment)

	// Administration
	admin := api.Group("/")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.GET("/orders", deps.Orders.ListOrders)
		admin.GET("/orders/search", deps.Orders.SearchOrders)
		admin.GET("/orders/:id", deps.Orders.GetOrder)
		admin.PUT("/orders/:id/status", deps.Orders.UpdateOrderStatus)
		admin.GET("/customers", deps.Customers.ListCustomers)
		admin.GET("/customers/:id", deps.Customers.GetCustomer)
		admin.GET("/ws/orders", func(c *gin.Context) {
			deps.Hub.Serve(c.Writer, c.Request)
		})
	}
}
