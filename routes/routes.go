package routes

import (
	"net/http"

	"peer-delivery-api/handlers"
	"peer-delivery-api/logger"
	"peer-delivery-api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, jwtSecret []byte) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		// State machine info (handy for API clients)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(jwtSecret))
	{
		auth.GET("/profile", h.GetProfile)
		auth.PUT("/profile", h.UpdateProfile)

		auth.GET("/notifications", h.GetNotifications)
		auth.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
		auth.PUT("/notifications/:id/read", h.MarkNotificationRead)
		auth.DELETE("/notifications/:id", h.DeleteNotification)

		auth.GET("/orders/:id", h.GetOrderDetail)
	}

	// ── Customer routes ────────────────────────────────────────────
	// Any user can be a customer and a partner; the role is per order.
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(jwtSecret))
	{
		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)
		customer.POST("/orders/:id/rate", h.RateOrder)
	}

	// ── Partner routes ─────────────────────────────────────────────
	partner := r.Group("/api/partner")
	partner.Use(middleware.AuthRequired(jwtSecret))
	{
		partner.GET("/orders/available", h.GetAvailableOrders)
		partner.GET("/orders/my-deliveries", h.GetMyDeliveries)
		partner.PUT("/orders/:id/accept", h.AcceptOrder)
		partner.PUT("/orders/:id/pickup", h.PickupOrder)
		partner.PUT("/orders/:id/on-the-way", h.OnTheWay)
		partner.PUT("/orders/:id/deliver", h.DeliverOrder)
		partner.PUT("/orders/:id/cancel", h.CancelOrder)
		partner.GET("/earnings", h.GetMyEarnings)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PUT("/orders/:id/cancel", h.AdminCancelOrder)
		admin.DELETE("/orders/:id", h.AdminDeleteOrder)
		admin.GET("/users", h.AdminGetAllUsers)
		admin.PUT("/users/:id/ban", h.AdminSetBanned)
		admin.DELETE("/users/:id", h.AdminDeleteUser)
		admin.GET("/earnings", h.AdminEarningsReport)
		admin.GET("/notifications/stats", h.AdminNotificationStats)
	}
}

// NewEngine builds the gin engine with the request id, logging, recovery and
// CORS middleware in front of every route.
func NewEngine(log *zap.Logger, h *handlers.Handler, jwtSecret []byte) *gin.Engine {
	r := gin.New()
	r.Use(logger.RequestID(), logger.GinMiddleware(log), logger.Recovery(log), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Peer Delivery API",
		})
	})

	SetupRoutes(r, h, jwtSecret)
	return r
}
