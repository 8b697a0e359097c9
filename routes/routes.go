package routes

import (
	"washcenter-backend/config"
	"washcenter-backend/controllers"
	"washcenter-backend/gateway"
	"washcenter-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg config.App, gw *gateway.Gateway) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(config.PerformanceLogger(cfg.SlowRequest))

	centers := &controllers.CenterController{Gateway: gw}
	bookings := &controllers.BookingController{Gateway: gw}
	dashboard := &controllers.DashboardController{Gateway: gw}
	reminders := &controllers.ReminderController{Gateway: gw}

	api := r.Group("/api")

	// Browsing is open to guests
	public := api.Group("", utils.AuthMiddleware(cfg.JWTSecret, false))
	{
		public.GET("/centers", centers.GetCenters)
		public.GET("/centers/:id", centers.GetCenter)
	}

	secured := api.Group("", utils.AuthMiddleware(cfg.JWTSecret, true))
	{
		secured.POST("/centers", centers.CreateCenter)
		secured.PUT("/centers/:id", centers.UpdateCenter)
		secured.DELETE("/centers/:id", centers.DeleteCenter)

		secured.POST("/bookings", bookings.CreateBooking)
		secured.GET("/bookings", bookings.GetBookings)
		secured.GET("/bookings/:id", bookings.GetBooking)
		secured.PUT("/bookings/:id", bookings.UpdateBookingStatus)
		secured.GET("/bookings/:id/events", bookings.GetBookingEvents)

		secured.GET("/dashboard", dashboard.GetDashboardOverview)
		secured.GET("/reminders", reminders.GetReminderLogs)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
