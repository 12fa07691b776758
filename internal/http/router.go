package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	intconfig "easyrent/internal/config"
	h "easyrent/internal/http/handlers"
	"easyrent/internal/http/middleware"
)

// NewRouter wires every endpoint. Routes under requireAuth receive the
// caller's identity from the session token.
func NewRouter(env intconfig.Env, hd *h.Handler, identity middleware.IdentityResolver, idem middleware.IdempotencyStore) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message":    "route not found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireIdentity(identity)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", hd.Register)
		auth.POST("/login", hd.Login)
		auth.POST("/logout", requireAuth, hd.Logout)
		auth.GET("/me", requireAuth, hd.Me)

		// Vehicles
		vehicles := api.Group("/vehicles")
		vehicles.GET("", hd.ListVehicles)
		vehicles.GET("/:id", hd.GetVehicle)

		// Geo proxy
		geo := api.Group("/geo", requireAuth)
		geo.GET("/reverse", hd.ReverseGeocode)
		geo.GET("/search", hd.SearchAddress)
		api.POST("/directions", requireAuth, hd.Directions)

		// Booking workflow
		sessions := api.Group("/booking-sessions", requireAuth)
		sessions.POST("", hd.StartSession)
		sessions.GET("/:sid", hd.GetSession)
		sessions.DELETE("/:sid", hd.DiscardSession)
		sessions.PUT("/:sid/picker", hd.SetPicker)
		sessions.POST("/:sid/map-click", hd.MapClick)
		sessions.PUT("/:sid/locations/:endpoint", hd.SetAddress)
		sessions.PUT("/:sid/dates", hd.SetDates)
		sessions.POST("/:sid/quote", hd.CalculatePrice)
		sessions.PUT("/:sid/consent", hd.GiveConsent)
		sessions.POST("/:sid/driver-form", hd.OpenDriverForm)
		sessions.DELETE("/:sid/driver-form", hd.CloseDriverForm)
		sessions.POST("/:sid/driver-details", hd.SubmitDriverDetails)
		sessions.POST("/:sid/submit", hd.SubmitBooking)

		// Bookings
		bookings := api.Group("/bookings", requireAuth)
		bookings.POST("", middleware.Idempotency(idem), hd.CreateBooking)
		bookings.GET("", hd.ListBookings)
		bookings.DELETE("/:id", hd.CancelBooking)
		bookings.POST("/:id/feedback", hd.SaveFeedback)
		bookings.GET("/:id/receipt", hd.DownloadReceipt)
		bookings.POST("/:id/payment", hd.SimulatePayment)
		// legacy path
		api.GET("/bookings-history", requireAuth, hd.ListBookings)
	}

	return r
}
