package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "github.com/KennyKvn001/BusB/internal/config"
	h "github.com/KennyKvn001/BusB/internal/http/handlers"
	"github.com/KennyKvn001/BusB/internal/http/middleware"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	middleware.SetJWTSecret(env.JWTSecret)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"code":   "resource_not_found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		routes := api.Group("/routes", middleware.AuthOptional())
		routes.GET("", h.GetRoutes)
		routes.GET("/popular", h.GetPopularRoutes)
		routes.GET("/search", h.SearchRoutes)
		routes.GET("/:id", h.GetRouteByID)
		routes.GET("/:id/availability", h.GetRouteAvailability)

		buses := api.Group("/buses", middleware.AuthOptional())
		buses.GET("", h.GetBuses)
		buses.GET("/:id", h.GetBusByID)

		tickets := api.Group("/tickets")
		tickets.POST("", middleware.AuthOptional(), h.CreateTicket)
		tickets.GET("/reference/:reference", h.GetTicketByReference)

		authed := tickets.Group("", middleware.AuthRequired())
		authed.GET("", h.GetTickets)
		authed.GET("/my-tickets", h.GetMyTickets)
		authed.GET("/:id", h.GetTicketByID)
		authed.PUT("/:id", h.UpdateTicket)
		authed.DELETE("/:id", h.CancelTicket)
		authed.POST("/:id/check-in", h.CheckInTicket)
		authed.GET("/:id/e-ticket", h.GetTicketETicketPDF)
	}

	return r
}
