package api

import (
	"solar_registration/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, svc *service.Service) {
	h := NewHandler(svc)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/stats", h.GetStats)
		api.GET("/fields", h.GetFields)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", h.CreateSession)
			sessions.GET("/:id", h.GetSession)
			sessions.DELETE("/:id", h.DeleteSession)
			sessions.PATCH("/:id/main", h.UpdateMain)
			sessions.PUT("/:id/view", h.SetActiveView)
			sessions.POST("/:id/submit", h.Submit)

			subs := sessions.Group("/:id/subclients")
			{
				subs.POST("", h.AddSubClient)
				subs.PATCH("/:sub", h.UpdateSubClient)
				subs.DELETE("/:sub", h.RemoveSubClient)
				subs.POST("/:sub/partclients", h.AddPartClient)
				subs.PATCH("/:sub/partclients/:part", h.UpdatePartClient)
				subs.DELETE("/:sub/partclients/:part", h.RemovePartClient)
			}
		}
	}
}
