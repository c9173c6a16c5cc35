package main

import (
	"voicewatch/internal/auth"
	"voicewatch/internal/httpapi"
	"voicewatch/internal/realtime"
	"voicewatch/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, wh webhook.Handler, hub *realtime.Hub, reg *prometheus.Registry, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Platform webhooks are authenticated by signature, not by JWT.
	r.POST("/webhooks/voice", wh.HandleEvents)

	// Token issuance stays outside the protected group.
	r.POST("/v1/auth/login", h.Login)

	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		calls := v1.Group("/calls")
		{
			calls.GET("", h.ListCalls)
			calls.GET("/:call_id", h.GetCall)
			calls.POST("", auth.RequireAnyRole(auth.RoleAdmin), h.WatchCall)
			calls.DELETE("/:call_id", auth.RequireAnyRole(auth.RoleAdmin), h.UnwatchCall)
			calls.POST("/:call_id/events", auth.RequireAnyRole(auth.RoleAdmin), h.IngestEvents)
			calls.POST("/:call_id/recording", auth.RequireAnyRole(auth.RoleAdmin), h.DownloadRecording)
		}

		asst := v1.Group("/assistants")
		{
			asst.GET("", h.ListAssistants)
			asst.GET("/:assistant_id", h.GetAssistant)
			asst.POST("", auth.RequireAnyRole(auth.RoleAdmin), h.CreateAssistant)
			asst.PATCH("/:assistant_id", auth.RequireAnyRole(auth.RoleAdmin), h.UpdateAssistant)
			asst.DELETE("/:assistant_id", auth.RequireAnyRole(auth.RoleAdmin), h.DeleteAssistant)
		}

		v1.GET("/numbers", h.ListNumbers)
		v1.GET("/reports/calls", h.CallsSummary)
		v1.GET("/stream", realtime.ServeWS(hub))
	}
}
