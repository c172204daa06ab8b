package api

import (
	"log"
	stdhttp "net/http"

	intconfig "washops/internal/config"
	h "washops/internal/http/handlers"
	"washops/internal/http/middleware"
	"washops/internal/metrics"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, prom *metrics.Prom) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if prom != nil {
		r.GET("/metrics", gin.WrapH(prom.Handler()))
	}

	requireAuth := middleware.RequireAuth([]byte(env.JWTSecret))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/health/db", h.DBCheck)
		api.GET("/routes", h.Routes)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)

		// Scan source lifecycle
		scan := api.Group("/scan", requireAuth)
		scan.POST("/sessions", h.OpenScanSession)
		scan.POST("/sessions/:id/decode", h.ScanDecode)
		scan.POST("/sessions/:id/reset", h.ResetScanSession)
		scan.DELETE("/sessions/:id", h.CloseScanSession)

		// Manual verification and attempt feeds
		api.POST("/verify", requireAuth, h.ManualVerify)
		verifications := api.Group("/verifications", requireAuth)
		verifications.GET("/recent", h.RecentVerifications)
		verifications.GET("/audit", h.VerificationAudit)

		// Order session
		session := api.Group("/session", requireAuth)
		session.GET("", h.GetSession)
		session.DELETE("", h.AbandonSession)
		session.POST("/vehicle", h.SelectVehicle)
		session.POST("/vehicles", h.AddVehicle)
		session.POST("/start", h.StartWash)
		session.POST("/end", h.EndWash)

		// Active registry and history
		washes := api.Group("/washes", requireAuth)
		washes.GET("/active", h.ActiveWashes)
		washes.POST("/active/refresh", h.RefreshActiveWashes)
		washes.GET("/history", h.WashHistory)
		washes.GET("/stats", h.WashStats)

		reports := api.Group("/reports", requireAuth)
		reports.GET("/daily.pdf", h.DailyReport)
	}

	h.SetRouter(r)
	return r
}
