package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"launchhub/internal/handler"
	"launchhub/pkg/otel"
	"launchhub/pkg/rbac"
)

// Handlers groups every HTTP handler the router mounts. Admin may be nil
// when the outbox is not wired.
type Handlers struct {
	Auth            *handler.AuthHandler
	Projects        *handler.ProjectHandler
	Progress        *handler.ProgressHandler
	Insights        *handler.InsightHandler
	Exports         *handler.ExportHandler
	Recommendations *handler.RecommendationHandler
	Templates       *handler.TemplateHandler
	Analytics       *handler.AnalyticsHandler
	Admin           *handler.AdminHandler
}

// ReadyFunc reports whether backing stores are reachable.
type ReadyFunc func(ctx context.Context) error

type Router struct {
	Engine *gin.Engine
}

func NewRouter(h Handlers, jwtSecret string, ready ReadyFunc, logger *zap.Logger) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), otel.GinMiddleware(), TraceMiddleware(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public（无需认证）
	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)

	// Protected（需要 JWT）
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/projects", RequirePermission(rbac.PermissionReadProject), h.Projects.List)
		auth.POST("/projects", RequirePermission(rbac.PermissionCreateProject), h.Projects.Create)
		auth.GET("/projects/:id", RequirePermission(rbac.PermissionReadProject), h.Projects.Get)
		auth.DELETE("/projects/:id", RequirePermission(rbac.PermissionDeleteProject), h.Projects.Delete)
		auth.PUT("/projects/:id/phases/:phase", RequirePermission(rbac.PermissionUpdateProject), h.Projects.UpdatePhase)

		auth.GET("/projects/:id/progress", RequirePermission(rbac.PermissionReadProject), h.Progress.Get)
		auth.POST("/projects/:id/progress", RequirePermission(rbac.PermissionUpdateProject), h.Progress.Initialize)
		auth.PUT("/projects/:id/progress/:phase/steps/:step", RequirePermission(rbac.PermissionUpdateProject), h.Progress.UpdateStep)

		auth.GET("/projects/:id/insights", RequirePermission(rbac.PermissionReadProject), h.Insights.Get)
		auth.GET("/projects/:id/export", RequirePermission(rbac.PermissionExportProject), h.Exports.Export)

		recs := auth.Group("/recommendations", RequirePermission(rbac.PermissionRecommend))
		recs.POST("/technologies", h.Recommendations.Technologies)
		recs.POST("/architecture", h.Recommendations.Architecture)
		recs.POST("/performance", h.Recommendations.Performance)
		recs.POST("/security", h.Recommendations.Security)
		recs.POST("/cost", h.Recommendations.Cost)
		recs.POST("/plan", h.Recommendations.Plan)

		auth.GET("/templates", h.Templates.List)
		auth.GET("/templates/:id", h.Templates.Get)
		auth.POST("/templates/:id/render", RequirePermission(rbac.PermissionRenderTemplate), h.Templates.Render)

		auth.GET("/analytics", RequirePermission(rbac.PermissionReadAnalytics), h.Analytics.Summary)

		if h.Admin != nil {
			admin := auth.Group("/admin", RequirePermission(rbac.PermissionManageSystem))
			admin.POST("/outbox/replay", h.Admin.ReplayOutboxEvent)
			admin.POST("/outbox/replay-failed", h.Admin.ReplayFailedEvents)
			admin.GET("/errors", h.Admin.Errors)
			admin.POST("/errors/:id/resolve", h.Admin.ResolveError)
		}
	}

	return &Router{Engine: r}
}

func (r *Router) Run(addr string) error {
	return r.Engine.Run(addr)
}
