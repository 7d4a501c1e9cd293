package server

import (
	"fmt"
	"net/http"

	"plan-dashboard/internal/config"
	"plan-dashboard/internal/handlers"
	"plan-dashboard/internal/logging"
	"plan-dashboard/internal/middleware"
	"plan-dashboard/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const sessionName = "plan_session"

func NewRouter(cfg *config.Config, h *handlers.Handler, reg *prometheus.Registry, log *zap.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(logging.GinLogger(log), gin.Recovery())

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = int64(cfg.Media.MaxBytes) + 1<<20

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.InjectAdmin())

	// PAGES
	r.GET("/", h.Overview)
	r.GET("/thrusts", h.Thrusts)
	r.GET("/roadmap", h.Roadmap)
	r.GET("/timeline", h.Timeline)
	r.GET("/initiatives/:id", h.ShowInitiative)
	r.GET("/dashboard", h.Dashboard)
	r.GET("/kpis/:id", h.ShowKPI)
	r.GET("/financials", h.Financials)
	r.GET("/stories", h.Stories)
	r.GET("/media/:id/raw", h.RawMedia)

	// ADMIN MODE
	r.GET("/admin/login", h.ShowLogin)
	r.POST("/admin/login", h.Login)
	r.POST("/admin/logout", h.Logout)

	admin := r.Group("/")
	admin.Use(middleware.RequireAdmin())

	// initiatives
	admin.GET("/initiatives/new", h.ShowNewInitiative)
	admin.POST("/initiatives", h.CreateInitiative)
	admin.POST("/initiatives/reset", h.ResetAllProgress)
	admin.POST("/initiatives/:id", h.UpdateInitiative)
	admin.POST("/initiatives/:id/delete", h.DeleteInitiative)

	// kpis
	admin.GET("/kpis/new", h.ShowNewKPI)
	admin.POST("/kpis", h.CreateKPI)
	admin.GET("/kpis/:id/edit", h.ShowEditKPI)
	admin.POST("/kpis/:id", h.UpdateKPI)
	admin.POST("/kpis/:id/delete", h.DeleteKPI)

	// roadmap and financials
	admin.POST("/roadmap/tiers/:id/milestones", h.AddMilestone)
	admin.POST("/roadmap/milestones/:id", h.UpdateMilestone)
	admin.POST("/roadmap/milestones/:id/delete", h.DeleteMilestone)
	admin.POST("/financials/:thrust", h.UpdateFinancial)

	// page text
	admin.POST("/direction", h.UpdateDirection)
	admin.POST("/objectives/:id", h.UpdateObjective)
	admin.POST("/stories", h.AddStory)
	admin.POST("/stories/:id", h.UpdateStory)
	admin.POST("/stories/:id/delete", h.DeleteStory)

	// media
	admin.GET("/media", h.MediaLibrary)
	admin.POST("/media", h.UploadMedia)
	admin.POST("/media/:id/rename", h.RenameMedia)
	admin.POST("/media/:id/delete", h.DeleteMedia)
	admin.POST("/media/:id/logo", h.SetLogo)
	admin.POST("/logo/reset", h.ResetLogo)

	admin.GET("/audit", h.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	return r, nil
}
