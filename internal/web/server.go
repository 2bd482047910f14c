// Package web serves the HTML pages and form posts.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"attendance-monitor/internal/account"
	"attendance-monitor/internal/attendance"
	"attendance-monitor/internal/auth"
	"attendance-monitor/internal/httpmiddleware"
	"attendance-monitor/internal/reporting"
	"attendance-monitor/internal/store"
)

// Deps is everything the router needs. Redis may be nil.
type Deps struct {
	Accounts     *account.Service
	Attendance   *attendance.Service
	Reports      *reporting.Service
	Chart        reporting.ChartRenderer
	Sessions     *auth.Middleware
	LoginLimiter httpmiddleware.Limiter
	DB           *store.DB
	Redis        *store.Redis
	Logger       zerolog.Logger
}

type handlers struct {
	Deps
	lg zerolog.Logger
}

// NewRouter wires middleware, templates and routes.
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	h := &handlers{Deps: d, lg: d.Logger.With().Str("component", "web").Logger()}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.RequestLogger(d.Logger, "/healthz", "/metrics"))
	r.Use(httpmiddleware.Metrics())
	r.Use(httpmiddleware.SecurityHeaders())
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusNotFound, "Not Found") })

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.healthz)

	r.GET("/", h.index)
	r.GET("/login", h.loginForm)
	login := []gin.HandlerFunc{h.login}
	if d.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{httpmiddleware.RateLimit(d.LoginLimiter, d.Logger)}, login...)
	}
	r.POST("/login", login...)

	private := r.Group("/", d.Sessions.RequireSession())
	private.GET("/logout", h.logout)
	private.GET("/attendance", h.attendancePage)
	private.POST("/attendance", h.submitAttendance)
	private.GET("/reports", h.reports)
	private.POST("/delete_attendance/:id", h.deleteAttendance)
	private.GET("/edit_attendance/:id", h.editForm)
	private.POST("/edit_attendance/:id", h.editAttendance)

	admin := private.Group("/", auth.RequireAdmin())
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/analytics", h.analytics)
	admin.GET("/register", h.registerForm)
	admin.POST("/register", h.register)

	return r, nil
}

func (h *handlers) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbHealthy := h.DB.Ping(ctx) == nil
	body := gin.H{"status": "ok", "db": dbHealthy}
	if h.Redis != nil {
		body["redis"] = h.Redis.Healthy(ctx)
	}
	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
