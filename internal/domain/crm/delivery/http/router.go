package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	"github.com/PersifalJun/CRM-Telegram-Bot/pkg/httputil"
)

// Router registers CRM HTTP routes
type Router struct {
	leads  *LeadHandler
	health *HealthHandler
	cfg    *config.LeadConfig
	logger zerolog.Logger
}

// NewRouter creates a new CRM HTTP router
func NewRouter(leads *LeadHandler, health *HealthHandler, cfg *config.LeadConfig, logger zerolog.Logger) *Router {
	return &Router{
		leads:  leads,
		health: health,
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterRoutes registers lead ingress and health routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.GET("/health", r.health.Handle)

	api := httputil.NewMiddlewareGroup(rt.Group("/api")).
		Use(httputil.AccessLog(r.logger), RequireAPIKey(r.cfg))
	api.POST("/leads", r.leads.Submit)

	r.logger.Info().Msg("CRM HTTP routes registered")
}
