// Package http contains the lead ingress and operational HTTP handlers
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/usecase/business"
	pkgerrors "github.com/PersifalJun/CRM-Telegram-Bot/pkg/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/pkg/httputil"
)

// APIKeyHeader carries the shared secret of lead submitters
const APIKeyHeader = "X-Api-Key"

const healthTimeout = 2 * time.Second

// LeadHandler accepts leads from the website form
type LeadHandler struct {
	uc     *business.UseCase
	mapper *pkgerrors.Mapper
	logger zerolog.Logger
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(uc *business.UseCase, logger zerolog.Logger) *LeadHandler {
	logger = logger.With().Str("handler", "leads").Logger()
	return &LeadHandler{
		uc:     uc,
		mapper: pkgerrors.NewMapper(logger),
		logger: logger,
	}
}

// Submit handles POST /api/leads
func (h *LeadHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req dto.LeadRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.logger.Debug().Err(err).Msg("Malformed lead body")
		httputil.WriteErrorResponse(ctx, fmt.Sprintf("%s: malformed JSON", crmerrors.ErrInvalidLead), fasthttp.StatusBadRequest)
		return
	}

	result, err := h.uc.SubmitLead(ctx, req)
	if err != nil {
		status, msg := h.mapper.MapErrorToHTTP(err)
		httputil.WriteErrorResponse(ctx, msg, status)
		return
	}

	if result.Outcome == dto.OutcomeDuplicate {
		httputil.WriteText(ctx, crmerrors.ErrLeadDuplicate.Error(), fasthttp.StatusConflict)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusCreated)
}

// RequireAPIKey rejects requests whose X-Api-Key differs from the configured key
func RequireAPIKey(cfg *config.LeadConfig) httputil.Middleware {
	expected := []byte(cfg.APIKey)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			got := ctx.Request.Header.Peek(APIKeyHeader)
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				httputil.WriteText(ctx, crmerrors.ErrInvalidAPIKey.Error(), fasthttp.StatusUnauthorized)
				return
			}
			next(ctx)
		}
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Storage   string    `json:"storage,omitempty"`
}

// HealthHandler reports storage reachability
type HealthHandler struct {
	probe  deps.StorageProbe
	logger zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(probe deps.StorageProbe, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		probe:  probe,
		logger: logger,
	}
}

// Handle handles GET /health
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	pingCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()}
	err := h.probe.Ping(pingCtx)
	if err != nil {
		resp.Status = "unhealthy"
		resp.Storage = err.Error()
		h.logger.Warn().Err(err).Msg("Health check failed")
	}

	httputil.WriteHealthResponse(ctx, resp, err == nil)
}
