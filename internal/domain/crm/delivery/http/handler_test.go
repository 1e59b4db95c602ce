package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/repository/memory"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/usecase/business"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/metrics"
)

const validBody = `{"fio":"Иван Петров","phone":"+7 999 123-45-67","district":"Центр","source":"site","quantity":3,"amount":1500.50}`

type nopSender struct{}

func (nopSender) Send(context.Context, dto.OutboundMessage) error { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishLeadCreated(context.Context, *entities.Lead) error { return nil }
func (nopPublisher) Close() error                                             { return nil }

type downProbe struct{}

func (downProbe) Ping(context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T, probe deps.StorageProbe) (*router.Router, deps.LeadRepository) {
	t.Helper()

	users := memory.NewUserRepository()
	leads := memory.NewLeadRepository()
	m := metrics.GetDefaultMetrics()
	broadcaster := business.NewBroadcaster(users, nopSender{},
		business.BroadcastOptions{Workers: 1, SendTimeout: time.Second}, m, zerolog.Nop())
	uc := business.NewUseCase(users, leads, nopPublisher{}, broadcaster, m, zerolog.Nop())

	rt := router.New()
	NewRouter(
		NewLeadHandler(uc, zerolog.Nop()),
		NewHealthHandler(probe, zerolog.Nop()),
		&config.LeadConfig{APIKey: "secret"},
		zerolog.Nop(),
	).RegisterRoutes(rt)

	return rt, leads
}

func do(rt *router.Router, method, uri, apiKey, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	req.SetBodyString(body)

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)

	rt.Handler(ctx)
	return ctx
}

func TestSubmitLead(t *testing.T) {
	rt, leads := newTestRouter(t, memory.NewProbe())

	ctx := do(rt, fasthttp.MethodPost, "/api/leads", "secret", validBody)
	assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	assert.Empty(t, ctx.Response.Body())

	exists, err := leads.ExistsByNormalizedPhone(context.Background(), "+79991234567")
	require.NoError(t, err)
	assert.True(t, exists)

	ctx = do(rt, fasthttp.MethodPost, "/api/leads", "secret",
		`{"fio":"Иван Петров","phone":"8(999)1234567","district":"Центр","source":"site","quantity":1,"amount":"10"}`)
	assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
	assert.Equal(t, "Lead with this phone already exists", string(ctx.Response.Body()))
}

func TestSubmitLead_RejectsBadAPIKey(t *testing.T) {
	rt, leads := newTestRouter(t, memory.NewProbe())

	for _, key := range []string{"", "wrong", "secret2"} {
		ctx := do(rt, fasthttp.MethodPost, "/api/leads", key, validBody)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode(), key)
		assert.Equal(t, "Unauthorized", string(ctx.Response.Body()))
	}

	exists, err := leads.ExistsByNormalizedPhone(context.Background(), "+79991234567")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSubmitLead_BadRequests(t *testing.T) {
	rt, _ := newTestRouter(t, memory.NewProbe())

	bodies := map[string]string{
		"malformed json":  `{"fio":`,
		"short fio":       `{"fio":"И","phone":"+79990000000","district":"Центр","source":"site","quantity":1,"amount":1}`,
		"missing amount":  `{"fio":"Иван","phone":"+79990000000","district":"Центр","source":"site","quantity":1}`,
		"precise amount":  `{"fio":"Иван","phone":"+79990000000","district":"Центр","source":"site","quantity":1,"amount":1.001}`,
		"negative amount": `{"fio":"Иван","phone":"+79990000000","district":"Центр","source":"site","quantity":1,"amount":-1}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ctx := do(rt, fasthttp.MethodPost, "/api/leads", "secret", body)
			assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
			assert.Contains(t, string(ctx.Response.Body()), `"success":false`)
		})
	}
}

func TestHealth(t *testing.T) {
	rt, _ := newTestRouter(t, memory.NewProbe())
	ctx := do(rt, fasthttp.MethodGet, "/health", "", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"status":"healthy"`)

	rt, _ = newTestRouter(t, downProbe{})
	ctx = do(rt, fasthttp.MethodGet, "/health", "", "")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "connection refused")
}
