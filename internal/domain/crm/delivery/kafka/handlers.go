// Package kafka contains Kafka delivery handlers
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/usecase/business"
)

// Handlers contains Kafka message handlers
type Handlers struct {
	uc     *business.UseCase
	logger zerolog.Logger
}

// NewHandlers creates new Kafka handlers
func NewHandlers(uc *business.UseCase, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		logger: logger,
	}
}

// HandleLeadSubmitted handles a lead submitted through the event bus.
// The body is the same JSON document accepted by POST /api/leads.
func (h *Handlers) HandleLeadSubmitted(ctx context.Context, data []byte) (*dto.SubmitLeadResult, error) {
	var req dto.LeadRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.logger.Error().Err(err).Str("data", string(data)).Msg("Failed to unmarshal lead submitted event")
		return nil, fmt.Errorf("%w: %w", crmerrors.ErrInvalidLead, err)
	}

	result, err := h.uc.SubmitLead(ctx, req)
	if err != nil {
		h.logger.Error().Err(err).Str("phone", req.Phone).Msg("Failed to submit lead from event")
		return nil, err
	}

	if result.Outcome == dto.OutcomeDuplicate {
		h.logger.Info().Str("phone", req.Phone).Msg("Duplicate lead event skipped")
		return result, nil
	}

	h.logger.Info().Int64("lead_id", result.Lead.ID).Msg("Lead from event accepted")
	return result, nil
}
