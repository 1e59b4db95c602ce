// Package business contains business logic for the CRM domain
package business

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/deps"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/entities"
	crmerrors "github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/errors"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/pagination"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/phone"
	"github.com/PersifalJun/CRM-Telegram-Bot/internal/infrastructure/metrics"
	pkgerrors "github.com/PersifalJun/CRM-Telegram-Bot/pkg/errors"
)

const (
	amountScale         = 2
	amountIntegerDigits = 12
)

// UseCase contains business logic for subscribers and leads
type UseCase struct {
	users       deps.UserRepository
	leads       deps.LeadRepository
	publisher   deps.LeadEventPublisher
	broadcaster *Broadcaster
	validate    *validator.Validate
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewUseCase creates a new UseCase instance
func NewUseCase(
	users deps.UserRepository,
	leads deps.LeadRepository,
	publisher deps.LeadEventPublisher,
	broadcaster *Broadcaster,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		users:       users,
		leads:       leads,
		publisher:   publisher,
		broadcaster: broadcaster,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		metrics:     m,
		logger:      logger.With().Str("component", "crm-usecase").Logger(),
	}
}

// EnsureSubscriber registers an unseen chat with notifications off.
// It reports whether a record was created.
func (uc *UseCase) EnsureSubscriber(ctx context.Context, chatID int64, profile *dto.Profile) (bool, error) {
	_, err := uc.users.FindByChatID(ctx, chatID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, crmerrors.ErrUserNotFound) {
		return false, err
	}

	user := &entities.User{ChatID: &chatID}
	applyProfile(user, profile)

	if err := uc.users.Create(ctx, user); err != nil {
		// A concurrent event for the same chat won the insert
		if errors.Is(err, crmerrors.ErrChatAlreadyExists) {
			return false, nil
		}
		return false, err
	}

	uc.logger.Info().Int64("chat_id", chatID).Int64("user_id", user.ID).Msg("New chat registered")
	return true, nil
}

// Subscribe turns notifications on for chatID, creating the record if needed
func (uc *UseCase) Subscribe(ctx context.Context, chatID int64, profile *dto.Profile) (dto.SubscribeOutcome, error) {
	user, err := uc.users.FindByChatID(ctx, chatID)
	switch {
	case errors.Is(err, crmerrors.ErrUserNotFound):
		user = &entities.User{ChatID: &chatID, Notify: true}
		applyProfile(user, profile)
		if err := uc.users.Create(ctx, user); err != nil {
			return dto.SubscribeCreated, fmt.Errorf("create subscriber: %w", err)
		}
		uc.logger.Info().Int64("chat_id", chatID).Msg("Subscriber created with notifications on")
		return dto.SubscribeCreated, nil
	case err != nil:
		return dto.SubscribeAlready, err
	}

	if user.Notify {
		return dto.SubscribeAlready, nil
	}

	user.Notify = true
	applyProfile(user, profile)
	if err := uc.users.Save(ctx, user); err != nil {
		return dto.SubscribeEnabled, fmt.Errorf("enable notifications: %w", err)
	}

	uc.logger.Info().Int64("chat_id", chatID).Msg("Notifications enabled")
	return dto.SubscribeEnabled, nil
}

// Unsubscribe turns notifications off for chatID
func (uc *UseCase) Unsubscribe(ctx context.Context, chatID int64) (dto.UnsubscribeOutcome, error) {
	user, err := uc.users.FindByChatID(ctx, chatID)
	if errors.Is(err, crmerrors.ErrUserNotFound) {
		return dto.UnsubscribeNoRecord, nil
	}
	if err != nil {
		return dto.UnsubscribeNoRecord, err
	}

	if !user.Notify {
		return dto.UnsubscribeAlreadyOff, nil
	}

	user.Notify = false
	if err := uc.users.Save(ctx, user); err != nil {
		return dto.UnsubscribeDisabled, fmt.Errorf("disable notifications: %w", err)
	}

	uc.logger.Info().Int64("chat_id", chatID).Msg("Notifications disabled")
	return dto.UnsubscribeDisabled, nil
}

// RemoveSubscriber deletes the record bound to chatID and reports whether one existed
func (uc *UseCase) RemoveSubscriber(ctx context.Context, chatID int64) (bool, error) {
	deleted, err := uc.users.DeleteByChatID(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("delete subscriber: %w", err)
	}
	return deleted, nil
}

// Forget deletes the caller's own data on /stop
func (uc *UseCase) Forget(ctx context.Context, chatID int64) error {
	deleted, err := uc.RemoveSubscriber(ctx, chatID)
	if err != nil {
		return err
	}

	if deleted {
		uc.logger.Info().Int64("chat_id", chatID).Msg("User data deleted on request")
	} else {
		uc.logger.Info().Int64("chat_id", chatID).Msg("Stop requested by chat without stored data")
	}
	return nil
}

// FindUserByID looks a user up by primary key
func (uc *UseCase) FindUserByID(ctx context.Context, id int64) (*entities.User, error) {
	return uc.users.FindByID(ctx, id)
}

// FindUserByPhone looks a user up by any phone spelling
func (uc *UseCase) FindUserByPhone(ctx context.Context, raw string) (*entities.User, error) {
	return uc.users.FindByNormalizedPhone(ctx, phone.Normalize(strings.TrimSpace(raw)))
}

// ListSubscribers returns one page of opted-in users
func (uc *UseCase) ListSubscribers(ctx context.Context, w pagination.Window) (pagination.Page[entities.User], error) {
	return pagination.Fetch(ctx, w, uc.users.ListOptedIn)
}

// FindByDistrict returns one page of users in district
func (uc *UseCase) FindByDistrict(ctx context.Context, district string, w pagination.Window) (pagination.Page[entities.User], error) {
	return pagination.Fetch(ctx, w, func(ctx context.Context, w pagination.Window) ([]entities.User, int64, error) {
		return uc.users.FindByDistrict(ctx, district, w)
	})
}

// FindBySource returns one page of users from source
func (uc *UseCase) FindBySource(ctx context.Context, source string, w pagination.Window) (pagination.Page[entities.User], error) {
	return pagination.Fetch(ctx, w, func(ctx context.Context, w pagination.Window) ([]entities.User, int64, error) {
		return uc.users.FindBySource(ctx, source, w)
	})
}

// ListLeads returns one page of leads
func (uc *UseCase) ListLeads(ctx context.Context, w pagination.Window) (pagination.Page[entities.Lead], error) {
	return pagination.Fetch(ctx, w, uc.leads.FindPage)
}

// AddContact stores a CRM contact without a chat
func (uc *UseCase) AddContact(ctx context.Context, req dto.ContactRequest) (*entities.User, error) {
	req.Fio = strings.TrimSpace(req.Fio)
	req.Phone = strings.TrimSpace(req.Phone)
	req.District = strings.TrimSpace(req.District)
	req.Source = strings.TrimSpace(req.Source)

	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	quantity := req.Quantity
	user := &entities.User{
		Fio:             req.Fio,
		Phone:           req.Phone,
		PhoneNormalized: phone.Normalize(req.Phone),
		District:        req.District,
		Source:          req.Source,
		Quantity:        &quantity,
	}

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	uc.logger.Info().Int64("user_id", user.ID).Str("phone", user.PhoneNormalized).Msg("CRM contact added")
	return user, nil
}

// IsDuplicateLead reports whether a lead with an equivalent phone exists
func (uc *UseCase) IsDuplicateLead(ctx context.Context, rawPhone string) (bool, error) {
	return uc.leads.ExistsByNormalizedPhone(ctx, phone.Normalize(strings.TrimSpace(rawPhone)))
}

// SubmitLead validates, deduplicates and stores a lead, then notifies subscribers.
// Duplicates are reported through the outcome, not as an error.
func (uc *UseCase) SubmitLead(ctx context.Context, req dto.LeadRequest) (*dto.SubmitLeadResult, error) {
	lead, err := uc.buildLead(req)
	if err != nil {
		uc.metrics.RecordLeadSubmission("invalid")
		return nil, err
	}

	exists, err := uc.leads.ExistsByNormalizedPhone(ctx, lead.PhoneNormalized)
	if err != nil {
		uc.logger.Error().Err(err).Str("phone", lead.PhoneNormalized).Msg("Failed to check lead duplicate")
		return nil, err
	}
	if exists {
		return uc.duplicate(lead), nil
	}

	if err := uc.leads.Create(ctx, lead); err != nil {
		if errors.Is(err, crmerrors.ErrLeadDuplicate) {
			return uc.duplicate(lead), nil
		}
		uc.logger.Error().Err(err).Str("phone", lead.PhoneNormalized).Msg("Failed to save lead")
		return nil, err
	}

	uc.metrics.RecordLeadSubmission(string(dto.OutcomeCreated))
	uc.logger.Info().Int64("lead_id", lead.ID).Str("phone", lead.PhoneNormalized).Msg("Lead saved")

	// The lead is stored; nothing below may fail the submission
	notifyCtx := context.WithoutCancel(ctx)

	if err := uc.publisher.PublishLeadCreated(notifyCtx, lead); err != nil {
		uc.logger.Warn().Err(err).Int64("lead_id", lead.ID).Msg("Failed to publish lead event")
	}

	report, err := uc.broadcaster.Broadcast(notifyCtx, lead)
	if err != nil {
		uc.logger.Error().Err(err).Int64("lead_id", lead.ID).Msg("Lead broadcast failed")
	}

	return &dto.SubmitLeadResult{
		Outcome: dto.OutcomeCreated,
		Lead:    lead,
		Report:  report,
	}, nil
}

func (uc *UseCase) duplicate(lead *entities.Lead) *dto.SubmitLeadResult {
	uc.metrics.RecordLeadSubmission(string(dto.OutcomeDuplicate))
	uc.logger.Info().Str("phone", lead.PhoneNormalized).Msg("Duplicate lead rejected")
	return &dto.SubmitLeadResult{Outcome: dto.OutcomeDuplicate}
}

func (uc *UseCase) buildLead(req dto.LeadRequest) (*entities.Lead, error) {
	req.Fio = strings.TrimSpace(req.Fio)
	req.Phone = strings.TrimSpace(req.Phone)
	req.District = strings.TrimSpace(req.District)
	req.Source = strings.TrimSpace(req.Source)

	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := validateAmount(*req.Amount); err != nil {
		return nil, err
	}

	return &entities.Lead{
		Fio:             req.Fio,
		Phone:           req.Phone,
		PhoneNormalized: phone.Normalize(req.Phone),
		District:        req.District,
		Source:          req.Source,
		Quantity:        *req.Quantity,
		Amount:          *req.Amount,
	}, nil
}

// validateAmount enforces numeric(14,2): non-negative, at most 12 integer and 2 fraction digits
func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return pkgerrors.NewValidationError("amount: must be >= 0")
	}
	if !amount.Equal(amount.Truncate(amountScale)) {
		return pkgerrors.NewValidationError("amount: at most 2 fractional digits")
	}
	if len(amount.Truncate(0).String()) > amountIntegerDigits {
		return pkgerrors.NewValidationError("amount: at most 12 integer digits")
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return pkgerrors.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}
	return pkgerrors.NewValidationError(strings.Join(msgs, "; "))
}

func applyProfile(user *entities.User, profile *dto.Profile) {
	if profile == nil {
		return
	}
	user.Username = profile.Username
	user.FirstName = profile.FirstName
	user.LastName = profile.LastName
}
