package telegram

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
)

// MaxMessageLength is the Telegram limit for one text message
const MaxMessageLength = 4096

// botAPI is the part of the Telegram client used for sending
type botAPI interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
}

// Sender delivers outbound messages through the Bot API.
// Implements deps.MessageSender interface
type Sender struct {
	api    botAPI
	logger zerolog.Logger
}

// NewSender creates new Telegram sender
func NewSender(api botAPI, logger zerolog.Logger) *Sender {
	return &Sender{
		api:    api,
		logger: logger,
	}
}

// Send sends msg, splitting text over the length limit. The keyboard goes with the last part.
func (s *Sender) Send(ctx context.Context, msg dto.OutboundMessage) error {
	if msg.Text == "" {
		s.logger.Warn().Int64("chat_id", msg.ChatID).Msg("Attempt to send empty message")
		return fmt.Errorf("message text cannot be empty")
	}

	parts := splitMessage(msg.Text, MaxMessageLength)
	for i, part := range parts {
		params := &tgbot.SendMessageParams{
			ChatID: msg.ChatID,
			Text:   part,
		}
		if i == len(parts)-1 {
			params.ReplyMarkup = replyMarkup(msg)
		}

		if _, err := s.api.SendMessage(ctx, params); err != nil {
			return s.handleSendMessageError(msg.ChatID, err)
		}
	}

	s.logger.Debug().
		Int64("chat_id", msg.ChatID).
		Int("message_length", len(msg.Text)).
		Int("parts", len(parts)).
		Msg("Message sent")

	return nil
}

func replyMarkup(msg dto.OutboundMessage) models.ReplyMarkup {
	if len(msg.Buttons) > 0 {
		rows := make([][]models.InlineKeyboardButton, 0, len(msg.Buttons))
		for _, row := range msg.Buttons {
			buttons := make([]models.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, models.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
			}
			rows = append(rows, buttons)
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	}

	if msg.RemoveKeyboard {
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}

	return nil
}

func (s *Sender) handleSendMessageError(chatID int64, err error) error {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "Forbidden"):
		s.logger.Warn().Int64("chat_id", chatID).Msg("User blocked the bot")
		return fmt.Errorf("user blocked the bot: %w", err)

	case strings.Contains(errorMsg, "chat not found"):
		s.logger.Warn().Int64("chat_id", chatID).Msg("Chat not found")
		return fmt.Errorf("chat not found: %w", err)

	case strings.Contains(errorMsg, "Too Many Requests"):
		s.logger.Warn().Int64("chat_id", chatID).Msg("Rate limit exceeded")
		return fmt.Errorf("rate limit exceeded: %w", err)

	default:
		s.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send message")
		return fmt.Errorf("failed to send message: %w", err)
	}
}

// splitMessage cuts text into parts of at most limit bytes, preferring line breaks
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > limit {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}

			if len(line) > limit {
				parts = append(parts, splitLongLine(line, limit)...)
				continue
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// splitLongLine cuts on spaces where possible and never inside a rune
func splitLongLine(line string, limit int) []string {
	var parts []string
	start := 0

	for start < len(line) {
		end := min(start+limit, len(line))

		if end < len(line) {
			if lastSpace := strings.LastIndex(line[start:end], " "); lastSpace > 0 {
				end = start + lastSpace
			}
			for end > start+1 && !utf8.RuneStart(line[end]) {
				end--
			}
		}

		parts = append(parts, line[start:end])
		start = end

		for start < len(line) && line[start] == ' ' {
			start++
		}
	}

	return parts
}
