// Package workers contains background workers for the CRM domain
package workers

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	pkgerrors "github.com/PersifalJun/CRM-Telegram-Bot/pkg/errors"
)

// MessageReader is the part of kafka.Reader the consumer needs
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// LeadHandler processes one lead submitted event
type LeadHandler interface {
	HandleLeadSubmitted(ctx context.Context, data []byte) (*dto.SubmitLeadResult, error)
}

// LeadConsumer consumes lead submitted events from Kafka
type LeadConsumer struct {
	reader  MessageReader
	handler LeadHandler
	logger  zerolog.Logger
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewLeadConsumer creates new Kafka consumer for submitted leads
func NewLeadConsumer(reader MessageReader, handler LeadHandler, logger zerolog.Logger) *LeadConsumer {
	ctx, cancel := context.WithCancel(context.Background())

	return &LeadConsumer{
		reader:  reader,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start starts consuming messages from Kafka
func (c *LeadConsumer) Start() {
	c.logger.Info().Msg("Starting Kafka lead consumer...")

	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.ReadMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					c.logger.Info().Msg("Kafka lead consumer stopped by context cancellation")
					return
				}
				c.logger.Error().Err(err).Msg("Failed to read message from Kafka")
				continue
			}

			c.logger.Debug().
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Received message from Kafka")

			c.handle(msg)
		}
	}()
}

func (c *LeadConsumer) handle(msg kafka.Message) {
	_, err := c.handler.HandleLeadSubmitted(c.ctx, msg.Value)
	switch {
	case err == nil:
	case pkgerrors.IsValidationError(err):
		c.logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("Skipping invalid lead event")
	case errors.Is(err, context.Canceled):
		c.logger.Warn().Int64("offset", msg.Offset).Msg("Lead event interrupted by shutdown")
	default:
		c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to handle lead event")
	}
}

// Stop stops the consumer gracefully
func (c *LeadConsumer) Stop() error {
	c.logger.Info().Msg("Stopping Kafka lead consumer...")
	c.cancel()
	<-c.done

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to close Kafka reader")
		return err
	}

	c.logger.Info().Msg("Kafka lead consumer stopped successfully")
	return nil
}
