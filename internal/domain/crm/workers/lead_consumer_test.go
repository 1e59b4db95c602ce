package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PersifalJun/CRM-Telegram-Bot/internal/domain/crm/dto"
	pkgerrors "github.com/PersifalJun/CRM-Telegram-Bot/pkg/errors"
)

type chanReader struct {
	messages chan kafka.Message
	closed   bool
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.messages:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) Close() error {
	r.closed = true
	return nil
}

type recordingHandler struct {
	mu   sync.Mutex
	seen []string
	wg   sync.WaitGroup
}

func (h *recordingHandler) HandleLeadSubmitted(_ context.Context, data []byte) (*dto.SubmitLeadResult, error) {
	defer h.wg.Done()
	h.mu.Lock()
	h.seen = append(h.seen, string(data))
	h.mu.Unlock()

	switch string(data) {
	case "bad":
		return nil, pkgerrors.NewValidationError("invalid lead")
	case "down":
		return nil, errors.New("storage down")
	}
	return &dto.SubmitLeadResult{Outcome: dto.OutcomeCreated}, nil
}

func TestLeadConsumer_KeepsConsumingAfterFailures(t *testing.T) {
	reader := &chanReader{messages: make(chan kafka.Message, 3)}
	handler := &recordingHandler{}
	handler.wg.Add(3)

	consumer := NewLeadConsumer(reader, handler, zerolog.Nop())
	consumer.Start()

	for _, v := range []string{"bad", "down", "ok"} {
		reader.messages <- kafka.Message{Topic: "leads.submitted", Value: []byte(v)}
	}

	waited := make(chan struct{})
	go func() {
		handler.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("messages were not handled")
	}

	require.NoError(t, consumer.Stop())
	assert.True(t, reader.closed)
	assert.Equal(t, []string{"bad", "down", "ok"}, handler.seen)
}
