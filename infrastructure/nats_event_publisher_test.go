package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pointsbot/domain/entities"
	"pointsbot/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

// MockMessagePublisher records raw messages instead of sending them
type MockMessagePublisher struct {
	mu           sync.Mutex
	Messages     []publishedMessage
	PublishError error
}

func (m *MockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, publishedMessage{subject: subject, data: data})
	return nil
}

func (m *MockMessagePublisher) messages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedMessage(nil), m.Messages...)
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, SubjectBalanceChanged},
		{events.GuildResetEvent{}, SubjectGuildReset},
		{events.ThresholdsChangedEvent{}, SubjectThresholdsChanged},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			subject := mapper.MapEventToSubject(tt.event)
			assert.Equal(t, tt.subject, subject)
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(subject))
			assert.Contains(t, mapper.GetAllSubjects(), subject)
		})
	}

	assert.Equal(t, events.EventType("other.subject"), mapper.MapSubjectToEventType("other.subject"))
}

func TestNATSEventPublisher_Envelope(t *testing.T) {
	mock := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(mock, NewEventSubjectMapper())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	actor := int64(99)
	event := events.BalanceChangeEvent{
		UserID:          2,
		GuildID:         1,
		OldBalance:      10,
		NewBalance:      60,
		ChangeAmount:    50,
		TransactionType: entities.TransactionTypeCredit,
		ActorID:         &actor,
	}

	require.NoError(t, publisher.Publish(context.Background(), event))

	msgs := mock.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, SubjectBalanceChanged, msgs[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msgs[0].data, &envelope))
	assert.Equal(t, "balance_change", envelope.EventType)
	assert.Equal(t, SourceService, envelope.SourceService)
	assert.True(t, fixed.Equal(envelope.Timestamp))
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.BalanceChangeEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event.NewBalance, payload.NewBalance)
	assert.Equal(t, event.UserID, payload.UserID)
	require.NotNil(t, payload.ActorID)
	assert.Equal(t, actor, *payload.ActorID)
}

func TestNATSEventPublisher_Errors(t *testing.T) {
	t.Run("publish failure is returned", func(t *testing.T) {
		mock := &MockMessagePublisher{PublishError: errors.New("connection lost")}
		publisher := NewNATSEventPublisher(mock, NewEventSubjectMapper())

		err := publisher.Publish(context.Background(), events.GuildResetEvent{GuildID: 1})
		assert.ErrorContains(t, err, "connection lost")
	})

	t.Run("missing stream is ignored", func(t *testing.T) {
		mock := &MockMessagePublisher{PublishError: errors.New("nats: no response from stream")}
		publisher := NewNATSEventPublisher(mock, NewEventSubjectMapper())

		assert.NoError(t, publisher.Publish(context.Background(), events.GuildResetEvent{GuildID: 1}))
	})
}

func TestNATSEventPublisher_Register(t *testing.T) {
	mock := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(mock, NewEventSubjectMapper())

	bus := events.NewBus()
	publisher.Register(bus)

	ctx := context.Background()
	bus.Emit(ctx, events.BalanceChangeEvent{GuildID: 1, UserID: 2, ChangeAmount: 5})
	bus.Emit(ctx, events.GuildResetEvent{GuildID: 1})
	bus.Emit(ctx, events.ThresholdsChangedEvent{GuildID: 1, PointsRequired: 100, Removed: true})
	bus.Wait()

	subjects := make([]string, 0, 3)
	for _, msg := range mock.messages() {
		subjects = append(subjects, msg.subject)
	}
	assert.ElementsMatch(t, []string{SubjectBalanceChanged, SubjectGuildReset, SubjectThresholdsChanged}, subjects)
}

func TestNATSClient_NotConnected(t *testing.T) {
	client := NewNATSClient("nats://localhost:4222")

	assert.False(t, client.IsConnected())
	assert.Error(t, client.Publish(context.Background(), SubjectGuildReset, []byte("{}")))
	assert.Error(t, EnsureEventStream(client, NewEventSubjectMapper()))
	assert.NoError(t, client.Close())
}
