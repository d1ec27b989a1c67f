package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pointsbot/events"
	"pointsbot/infrastructure/observability"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SourceService identifies this process in published envelopes
const SourceService = "pointsbot"

// EventEnvelope wraps every event mirrored to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher mirrors committed events from the bus onto NATS subjects
type NATSEventPublisher struct {
	publisher     MessagePublisher
	subjectMapper *EventSubjectMapper
	now           func() time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(publisher MessagePublisher, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		publisher:     publisher,
		subjectMapper: subjectMapper,
		now:           time.Now,
	}
}

// Register subscribes the publisher to every event type on the bus
func (p *NATSEventPublisher) Register(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		if err := p.Publish(ctx, event); err != nil {
			log.WithError(err).WithField("eventType", event.Type()).Warn("Failed to mirror event to NATS")
		}
	})
}

// Publish publishes an event to NATS using the appropriate subject
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	subject := p.subjectMapper.MapEventToSubject(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     p.now().UTC(),
		SourceService: SourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		// No stream bound to the subject; nobody is listening
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	observability.GetMetrics().RecordNATSMessagePublished(string(event.Type()))

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// EnsureEventStream ensures the points_events stream exists with every published subject
func EnsureEventStream(client *NATSClient, subjectMapper *EventSubjectMapper) error {
	return client.EnsureStream(EventStreamName, subjectMapper.GetAllSubjects())
}
