package infrastructure

import (
	"fmt"

	"pointsbot/events"
)

// Subjects the bot publishes ledger events to
const (
	SubjectBalanceChanged    = "points.balance_changed"
	SubjectGuildReset        = "points.guild_reset"
	SubjectThresholdsChanged = "points.thresholds_changed"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return SubjectBalanceChanged
	case events.EventTypeGuildReset:
		return SubjectGuildReset
	case events.EventTypeThresholdsChanged:
		return SubjectThresholdsChanged
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("points.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectBalanceChanged:
		return events.EventTypeBalanceChange
	case SubjectGuildReset:
		return events.EventTypeGuildReset
	case SubjectThresholdsChanged:
		return events.EventTypeThresholdsChanged
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectBalanceChanged,
		SubjectGuildReset,
		SubjectThresholdsChanged,
	}
}
