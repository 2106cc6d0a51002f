package eventbus

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Priority orders handler invocation within one dispatch. Higher priorities
// are invoked first; completion order is not guaranteed.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Event is the fundamental communication primitive flowing through the bus.
// Events are immutable once published.
type Event struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Payload   map[string]any `json:"payload,omitempty"`
	Source    string         `json:"source,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Priority  Priority       `json:"priority,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent creates an Event with a generated time-ordered id, the current
// timestamp, and normal priority.
func NewEvent(topic, source string, payload map[string]any) Event {
	return Event{
		ID:        generateID(),
		Topic:     topic,
		Payload:   payload,
		Source:    source,
		Timestamp: time.Now(),
		Priority:  PriorityNormal,
	}
}

func (e Event) Clone() Event {
	clone := e
	clone.Payload = maps.Clone(e.Payload)
	clone.Metadata = maps.Clone(e.Metadata)
	return clone
}

func (e Event) String() string {
	return fmt.Sprintf("Event{ID: %s, Topic: %s, Source: %s}", e.ID, e.Topic, e.Source)
}

func generateID() string {
	return uuid.Must(uuid.NewV7()).String()
}
