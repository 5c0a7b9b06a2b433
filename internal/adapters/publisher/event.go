package publisher

import (
	"encoding/json"
	"fmt"
	"time"
	"trace-emissions-service/internal/domain"

	"github.com/google/uuid"
)

const eventSource = "trace-emissions-service"

// Event types carried in the envelope.
const (
	EventRouteUpdated = "trace.emissions.route.updated"
	EventTotalUpdated = "trace.emissions.total.updated"
)

// Event is the JSON envelope written for every snapshot.
type Event struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Type        string          `json:"type"`
	Time        time.Time       `json:"time"`
	ContentType string          `json:"datacontenttype"`
	Data        json.RawMessage `json:"data"`
}

// NewEvent wraps s in an envelope.
func NewEvent(s domain.ImpactSnapshot, now time.Time) (Event, error) {
	var eventType string
	switch s.Kind {
	case domain.SnapshotRoute:
		eventType = EventRouteUpdated
	case domain.SnapshotTotal:
		eventType = EventTotalUpdated
	default:
		return Event{}, fmt.Errorf("unknown snapshot kind %q", s.Kind)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return Event{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	return Event{
		ID:          uuid.NewString(),
		Source:      eventSource,
		Type:        eventType,
		Time:        now.UTC(),
		ContentType: "application/json",
		Data:        data,
	}, nil
}
