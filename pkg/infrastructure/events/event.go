package events

import (
	"encoding/json"
	"time"
)

// Event is one step of a planning run. RunID is the run it belongs to.
type Event interface {
	Type() string
	RunID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

// EventHandler receives the event types it subscribed to
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore records run events and fans them out to subscribers
type EventStore interface {
	AppendEvent(runID string, event Event) error
	ReadEvents(runID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// BaseEvent is the stored form of every event and its JSON envelope
type BaseEvent struct {
	Kind    string      `json:"type"`
	Run     string      `json:"run_id"`
	Payload interface{} `json:"data"`
	At      time.Time   `json:"timestamp"`
	Seq     int         `json:"version"`
}

func (e BaseEvent) Type() string {
	return e.Kind
}

func (e BaseEvent) RunID() string {
	return e.Run
}

func (e BaseEvent) Data() interface{} {
	return e.Payload
}

func (e BaseEvent) Timestamp() time.Time {
	return e.At
}

func (e BaseEvent) Version() int {
	return e.Seq
}

func NewEvent(eventType, runID string, data interface{}) Event {
	return BaseEvent{
		Kind:    eventType,
		Run:     runID,
		Payload: data,
		At:      time.Now(),
		Seq:     1,
	}
}

// Marshal renders any Event as the JSON envelope of BaseEvent
func Marshal(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{
		Kind:    e.Type(),
		Run:     e.RunID(),
		Payload: e.Data(),
		At:      e.Timestamp(),
		Seq:     e.Version(),
	})
}
