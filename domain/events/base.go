package events

import "time"

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// EventTypeCollectionChanged is the detail type of CollectionChanged.
const EventTypeCollectionChanged = "collection.changed"

// CollectionChanged is raised after a write commits. Readers holding
// results derived from any of the listed collections should re-query.
type CollectionChanged struct {
	BaseEvent
	Collections []string `json:"collections"`
	Operation   string   `json:"operation"`
}

// NewCollectionChanged creates a CollectionChanged event. operation is the
// name of the command that caused the write.
func NewCollectionChanged(operation string, collections []string, timestamp time.Time) CollectionChanged {
	return CollectionChanged{
		BaseEvent: BaseEvent{
			AggregateID: "catalog",
			EventType:   EventTypeCollectionChanged,
			Timestamp:   timestamp,
			Version:     1,
		},
		Collections: append([]string(nil), collections...),
		Operation:   operation,
	}
}
