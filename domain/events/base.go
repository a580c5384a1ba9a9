package events

import (
	"time"

	"github.com/google/uuid"
)

// SourceSession is the event source used for everything the session
// service publishes.
const SourceSession = "scoped-store.session"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func newBaseEvent(userID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: userID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Session events. The aggregate is always the user id.

// SignedOn is raised when a user obtains a session
type SignedOn struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Partition string `json:"partition"`
	Row       string `json:"row"`
}

// NewSignedOn creates a SignedOn event
func NewSignedOn(userID, sessionID, partition, row string, timestamp time.Time) SignedOn {
	return SignedOn{
		BaseEvent: newBaseEvent(userID, "session.signed_on", timestamp),
		SessionID: sessionID,
		Partition: partition,
		Row:       row,
	}
}

// SignedOff is raised when a session ends
type SignedOff struct {
	BaseEvent
	SessionID string `json:"session_id"`
}

// NewSignedOff creates a SignedOff event
func NewSignedOff(userID, sessionID string, timestamp time.Time) SignedOff {
	return SignedOff{
		BaseEvent: newBaseEvent(userID, "session.signed_off", timestamp),
		SessionID: sessionID,
	}
}

// FriendAdded is raised when a friend is added to a user's list
type FriendAdded struct {
	BaseEvent
	Country string `json:"country"`
	Name    string `json:"name"`
}

// NewFriendAdded creates a FriendAdded event
func NewFriendAdded(userID, country, name string, timestamp time.Time) FriendAdded {
	return FriendAdded{
		BaseEvent: newBaseEvent(userID, "friends.added", timestamp),
		Country:   country,
		Name:      name,
	}
}

// FriendRemoved is raised when a friend is removed from a user's list
type FriendRemoved struct {
	BaseEvent
	Country string `json:"country"`
	Name    string `json:"name"`
}

// NewFriendRemoved creates a FriendRemoved event
func NewFriendRemoved(userID, country, name string, timestamp time.Time) FriendRemoved {
	return FriendRemoved{
		BaseEvent: newBaseEvent(userID, "friends.removed", timestamp),
		Country:   country,
		Name:      name,
	}
}

// StatusUpdated is raised after a user's status is written
type StatusUpdated struct {
	BaseEvent
	Status     string `json:"status"`
	Recipients int    `json:"recipients"`
	Pushed     bool   `json:"pushed"`
}

// NewStatusUpdated creates a StatusUpdated event
func NewStatusUpdated(userID, status string, recipients int, pushed bool, timestamp time.Time) StatusUpdated {
	return StatusUpdated{
		BaseEvent:  newBaseEvent(userID, "status.updated", timestamp),
		Status:     status,
		Recipients: recipients,
		Pushed:     pushed,
	}
}
