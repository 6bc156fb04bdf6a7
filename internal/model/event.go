package model

import "time"

// EventType identifies a kind of domain event in the append-only log.
type EventType string

const (
	EventDoorOpen       EventType = "door_open"
	EventDoorClose      EventType = "door_close"
	EventAlarmTriggered EventType = "alarm_triggered"
	EventSettingChanged EventType = "setting_changed"
	EventUserCreated    EventType = "user_created"
	EventUserUpdated    EventType = "user_updated"
	EventUserDeleted    EventType = "user_deleted"
)

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t EventType) bool {
	switch t {
	case EventDoorOpen, EventDoorClose, EventAlarmTriggered,
		EventSettingChanged, EventUserCreated, EventUserUpdated, EventUserDeleted:
		return true
	}
	return false
}

// Event is a single immutable record in the event log. Records are created
// exactly once per accepted occurrence and never updated.
type Event struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventType   EventType `gorm:"size:50;not null;index" json:"event_type"`
	Description string    `gorm:"type:text" json:"description"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}
