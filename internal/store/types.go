package store

import (
	"time"

	"door-alarm-backend/internal/model"
)

// EventFilter narrows event queries for reports and listings.
type EventFilter struct {
	Types []model.EventType
	Start *time.Time
	End   *time.Time
}

// EventPage is one page of the event log, newest first.
type EventPage struct {
	Events      []model.Event `json:"events"`
	Total       int64         `json:"total"`
	Pages       int           `json:"pages"`
	CurrentPage int           `json:"current_page"`
}

// Statistics is the derived projection over the event log. It is recomputed
// from the stored log on every accepted event and never persisted.
type Statistics struct {
	TotalEvents     int64 `json:"total_events"`
	DoorOpenEvents  int64 `json:"door_open_events"`
	DoorCloseEvents int64 `json:"door_close_events"`
	AlarmEvents     int64 `json:"alarm_events"`
}
