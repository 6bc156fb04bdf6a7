package model

import "time"

// Well-known setting keys.
const (
	SettingTimerDuration = "timer_duration"
)

// DefaultTimerDurationSeconds is used when no timer_duration setting exists.
const DefaultTimerDurationSeconds = 30

// Setting is a key/value configuration row mutated by administrative action.
type Setting struct {
	ID        int64     `gorm:"primaryKey"`
	Key       string    `gorm:"uniqueIndex;size:100;not null"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
