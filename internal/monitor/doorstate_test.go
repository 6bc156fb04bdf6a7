package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoorStateOpenEdgeArmsCountdown(t *testing.T) {
	s := NewDoorState()

	episode := s.OnOpenEdge()
	assert.True(t, s.Armed(episode))

	open, alarm := s.Status()
	assert.True(t, open)
	assert.False(t, alarm)
}

func TestDoorStateCloseEdgeDisarms(t *testing.T) {
	s := NewDoorState()
	episode := s.OnOpenEdge()

	s.OnCloseEdge()

	assert.False(t, s.Armed(episode))
	open, alarm := s.Status()
	assert.False(t, open)
	assert.False(t, alarm)
}

func TestDoorStateTriggerAlarm(t *testing.T) {
	s := NewDoorState()
	episode := s.OnOpenEdge()

	assert.True(t, s.TryTriggerAlarm(episode))

	open, alarm := s.Status()
	assert.True(t, open)
	assert.True(t, alarm)
	// The timer and alarm flags are mutually exclusive.
	assert.False(t, s.Armed(episode))

	// A second attempt for the same episode must not fire again.
	assert.False(t, s.TryTriggerAlarm(episode))
}

func TestDoorStateTriggerLosesToClose(t *testing.T) {
	s := NewDoorState()
	episode := s.OnOpenEdge()

	s.OnCloseEdge()

	assert.False(t, s.TryTriggerAlarm(episode))
	_, alarm := s.Status()
	assert.False(t, alarm)
}

func TestDoorStateStaleEpisodeIsIgnored(t *testing.T) {
	s := NewDoorState()
	old := s.OnOpenEdge()
	s.OnCloseEdge()
	current := s.OnOpenEdge()

	// A countdown left over from the first episode can neither trigger nor
	// disarm the second one.
	assert.False(t, s.Armed(old))
	assert.False(t, s.TryTriggerAlarm(old))
	assert.True(t, s.Armed(current))

	s.Disarm(old)
	assert.True(t, s.Armed(current))
}

func TestDoorStateCloseClearsActiveAlarm(t *testing.T) {
	s := NewDoorState()
	episode := s.OnOpenEdge()
	assert.True(t, s.TryTriggerAlarm(episode))

	s.OnCloseEdge()

	_, alarm := s.Status()
	assert.False(t, alarm)
}
