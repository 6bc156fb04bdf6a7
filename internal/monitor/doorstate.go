package monitor

import "sync"

// DoorState is the single mutex-guarded door/alarm/timer state shared by the
// sensor loop, the countdown, and status readers. The flags uphold two
// invariants: alarmActive and timerActive are never both true, and
// alarmActive is only set while the door is open.
//
// Every door-open edge starts a new episode and bumps the episode counter.
// The countdown carries the episode it was armed for and all its state
// mutations are scoped to that episode, so a countdown that outlives its
// own episode can never trigger or disarm a later one.
type DoorState struct {
	mu          sync.Mutex
	open        bool
	alarmActive bool
	timerActive bool
	episode     uint64
}

// NewDoorState returns a closed, disarmed state.
func NewDoorState() *DoorState {
	return &DoorState{}
}

// OnOpenEdge records a false->true sensor edge: door open, alarm cleared,
// countdown armed. It returns the new episode token for the countdown.
func (s *DoorState) OnOpenEdge() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.alarmActive = false
	s.timerActive = true
	s.episode++
	return s.episode
}

// OnCloseEdge records a true->false sensor edge: door closed, countdown and
// alarm deactivated. The running countdown observes this through Armed.
func (s *DoorState) OnCloseEdge() {
	s.mu.Lock()
	s.open = false
	s.alarmActive = false
	s.timerActive = false
	s.mu.Unlock()
}

// Armed reports whether the countdown for the given episode should keep
// running: timer armed, door still open, episode still current.
func (s *DoorState) Armed(episode uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timerActive && s.open && s.episode == episode
}

// TryTriggerAlarm is the countdown's final expiry decision. It runs under
// the same lock as the edge handlers, so a door-close can never race the
// expiry check: either the close lands first and the trigger fails, or the
// alarm fires and the close clears it afterwards. A stale episode token
// makes the call a no-op.
func (s *DoorState) TryTriggerAlarm(episode uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.episode != episode {
		return false
	}
	if s.timerActive && s.open {
		s.timerActive = false
		s.alarmActive = true
		return true
	}
	s.timerActive = false
	return false
}

// Disarm clears the timer and alarm flags after an aborted countdown,
// unless a newer episode owns them.
func (s *DoorState) Disarm(episode uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.episode != episode {
		return
	}
	s.timerActive = false
	s.alarmActive = false
}

// Status returns the door and alarm flags for status payloads.
func (s *DoorState) Status() (doorOpen, alarmActive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open, s.alarmActive
}

// IsOpen reports the last recorded door reading.
func (s *DoorState) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
