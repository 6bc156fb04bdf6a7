// Package pipeline is the single gate every domain event passes through
// before it becomes observable anywhere: storage, statistics, or live
// subscribers.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"door-alarm-backend/internal/model"
	"door-alarm-backend/internal/store"
)

// dedupWindow suppresses identical submissions arriving within this span.
// It protects the log from the sensor poller's jitter.
const dedupWindow = 2 * time.Second

// Outcome is the result of a submission.
type Outcome int

const (
	// Accepted means the event was recorded and broadcast.
	Accepted Outcome = iota
	// Deduplicated means the submission was suppressed with no side effects.
	Deduplicated
)

func (o Outcome) String() string {
	if o == Deduplicated {
		return "deduplicated"
	}
	return "accepted"
}

// StatusSource exposes the current door and alarm flags for status payloads.
type StatusSource interface {
	Status() (doorOpen, alarmActive bool)
}

// Broadcaster delivers accepted-event payloads to live subscribers. Delivery
// is best-effort per subscriber and must never fail the submitting path.
type Broadcaster interface {
	Broadcast(v any)
}

// StatusPayload is the shape published on the /events topic for every
// accepted event.
type StatusPayload struct {
	Event       model.Event      `json:"event"`
	DoorStatus  string           `json:"door_status"`
	AlarmStatus string           `json:"alarm_status"`
	TimerSet    string           `json:"timer_set"`
	LastEvent   *model.Event     `json:"last_event"`
	Statistics  store.Statistics `json:"statistics"`
}

// Pipeline deduplicates, persists, annotates, and fans out domain events.
// The whole submission path runs under one mutex so near-simultaneous
// duplicates can never both pass the checks.
type Pipeline struct {
	mu sync.Mutex

	store       store.Store
	status      StatusSource
	broadcaster Broadcaster
	loc         *time.Location

	lastSubmission map[string]time.Time
	// lastDoorOpen starts unknown (nil) so the first open and first close
	// after startup are always accepted.
	lastDoorOpen *bool
	alarmLatched bool

	now func() time.Time
}

// New creates a Pipeline. status and broadcaster may be nil; timestamps are
// taken in loc (UTC when nil).
func New(s store.Store, status StatusSource, broadcaster Broadcaster, loc *time.Location) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{
		store:          s,
		status:         status,
		broadcaster:    broadcaster,
		loc:            loc,
		lastSubmission: make(map[string]time.Time),
		now:            time.Now,
	}
}

// Submit runs the full gate for one event: time-window dedup, state-based
// suppression, persistence, statistics recomputation, and broadcast.
//
// A Deduplicated outcome has no side effects at all. A non-nil error means
// persistence failed after the submission was accepted; the in-memory dedup
// flags are not rolled back in that case, so state and log may diverge.
func (p *Pipeline) Submit(ctx context.Context, eventType model.EventType, description string) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	key := string(eventType) + "|" + description
	if last, ok := p.lastSubmission[key]; ok && now.Sub(last) < dedupWindow {
		return Deduplicated, nil
	}

	switch eventType {
	case model.EventDoorOpen:
		if p.lastDoorOpen != nil && *p.lastDoorOpen {
			return Deduplicated, nil
		}
		open := true
		p.lastDoorOpen = &open
	case model.EventDoorClose:
		if p.lastDoorOpen != nil && !*p.lastDoorOpen {
			return Deduplicated, nil
		}
		closed := false
		p.lastDoorOpen = &closed
		// A completed episode re-arms alarm deduplication.
		p.alarmLatched = false
	case model.EventAlarmTriggered:
		if p.alarmLatched {
			return Deduplicated, nil
		}
		p.alarmLatched = true
	}
	p.lastSubmission[key] = now

	event := model.Event{
		EventType:   eventType,
		Description: description,
		Timestamp:   now.In(p.loc),
	}
	if err := p.store.AppendEvent(ctx, &event); err != nil {
		return Accepted, fmt.Errorf("persist event: %w", err)
	}

	p.broadcastLocked(ctx, event)
	return Accepted, nil
}

// broadcastLocked composes and fans out the status payload for an accepted
// event. Failures here are logged only; the event is already recorded.
func (p *Pipeline) broadcastLocked(ctx context.Context, event model.Event) {
	if p.broadcaster == nil {
		return
	}
	p.broadcaster.Broadcast(p.composePayload(ctx, event))
}

func (p *Pipeline) composePayload(ctx context.Context, event model.Event) StatusPayload {
	stats, err := p.store.EventStatistics(ctx)
	if err != nil {
		log.Printf("pipeline: statistics recompute failed: %v", err)
	}

	timerSet := strconv.Itoa(model.DefaultTimerDurationSeconds)
	if d, err := p.store.TimerDuration(ctx); err == nil {
		timerSet = strconv.Itoa(int(d.Seconds()))
	}

	doorStatus, alarmStatus := "Closed", "Inactive"
	if p.status != nil {
		open, alarm := p.status.Status()
		if open {
			doorStatus = "Open"
		}
		if alarm {
			alarmStatus = "Active"
		}
	}

	return StatusPayload{
		Event:       event,
		DoorStatus:  doorStatus,
		AlarmStatus: alarmStatus,
		TimerSet:    timerSet,
		LastEvent:   &event,
		Statistics:  stats,
	}
}

// CurrentStatus builds the dashboard status view outside a submission.
func (p *Pipeline) CurrentStatus(ctx context.Context) (StatusPayload, error) {
	last, err := p.store.LastEvent(ctx)
	if err != nil {
		return StatusPayload{}, err
	}

	var payload StatusPayload
	if last != nil {
		payload = p.composePayload(ctx, *last)
	} else {
		payload = p.composePayload(ctx, model.Event{})
	}
	payload.LastEvent = last
	return payload, nil
}
