// Package monitor translates raw reed-sensor samples into door open/close
// transitions and runs the alarm countdown for each open episode.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"door-alarm-backend/internal/gpio"
	"door-alarm-backend/internal/model"
	"door-alarm-backend/internal/pipeline"
)

// Submitter is the event gate the monitor feeds.
type Submitter interface {
	Submit(ctx context.Context, eventType model.EventType, description string) (pipeline.Outcome, error)
}

// SettingsSource provides the countdown duration, snapshotted at each
// door-open edge.
type SettingsSource interface {
	TimerDuration(ctx context.Context) (time.Duration, error)
}

// AlarmNotifier receives one job per triggered alarm.
type AlarmNotifier interface {
	Dispatch(duration time.Duration, firedAt time.Time)
}

// Monitor owns the sampling loop and the per-episode countdown.
type Monitor struct {
	state     *DoorState
	sensor    gpio.Sensor
	indicator gpio.Indicator
	events    Submitter
	settings  SettingsSource
	notifier  AlarmNotifier

	pollInterval  time.Duration
	blinkInterval time.Duration

	// countdownDone is closed by the countdown goroutine when it exits.
	// A new open edge joins it before spawning the next countdown, so at
	// most one countdown is ever active.
	countdownDone chan struct{}
}

// New creates a Monitor. notifier may be nil when no alert channel is
// configured.
func New(state *DoorState, sensor gpio.Sensor, indicator gpio.Indicator,
	events Submitter, settings SettingsSource, notifier AlarmNotifier,
	pollInterval, blinkInterval time.Duration) *Monitor {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	if blinkInterval <= 0 {
		blinkInterval = 500 * time.Millisecond
	}
	return &Monitor{
		state:         state,
		sensor:        sensor,
		indicator:     indicator,
		events:        events,
		settings:      settings,
		notifier:      notifier,
		pollInterval:  pollInterval,
		blinkInterval: blinkInterval,
	}
}

// Run samples the sensor until ctx is cancelled. A failed read is logged and
// treated as "no edge" for that cycle; the loop itself never terminates on
// error.
func (m *Monitor) Run(ctx context.Context) {
	log.Println("Starting door monitor...")
	m.setIndicator(gpio.ChannelReady, true)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Door monitor shutting down.")
			m.waitForCountdown()
			m.setIndicator(gpio.ChannelReady, false)
			return
		case <-ticker.C:
		}

		open, err := m.sensor.Read()
		if err != nil {
			log.Printf("monitor: sensor read failed, skipping sample: %v", err)
			continue
		}
		m.handleSample(ctx, open)
	}
}

// handleSample compares the new reading against the last recorded state and
// drives the edge transitions.
func (m *Monitor) handleSample(ctx context.Context, open bool) {
	wasOpen := m.state.IsOpen()

	switch {
	case open && !wasOpen:
		m.onOpenEdge(ctx)
	case !open && wasOpen:
		m.onCloseEdge(ctx)
	}
}

func (m *Monitor) onOpenEdge(ctx context.Context) {
	episode := m.state.OnOpenEdge()
	m.setIndicator(gpio.ChannelAlarm, false)

	// Snapshot the configured duration now; a mid-countdown setting change
	// must not affect the in-flight timer.
	duration := m.timerDuration(ctx)
	log.Printf("monitor: door opened, countdown set to %s", duration)

	if _, err := m.events.Submit(ctx, model.EventDoorOpen, "Door opened"); err != nil {
		log.Printf("monitor: record door_open: %v", err)
	}

	// Serialize countdowns: never two concurrent timers.
	m.waitForCountdown()
	done := make(chan struct{})
	m.countdownDone = done
	go m.runCountdown(ctx, episode, duration, done)
}

func (m *Monitor) onCloseEdge(ctx context.Context) {
	m.state.OnCloseEdge()
	m.setIndicator(gpio.ChannelWarning, false)
	m.setIndicator(gpio.ChannelAlarm, false)
	log.Println("monitor: door closed, countdown and alarm deactivated")

	// No cancellation signal is sent; the countdown observes the shared
	// state on its own schedule.
	if _, err := m.events.Submit(ctx, model.EventDoorClose, "Door closed"); err != nil {
		log.Printf("monitor: record door_close: %v", err)
	}
}

// runCountdown blinks the warning indicator in fixed increments until the
// duration elapses, aborting quietly if the episode ends first. The final
// expiry decision happens inside DoorState.TryTriggerAlarm, under the same
// lock as the close handler.
func (m *Monitor) runCountdown(ctx context.Context, episode uint64, duration time.Duration, done chan struct{}) {
	defer close(done)

	start := time.Now()
	blinkOn := false
	aborted := false
	for time.Since(start) < duration {
		if !m.state.Armed(episode) {
			aborted = true
			break
		}
		blinkOn = !blinkOn
		m.setIndicator(gpio.ChannelWarning, blinkOn)

		select {
		case <-ctx.Done():
			m.state.Disarm(episode)
			m.setIndicator(gpio.ChannelWarning, false)
			return
		case <-time.After(m.blinkInterval):
		}
	}

	if !aborted && m.state.TryTriggerAlarm(episode) {
		m.setIndicator(gpio.ChannelWarning, false)
		m.setIndicator(gpio.ChannelAlarm, true)
		log.Printf("monitor: alarm triggered after %s", duration)

		description := fmt.Sprintf("Alarm triggered after %d seconds", int(duration.Seconds()))
		if _, err := m.events.Submit(ctx, model.EventAlarmTriggered, description); err != nil {
			log.Printf("monitor: record alarm_triggered: %v", err)
		}
		if m.notifier != nil {
			m.notifier.Dispatch(duration, time.Now())
		}
		return
	}

	// Door closed or timer deactivated before expiry.
	m.state.Disarm(episode)
	m.setIndicator(gpio.ChannelWarning, false)
	m.setIndicator(gpio.ChannelAlarm, false)
}

// waitForCountdown joins the previous countdown goroutine, if any.
func (m *Monitor) waitForCountdown() {
	if m.countdownDone != nil {
		<-m.countdownDone
		m.countdownDone = nil
	}
}

func (m *Monitor) timerDuration(ctx context.Context) time.Duration {
	duration, err := m.settings.TimerDuration(ctx)
	if err != nil || duration <= 0 {
		log.Printf("monitor: timer duration unavailable, using default: %v", err)
		return model.DefaultTimerDurationSeconds * time.Second
	}
	return duration
}

func (m *Monitor) setIndicator(ch gpio.Channel, on bool) {
	if m.indicator == nil {
		return
	}
	if err := m.indicator.Set(ch, on); err != nil {
		log.Printf("monitor: set %s indicator: %v", ch, err)
	}
}
