package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"door-alarm-backend/internal/gpio"
	"door-alarm-backend/internal/model"
	"door-alarm-backend/internal/pipeline"
)

// recordingSubmitter collects the event types fed through the gate.
type recordingSubmitter struct {
	mu     sync.Mutex
	events []model.EventType
}

func (r *recordingSubmitter) Submit(ctx context.Context, eventType model.EventType, description string) (pipeline.Outcome, error) {
	r.mu.Lock()
	r.events = append(r.events, eventType)
	r.mu.Unlock()
	return pipeline.Accepted, nil
}

func (r *recordingSubmitter) types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.EventType(nil), r.events...)
}

func (r *recordingSubmitter) count(eventType model.EventType) int {
	n := 0
	for _, et := range r.types() {
		if et == eventType {
			n++
		}
	}
	return n
}

// fixedSettings returns a constant countdown duration.
type fixedSettings struct {
	duration time.Duration
}

func (f fixedSettings) TimerDuration(ctx context.Context) (time.Duration, error) {
	return f.duration, nil
}

// countingNotifier counts alarm dispatches.
type countingNotifier struct {
	mu    sync.Mutex
	fired int
}

func (n *countingNotifier) Dispatch(duration time.Duration, firedAt time.Time) {
	n.mu.Lock()
	n.fired++
	n.mu.Unlock()
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fired
}

type fixture struct {
	state     *DoorState
	sensor    *gpio.FakeSensor
	indicator *gpio.FakeIndicator
	events    *recordingSubmitter
	notifier  *countingNotifier
	monitor   *Monitor
}

func newFixture(t *testing.T, duration time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		state:     NewDoorState(),
		sensor:    gpio.NewFakeSensor(false),
		indicator: gpio.NewFakeIndicator(),
		events:    &recordingSubmitter{},
		notifier:  &countingNotifier{},
	}
	f.monitor = New(f.state, f.sensor, f.indicator, f.events,
		fixedSettings{duration: duration}, f.notifier,
		2*time.Millisecond, 2*time.Millisecond)
	return f
}

func (f *fixture) start(t *testing.T) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.monitor.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("monitor did not shut down")
		}
	})
	return cancel
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, cond, 2*time.Second, time.Millisecond, msg)
}

func TestMonitorCloseBeforeExpiryCancelsAlarm(t *testing.T) {
	f := newFixture(t, 300*time.Millisecond)
	f.start(t)

	f.sensor.SetOpen(true)
	eventually(t, func() bool { return f.events.count(model.EventDoorOpen) == 1 }, "door_open not recorded")

	f.sensor.SetOpen(false)
	eventually(t, func() bool { return f.events.count(model.EventDoorClose) == 1 }, "door_close not recorded")

	// Give a would-be alarm plenty of time to fire.
	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, f.events.count(model.EventAlarmTriggered))
	assert.Zero(t, f.notifier.count())
	assert.False(t, f.indicator.Get(gpio.ChannelAlarm))
	assert.False(t, f.indicator.Get(gpio.ChannelWarning))
}

func TestMonitorAlarmFiresAfterTimeout(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.start(t)

	f.sensor.SetOpen(true)
	eventually(t, func() bool { return f.events.count(model.EventAlarmTriggered) == 1 }, "alarm not recorded")
	eventually(t, func() bool { return f.notifier.count() == 1 }, "alarm not dispatched")
	eventually(t, func() bool { return f.indicator.Get(gpio.ChannelAlarm) }, "alarm indicator not lit")

	_, alarm := f.state.Status()
	assert.True(t, alarm)

	// The alarm fires at most once per episode.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, f.events.count(model.EventAlarmTriggered))
}

func TestMonitorCloseAfterAlarmClearsIt(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)
	f.start(t)

	f.sensor.SetOpen(true)
	eventually(t, func() bool { return f.events.count(model.EventAlarmTriggered) == 1 }, "alarm not recorded")

	f.sensor.SetOpen(false)
	eventually(t, func() bool { return f.events.count(model.EventDoorClose) == 1 }, "door_close not recorded")
	eventually(t, func() bool { return !f.indicator.Get(gpio.ChannelAlarm) }, "alarm indicator still lit")

	_, alarm := f.state.Status()
	assert.False(t, alarm)
}

func TestMonitorEachEpisodeGetsFreshCountdown(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.start(t)

	for i := 0; i < 2; i++ {
		f.sensor.SetOpen(true)
		want := i + 1
		eventually(t, func() bool { return f.events.count(model.EventAlarmTriggered) == want }, "alarm not recorded")

		f.sensor.SetOpen(false)
		eventually(t, func() bool { return f.events.count(model.EventDoorClose) == want }, "door_close not recorded")
	}

	assert.Equal(t, 2, f.notifier.count())
}

func TestMonitorSensorErrorSkipsSample(t *testing.T) {
	f := newFixture(t, 300*time.Millisecond)
	f.start(t)

	f.sensor.SetError(errors.New("line glitch"))
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, f.events.types())

	// Recovery picks up where the last good sample left off.
	f.sensor.SetError(nil)
	f.sensor.SetOpen(true)
	eventually(t, func() bool { return f.events.count(model.EventDoorOpen) == 1 }, "door_open not recorded after recovery")
}

func TestMonitorShutdownJoinsCountdown(t *testing.T) {
	f := newFixture(t, time.Hour)
	cancel := f.start(t)

	f.sensor.SetOpen(true)
	eventually(t, func() bool { return f.events.count(model.EventDoorOpen) == 1 }, "door_open not recorded")

	cancel()
	eventually(t, func() bool { return !f.indicator.Get(gpio.ChannelReady) }, "ready indicator still lit after shutdown")
	assert.Zero(t, f.events.count(model.EventAlarmTriggered))
}
