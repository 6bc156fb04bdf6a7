package gpio

import "sync"

// FakeSensor is a test double whose reading can be flipped from the test
// while a monitor loop polls it concurrently.
type FakeSensor struct {
	mu     sync.Mutex
	open   bool
	err    error
	closed bool
}

// NewFakeSensor creates a FakeSensor reporting the given initial state.
func NewFakeSensor(open bool) *FakeSensor {
	return &FakeSensor{open: open}
}

// Read returns the current scripted state or the configured error.
func (f *FakeSensor) Read() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.open, nil
}

// SetOpen changes the reported door state.
func (f *FakeSensor) SetOpen(open bool) {
	f.mu.Lock()
	f.open = open
	f.mu.Unlock()
}

// SetError makes subsequent Read calls fail with err until cleared with nil.
func (f *FakeSensor) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeSensor) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FakeIndicator records the last state set for each channel.
type FakeIndicator struct {
	mu     sync.Mutex
	states map[Channel]bool
	closed bool
}

// NewFakeIndicator creates a FakeIndicator with all channels off.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{states: make(map[Channel]bool)}
}

// Set records the new state for ch.
func (f *FakeIndicator) Set(ch Channel, on bool) error {
	f.mu.Lock()
	f.states[ch] = on
	f.mu.Unlock()
	return nil
}

// Get returns the last recorded state for ch.
func (f *FakeIndicator) Get(ch Channel) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[ch]
}

// Close marks the indicator as closed.
func (f *FakeIndicator) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}
