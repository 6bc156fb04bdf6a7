// Package gpio provides the door sensor and indicator hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Sensor reads the magnetic reed switch on the monitored door.
type Sensor interface {
	// Read returns true when the door is open. The sensor is wired
	// normally-open with a pull-up: a high line means open.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Channel names an indicator output.
type Channel string

const (
	// ChannelReady is the green LED, on while the service is running.
	ChannelReady Channel = "ready"
	// ChannelWarning is the red LED, blinked while a countdown is armed.
	ChannelWarning Channel = "warning"
	// ChannelAlarm is the white LED, on while an alarm is active.
	ChannelAlarm Channel = "alarm"
)

// Indicator drives the status LEDs. Indicators reflect system state and are
// never part of the decision logic.
type Indicator interface {
	Set(ch Channel, on bool) error
	Close() error
}
