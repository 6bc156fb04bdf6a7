//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Pins groups the line offsets for one deployment.
type Pins struct {
	Sensor  int
	Ready   int
	Warning int
	Alarm   int
}

// RealIO reads the reed sensor and drives the LEDs through the Linux GPIO
// character device. It implements both Sensor and Indicator.
type RealIO struct {
	chip    *gpiocdev.Chip
	sensor  *gpiocdev.Line
	outputs map[Channel]*gpiocdev.Line
}

// NewRealIO opens the chip and requests the sensor input plus the three
// indicator outputs.
func NewRealIO(chipName string, pins Pins) (*RealIO, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// The reed sensor is normally open; pull the line up so an open door
	// reads high.
	sensorLine, err := chip.RequestLine(pins.Sensor, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request sensor pin %d: %w", pins.Sensor, err)
	}

	io := &RealIO{
		chip:    chip,
		sensor:  sensorLine,
		outputs: make(map[Channel]*gpiocdev.Line, 3),
	}

	for ch, pin := range map[Channel]int{
		ChannelReady:   pins.Ready,
		ChannelWarning: pins.Warning,
		ChannelAlarm:   pins.Alarm,
	} {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			io.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", ch, pin, err)
		}
		io.outputs[ch] = line
	}

	return io, nil
}

// Read returns true when the door is open (line high).
func (r *RealIO) Read() (bool, error) {
	raw, err := r.sensor.Value()
	if err != nil {
		return false, fmt.Errorf("read sensor pin: %w", err)
	}
	return raw == 1, nil
}

// Set drives an indicator output.
func (r *RealIO) Set(ch Channel, on bool) error {
	line, ok := r.outputs[ch]
	if !ok {
		return fmt.Errorf("unknown indicator channel %q", ch)
	}
	value := 0
	if on {
		value = 1
	}
	if err := line.SetValue(value); err != nil {
		return fmt.Errorf("set %s indicator: %w", ch, err)
	}
	return nil
}

// Close releases GPIO resources. Lines are reconfigured back to inputs so
// external hardware sees a quiet state across restarts.
func (r *RealIO) Close() error {
	var errs []error

	if r.sensor != nil {
		if err := r.sensor.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sensor pin: %w", err))
		}
	}
	for ch, line := range r.outputs {
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", ch, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", ch, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
