// Package gpio provides button input and indicator output with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the button line.
type Reader interface {
	// Read returns true while the button is pressed.
	// The line is active-low: raw 0 = pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Indicator drives the status LED.
type Indicator interface {
	Set(on bool) error
	Close() error
}

// Default chip and pin definitions (BCM numbering).
const (
	DefaultChip      = "gpiochip0"
	DefaultPinButton = 17
	DefaultPinLED    = 27
)
