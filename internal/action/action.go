// Package action performs the side effects requested by the classifier and
// keep-alive scheduler: typing the macro, sending keep-alive keys and driving
// the indicator LED.
package action

import (
	"fmt"
	"time"

	"github.com/sweeney/pi-key/internal/gpio"
	"github.com/sweeney/pi-key/internal/hid"
	"github.com/sweeney/pi-key/internal/logic"
)

// Sink performs actions synchronously. Errors are reported, never retried.
type Sink interface {
	// TypeMacro types the configured macro (double click).
	TypeMacro() error
	// KeepAlive sends one keep-alive key.
	KeepAlive(a logic.Action) error
	// SetIndicator shows whether keep-alive is active.
	SetIndicator(on bool) error
}

// Typer is the subset of hid.Keyboard used by Device.
type Typer interface {
	Type(strokes []hid.Stroke) error
	Tap(s hid.Stroke, hold time.Duration) error
	ReleaseAll() error
}

// LED feedback patterns. Each blink is FlashPeriod on, then FlashPeriod off.
const (
	MacroFlashes = 2
	OffFlashes   = 3
	FlashPeriod  = 40 * time.Millisecond
)

// Device sends keystrokes through a HID keyboard and lights a GPIO LED.
// The LED is steady on while keep-alive runs, blinks after the macro is
// typed and blinks before going dark when keep-alive stops.
type Device struct {
	kbd   Typer
	led   gpio.Indicator
	macro []hid.Stroke
	// settle is the pause after releasing all keys before typing the macro.
	settle time.Duration
	sleep  func(time.Duration)
	// lit is the steady indicator state restored after a blink pattern.
	lit bool
}

// NewDevice creates a sink. An empty macro makes TypeMacro a no-op.
func NewDevice(kbd Typer, led gpio.Indicator, macro []hid.Stroke) *Device {
	return &Device{
		kbd:    kbd,
		led:    led,
		macro:  macro,
		settle: 50 * time.Millisecond,
		sleep:  time.Sleep,
	}
}

var keepAliveKeys = map[logic.Action]hid.Stroke{
	logic.ActionA: {Key: hid.KeySpace},
	logic.ActionB: {Key: hid.KeyLeft},
}

// TypeMacro releases any stuck keys, then types the macro.
func (d *Device) TypeMacro() error {
	if len(d.macro) == 0 {
		return nil
	}
	if err := d.kbd.ReleaseAll(); err != nil {
		return fmt.Errorf("type macro: %w", err)
	}
	d.sleep(d.settle)
	if err := d.kbd.Type(d.macro); err != nil {
		return fmt.Errorf("type macro: %w", err)
	}
	return d.flash(MacroFlashes)
}

// KeepAlive taps the key bound to a.
func (d *Device) KeepAlive(a logic.Action) error {
	s, ok := keepAliveKeys[a]
	if !ok {
		return fmt.Errorf("keep-alive: unknown action %q", a)
	}
	if err := d.kbd.Tap(s, hid.DefaultTapHold); err != nil {
		return fmt.Errorf("keep-alive %s: %w", a, err)
	}
	return nil
}

// SetIndicator drives the LED. Turning it off blinks OffFlashes times first.
func (d *Device) SetIndicator(on bool) error {
	if d.led == nil {
		return nil
	}
	wasLit := d.lit
	d.lit = on
	if !on && wasLit {
		return d.flash(OffFlashes)
	}
	if err := d.led.Set(on); err != nil {
		return fmt.Errorf("indicator: %w", err)
	}
	return nil
}

// flash blinks the LED n times, then restores the steady state.
func (d *Device) flash(n int) error {
	if d.led == nil {
		return nil
	}
	for i := 0; i < n; i++ {
		if err := d.led.Set(!d.lit); err != nil {
			return fmt.Errorf("indicator: %w", err)
		}
		d.sleep(FlashPeriod)
		if err := d.led.Set(d.lit); err != nil {
			return fmt.Errorf("indicator: %w", err)
		}
		d.sleep(FlashPeriod)
	}
	return nil
}
