// Package hid types keystrokes through a Linux USB gadget keyboard.
//
// The gadget function must use the boot keyboard report descriptor, so each
// report is 8 bytes: modifiers, reserved, and six key slots.
package hid

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"
)

// DefaultDevice is the first gadget HID function.
const DefaultDevice = "/dev/hidg0"

// ReportLen is the size of a boot keyboard input report.
const ReportLen = 8

// Default hold times.
const (
	DefaultTypeHold = 10 * time.Millisecond
	DefaultTapHold  = 50 * time.Millisecond
)

// DefaultWriteTimeout bounds a single report write. The gadget blocks while
// the previous report is unread, e.g. when the host suspends the port.
const DefaultWriteTimeout = 100 * time.Millisecond

type deadlineWriter interface {
	SetWriteDeadline(t time.Time) error
}

// Keyboard writes keyboard reports to a HID device.
type Keyboard struct {
	mu sync.Mutex
	w  io.Writer

	// TypeHold is how long each key is held while typing a macro.
	TypeHold time.Duration
	// WriteTimeout applies when the writer supports write deadlines.
	// Zero waits forever.
	WriteTimeout time.Duration
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// NewKeyboard creates a keyboard writing to w.
func NewKeyboard(w io.Writer) *Keyboard {
	return &Keyboard{w: w, TypeHold: DefaultTypeHold, WriteTimeout: DefaultWriteTimeout, Sleep: time.Sleep}
}

// OpenKeyboard opens the gadget device for writing. The device is opened
// non-blocking so writes honour WriteTimeout.
func OpenKeyboard(path string) (*Keyboard, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open hid device %s: %w", path, err)
	}
	return NewKeyboard(f), f, nil
}

// Report builds the 8-byte report for a held stroke.
func Report(s Stroke) []byte {
	r := make([]byte, ReportLen)
	r[0] = s.Modifiers
	r[2] = s.Key
	return r
}

func (k *Keyboard) write(report []byte) error {
	if d, ok := k.w.(deadlineWriter); ok && k.WriteTimeout > 0 {
		err := d.SetWriteDeadline(time.Now().Add(k.WriteTimeout))
		if err != nil && !errors.Is(err, os.ErrNoDeadline) {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}
	if _, err := k.w.Write(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReleaseAll sends an empty report.
func (k *Keyboard) ReleaseAll() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.write(make([]byte, ReportLen))
}

// Tap presses s, holds it for hold and releases every key.
func (k *Keyboard) Tap(s Stroke, hold time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tap(s, hold)
}

func (k *Keyboard) tap(s Stroke, hold time.Duration) error {
	if err := k.write(Report(s)); err != nil {
		return err
	}
	if hold > 0 {
		k.Sleep(hold)
	}
	return k.write(make([]byte, ReportLen))
}

// Type taps each stroke in order, stopping at the first write error.
func (k *Keyboard) Type(strokes []Stroke) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, s := range strokes {
		if err := k.tap(s, k.TypeHold); err != nil {
			return fmt.Errorf("stroke %d: %w", i, err)
		}
	}
	return nil
}
