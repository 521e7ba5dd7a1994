package action

import "github.com/sweeney/pi-key/internal/logic"

// FakeSink records requested actions for test assertions.
type FakeSink struct {
	// Macros counts TypeMacro calls.
	Macros int

	// KeepAlives contains every keep-alive action, in order.
	KeepAlives []logic.Action

	// Indicator contains every indicator value, in order.
	Indicator []bool

	// MacroError, if set, will be returned by TypeMacro (the call is still counted).
	MacroError error

	// KeepAliveError, if set, will be returned by KeepAlive (the action is still recorded).
	KeepAliveError error

	// IndicatorError, if set, will be returned by SetIndicator.
	IndicatorError error
}

// NewFakeSink creates a FakeSink for testing.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// TypeMacro records the call.
func (f *FakeSink) TypeMacro() error {
	f.Macros++
	return f.MacroError
}

// KeepAlive records the action.
func (f *FakeSink) KeepAlive(a logic.Action) error {
	f.KeepAlives = append(f.KeepAlives, a)
	return f.KeepAliveError
}

// SetIndicator records the value.
func (f *FakeSink) SetIndicator(on bool) error {
	if f.IndicatorError != nil {
		return f.IndicatorError
	}
	f.Indicator = append(f.Indicator, on)
	return nil
}

// Reset clears recorded calls.
func (f *FakeSink) Reset() {
	f.Macros = 0
	f.KeepAlives = nil
	f.Indicator = nil
	f.MacroError = nil
	f.KeepAliveError = nil
	f.IndicatorError = nil
}
