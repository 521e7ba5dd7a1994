package logic

import (
	"math/rand/v2"
	"time"
)

// Default keep-alive delay bounds.
const (
	DefaultKeepAliveMin = 600 * time.Millisecond
	DefaultKeepAliveMax = 2000 * time.Millisecond
)

// Uniform returns a duration in [min, max).
type Uniform func(min, max time.Duration) time.Duration

// RandomUniform draws from math/rand/v2. If max <= min it returns min.
func RandomUniform(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}

// SchedulerConfig configures the keep-alive scheduler.
type SchedulerConfig struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	// Uniform defaults to RandomUniform.
	Uniform Uniform
}

// KeepAliveState is the scheduler's mutable state.
type KeepAliveState struct {
	Active    bool
	NextDue   time.Time
	Alternate bool
}

// Scheduler emits alternating keep-alive actions at randomized intervals
// while active. Not safe for concurrent use.
type Scheduler struct {
	min, max time.Duration
	uniform  Uniform
	state    KeepAliveState
	sent     int
}

// NewScheduler creates an inactive scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	s := &Scheduler{
		min:     cfg.MinDelay,
		max:     cfg.MaxDelay,
		uniform: cfg.Uniform,
	}
	if s.min <= 0 {
		s.min = DefaultKeepAliveMin
	}
	if s.max <= 0 {
		s.max = DefaultKeepAliveMax
	}
	if s.uniform == nil {
		s.uniform = RandomUniform
	}
	return s
}

// Toggle flips the active flag and returns the new value.
// Activating arms the first action after a fresh random delay.
func (s *Scheduler) Toggle(now time.Time) bool {
	s.state.Active = !s.state.Active
	if s.state.Active {
		s.state.Alternate = false
		s.arm(now)
	}
	return s.state.Active
}

// Tick returns the next action if one is due. The schedule is re-armed
// before returning, so the caller must finish dispatching the action
// before calling Tick again.
func (s *Scheduler) Tick(now time.Time) (Action, bool) {
	if !s.state.Active || now.Before(s.state.NextDue) {
		return "", false
	}

	action := ActionA
	if s.state.Alternate {
		action = ActionB
	}
	s.state.Alternate = !s.state.Alternate
	s.sent++
	s.arm(now)
	return action, true
}

func (s *Scheduler) arm(now time.Time) {
	d := s.uniform(s.min, s.max)
	// Hold the contract even for a misbehaving source.
	if d < s.min {
		d = s.min
	}
	if d >= s.max && s.max > s.min {
		d = s.max - 1
	}
	s.state.NextDue = now.Add(d)
}

// Active reports whether keep-alive is on.
func (s *Scheduler) Active() bool {
	return s.state.Active
}

// NextDue returns when the next action fires. Meaningless while inactive.
func (s *Scheduler) NextDue() time.Time {
	return s.state.NextDue
}

// Sent returns the number of actions produced since startup.
func (s *Scheduler) Sent() int {
	return s.sent
}
