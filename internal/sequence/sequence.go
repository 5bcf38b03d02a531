// Package sequence drives the terminal-side simulated settlement: a fixed
// table of progress steps replayed with fixed delays, ending in success.
// There is no failure transition on this path; a failure result only ever
// arrives via the status handoff URL.
package sequence

import (
	"context"
	"time"

	"github.com/Turan141/payments-terminal/internal/status"
)

type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
)

// Step is one progress phase: the message shown and how long it lasts.
type Step struct {
	Message string
	Delay   time.Duration
}

// Steps is the settlement progression. Declarative so tests and callers
// can see "what happens next" without running timers.
var Steps = []Step{
	{Message: "Device connected...", Delay: 800 * time.Millisecond},
	{Message: "Processing payment...", Delay: 1200 * time.Millisecond},
	{Message: "Verifying funds...", Delay: 900 * time.Millisecond},
}

// Sleeper abstracts the fixed delays so tests run without real timers.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Clock is the default Sleeper backed by time.Sleep.
type Clock struct{}

func (Clock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Machine is one screen-load's settlement state. Re-triggering while
// processing is blocked by the state value itself, not a separate lock:
// the flow is single-threaded per screen.
type Machine struct {
	state   State
	steps   []Step
	sleeper Sleeper
}

func NewMachine(sleeper Sleeper) *Machine {
	if sleeper == nil {
		sleeper = Clock{}
	}
	return &Machine{
		state:   StateIdle,
		steps:   Steps,
		sleeper: sleeper,
	}
}

func (m *Machine) State() State { return m.state }

// Run advances idle → processing → success, invoking onProgress for each
// step before its delay. Calling Run outside the idle state returns
// status.ErrAlreadyProcessing; success is terminal until Reset.
func (m *Machine) Run(ctx context.Context, onProgress func(message string)) error {
	if m.state != StateIdle {
		return status.ErrAlreadyProcessing
	}
	m.state = StateProcessing

	for _, step := range m.steps {
		if onProgress != nil {
			onProgress(step.Message)
		}
		if err := m.sleeper.Sleep(ctx, step.Delay); err != nil {
			// Navigating away is the only escape; the abandoned state
			// is simply discarded with the screen.
			return err
		}
	}

	m.state = StateSuccess
	return nil
}

// Reset clears the machine back to a fresh payment.
func (m *Machine) Reset() {
	m.state = StateIdle
}
