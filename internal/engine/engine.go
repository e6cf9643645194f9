// Package engine provides the simulator engine: the owner of global
// simulated time. Run advances time; Reset returns it to zero. Both are
// synchronous, blocking calls with no partial-progress visibility.
package engine

import (
	"errors"
	"fmt"
)

// Engine is the capability the model orchestrator holds exclusively.
type Engine interface {
	Run(duration float64) error
	Reset() error
}

// Steppable is a component advanced once per timestep.
type Steppable interface {
	Step(t, dt float64) error
}

// Resettable is a component whose state returns to zero on a full reset.
type Resettable interface {
	Reset() error
}

// ErrNotSetup indicates Run or Reset was called before Setup.
var ErrNotSetup = errors.New("engine: network not set up")

// Network is a clock-driven engine stepping registered components in
// registration order at a fixed timestep.
type Network struct {
	timestep float64
	minDelay float64
	maxDelay float64
	threads  int

	setup      bool
	clock      float64
	components []Steppable
}

// Setup initializes the network clock. Timestep and delays are in ms;
// threads is advisory for engines that parallelize internally.
func (n *Network) Setup(timestep, minDelay, maxDelay float64, threads int) error {
	if timestep <= 0 {
		return fmt.Errorf("engine: timestep must be positive, got %g", timestep)
	}
	if minDelay < timestep || maxDelay < minDelay {
		return fmt.Errorf("engine: delays must satisfy timestep <= min <= max, got min=%g max=%g", minDelay, maxDelay)
	}
	n.timestep = timestep
	n.minDelay = minDelay
	n.maxDelay = maxDelay
	n.threads = threads
	n.setup = true
	return nil
}

func (n *Network) Timestep() float64 { return n.timestep }
func (n *Network) MinDelay() float64 { return n.minDelay }

// Register adds a component to the step order.
func (n *Network) Register(c Steppable) {
	n.components = append(n.components, c)
}

// Run advances the network by duration ms, stepping every component once per
// timestep. A failed step aborts the run; the engine state is not trusted
// afterwards.
func (n *Network) Run(duration float64) error {
	if !n.setup {
		return ErrNotSetup
	}
	if duration <= 0 {
		return fmt.Errorf("engine: duration must be positive, got %g", duration)
	}
	steps := int(duration/n.timestep + 0.5)
	for i := 0; i < steps; i++ {
		for _, c := range n.components {
			if err := c.Step(n.clock, n.timestep); err != nil {
				return fmt.Errorf("engine: step at t=%.3f: %w", n.clock, err)
			}
		}
		n.clock += n.timestep
	}
	return nil
}

// Reset returns the clock to zero and resets every Resettable component.
func (n *Network) Reset() error {
	if !n.setup {
		return ErrNotSetup
	}
	n.clock = 0
	for _, c := range n.components {
		if r, ok := c.(Resettable); ok {
			if err := r.Reset(); err != nil {
				return fmt.Errorf("engine: reset: %w", err)
			}
		}
	}
	return nil
}

// Clock returns the engine's simulated time in ms.
func (n *Network) Clock() float64 { return n.clock }
