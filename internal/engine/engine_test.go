package engine

import (
	"errors"
	"math"
	"testing"
)

type countingComponent struct {
	steps  int
	resets int
	lastT  float64
	err    error
}

func (c *countingComponent) Step(t, dt float64) error {
	c.steps++
	c.lastT = t
	return c.err
}

func (c *countingComponent) Reset() error {
	c.resets++
	return nil
}

func TestSetupValidation(t *testing.T) {
	tests := []struct {
		name     string
		timestep float64
		minDelay float64
		maxDelay float64
		wantErr  bool
	}{
		{"valid", 0.1, 0.1, 100.0, false},
		{"zero timestep", 0, 0.1, 100.0, true},
		{"negative timestep", -0.1, 0.1, 100.0, true},
		{"min delay below timestep", 0.1, 0.05, 100.0, true},
		{"max below min", 0.1, 1.0, 0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Network{}
			err := n.Setup(tt.timestep, tt.minDelay, tt.maxDelay, 1)
			if (err != nil) != tt.wantErr {
				t.Errorf("Setup() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunBeforeSetup(t *testing.T) {
	n := &Network{}
	if err := n.Run(10.0); !errors.Is(err, ErrNotSetup) {
		t.Fatalf("expected ErrNotSetup, got %v", err)
	}
	if err := n.Reset(); !errors.Is(err, ErrNotSetup) {
		t.Fatalf("expected ErrNotSetup, got %v", err)
	}
}

func TestRunStepsComponents(t *testing.T) {
	n := &Network{}
	if err := n.Setup(0.1, 0.1, 100.0, 1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	c := &countingComponent{}
	n.Register(c)

	if err := n.Run(10.0); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.steps != 100 {
		t.Errorf("steps = %d, want 100", c.steps)
	}
	if math.Abs(n.Clock()-10.0) > 1e-9 {
		t.Errorf("clock = %g, want 10", n.Clock())
	}

	// a second run continues from the current clock
	if err := n.Run(5.0); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.steps != 150 {
		t.Errorf("steps = %d, want 150", c.steps)
	}
	if math.Abs(n.Clock()-15.0) > 1e-9 {
		t.Errorf("clock = %g, want 15", n.Clock())
	}
}

func TestRunRejectsNonPositiveDuration(t *testing.T) {
	n := &Network{}
	if err := n.Setup(0.1, 0.1, 100.0, 1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := n.Run(0); err == nil {
		t.Fatal("expected an error for zero duration")
	}
	if err := n.Run(-5.0); err == nil {
		t.Fatal("expected an error for negative duration")
	}
}

func TestStepFailureAborts(t *testing.T) {
	n := &Network{}
	if err := n.Setup(0.1, 0.1, 100.0, 1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	c := &countingComponent{err: errors.New("boom")}
	n.Register(c)

	if err := n.Run(10.0); err == nil {
		t.Fatal("expected the step error to surface")
	}
	if c.steps != 1 {
		t.Errorf("run must abort on the first failed step, got %d steps", c.steps)
	}
}

func TestResetZeroesClockAndComponents(t *testing.T) {
	n := &Network{}
	if err := n.Setup(0.1, 0.1, 100.0, 1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	c := &countingComponent{}
	n.Register(c)

	if err := n.Run(10.0); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := n.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n.Clock() != 0 {
		t.Errorf("clock = %g, want 0", n.Clock())
	}
	if c.resets != 1 {
		t.Errorf("resets = %d, want 1", c.resets)
	}
}
