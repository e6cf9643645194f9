// Package connector wires sheets together. A connector is registered on the
// model under a unique name and attaches spike-propagation hooks when
// connected.
package connector

import (
	"fmt"

	"github.com/san-kum/spikelab/internal/sheet"
)

// Connector connects a source sheet to a target sheet.
type Connector interface {
	Name() string
	Connect() error
}

// Uniform propagates every source spike to the whole target population with
// a fixed weight after a fixed delay.
type Uniform struct {
	ConnName string
	Source   *sheet.LIFSheet
	Target   *sheet.LIFSheet
	Weight   float64
	Delay    float64 // ms, at least the engine min delay
}

func NewUniform(name string, source, target *sheet.LIFSheet, weight, delay float64) *Uniform {
	return &Uniform{ConnName: name, Source: source, Target: target, Weight: weight, Delay: delay}
}

func (u *Uniform) Name() string { return u.ConnName }

func (u *Uniform) Connect() error {
	if u.Source == nil || u.Target == nil {
		return fmt.Errorf("connector %s: source and target are required", u.ConnName)
	}
	if u.Delay <= 0 {
		return fmt.Errorf("connector %s: delay must be positive, got %g", u.ConnName, u.Delay)
	}
	u.Source.OnSpike(func(_ int, t float64) {
		u.Target.Deliver(u.Weight, t+u.Delay)
	})
	return nil
}
