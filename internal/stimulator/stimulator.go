// Package stimulator provides direct stimulation: artificial drive injected
// into a sheet independent of sensory input.
package stimulator

// Polarity selects which synapse population a stimulator drives.
type Polarity int

const (
	Excitatory Polarity = iota
	Inhibitory
)

func (p Polarity) String() string {
	if p == Inhibitory {
		return "inhibitory"
	}
	return "excitatory"
}

// DirectStimulator produces a per-timestep drive for a subset of a sheet's
// neurons over one stimulus presentation.
type DirectStimulator interface {
	// Drive returns one drive sample per timestep for a presentation of the
	// given duration starting at the given simulated time, sampled at dt ms.
	Drive(start, duration, dt float64) []float64

	// Targets selects the neuron ids to stimulate out of the sheet's ids.
	Targets(ids []int) []int

	Polarity() Polarity
}
