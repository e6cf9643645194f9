package sheet

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/spikelab/internal/neo"
	"github.com/san-kum/spikelab/internal/stimulator"
)

// LIFParams are the membrane parameters of a LIFSheet. Times in ms,
// potentials in mV.
type LIFParams struct {
	Tau        float64 // membrane time constant
	VRest      float64
	VThreshold float64
	VReset     float64
	Refractory float64
}

func DefaultLIFParams() LIFParams {
	return LIFParams{
		Tau:        20.0,
		VRest:      -65.0,
		VThreshold: -50.0,
		VReset:     -70.0,
		Refractory: 2.0,
	}
}

type preparedDrive struct {
	samples []float64
	targets map[int]bool
	sign    float64
	start   float64
}

type pendingSpike struct {
	at     float64
	weight float64
}

// LIFSheet is a population of leaky integrate-and-fire neurons stepped with
// explicit Euler at the engine timestep.
type LIFSheet struct {
	name   string
	params LIFParams
	dt     float64

	ids         []int
	positions   [][3]float64
	annotations []map[string]string

	v          []float64
	refractory []float64

	recording   bool
	spikes      [][]float64 // per neuron, since last write
	windowStart float64
	now         float64

	prepared []preparedDrive

	sensory      []float64
	sensoryStart float64

	pending   []pendingSpike
	listeners []func(neuronID int, t float64)
}

// NewLIFSheet creates a sheet of n neurons laid out on a unit grid, stepped
// at dt ms.
func NewLIFSheet(name string, n int, dt float64, params LIFParams) *LIFSheet {
	side := int(math.Ceil(math.Sqrt(float64(n))))
	s := &LIFSheet{
		name:        name,
		params:      params,
		dt:          dt,
		ids:         make([]int, n),
		positions:   make([][3]float64, n),
		annotations: make([]map[string]string, n),
		v:           make([]float64, n),
		refractory:  make([]float64, n),
		spikes:      make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		s.ids[i] = i
		s.positions[i] = [3]float64{float64(i % side), float64(i / side), 0}
		s.annotations[i] = map[string]string{"sheet": name}
		s.v[i] = params.VRest
	}
	return s
}

func (s *LIFSheet) Name() string    { return s.name }
func (s *LIFSheet) Record()         { s.recording = true }
func (s *LIFSheet) Recording() bool { return s.recording }

func (s *LIFSheet) NeuronIDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *LIFSheet) Positions() [][3]float64 {
	out := make([][3]float64, len(s.positions))
	copy(out, s.positions)
	return out
}

func (s *LIFSheet) Annotations() []map[string]string {
	out := make([]map[string]string, len(s.annotations))
	copy(out, s.annotations)
	return out
}

func (s *LIFSheet) PrepareInput(duration, start float64, exc, inh []stimulator.DirectStimulator) error {
	if duration <= 0 {
		return fmt.Errorf("sheet %s: duration must be positive, got %g", s.name, duration)
	}
	s.prepared = s.prepared[:0]
	for _, st := range exc {
		s.prepared = append(s.prepared, s.prepare(st, duration, start, 1.0))
	}
	for _, st := range inh {
		s.prepared = append(s.prepared, s.prepare(st, duration, start, -1.0))
	}
	return nil
}

func (s *LIFSheet) prepare(st stimulator.DirectStimulator, duration, start, sign float64) preparedDrive {
	targets := make(map[int]bool)
	for _, id := range st.Targets(s.ids) {
		targets[id] = true
	}
	return preparedDrive{
		samples: st.Drive(start, duration, s.dt),
		targets: targets,
		sign:    sign,
		start:   start,
	}
}

// SetSensoryDrive installs a shared per-timestep sensory drive applied to
// every neuron starting at the given simulated time. The input layer calls
// this on its target sheet.
func (s *LIFSheet) SetSensoryDrive(samples []float64, start float64) {
	s.sensory = samples
	s.sensoryStart = start
}

// OnSpike registers a listener invoked for every spike. Connectors use this
// to propagate activity.
func (s *LIFSheet) OnSpike(fn func(neuronID int, t float64)) {
	s.listeners = append(s.listeners, fn)
}

// Deliver schedules a population-wide synaptic current of the given weight
// at simulated time at.
func (s *LIFSheet) Deliver(weight, at float64) {
	s.pending = append(s.pending, pendingSpike{at: at, weight: weight})
}

// Step advances every neuron by dt from simulated time t. Called by the
// engine; t is the time at the start of the step.
func (s *LIFSheet) Step(t, dt float64) error {
	s.now = t + dt

	recurrent := 0.0
	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.at <= t {
			recurrent += p.weight
		} else {
			kept = append(kept, p)
		}
	}
	s.pending = kept

	for i := range s.v {
		if s.refractory[i] > 0 {
			s.refractory[i] -= dt
			continue
		}

		drive := recurrent
		if s.sensory != nil {
			idx := int((t - s.sensoryStart) / s.dt)
			if idx >= 0 && idx < len(s.sensory) {
				drive += s.sensory[idx]
			}
		}
		for _, p := range s.prepared {
			if !p.targets[s.ids[i]] {
				continue
			}
			idx := int((t - p.start) / s.dt)
			if idx >= 0 && idx < len(p.samples) {
				drive += p.sign * p.samples[idx]
			}
		}

		dv := (-(s.v[i] - s.params.VRest) + drive) / s.params.Tau
		s.v[i] += dv * dt

		if s.v[i] >= s.params.VThreshold {
			s.v[i] = s.params.VReset
			s.refractory[i] = s.params.Refractory
			if s.recording {
				s.spikes[i] = append(s.spikes[i], s.now)
			}
			for _, fn := range s.listeners {
				fn(s.ids[i], s.now)
			}
		}
	}
	return nil
}

// Reset returns every neuron to rest and discards buffered activity. Called
// by the engine on a full reset; the recording flag survives.
func (s *LIFSheet) Reset() error {
	for i := range s.v {
		s.v[i] = s.params.VRest
		s.refractory[i] = 0
		s.spikes[i] = nil
	}
	s.prepared = s.prepared[:0]
	s.sensory = nil
	s.pending = s.pending[:0]
	s.windowStart = 0
	s.now = 0
	return nil
}

func (s *LIFSheet) WriteNeoObject() (*neo.Segment, error) {
	if !s.recording {
		return nil, fmt.Errorf("sheet %s: recording not enabled", s.name)
	}
	return s.flush(s.windowStart), nil
}

func (s *LIFSheet) WriteNeoObjectForDuration(duration float64) (*neo.Segment, error) {
	if !s.recording {
		return nil, fmt.Errorf("sheet %s: recording not enabled", s.name)
	}
	start := s.now - duration
	if start < s.windowStart {
		start = s.windowStart
	}
	return s.flush(start), nil
}

// flush builds a segment for [start, now), then drops everything recorded so
// far and opens a new window at now.
func (s *LIFSheet) flush(start float64) *neo.Segment {
	seg := &neo.Segment{
		Sheet: s.name,
		Start: start,
		End:   s.now,
	}
	for i, times := range s.spikes {
		lo := sort.SearchFloat64s(times, start)
		train := neo.SpikeTrain{NeuronID: s.ids[i], Times: append([]float64(nil), times[lo:]...)}
		seg.SpikeTrains = append(seg.SpikeTrains, train)
		s.spikes[i] = nil
	}
	s.windowStart = s.now
	return seg
}
