// Package model implements the stimulus-presentation orchestrator: it owns
// the registered sheets and connectors, the simulated-time bookkeeping, and
// the present/run/reset cycle.
package model

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/spikelab/internal/connector"
	"github.com/san-kum/spikelab/internal/dist"
	"github.com/san-kum/spikelab/internal/engine"
	"github.com/san-kum/spikelab/internal/neo"
	"github.com/san-kum/spikelab/internal/sheet"
	"github.com/san-kum/spikelab/internal/space"
	"github.com/san-kum/spikelab/internal/stimulator"
	"github.com/san-kum/spikelab/internal/stimuli"
)

// Mode selects between the two mutually exclusive simulated-time and
// recording disciplines. Fixed for the lifetime of a Model.
type Mode int

const (
	// ResetEachTrial returns simulated time and network state to zero
	// before every trial, guaranteeing trial independence.
	ResetEachTrial Mode = iota

	// Continuous accumulates simulated time across trials and records a
	// null baseline segment during a blank lead-in before each trial.
	Continuous
)

func (m Mode) String() string {
	if m == Continuous {
		return "continuous"
	}
	return "reset"
}

// Config carries the fixed configuration of a Model.
type Config struct {
	Mode               Mode
	NullStimulusPeriod float64 // ms, required in continuous mode
	Coordinator        dist.Coordinator
	Logger             *slog.Logger
}

// TrialResult is the outcome of one presentation. Segments are owned by the
// caller; the model retains no reference after return.
type TrialResult struct {
	Segments     []*neo.Segment
	NullSegments []*neo.Segment
	SensoryInput *space.SensoryInput // nil for internal stimuli or models without an input space
	SimRunTime   time.Duration
}

// Model drives one simulated trial at a time. Not safe for concurrent use:
// a trial runs on a single logical thread of control.
type Model struct {
	engine engine.Engine
	coord  dist.Coordinator
	log    *slog.Logger

	mode               Mode
	nullStimulusPeriod float64

	sheets     map[string]sheet.Sheet
	sheetOrder []string
	connectors map[string]connector.Connector

	inputSpace *space.Space
	inputLayer space.InputLayer

	simulatorTime float64
	firstTime     bool
}

// New creates a Model around an engine handle, which the model holds
// exclusively.
func New(eng engine.Engine, cfg Config) (*Model, error) {
	if cfg.Mode == Continuous && cfg.NullStimulusPeriod <= 0 {
		return nil, ErrNoNullStimulusPeriod
	}
	coord := cfg.Coordinator
	if coord == nil {
		coord = dist.Local{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Model{
		engine:             eng,
		coord:              coord,
		log:                log,
		mode:               cfg.Mode,
		nullStimulusPeriod: cfg.NullStimulusPeriod,
		sheets:             make(map[string]sheet.Sheet),
		connectors:         make(map[string]connector.Connector),
		firstTime:          true,
	}, nil
}

// SetInputSpace attaches the optional input space and input layer. A model
// without them treats every stimulus as having no sensory component.
func (m *Model) SetInputSpace(sp *space.Space, layer space.InputLayer) {
	m.inputSpace = sp
	m.inputLayer = layer
}

// RegisterSheet adds a sheet under its name. Registering a name that is
// already present fails and leaves the registry unchanged.
func (m *Model) RegisterSheet(s sheet.Sheet) error {
	if _, ok := m.sheets[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSheet, s.Name())
	}
	m.sheets[s.Name()] = s
	m.sheetOrder = append(m.sheetOrder, s.Name())
	return nil
}

// RegisterConnector adds a connector under its name, with the same
// uniqueness contract as RegisterSheet.
func (m *Model) RegisterConnector(c connector.Connector) error {
	if _, ok := m.connectors[c.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateConnector, c.Name())
	}
	m.connectors[c.Name()] = c
	return nil
}

// Sheet returns a registered sheet by name.
func (m *Model) Sheet(name string) (sheet.Sheet, bool) {
	s, ok := m.sheets[name]
	return s, ok
}

// SheetNames returns the registered sheet names in registration order.
func (m *Model) SheetNames() []string {
	out := make([]string, len(m.sheetOrder))
	copy(out, m.sheetOrder)
	return out
}

// SimulatorTime returns the model's simulated time in ms.
func (m *Model) SimulatorTime() float64 { return m.simulatorTime }

// Mode returns the operating mode fixed at construction.
func (m *Model) Mode() Mode { return m.mode }

// PresentStimulusAndRecord drives one trial: reset or blank lead-in, input
// preparation, sensory drive registration, simulator advance, and recording
// extraction, in that fixed order. directStim maps sheet name to the direct
// stimulators assigned for this stimulus; a nil map means no direct
// stimulation anywhere.
func (m *Model) PresentStimulusAndRecord(stim stimuli.Stimulus, directStim map[string][]stimulator.DirectStimulator) (*TrialResult, error) {
	if m.firstTime {
		for _, name := range m.sheetOrder {
			m.sheets[name].Record()
		}
	}

	nullSegments, simRunTime, err := m.resetOrBlank()
	if err != nil {
		return nil, err
	}

	for _, name := range m.sheetOrder {
		exc, inh := splitByPolarity(directStim[name])
		if err := m.sheets[name].PrepareInput(stim.Duration(), m.simulatorTime, exc, inh); err != nil {
			return nil, err
		}
	}

	var sensoryInput *space.SensoryInput
	if m.inputSpace != nil {
		m.inputSpace.Clear()
		m.inputSpace.Add(stim.ID(), stim)
		if !stim.Internal() {
			sensoryInput, err = m.inputLayer.ProcessInput(m.inputSpace, stim, stim.Duration(), m.simulatorTime)
			if err != nil {
				return nil, err
			}
		} else {
			if err := m.inputLayer.ProvideNullInput(m.inputSpace, stim.Duration(), m.simulatorTime); err != nil {
				return nil, err
			}
		}
	}

	elapsed, err := m.Run(stim.Duration())
	if err != nil {
		return nil, err
	}
	simRunTime += elapsed

	segments := []*neo.Segment{}
	if m.coord.IsRoot() {
		for _, name := range m.sheetOrder {
			s := m.sheets[name]
			if !s.Recording() {
				continue
			}
			var seg *neo.Segment
			if m.mode == ResetEachTrial {
				seg, err = s.WriteNeoObject()
			} else {
				seg, err = s.WriteNeoObjectForDuration(stim.Duration())
			}
			if err != nil {
				return nil, err
			}
			seg.Annotate("stimulus", stim.ID())
			segments = append(segments, seg)
		}
	}

	m.firstTime = false
	return &TrialResult{
		Segments:     segments,
		NullSegments: nullSegments,
		SensoryInput: sensoryInput,
		SimRunTime:   simRunTime,
	}, nil
}

// Run advances the simulator by duration ms and updates simulated time.
// Returns the wall-clock time the run took.
func (m *Model) Run(duration float64) (time.Duration, error) {
	t0 := time.Now()
	m.log.Info("simulating the network", "duration_ms", duration, "simulator_time_ms", m.simulatorTime)
	if err := m.engine.Run(duration); err != nil {
		return time.Since(t0), err
	}
	m.simulatorTime += duration
	m.log.Info("finished simulating the network", "duration_ms", duration, "simulator_time_ms", m.simulatorTime)
	return time.Since(t0), nil
}

// ResetBetweenTrials performs the mode-dependent reset or blank-run
// behavior standalone, e.g. at experiment start. In continuous mode the
// baseline segments recorded during the blank run are discarded since there
// is no upcoming stimulus to attach them to.
func (m *Model) ResetBetweenTrials() (time.Duration, error) {
	_, elapsed, err := m.resetOrBlank()
	return elapsed, err
}

// resetOrBlank implements the two disciplines. In reset mode it resets the
// engine and zeroes simulated time. In continuous mode it runs a blank
// lead-in of the null stimulus period and, on the root rank, flushes each
// recording sheet's accumulated segment as the null baseline.
func (m *Model) resetOrBlank() ([]*neo.Segment, time.Duration, error) {
	t0 := time.Now()

	if m.mode == ResetEachTrial {
		m.log.Debug("resetting the network")
		if err := m.engine.Reset(); err != nil {
			return nil, time.Since(t0), err
		}
		m.simulatorTime = 0
		return nil, time.Since(t0), nil
	}

	for _, name := range m.sheetOrder {
		if err := m.sheets[name].PrepareInput(m.nullStimulusPeriod, m.simulatorTime, nil, nil); err != nil {
			return nil, time.Since(t0), err
		}
	}
	if m.inputSpace != nil {
		if err := m.inputLayer.ProvideNullInput(m.inputSpace, m.nullStimulusPeriod, m.simulatorTime); err != nil {
			return nil, time.Since(t0), err
		}
	}

	m.log.Info("simulating the network with blank stimulus", "duration_ms", m.nullStimulusPeriod)
	if err := m.engine.Run(m.nullStimulusPeriod); err != nil {
		return nil, time.Since(t0), err
	}
	m.simulatorTime += m.nullStimulusPeriod

	var nullSegments []*neo.Segment
	if m.coord.IsRoot() {
		for _, name := range m.sheetOrder {
			s := m.sheets[name]
			if !s.Recording() {
				continue
			}
			seg, err := s.WriteNeoObject()
			if err != nil {
				return nil, time.Since(t0), err
			}
			seg.Annotate("null", "true")
			nullSegments = append(nullSegments, seg)
		}
	}
	return nullSegments, time.Since(t0), nil
}

// NeuronIDs aggregates neuron ids across all registered sheets.
func (m *Model) NeuronIDs() map[string][]int {
	ids := make(map[string][]int, len(m.sheets))
	for name, s := range m.sheets {
		ids[name] = s.NeuronIDs()
	}
	return ids
}

// NeuronPositions aggregates neuron positions across all registered sheets.
func (m *Model) NeuronPositions() map[string][][3]float64 {
	pos := make(map[string][][3]float64, len(m.sheets))
	for name, s := range m.sheets {
		pos[name] = s.Positions()
	}
	return pos
}

// NeuronAnnotations aggregates per-neuron annotations across all registered
// sheets.
func (m *Model) NeuronAnnotations() map[string][]map[string]string {
	ann := make(map[string][]map[string]string, len(m.sheets))
	for name, s := range m.sheets {
		ann[name] = s.Annotations()
	}
	return ann
}

func splitByPolarity(stims []stimulator.DirectStimulator) (exc, inh []stimulator.DirectStimulator) {
	for _, st := range stims {
		if st.Polarity() == stimulator.Inhibitory {
			inh = append(inh, st)
		} else {
			exc = append(exc, st)
		}
	}
	return exc, inh
}
