// Package experiment provides the experiment driver: a declarative list of
// stimuli with optional per-stimulus direct stimulation, replayed against a
// model one trial at a time.
package experiment

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/san-kum/spikelab/internal/datastore"
	"github.com/san-kum/spikelab/internal/model"
	"github.com/san-kum/spikelab/internal/stimulator"
	"github.com/san-kum/spikelab/internal/stimuli"
)

// ErrAnalysisNotImplemented is returned by DoAnalysis when an experiment
// defines no analysis.
var ErrAnalysisNotImplemented = errors.New("experiment: analysis not implemented")

// Experiment defines the stimuli to present and, optionally, the analysis of
// the recorded results.
type Experiment interface {
	// Stimuli returns the experiment's full intended stimulus list. The
	// caller diffs it against already-stored results to decide what to
	// actually present.
	Stimuli() []stimuli.Stimulus

	// Run presents the given subset of stimuli in order, forwarding results
	// to the data store, and returns the total simulation wall time.
	Run(store datastore.DataStore, toPresent []stimuli.Stimulus) (time.Duration, error)

	DoAnalysis() error
}

// Base implements the driver loop. Concrete experiments embed it and fill
// stimuli (and optionally directStimulation, one map per stimulus) in their
// constructors.
type Base struct {
	Model *model.Model
	Log   *slog.Logger

	stimuli []stimuli.Stimulus

	// directStimulation holds one sheet-name-keyed map per stimulus in
	// stimuli, or nil when the experiment uses no direct stimulation.
	directStimulation []map[string][]stimulator.DirectStimulator
}

func NewBase(m *model.Model, log *slog.Logger) Base {
	if log == nil {
		log = slog.Default()
	}
	return Base{Model: m, Log: log}
}

// Append adds a stimulus and its direct-stimulation map (nil for none) to
// the experiment's intended list.
func (b *Base) Append(s stimuli.Stimulus, ds map[string][]stimulator.DirectStimulator) {
	b.stimuli = append(b.stimuli, s)
	b.directStimulation = append(b.directStimulation, ds)
}

func (b *Base) Stimuli() []stimuli.Stimulus {
	out := make([]stimuli.Stimulus, len(b.stimuli))
	copy(out, b.stimuli)
	return out
}

// Run presents toPresent in order. Each stimulus's direct stimulation is
// resolved by its position in the original full list, so toPresent may be a
// strict subset or reordering. Every call into the model receives a
// well-formed (possibly empty) map.
func (b *Base) Run(store datastore.DataStore, toPresent []stimuli.Stimulus) (time.Duration, error) {
	var total time.Duration
	for i, s := range toPresent {
		b.Log.Debug("presenting stimulus", "stimulus", s.ID())

		ds := b.directStimulationFor(s)
		result, err := b.Model.PresentStimulusAndRecord(s, ds)
		if err != nil {
			return total, fmt.Errorf("experiment: presenting %s: %w", s.ID(), err)
		}
		total += result.SimRunTime

		if err := store.AddRecording(result.Segments, s); err != nil {
			return total, err
		}
		if err := store.AddStimulus(result.SensoryInput, s); err != nil {
			return total, err
		}
		if len(result.NullSegments) > 0 {
			if err := store.AddNullRecording(result.NullSegments, s); err != nil {
				return total, err
			}
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		b.Log.Info("stimulus finished",
			"index", i+1, "total", len(toPresent),
			"memory_mb", mem.HeapAlloc/(1<<20))
	}
	return total, nil
}

// directStimulationFor looks the stimulus up in the original full list by
// identity. Stimuli not in the list, or experiments with no direct
// stimulation configured, get an empty map.
func (b *Base) directStimulationFor(s stimuli.Stimulus) map[string][]stimulator.DirectStimulator {
	if b.directStimulation == nil {
		return map[string][]stimulator.DirectStimulator{}
	}
	for i, orig := range b.stimuli {
		if orig.ID() == s.ID() {
			if ds := b.directStimulation[i]; ds != nil {
				return ds
			}
			break
		}
	}
	return map[string][]stimulator.DirectStimulator{}
}

func (b *Base) DoAnalysis() error {
	return ErrAnalysisNotImplemented
}

// FilterPresented removes stimuli whose ids are already stored, preserving
// order. This is the caller-side diff that prevents re-presentation across
// resumed runs.
func FilterPresented(full []stimuli.Stimulus, store datastore.DataStore) ([]stimuli.Stimulus, error) {
	ids, err := store.StimulusIDs()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	var out []stimuli.Stimulus
	for _, s := range full {
		if !seen[s.ID()] {
			out = append(out, s)
		}
	}
	return out, nil
}
