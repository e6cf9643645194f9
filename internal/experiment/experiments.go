package experiment

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/spikelab/internal/model"
	"github.com/san-kum/spikelab/internal/stimulator"
	"github.com/san-kum/spikelab/internal/stimuli"
)

// NoStimulation presents a single internal stimulus: no sensory input, no
// direct stimulation. Usable in models with no sensory input sheet.
type NoStimulation struct {
	Base
}

func NewNoStimulation(m *model.Model, log *slog.Logger, duration float64) *NoStimulation {
	e := &NoStimulation{Base: NewBase(m, log)}
	e.Append(stimuli.NewInternalStimulus(duration, 0, "None"), nil)
	return e
}

// PoissonNetworkKick shows no stimulus but injects a Poisson spike-train
// drive into selected neurons of the given sheets for the duration of the
// trial. The drive holds constant for drivePeriod ms and then ramps linearly
// to zero.
type PoissonNetworkKick struct {
	Base
}

func NewPoissonNetworkKick(m *model.Model, log *slog.Logger, duration float64,
	sheets []string, drivePeriod float64, selector stimulator.PopulationSelector,
	rates, weights []float64, seed int64) (*PoissonNetworkKick, error) {

	if len(rates) != len(sheets) || len(weights) != len(sheets) {
		return nil, fmt.Errorf("experiment: kick needs one rate and one weight per sheet, got %d sheets, %d rates, %d weights",
			len(sheets), len(rates), len(weights))
	}

	ds := make(map[string][]stimulator.DirectStimulator, len(sheets))
	for i, name := range sheets {
		if _, ok := m.Sheet(name); !ok {
			return nil, fmt.Errorf("experiment: kick targets unknown sheet %s", name)
		}
		ds[name] = []stimulator.DirectStimulator{
			stimulator.NewKick(rates[i], weights[i], drivePeriod, selector, stimulator.Excitatory, seed+int64(i)),
		}
	}

	e := &PoissonNetworkKick{Base: NewBase(m, log)}
	e.Append(stimuli.NewInternalStimulus(duration, 0, "Kick"), ds)
	return e, nil
}

// ConstantRateSeries presents a sequence of constant-rate sensory stimuli,
// one trial per rate.
type ConstantRateSeries struct {
	Base
}

func NewConstantRateSeries(m *model.Model, log *slog.Logger, duration float64, rates []float64) *ConstantRateSeries {
	e := &ConstantRateSeries{Base: NewBase(m, log)}
	for trial, rate := range rates {
		e.Append(stimuli.NewConstantRate(rate, duration, trial), nil)
	}
	return e
}
