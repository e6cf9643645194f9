package experiment

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/spikelab/internal/model"
	"github.com/san-kum/spikelab/internal/stimulator"
)

// Params are the configurable knobs shared by the built-in experiments.
// Fields irrelevant to a given experiment are ignored.
type Params struct {
	Duration    float64
	Rates       []float64
	Sheets      []string
	DrivePeriod float64
	Weights     []float64
	SelectN     int
	Seed        int64
}

type Registry struct {
	experiments map[string]func(*model.Model, *slog.Logger, Params) (Experiment, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		experiments: make(map[string]func(*model.Model, *slog.Logger, Params) (Experiment, error)),
	}

	r.experiments["no_stimulation"] = func(m *model.Model, log *slog.Logger, p Params) (Experiment, error) {
		return NewNoStimulation(m, log, p.Duration), nil
	}
	r.experiments["poisson_kick"] = func(m *model.Model, log *slog.Logger, p Params) (Experiment, error) {
		var selector stimulator.PopulationSelector = stimulator.All{}
		if p.SelectN > 0 {
			selector = stimulator.RandomN{N: p.SelectN, Seed: p.Seed}
		}
		return NewPoissonNetworkKick(m, log, p.Duration, p.Sheets, p.DrivePeriod, selector, p.Rates, p.Weights, p.Seed)
	}
	r.experiments["constant_rate_series"] = func(m *model.Model, log *slog.Logger, p Params) (Experiment, error) {
		return NewConstantRateSeries(m, log, p.Duration, p.Rates), nil
	}

	return r
}

func (r *Registry) Get(name string, m *model.Model, log *slog.Logger, p Params) (Experiment, error) {
	fn, ok := r.experiments[name]
	if !ok {
		return nil, fmt.Errorf("unknown experiment: %s", name)
	}
	return fn(m, log, p)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.experiments))
	for name := range r.experiments {
		names = append(names, name)
	}
	return names
}
