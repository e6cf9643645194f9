package config

var Presets = map[string]map[string]*Config{
	"no_stimulation": {
		"spontaneous": {
			Name: "spontaneous", Mode: "reset",
			Timestep: 0.1, MinDelay: 0.1, MaxDelay: 100.0, Threads: 3,
			Sheets: []SheetConfig{
				{Name: "exc", Neurons: 200, Tau: 20.0},
				{Name: "inh", Neurons: 50, Tau: 10.0},
			},
			Connectors: []ConnectorConfig{
				{Name: "exc_to_inh", Source: "exc", Target: "inh", Weight: 2.0, Delay: 1.0},
				{Name: "inh_to_exc", Source: "inh", Target: "exc", Weight: -3.0, Delay: 1.0},
			},
			Experiment: ExperimentConfig{Name: "no_stimulation", Duration: 2000.0},
		},
		"adaptation": {
			Name: "adaptation", Mode: "continuous", NullStimulusPeriod: 150.0,
			Timestep: 0.1, MinDelay: 0.1, MaxDelay: 100.0, Threads: 3,
			Sheets: []SheetConfig{
				{Name: "exc", Neurons: 200, Tau: 20.0},
			},
			Experiment: ExperimentConfig{Name: "no_stimulation", Duration: 1000.0},
		},
	},
	"poisson_kick": {
		"gentle": {
			Name: "gentle_kick", Mode: "reset",
			Timestep: 0.1, MinDelay: 0.1, MaxDelay: 100.0, Threads: 3,
			Sheets: []SheetConfig{
				{Name: "exc", Neurons: 100, Tau: 20.0},
			},
			Experiment: ExperimentConfig{
				Name: "poisson_kick", Duration: 500.0,
				Sheets: []string{"exc"}, Rates: []float64{50.0},
				Weights: []float64{20.0}, DrivePeriod: 300.0,
			},
		},
		"strong": {
			Name: "strong_kick", Mode: "reset",
			Timestep: 0.1, MinDelay: 0.1, MaxDelay: 100.0, Threads: 3,
			Sheets: []SheetConfig{
				{Name: "exc", Neurons: 100, Tau: 20.0},
				{Name: "inh", Neurons: 25, Tau: 10.0},
			},
			Connectors: []ConnectorConfig{
				{Name: "exc_to_inh", Source: "exc", Target: "inh", Weight: 2.0, Delay: 1.0},
			},
			Experiment: ExperimentConfig{
				Name: "poisson_kick", Duration: 500.0,
				Sheets: []string{"exc"}, Rates: []float64{200.0},
				Weights: []float64{40.0}, DrivePeriod: 200.0, SelectN: 20,
			},
		},
	},
	"constant_rate_series": {
		"tuning": {
			Name: "rate_tuning", Mode: "continuous", NullStimulusPeriod: 100.0,
			Timestep: 0.1, MinDelay: 0.1, MaxDelay: 100.0, Threads: 3,
			Sheets: []SheetConfig{
				{Name: "exc", Neurons: 100, Tau: 20.0},
			},
			InputLayer: &InputLayerConfig{Target: "exc", Gain: 0.5},
			Experiment: ExperimentConfig{
				Name: "constant_rate_series", Duration: 500.0,
				Rates: []float64{10, 20, 40, 80},
			},
		},
	},
}

func GetPreset(experiment, preset string) *Config {
	experimentPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	cfg, ok := experimentPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(experiment string) []string {
	experimentPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(experimentPresets))
	for name := range experimentPresets {
		names = append(names, name)
	}
	return names
}
