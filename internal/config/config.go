package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTimestep           = 0.1
	DefaultMinDelay           = 0.1
	DefaultMaxDelay           = 100.0
	DefaultThreads            = 3
	DefaultNullStimulusPeriod = 100.0
	DefaultNeurons            = 100
	DefaultGain               = 0.5
)

type Config struct {
	Name               string             `yaml:"name"`
	Mode               string             `yaml:"mode"` // "reset" or "continuous"
	NullStimulusPeriod float64            `yaml:"null_stimulus_period"`
	Timestep           float64            `yaml:"timestep"`
	MinDelay           float64            `yaml:"min_delay"`
	MaxDelay           float64            `yaml:"max_delay"`
	Threads            int                `yaml:"threads"`
	Seed               int64              `yaml:"seed"`
	Sheets             []SheetConfig      `yaml:"sheets"`
	Connectors         []ConnectorConfig  `yaml:"connectors"`
	InputLayer         *InputLayerConfig  `yaml:"input_layer"`
	Experiment         ExperimentConfig   `yaml:"experiment"`
}

type SheetConfig struct {
	Name    string  `yaml:"name"`
	Neurons int     `yaml:"neurons"`
	Tau     float64 `yaml:"tau"`
}

type ConnectorConfig struct {
	Name   string  `yaml:"name"`
	Source string  `yaml:"source"`
	Target string  `yaml:"target"`
	Weight float64 `yaml:"weight"`
	Delay  float64 `yaml:"delay"`
}

type InputLayerConfig struct {
	Target string  `yaml:"target"`
	Gain   float64 `yaml:"gain"`
}

type ExperimentConfig struct {
	Name        string    `yaml:"name"`
	Duration    float64   `yaml:"duration"`
	Rates       []float64 `yaml:"rates"`
	Sheets      []string  `yaml:"sheets"`
	DrivePeriod float64   `yaml:"drive_period"`
	Weights     []float64 `yaml:"weights"`
	SelectN     int       `yaml:"select_n"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:               "spikelab",
		Mode:               "reset",
		NullStimulusPeriod: DefaultNullStimulusPeriod,
		Timestep:           DefaultTimestep,
		MinDelay:           DefaultMinDelay,
		MaxDelay:           DefaultMaxDelay,
		Threads:            DefaultThreads,
		Sheets: []SheetConfig{
			{Name: "exc", Neurons: DefaultNeurons, Tau: 20.0},
			{Name: "inh", Neurons: DefaultNeurons / 4, Tau: 10.0},
		},
		Connectors: []ConnectorConfig{
			{Name: "exc_to_inh", Source: "exc", Target: "inh", Weight: 2.0, Delay: 1.0},
			{Name: "inh_to_exc", Source: "inh", Target: "exc", Weight: -3.0, Delay: 1.0},
		},
		InputLayer: &InputLayerConfig{Target: "exc", Gain: DefaultGain},
		Experiment: ExperimentConfig{
			Name:     "no_stimulation",
			Duration: 1000.0,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Mode != "reset" && c.Mode != "continuous" {
		return fmt.Errorf("config: mode must be reset or continuous, got %q", c.Mode)
	}
	if c.Mode == "continuous" && c.NullStimulusPeriod <= 0 {
		return fmt.Errorf("config: continuous mode requires a positive null_stimulus_period")
	}
	if c.Timestep <= 0 {
		return fmt.Errorf("config: timestep must be positive, got %g", c.Timestep)
	}
	if len(c.Sheets) == 0 {
		return fmt.Errorf("config: at least one sheet is required")
	}
	names := make(map[string]bool, len(c.Sheets))
	for _, s := range c.Sheets {
		if s.Neurons <= 0 {
			return fmt.Errorf("config: sheet %s: neurons must be positive, got %d", s.Name, s.Neurons)
		}
		if names[s.Name] {
			return fmt.Errorf("config: duplicate sheet name %s", s.Name)
		}
		names[s.Name] = true
	}
	for _, conn := range c.Connectors {
		if !names[conn.Source] || !names[conn.Target] {
			return fmt.Errorf("config: connector %s references unknown sheet", conn.Name)
		}
	}
	if c.InputLayer != nil && !names[c.InputLayer.Target] {
		return fmt.Errorf("config: input layer targets unknown sheet %s", c.InputLayer.Target)
	}
	return nil
}
