// Package space provides the input space and the input layer: the subsystem
// that converts a stimulus description into per-timestep sensory drive.
package space

import (
	"fmt"

	"github.com/san-kum/spikelab/internal/sheet"
	"github.com/san-kum/spikelab/internal/stimuli"
)

// Space holds the stimulus objects currently registered for presentation.
// The model clears it and registers exactly one stimulus per trial.
type Space struct {
	objects map[string]stimuli.Stimulus
}

func New() *Space {
	return &Space{objects: make(map[string]stimuli.Stimulus)}
}

func (s *Space) Clear() {
	s.objects = make(map[string]stimuli.Stimulus)
}

func (s *Space) Add(key string, stim stimuli.Stimulus) {
	s.objects[key] = stim
}

func (s *Space) Get(key string) (stimuli.Stimulus, bool) {
	stim, ok := s.objects[key]
	return stim, ok
}

func (s *Space) Len() int { return len(s.objects) }

// SensoryInput is the processed per-timestep drive for one presentation,
// valid for Duration ms starting at Start.
type SensoryInput struct {
	StimulusID string    `json:"stimulus_id"`
	Start      float64   `json:"start"`
	Duration   float64   `json:"duration"`
	Dt         float64   `json:"dt"`
	Drive      []float64 `json:"drive"`
}

// InputLayer converts stimuli in the input space into drive on a sheet.
type InputLayer interface {
	// ProcessInput converts the stimulus into per-timestep drive valid for
	// duration ms starting at start, and installs it on the target sheet.
	ProcessInput(space *Space, stim stimuli.Stimulus, duration, start float64) (*SensoryInput, error)

	// ProvideNullInput installs a zero drive for duration ms starting at
	// start, for internal stimuli and blank periods.
	ProvideNullInput(space *Space, duration, start float64) error
}

// RateInputLayer drives a single target sheet with a rate-coded current.
type RateInputLayer struct {
	Target *sheet.LIFSheet
	Gain   float64
	Dt     float64
}

func NewRateInputLayer(target *sheet.LIFSheet, gain, dt float64) *RateInputLayer {
	return &RateInputLayer{Target: target, Gain: gain, Dt: dt}
}

func (l *RateInputLayer) ProcessInput(sp *Space, stim stimuli.Stimulus, duration, start float64) (*SensoryInput, error) {
	if _, ok := sp.Get(stim.ID()); !ok {
		return nil, fmt.Errorf("input layer: stimulus %s not registered in input space", stim.ID())
	}

	steps := int(duration / l.Dt)
	drive := make([]float64, steps)

	switch s := stim.(type) {
	case *stimuli.ConstantRate:
		for i := range drive {
			drive[i] = l.Gain * s.Rate
		}
	case *stimuli.Pulse:
		for i := range drive {
			t := float64(i) * l.Dt
			if t >= s.Onset && t < s.Offset {
				drive[i] = l.Gain * s.Amplitude
			}
		}
	default:
		return nil, fmt.Errorf("input layer: unsupported stimulus type %T", stim)
	}

	l.Target.SetSensoryDrive(drive, start)
	return &SensoryInput{
		StimulusID: stim.ID(),
		Start:      start,
		Duration:   duration,
		Dt:         l.Dt,
		Drive:      drive,
	}, nil
}

func (l *RateInputLayer) ProvideNullInput(_ *Space, duration, start float64) error {
	steps := int(duration / l.Dt)
	l.Target.SetSensoryDrive(make([]float64, steps), start)
	return nil
}
