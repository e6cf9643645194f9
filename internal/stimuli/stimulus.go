// Package stimuli defines stimulus descriptions presented to a model. A
// stimulus is identified by its ID string; two stimuli with the same ID are
// the same stimulus for storage and direct-stimulation lookup.
package stimuli

import "fmt"

// Stimulus describes one presentation. Duration is in simulated ms.
// Internal stimuli carry no sensory input; the input layer provides a null
// (zero) drive for their duration instead.
type Stimulus interface {
	ID() string
	Duration() float64
	Internal() bool
}

// InternalStimulus is a stimulus with no sensory component, used for
// spontaneous-activity and direct-stimulation-only trials.
type InternalStimulus struct {
	FrameDuration  float64
	TrialDuration  float64
	Trial          int
	DirectStimName string
}

func NewInternalStimulus(duration float64, trial int, directStimName string) *InternalStimulus {
	return &InternalStimulus{
		FrameDuration:  duration,
		TrialDuration:  duration,
		Trial:          trial,
		DirectStimName: directStimName,
	}
}

func (s *InternalStimulus) ID() string {
	return fmt.Sprintf("InternalStimulus(duration=%g,trial=%d,direct_stimulation=%s)",
		s.TrialDuration, s.Trial, s.DirectStimName)
}

func (s *InternalStimulus) Duration() float64 { return s.TrialDuration }
func (s *InternalStimulus) Internal() bool    { return true }

// ConstantRate is a sensory stimulus driving the input layer at a constant
// rate (Hz) for its duration.
type ConstantRate struct {
	Rate          float64
	TrialDuration float64
	Trial         int
}

func NewConstantRate(rate, duration float64, trial int) *ConstantRate {
	return &ConstantRate{Rate: rate, TrialDuration: duration, Trial: trial}
}

func (s *ConstantRate) ID() string {
	return fmt.Sprintf("ConstantRate(rate=%g,duration=%g,trial=%d)", s.Rate, s.TrialDuration, s.Trial)
}

func (s *ConstantRate) Duration() float64 { return s.TrialDuration }
func (s *ConstantRate) Internal() bool    { return false }

// Pulse is a sensory stimulus: a rectangular pulse of the given amplitude
// between Onset and Offset (ms relative to presentation start), zero outside.
type Pulse struct {
	Amplitude     float64
	Onset         float64
	Offset        float64
	TrialDuration float64
	Trial         int
}

func NewPulse(amplitude, onset, offset, duration float64, trial int) *Pulse {
	return &Pulse{
		Amplitude:     amplitude,
		Onset:         onset,
		Offset:        offset,
		TrialDuration: duration,
		Trial:         trial,
	}
}

func (s *Pulse) ID() string {
	return fmt.Sprintf("Pulse(amplitude=%g,onset=%g,offset=%g,duration=%g,trial=%d)",
		s.Amplitude, s.Onset, s.Offset, s.TrialDuration, s.Trial)
}

func (s *Pulse) Duration() float64 { return s.TrialDuration }
func (s *Pulse) Internal() bool    { return false }
