package space

import (
	"testing"

	"github.com/san-kum/spikelab/internal/sheet"
	"github.com/san-kum/spikelab/internal/stimuli"
)

func newLayer() (*RateInputLayer, *sheet.LIFSheet) {
	target := sheet.NewLIFSheet("exc", 4, 0.1, sheet.DefaultLIFParams())
	return NewRateInputLayer(target, 0.5, 0.1), target
}

func TestSpaceHoldsOneStimulusPerTrial(t *testing.T) {
	sp := New()
	a := stimuli.NewConstantRate(10.0, 100.0, 0)
	sp.Add(a.ID(), a)
	if sp.Len() != 1 {
		t.Fatalf("len = %d, want 1", sp.Len())
	}
	if got, ok := sp.Get(a.ID()); !ok || got != stimuli.Stimulus(a) {
		t.Fatal("stored stimulus not returned")
	}

	sp.Clear()
	if sp.Len() != 0 {
		t.Fatal("clear must empty the space")
	}
	if _, ok := sp.Get(a.ID()); ok {
		t.Fatal("cleared stimulus still present")
	}
}

func TestProcessInputConstantRate(t *testing.T) {
	layer, _ := newLayer()
	sp := New()
	stim := stimuli.NewConstantRate(20.0, 100.0, 0)
	sp.Add(stim.ID(), stim)

	input, err := layer.ProcessInput(sp, stim, 100.0, 50.0)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if input.StimulusID != stim.ID() || input.Start != 50.0 || input.Duration != 100.0 {
		t.Errorf("input metadata = %+v", input)
	}
	if len(input.Drive) != 1000 {
		t.Fatalf("expected 1000 drive samples, got %d", len(input.Drive))
	}
	for _, v := range input.Drive {
		if v != 10.0 { // gain 0.5 * rate 20
			t.Fatalf("drive sample = %g, want 10", v)
		}
	}
}

func TestProcessInputPulse(t *testing.T) {
	layer, _ := newLayer()
	sp := New()
	stim := stimuli.NewPulse(4.0, 20.0, 60.0, 100.0, 0)
	sp.Add(stim.ID(), stim)

	input, err := layer.ProcessInput(sp, stim, 100.0, 0)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	// gain 0.5 * amplitude 4 inside [20, 60), zero outside
	if input.Drive[100] != 0 {
		t.Errorf("drive before onset = %g, want 0", input.Drive[100])
	}
	if input.Drive[400] != 2.0 {
		t.Errorf("drive inside pulse = %g, want 2", input.Drive[400])
	}
	if input.Drive[700] != 0 {
		t.Errorf("drive after offset = %g, want 0", input.Drive[700])
	}
}

func TestProcessInputRequiresRegisteredStimulus(t *testing.T) {
	layer, _ := newLayer()
	stim := stimuli.NewConstantRate(20.0, 100.0, 0)
	if _, err := layer.ProcessInput(New(), stim, 100.0, 0); err == nil {
		t.Fatal("expected an error for an unregistered stimulus")
	}
}

func TestProcessInputRejectsUnsupportedStimulus(t *testing.T) {
	layer, _ := newLayer()
	sp := New()
	stim := stimuli.NewInternalStimulus(100.0, 0, "None")
	sp.Add(stim.ID(), stim)
	if _, err := layer.ProcessInput(sp, stim, 100.0, 0); err == nil {
		t.Fatal("expected an error for an unsupported stimulus type")
	}
}

func TestProvideNullInput(t *testing.T) {
	layer, target := newLayer()
	target.Record()

	if err := layer.ProvideNullInput(New(), 50.0, 0); err != nil {
		t.Fatalf("provide null: %v", err)
	}

	// the null drive keeps the target silent
	for i := 0; i < 500; i++ {
		if err := target.Step(float64(i)*0.1, 0.1); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	seg, err := target.WriteNeoObject()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if seg.SpikeCount() != 0 {
		t.Fatalf("null input must not cause spikes, got %d", seg.SpikeCount())
	}
}
