package experiment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/spikelab/internal/datastore"
	"github.com/san-kum/spikelab/internal/engine"
	"github.com/san-kum/spikelab/internal/model"
	"github.com/san-kum/spikelab/internal/sheet"
	"github.com/san-kum/spikelab/internal/stimulator"
	"github.com/san-kum/spikelab/internal/stimuli"
)

const timestep = 0.1

func newTestModel(t *testing.T, cfg model.Config, sheetNames ...string) *model.Model {
	t.Helper()
	eng := &engine.Network{}
	if err := eng.Setup(timestep, timestep, 100.0, 1); err != nil {
		t.Fatalf("setup: %v", err)
	}
	m, err := model.New(eng, cfg)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	for _, name := range sheetNames {
		s := sheet.NewLIFSheet(name, 10, timestep, sheet.DefaultLIFParams())
		eng.Register(s)
		if err := m.RegisterSheet(s); err != nil {
			t.Fatalf("register sheet %s: %v", name, err)
		}
	}
	return m
}

func TestConstantRateSeriesPresentsInOrder(t *testing.T) {
	m := newTestModel(t, model.Config{Mode: model.ResetEachTrial}, "exc")
	exp := NewConstantRateSeries(m, nil, 50.0, []float64{10, 20, 40})

	store := datastore.NewMemory()
	elapsed, err := exp.Run(store, exp.Stimuli())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if elapsed <= 0 {
		t.Error("total simulation time must be positive")
	}

	ids, err := store.StimulusIDs()
	if err != nil {
		t.Fatalf("stimulus ids: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 stored stimuli, got %d", len(ids))
	}
	for _, id := range ids {
		if !strings.HasPrefix(id, "ConstantRate(") {
			t.Errorf("unexpected stimulus id %s", id)
		}
		if len(store.Recordings(id)) != 1 {
			t.Errorf("expected one segment for %s, got %d", id, len(store.Recordings(id)))
		}
	}
}

func TestRunPresentsSubsetOnly(t *testing.T) {
	m := newTestModel(t, model.Config{Mode: model.ResetEachTrial}, "exc")
	exp := NewConstantRateSeries(m, nil, 50.0, []float64{10, 20, 40})

	full := exp.Stimuli()
	store := datastore.NewMemory()
	if _, err := exp.Run(store, full[1:2]); err != nil {
		t.Fatalf("run: %v", err)
	}

	ids, _ := store.StimulusIDs()
	if len(ids) != 1 || ids[0] != full[1].ID() {
		t.Fatalf("expected only %s stored, got %v", full[1].ID(), ids)
	}
}

func TestDirectStimulationResolvedByIdentity(t *testing.T) {
	m := newTestModel(t, model.Config{Mode: model.ResetEachTrial}, "exc")

	kick := stimulator.NewKick(100.0, 30.0, 40.0, stimulator.All{}, stimulator.Excitatory, 7)
	b := NewBase(m, nil)
	b.Append(stimuli.NewInternalStimulus(50.0, 0, "None"), nil)
	b.Append(stimuli.NewInternalStimulus(50.0, 1, "Kick"), map[string][]stimulator.DirectStimulator{
		"exc": {kick},
	})

	full := b.Stimuli()

	ds := b.directStimulationFor(full[1])
	if len(ds["exc"]) != 1 {
		t.Fatalf("expected the kick for trial 1, got %v", ds)
	}
	ds = b.directStimulationFor(full[0])
	if len(ds) != 0 {
		t.Errorf("trial 0 has no direct stimulation, got %v", ds)
	}
	// stimuli outside the configured list get an empty map, never nil
	ds = b.directStimulationFor(stimuli.NewInternalStimulus(50.0, 9, "None"))
	if ds == nil || len(ds) != 0 {
		t.Errorf("unknown stimulus must get an empty map, got %v", ds)
	}

	// presenting the subset with the kick still resolves it
	store := datastore.NewMemory()
	if _, err := b.Run(store, full[1:]); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(store.Recordings(full[1].ID())) != 1 {
		t.Fatal("kick trial not recorded")
	}
}

func TestFilterPresented(t *testing.T) {
	m := newTestModel(t, model.Config{Mode: model.ResetEachTrial}, "exc")
	exp := NewConstantRateSeries(m, nil, 50.0, []float64{10, 20, 40})
	full := exp.Stimuli()

	store := datastore.NewMemory()
	if _, err := exp.Run(store, full[:1]); err != nil {
		t.Fatalf("run: %v", err)
	}

	remaining, err := FilterPresented(full, store)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 remaining stimuli, got %d", len(remaining))
	}
	if remaining[0].ID() != full[1].ID() || remaining[1].ID() != full[2].ID() {
		t.Error("remaining stimuli must preserve the original order")
	}
}

func TestDoAnalysisDefault(t *testing.T) {
	m := newTestModel(t, model.Config{}, "exc")
	exp := NewNoStimulation(m, nil, 50.0)
	if err := exp.DoAnalysis(); !errors.Is(err, ErrAnalysisNotImplemented) {
		t.Fatalf("expected ErrAnalysisNotImplemented, got %v", err)
	}
}

func TestNewPoissonNetworkKickValidation(t *testing.T) {
	m := newTestModel(t, model.Config{}, "exc")

	tests := []struct {
		name    string
		sheets  []string
		rates   []float64
		weights []float64
	}{
		{"missing rate", []string{"exc"}, nil, []float64{10}},
		{"missing weight", []string{"exc"}, []float64{50}, nil},
		{"unknown sheet", []string{"nope"}, []float64{50}, []float64{10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPoissonNetworkKick(m, nil, 100.0, tt.sheets, 50.0, stimulator.All{}, tt.rates, tt.weights, 1)
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	if _, err := NewPoissonNetworkKick(m, nil, 100.0, []string{"exc"}, 50.0, stimulator.All{}, []float64{50}, []float64{10}, 1); err != nil {
		t.Fatalf("valid kick rejected: %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if len(r.List()) != 3 {
		t.Fatalf("expected 3 registered experiments, got %v", r.List())
	}

	m := newTestModel(t, model.Config{}, "exc")
	if _, err := r.Get("no_stimulation", m, nil, Params{Duration: 100.0}); err != nil {
		t.Fatalf("get no_stimulation: %v", err)
	}
	if _, err := r.Get("unknown", m, nil, Params{}); err == nil {
		t.Fatal("expected an error for an unknown experiment")
	}
}

func TestRunBatch(t *testing.T) {
	items := make([]BatchItem, 2)
	stores := make([]*datastore.Memory, 2)
	for i := range items {
		m := newTestModel(t, model.Config{Mode: model.ResetEachTrial}, "exc")
		stores[i] = datastore.NewMemory()
		items[i] = BatchItem{
			Experiment: NewNoStimulation(m, nil, 50.0),
			Store:      stores[i],
		}
	}

	times, err := RunBatch(context.Background(), items, 2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("expected 2 times, got %d", len(times))
	}
	for i, st := range stores {
		ids, _ := st.StimulusIDs()
		if len(ids) != 1 {
			t.Errorf("store %d: expected 1 stimulus, got %d", i, len(ids))
		}
	}
}
