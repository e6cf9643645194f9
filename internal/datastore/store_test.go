package datastore

import (
	"path/filepath"
	"testing"

	"github.com/san-kum/spikelab/internal/neo"
	"github.com/san-kum/spikelab/internal/space"
	"github.com/san-kum/spikelab/internal/stimuli"
)

func testSegment(sheet string, start, end float64) *neo.Segment {
	return &neo.Segment{
		Sheet: sheet,
		Start: start,
		End:   end,
		SpikeTrains: []neo.SpikeTrain{
			{NeuronID: 0, Times: []float64{start + 1, start + 2}},
			{NeuronID: 1, Times: nil},
		},
		Annotations: map[string]string{"stimulus": "s"},
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	s1 := stimuli.NewInternalStimulus(100.0, 0, "None")
	s2 := stimuli.NewConstantRate(20.0, 100.0, 0)

	if err := m.AddRecording([]*neo.Segment{testSegment("exc", 0, 100)}, s1); err != nil {
		t.Fatalf("add recording: %v", err)
	}
	if err := m.AddRecording([]*neo.Segment{testSegment("inh", 0, 100)}, s1); err != nil {
		t.Fatalf("add recording: %v", err)
	}
	if err := m.AddNullRecording([]*neo.Segment{testSegment("exc", 0, 50)}, s1); err != nil {
		t.Fatalf("add null recording: %v", err)
	}
	if err := m.AddRecording([]*neo.Segment{testSegment("exc", 0, 100)}, s2); err != nil {
		t.Fatalf("add recording: %v", err)
	}
	input := &space.SensoryInput{StimulusID: s2.ID(), Duration: 100.0, Dt: 0.1}
	if err := m.AddStimulus(input, s2); err != nil {
		t.Fatalf("add stimulus: %v", err)
	}

	if got := len(m.Recordings(s1.ID())); got != 2 {
		t.Errorf("recordings for s1 = %d, want 2", got)
	}
	if got := len(m.NullRecordings(s1.ID())); got != 1 {
		t.Errorf("null recordings for s1 = %d, want 1", got)
	}
	if m.Input(s2.ID()) != input {
		t.Error("stored input not returned")
	}
	if m.Input(s1.ID()) != nil {
		t.Error("expected nil input for s1")
	}

	ids, err := m.StimulusIDs()
	if err != nil {
		t.Fatalf("stimulus ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 stimulus ids, got %v", ids)
	}
	// ids come back sorted
	if ids[0] > ids[1] {
		t.Errorf("ids not sorted: %v", ids)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "recordings.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	stim := stimuli.NewConstantRate(20.0, 100.0, 0)
	want := testSegment("exc", 0, 100)
	if err := store.AddRecording([]*neo.Segment{want}, stim); err != nil {
		t.Fatalf("add recording: %v", err)
	}
	if err := store.AddNullRecording([]*neo.Segment{testSegment("exc", 0, 50)}, stim); err != nil {
		t.Fatalf("add null recording: %v", err)
	}
	if err := store.AddStimulus(&space.SensoryInput{StimulusID: stim.ID()}, stim); err != nil {
		t.Fatalf("add stimulus: %v", err)
	}

	ids, err := store.StimulusIDs()
	if err != nil {
		t.Fatalf("stimulus ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != stim.ID() {
		t.Fatalf("stimulus ids = %v, want [%s]", ids, stim.ID())
	}

	segments, err := store.Recordings(stim.ID())
	if err != nil {
		t.Fatalf("recordings: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	got := segments[0]
	if got.Sheet != want.Sheet || got.Start != want.Start || got.End != want.End {
		t.Errorf("segment window %s [%g, %g], want %s [%g, %g]",
			got.Sheet, got.Start, got.End, want.Sheet, want.Start, want.End)
	}
	if got.SpikeCount() != want.SpikeCount() {
		t.Errorf("spike count = %d, want %d", got.SpikeCount(), want.SpikeCount())
	}
	if got.Annotations["stimulus"] != "s" {
		t.Error("annotations lost in round trip")
	}
}

func TestSQLiteNilSensoryInput(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "recordings.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	stim := stimuli.NewInternalStimulus(100.0, 0, "None")
	if err := store.AddStimulus(nil, stim); err != nil {
		t.Fatalf("add stimulus with nil input: %v", err)
	}
	// upsert with the same id must not fail
	if err := store.AddStimulus(nil, stim); err != nil {
		t.Fatalf("upsert stimulus: %v", err)
	}
}

func TestSQLiteStimulusIDsOnlyCoverRecordings(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "recordings.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	stim := stimuli.NewInternalStimulus(100.0, 0, "None")
	if err := store.AddStimulus(nil, stim); err != nil {
		t.Fatalf("add stimulus: %v", err)
	}

	ids, err := store.StimulusIDs()
	if err != nil {
		t.Fatalf("stimulus ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("a stimulus without recordings must not count as presented, got %v", ids)
	}
}
