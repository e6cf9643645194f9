// Package datastore accumulates recordings, stimuli, and null-trial
// recordings keyed by stimulus identity. The orchestrator and driver only
// ever push data in; nothing in the presentation path reads it back.
package datastore

import (
	"sort"
	"sync"

	"github.com/san-kum/spikelab/internal/neo"
	"github.com/san-kum/spikelab/internal/space"
	"github.com/san-kum/spikelab/internal/stimuli"
)

// DataStore is the sole owner of persisted recordings.
type DataStore interface {
	AddRecording(segments []*neo.Segment, stim stimuli.Stimulus) error
	AddStimulus(input *space.SensoryInput, stim stimuli.Stimulus) error
	AddNullRecording(segments []*neo.Segment, stim stimuli.Stimulus) error

	// StimulusIDs lists the ids of stimuli with stored recordings, so a
	// caller can skip re-presenting them.
	StimulusIDs() ([]string, error)
}

// Memory is an in-memory DataStore, used in tests and for runs that do not
// need persistence. Safe for concurrent use.
type Memory struct {
	mu             sync.RWMutex
	recordings     map[string][]*neo.Segment
	nullRecordings map[string][]*neo.Segment
	inputs         map[string]*space.SensoryInput
}

func NewMemory() *Memory {
	return &Memory{
		recordings:     make(map[string][]*neo.Segment),
		nullRecordings: make(map[string][]*neo.Segment),
		inputs:         make(map[string]*space.SensoryInput),
	}
}

func (m *Memory) AddRecording(segments []*neo.Segment, stim stimuli.Stimulus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordings[stim.ID()] = append(m.recordings[stim.ID()], segments...)
	return nil
}

func (m *Memory) AddStimulus(input *space.SensoryInput, stim stimuli.Stimulus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs[stim.ID()] = input
	return nil
}

func (m *Memory) AddNullRecording(segments []*neo.Segment, stim stimuli.Stimulus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nullRecordings[stim.ID()] = append(m.nullRecordings[stim.ID()], segments...)
	return nil
}

func (m *Memory) StimulusIDs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.recordings))
	for id := range m.recordings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Recordings returns the stored segments for a stimulus id.
func (m *Memory) Recordings(stimulusID string) []*neo.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recordings[stimulusID]
}

// NullRecordings returns the stored null-trial segments for a stimulus id.
func (m *Memory) NullRecordings(stimulusID string) []*neo.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nullRecordings[stimulusID]
}

// Input returns the stored sensory input for a stimulus id, or nil.
func (m *Memory) Input(stimulusID string) *space.SensoryInput {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputs[stimulusID]
}
