// Package sheet provides named neural populations with recording and
// direct-stimulation capability.
package sheet

import (
	"github.com/san-kum/spikelab/internal/neo"
	"github.com/san-kum/spikelab/internal/stimulator"
)

// Sheet is a named population. Recording is off until Record is called; once
// enabled it stays enabled for the life of the sheet.
type Sheet interface {
	Name() string

	// Record enables recording. Idempotent.
	Record()
	Recording() bool

	// PrepareInput readies the sheet's input buffers for a presentation of
	// the given duration starting at the given simulated time, with the
	// assigned direct stimulators (either list may be nil).
	PrepareInput(duration, start float64, exc, inh []stimulator.DirectStimulator) error

	// WriteNeoObject extracts everything recorded since the last write (or
	// the last reset) and drops it from the sheet's buffers.
	WriteNeoObject() (*neo.Segment, error)

	// WriteNeoObjectForDuration extracts only the trailing duration ms of
	// recorded activity and drops everything recorded so far.
	WriteNeoObjectForDuration(duration float64) (*neo.Segment, error)

	NeuronIDs() []int
	Positions() [][3]float64
	Annotations() []map[string]string
}
