// Package neo provides recorded-activity containers. A Segment holds the
// activity of one sheet over one time window; ownership transfers to the
// caller when a sheet writes it out.
package neo

// SpikeTrain holds the spike times (ms) of a single neuron within a segment's
// window. Times are absolute simulated times, sorted ascending.
type SpikeTrain struct {
	NeuronID int       `json:"neuron_id"`
	Times    []float64 `json:"times"`
}

// Segment is the recorded activity of one sheet over [Start, End) ms of
// simulated time.
type Segment struct {
	Sheet       string            `json:"sheet"`
	Start       float64           `json:"start"`
	End         float64           `json:"end"`
	SpikeTrains []SpikeTrain      `json:"spike_trains"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Duration returns the length of the segment's window in ms.
func (s *Segment) Duration() float64 {
	return s.End - s.Start
}

// SpikeCount returns the total number of spikes across all trains.
func (s *Segment) SpikeCount() int {
	n := 0
	for _, st := range s.SpikeTrains {
		n += len(st.Times)
	}
	return n
}

// Annotate sets an annotation on the segment, allocating the map if needed.
func (s *Segment) Annotate(key, value string) {
	if s.Annotations == nil {
		s.Annotations = make(map[string]string)
	}
	s.Annotations[key] = value
}
