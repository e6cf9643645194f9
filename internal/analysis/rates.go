// Package analysis provides firing-rate analysis of recorded segments.
package analysis

import (
	"fmt"

	"github.com/san-kum/spikelab/internal/neo"
)

// PopulationRate bins all spikes in the segment and returns the population
// firing rate (Hz per neuron) per bin. binWidth is in ms.
func PopulationRate(seg *neo.Segment, binWidth float64) ([]float64, error) {
	if binWidth <= 0 {
		return nil, fmt.Errorf("analysis: bin width must be positive, got %g", binWidth)
	}
	dur := seg.Duration()
	if dur <= 0 {
		return nil, fmt.Errorf("analysis: segment %s has empty window", seg.Sheet)
	}

	bins := int(dur/binWidth + 0.5)
	if bins == 0 {
		bins = 1
	}
	counts := make([]float64, bins)
	for _, train := range seg.SpikeTrains {
		for _, t := range train.Times {
			idx := int((t - seg.Start) / binWidth)
			if idx >= 0 && idx < bins {
				counts[idx]++
			}
		}
	}

	n := float64(len(seg.SpikeTrains))
	if n == 0 {
		n = 1
	}
	// counts per bin -> Hz per neuron
	scale := 1000.0 / (binWidth * n)
	for i := range counts {
		counts[i] *= scale
	}
	return counts, nil
}

// MeanRate returns the mean firing rate (Hz per neuron) over the whole
// segment window.
func MeanRate(seg *neo.Segment) float64 {
	dur := seg.Duration()
	if dur <= 0 || len(seg.SpikeTrains) == 0 {
		return 0
	}
	return float64(seg.SpikeCount()) / float64(len(seg.SpikeTrains)) * 1000.0 / dur
}

// PSTH builds a peri-stimulus time histogram across several segments of the
// same sheet, aligned to each segment's start. All segments should span the
// same duration; shorter ones simply contribute fewer bins.
func PSTH(segments []*neo.Segment, binWidth float64) ([]float64, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("analysis: psth needs at least one segment")
	}
	maxDur := 0.0
	for _, seg := range segments {
		if d := seg.Duration(); d > maxDur {
			maxDur = d
		}
	}
	bins := int(maxDur/binWidth + 0.5)
	if bins == 0 {
		bins = 1
	}

	acc := make([]float64, bins)
	for _, seg := range segments {
		rate, err := PopulationRate(seg, binWidth)
		if err != nil {
			return nil, err
		}
		for i := range rate {
			if i < bins {
				acc[i] += rate[i]
			}
		}
	}
	for i := range acc {
		acc[i] /= float64(len(segments))
	}
	return acc, nil
}
