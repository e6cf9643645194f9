// Package export renders recorded segments to standalone files.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/spikelab/internal/neo"
)

// RasterSVG renders a spike raster of the segment: one row per neuron, one
// dot per spike, time on the x axis over the segment's window.
func RasterSVG(seg *neo.Segment, width, height int) string {
	if seg == nil || seg.Duration() <= 0 || len(seg.SpikeTrains) == 0 {
		return ""
	}

	rowHeight := float64(height) / float64(len(seg.SpikeTrains))
	dotRadius := rowHeight * 0.3
	if dotRadius > 2.0 {
		dotRadius = 2.0
	}
	if dotRadius < 0.5 {
		dotRadius = 0.5
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	for row, train := range seg.SpikeTrains {
		cy := (float64(row) + 0.5) * rowHeight
		for _, at := range train.Times {
			cx := (at - seg.Start) / seg.Duration() * float64(width)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
		}
	}

	sb.WriteString(fmt.Sprintf(`</g>
<text x="4" y="%d" fill="#888888" font-family="monospace" font-size="10">%s [%.0f-%.0f ms]</text>
</svg>`, height-4, seg.Sheet, seg.Start, seg.End))
	return sb.String()
}

// RateSVG renders a binned population rate as a polyline.
func RateSVG(rate []float64, width, height int, strokeColor string) string {
	if len(rate) < 2 {
		return ""
	}

	maxRate := rate[0]
	for _, v := range rate {
		if v > maxRate {
			maxRate = v
		}
	}
	if maxRate == 0 {
		maxRate = 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range rate {
		x := float64(i) / float64(len(rate)-1) * float64(width)
		y := float64(height) - v/maxRate*float64(height)*0.9

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
