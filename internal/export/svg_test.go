package export

import (
	"strings"
	"testing"

	"github.com/san-kum/spikelab/internal/neo"
)

func TestRasterSVG(t *testing.T) {
	seg := &neo.Segment{
		Sheet: "exc",
		Start: 0,
		End:   100,
		SpikeTrains: []neo.SpikeTrain{
			{NeuronID: 0, Times: []float64{10, 50, 90}},
			{NeuronID: 1, Times: []float64{25}},
		},
	}

	svg := RasterSVG(seg, 800, 400)
	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Fatal("missing xml header")
	}
	if got := strings.Count(svg, "<circle"); got != 4 {
		t.Errorf("expected 4 spike dots, got %d", got)
	}
	if !strings.Contains(svg, "exc [0-100 ms]") {
		t.Error("missing sheet label")
	}
}

func TestRasterSVGEmpty(t *testing.T) {
	if RasterSVG(nil, 800, 400) != "" {
		t.Error("nil segment must render nothing")
	}
	empty := &neo.Segment{Sheet: "exc", Start: 0, End: 0}
	if RasterSVG(empty, 800, 400) != "" {
		t.Error("empty window must render nothing")
	}
}

func TestRateSVG(t *testing.T) {
	svg := RateSVG([]float64{0, 5, 10, 5, 0}, 400, 200, "#00ff00")
	if !strings.Contains(svg, "<path") {
		t.Fatal("missing rate path")
	}
	if RateSVG([]float64{1}, 400, 200, "#00ff00") != "" {
		t.Error("a single point must render nothing")
	}
}
