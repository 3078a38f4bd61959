package viz

import (
	"strings"
	"testing"
)

func TestDownsample(t *testing.T) {
	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64(i)
	}

	out := downsample(data, 160)
	if len(out) != 160 {
		t.Fatalf("expected 160 points, got %d", len(out))
	}
	if out[0] != 0 || out[159] != 999 {
		t.Errorf("endpoints = %g, %g", out[0], out[159])
	}

	short := []float64{1, 2, 3}
	if got := downsample(short, 160); len(got) != 3 {
		t.Errorf("short series should pass through, got %d points", len(got))
	}
}

func TestSeries_Empty(t *testing.T) {
	if Series(nil, "x") != "" {
		t.Error("expected empty plot for empty series")
	}
}

func TestPhasePortrait(t *testing.T) {
	poses := []float64{1.0, 0.5, 0.0, -0.3, -0.1, 0.0}
	vels := []float64{0.0, -1.2, -1.5, 0.0, 0.4, 0.0}

	out := PhasePortrait(poses, vels, 40, 12)
	if !strings.Contains(out, "•") {
		t.Error("expected plotted points")
	}
	if !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Error("expected axes through the origin")
	}
	if len(strings.Split(strings.TrimSuffix(out, "\n"), "\n")) != 12 {
		t.Error("expected 12 rows")
	}
}

func TestPhasePortrait_MismatchedInput(t *testing.T) {
	if PhasePortrait([]float64{1}, []float64{1, 2}, 10, 5) != "" {
		t.Error("expected empty output for mismatched slices")
	}
}
