package field

import (
	"errors"
	"math"
	"testing"
)

func TestSolenoid_CenterField(t *testing.T) {
	s, err := NewSolenoid(3.0, 0.3, 0.8, 2.0)
	if err != nil {
		t.Fatalf("NewSolenoid: %v", err)
	}

	b, err := s.B(0)
	if err != nil {
		t.Fatalf("B(0): %v", err)
	}
	if math.Abs(b-3.0) > 1e-12 {
		t.Errorf("center field = %g, want 3.0", b)
	}
}

func TestSolenoid_GradientMatchesFiniteDifference(t *testing.T) {
	s, _ := NewSolenoid(3.0, 0.3, 0.8, 2.0)

	for _, z := range []float64{-1.5, -0.5, 0, 0.7, 1.2} {
		g, err := s.Gradient(z)
		if err != nil {
			t.Fatalf("Gradient(%g): %v", z, err)
		}

		h := 1e-6
		bp, _ := s.B(z + h)
		bm, _ := s.B(z - h)
		fd := (bp - bm) / (2 * h)

		if math.Abs(g-fd) > 1e-5 {
			t.Errorf("z=%g: gradient %g vs finite difference %g", z, g, fd)
		}
	}
}

func TestSolenoid_OutsideExtent(t *testing.T) {
	s, _ := NewSolenoid(3.0, 0.3, 0.8, 2.0)

	_, err := s.B(20.0) // 10x beyond the valid extent
	if err == nil {
		t.Fatal("expected error for position far outside extent")
	}
	if !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain, got %v", err)
	}

	var derr *DomainError
	if !errors.As(err, &derr) {
		t.Fatal("expected *DomainError")
	}
	if derr.Position != 20.0 {
		t.Errorf("DomainError.Position = %g, want 20", derr.Position)
	}
}

func TestSolenoid_InvalidParams(t *testing.T) {
	if _, err := NewSolenoid(-1, 0.3, 0.8, 2.0); err == nil {
		t.Error("expected error for negative B0")
	}
	if _, err := NewSolenoid(3, 0, 0.8, 2.0); err == nil {
		t.Error("expected error for zero radius")
	}
}

func TestTable_InterpolatesSamples(t *testing.T) {
	xs := []float64{0, 0.1, 0.2, 0.3, 0.4}
	bs := []float64{3.0, 2.5, 1.6, 0.8, 0.3}

	tab, err := NewTable(xs, bs, Reject)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	// Spline reproduces the samples exactly.
	for i, x := range xs {
		b, err := tab.B(x)
		if err != nil {
			t.Fatalf("B(%g): %v", x, err)
		}
		if math.Abs(b-bs[i]) > 1e-12 {
			t.Errorf("B(%g) = %g, want %g", x, b, bs[i])
		}
	}
}

func TestTable_GradientMatchesFiniteDifference(t *testing.T) {
	// Dense samples of a smooth profile; the spline derivative must agree
	// with a finite difference of the interpolant in the interior.
	var xs, bs []float64
	for x := 0.0; x <= 1.0+1e-9; x += 0.05 {
		xs = append(xs, x)
		bs = append(bs, 3.0*math.Exp(-2*x*x))
	}
	tab, err := NewTable(xs, bs, Reject)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	for _, x := range []float64{0.12, 0.33, 0.5, 0.77, 0.9} {
		g, err := tab.Gradient(x)
		if err != nil {
			t.Fatalf("Gradient(%g): %v", x, err)
		}

		h := 1e-6
		bp, _ := tab.B(x + h)
		bm, _ := tab.B(x - h)
		fd := (bp - bm) / (2 * h)

		if math.Abs(g-fd) > 1e-5 {
			t.Errorf("x=%g: gradient %g vs finite difference %g", x, g, fd)
		}
	}
}

func TestTable_ContinuousAtBoundary(t *testing.T) {
	xs := []float64{0, 0.1, 0.2, 0.3, 0.4}
	bs := []float64{3.0, 2.5, 1.6, 0.8, 0.3}
	tab, _ := NewTable(xs, bs, Reject)

	// Approaching the boundary from inside converges to the boundary sample.
	for _, eps := range []float64{1e-3, 1e-6, 1e-9} {
		b, err := tab.B(0.4 - eps)
		if err != nil {
			t.Fatalf("B near boundary: %v", err)
		}
		if math.Abs(b-0.3) > 10*eps+1e-9 {
			t.Errorf("eps=%g: B = %g, does not converge to boundary sample 0.3", eps, b)
		}
	}
}

func TestTable_EdgePolicies(t *testing.T) {
	xs := []float64{0, 1, 2}
	bs := []float64{1.0, 2.0, 3.0}

	reject, _ := NewTable(xs, bs, Reject)
	if _, err := reject.B(2.5); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("Reject policy: expected ErrOutOfDomain, got %v", err)
	}

	clamp, _ := NewTable(xs, bs, Clamp)
	b, err := clamp.B(2.5)
	if err != nil {
		t.Fatalf("Clamp policy: %v", err)
	}
	if b != 3.0 {
		t.Errorf("clamped B = %g, want boundary sample 3.0", b)
	}
	g, err := clamp.Gradient(2.5)
	if err != nil {
		t.Fatalf("Clamp gradient: %v", err)
	}
	if g != 0 {
		t.Errorf("clamped gradient = %g, want 0", g)
	}
}

func TestTable_RejectsBadAxes(t *testing.T) {
	if _, err := NewTable([]float64{0, 1, 1}, []float64{1, 2, 3}, Reject); !errors.Is(err, ErrNonMonotonic) {
		t.Errorf("expected ErrNonMonotonic, got %v", err)
	}
	if _, err := NewTable([]float64{0, 1}, []float64{1, 2, 3}, Reject); !errors.Is(err, ErrBadTable) {
		t.Errorf("expected ErrBadTable for mismatched lengths, got %v", err)
	}
	if _, err := NewTable([]float64{0}, []float64{1}, Reject); !errors.Is(err, ErrBadTable) {
		t.Errorf("expected ErrBadTable for single sample, got %v", err)
	}
}

func TestGrid_BilinearInterpolation(t *testing.T) {
	xs := []float64{0, 1}
	ys := []float64{0, 1}
	vals := [][]float64{{0, 1}, {2, 3}}

	g, err := NewGrid(xs, ys, vals, Reject)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	tests := []struct {
		x, y, want float64
	}{
		{0, 0, 0},
		{1, 1, 3},
		{0.5, 0.5, 1.5},
		{0.5, 0, 1},
		{0, 0.5, 0.5},
	}
	for _, tt := range tests {
		got, err := g.At(tt.x, tt.y)
		if err != nil {
			t.Fatalf("At(%g,%g): %v", tt.x, tt.y, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("At(%g,%g) = %g, want %g", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestGrid_RejectOutside(t *testing.T) {
	g, _ := NewGrid([]float64{0, 1}, []float64{0, 1}, [][]float64{{0, 1}, {2, 3}}, Reject)
	if _, err := g.At(10, 0.5); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain, got %v", err)
	}
	if _, err := g.At(0.5, -1); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain, got %v", err)
	}
}

func TestGrid_Profile(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 0.3}
	vals := [][]float64{{3.0, 2.8}, {2.0, 1.9}, {1.0, 0.9}}

	g, err := NewGrid(xs, ys, vals, Reject)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	p, err := g.Profile(0.3)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	b, err := p.B(1)
	if err != nil {
		t.Fatalf("profile B: %v", err)
	}
	if math.Abs(b-1.9) > 1e-12 {
		t.Errorf("profile B(1) = %g, want 1.9", b)
	}
}
