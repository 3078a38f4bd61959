package field

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Table is the tabulated branch: an Akima-spline fit over a 1-D field map
// sampled along the motion axis. The spline keeps the interpolated value
// and its derivative continuous across the grid, which the equation of
// motion relies on.
type Table struct {
	xs     []float64
	spline interp.AkimaSpline
	policy EdgePolicy
}

// NewTable fits a field table over strictly increasing positions xs.
func NewTable(xs, bs []float64, policy EdgePolicy) (*Table, error) {
	if len(xs) != len(bs) {
		return nil, fmt.Errorf("%w: %d positions vs %d samples", ErrBadTable, len(xs), len(bs))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrBadTable, len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("%w: xs[%d]=%g after xs[%d]=%g", ErrNonMonotonic, i, xs[i], i-1, xs[i-1])
		}
	}

	t := &Table{policy: policy}
	t.xs = append(t.xs, xs...)
	if err := t.spline.Fit(xs, bs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTable, err)
	}
	return t, nil
}

func (t *Table) Domain() (float64, float64) {
	return t.xs[0], t.xs[len(t.xs)-1]
}

// resolve applies the edge policy. It returns the position to evaluate at
// and whether the query was clamped to a boundary.
func (t *Table) resolve(q float64) (float64, bool, error) {
	min, max := t.Domain()
	if q >= min && q <= max {
		return q, false, nil
	}
	if t.policy == Clamp {
		if q < min {
			return min, true, nil
		}
		return max, true, nil
	}
	return 0, false, &DomainError{Position: q, Min: min, Max: max}
}

func (t *Table) B(q float64) (float64, error) {
	x, _, err := t.resolve(q)
	if err != nil {
		return 0, err
	}
	return t.spline.Predict(x), nil
}

// Gradient returns the spline derivative. A clamped query holds the
// boundary sample, so its gradient is zero.
func (t *Table) Gradient(q float64) (float64, error) {
	x, clamped, err := t.resolve(q)
	if err != nil {
		return 0, err
	}
	if clamped {
		return 0, nil
	}
	return t.spline.PredictDerivative(x), nil
}
