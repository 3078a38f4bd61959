package field

import "fmt"

// Grid holds a 2-D fringe-field map sampled over (axial position, lateral
// offset). vals[i][j] is the flux density at (xs[i], ys[j]). Queries use
// bilinear interpolation; the hot integration loop should not query the
// grid directly but extract a 1-D Profile at the scenario's fixed offset.
type Grid struct {
	xs, ys []float64
	vals   [][]float64
	policy EdgePolicy
}

func NewGrid(xs, ys []float64, vals [][]float64, policy EdgePolicy) (*Grid, error) {
	if len(xs) < 2 || len(ys) < 2 {
		return nil, fmt.Errorf("%w: grid needs at least 2x2 samples, got %dx%d", ErrBadTable, len(xs), len(ys))
	}
	if len(vals) != len(xs) {
		return nil, fmt.Errorf("%w: %d rows vs %d axial samples", ErrBadTable, len(vals), len(xs))
	}
	for i, row := range vals {
		if len(row) != len(ys) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrBadTable, i, len(row), len(ys))
		}
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("%w: axial axis at index %d", ErrNonMonotonic, i)
		}
	}
	for j := 1; j < len(ys); j++ {
		if ys[j] <= ys[j-1] {
			return nil, fmt.Errorf("%w: lateral axis at index %d", ErrNonMonotonic, j)
		}
	}

	g := &Grid{policy: policy}
	g.xs = append(g.xs, xs...)
	g.ys = append(g.ys, ys...)
	g.vals = make([][]float64, len(vals))
	for i, row := range vals {
		g.vals[i] = append([]float64(nil), row...)
	}
	return g, nil
}

// locate finds the cell index for v on a strictly increasing axis and the
// fractional position inside the cell, applying the edge policy.
func (g *Grid) locate(axis []float64, v float64) (int, float64, error) {
	lo, hi := axis[0], axis[len(axis)-1]
	if v < lo || v > hi {
		if g.policy != Clamp {
			return 0, 0, &DomainError{Position: v, Min: lo, Max: hi}
		}
		if v < lo {
			return 0, 0, nil
		}
		return len(axis) - 2, 1, nil
	}

	i := 0
	j := len(axis) - 1
	for j-i > 1 {
		m := (i + j) / 2
		if axis[m] <= v {
			i = m
		} else {
			j = m
		}
	}
	return i, (v - axis[i]) / (axis[i+1] - axis[i]), nil
}

// At returns the bilinearly interpolated flux density at (x, y).
func (g *Grid) At(x, y float64) (float64, error) {
	i, fx, err := g.locate(g.xs, x)
	if err != nil {
		return 0, err
	}
	j, fy, err := g.locate(g.ys, y)
	if err != nil {
		return 0, err
	}

	v00 := g.vals[i][j]
	v10 := g.vals[i+1][j]
	v01 := g.vals[i][j+1]
	v11 := g.vals[i+1][j+1]
	return v00*(1-fx)*(1-fy) + v10*fx*(1-fy) + v01*(1-fx)*fy + v11*fx*fy, nil
}

// Profile extracts the 1-D field model at a fixed lateral offset. The
// two-branch selection happens once per scenario here, never inside the
// integration loop.
func (g *Grid) Profile(offset float64) (*Table, error) {
	bs := make([]float64, len(g.xs))
	for i, x := range g.xs {
		b, err := g.At(x, offset)
		if err != nil {
			return nil, err
		}
		bs[i] = b
	}
	return NewTable(g.xs, bs, g.policy)
}
