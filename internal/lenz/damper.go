package lenz

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/alessandroarduino/lenz-effect/internal/field"
)

// Damper returns the instantaneous Lenz force (translation) or torque
// (rotation) at pose q and velocity v. The result always opposes v: the
// eddy-current term is strictly dissipative, and at v = 0 it is exactly
// zero.
type Damper interface {
	Drag(q, v float64) (float64, error)
	// Coefficient is the per-unit-velocity drag magnitude at pose q,
	// i.e. Drag(q, v) = -Coefficient(q) * v.
	Coefficient(q float64) (float64, error)
}

var ErrNotDissipative = errors.New("lenz: drag does not oppose velocity")

// checkDissipative guards the sign invariant on every evaluation.
func checkDissipative(drag, v float64) error {
	if drag*v > 0 {
		return fmt.Errorf("%w: drag=%g at v=%g", ErrNotDissipative, drag, v)
	}
	return nil
}

// DiskDamper is the analytic coefficient for a circular plate rotating
// about a diameter in the axial field: the classic eddy-brake result for a
// thin disk of radius a, thickness h and conductivity sigma,
//
//	tau = -(pi sigma h a^4 / 16) B(q)^2 cos^2(q) omega
//
// where q is the tilt angle between the plate and the field-normal plane.
type DiskDamper struct {
	plate PlateSpec
	fm    field.Model
	scale float64 // pi sigma h a^4 / 16
}

func NewDiskDamper(plate PlateSpec, fm field.Model) (*DiskDamper, error) {
	if err := plate.Validate(); err != nil {
		return nil, err
	}
	if plate.Shape != Circle {
		return nil, fmt.Errorf("%w: disk damper needs a circular plate, got %q", ErrInvalidSpec, plate.Shape)
	}
	a := plate.Size
	return &DiskDamper{
		plate: plate,
		fm:    fm,
		scale: math.Pi * plate.Conductivity * plate.Thickness * a * a * a * a / 16,
	}, nil
}

func (d *DiskDamper) Coefficient(q float64) (float64, error) {
	b, err := d.fm.B(q)
	if err != nil {
		return 0, err
	}
	c := math.Cos(q)
	return d.scale * b * b * c * c, nil
}

func (d *DiskDamper) Drag(q, v float64) (float64, error) {
	if v == 0 {
		return 0, nil
	}
	c, err := d.Coefficient(q)
	if err != nil {
		return 0, err
	}
	drag := -c * v
	if err := checkDissipative(drag, v); err != nil {
		return 0, err
	}
	return drag, nil
}

// EddyCoefficient is a precomputed pose-to-coefficient map for shapes with
// no tractable closed form. Read-only after construction; piecewise-linear
// interpolation keeps the drag continuous across the grid.
type EddyCoefficient struct {
	qs     []float64
	pl     interp.PiecewiseLinear
	policy field.EdgePolicy
}

// NewEddyCoefficient builds the map from pose samples qs and per-unit-
// velocity coefficient magnitudes cs. Simulation exports follow the
// convention force = coefficient * velocity with a negative coefficient;
// callers pass magnitudes, and negative entries are rejected here so the
// dissipative sign is fixed in exactly one place (Drag).
func NewEddyCoefficient(qs, cs []float64, policy field.EdgePolicy) (*EddyCoefficient, error) {
	if len(qs) != len(cs) {
		return nil, fmt.Errorf("%w: %d poses vs %d coefficients", field.ErrBadTable, len(qs), len(cs))
	}
	if len(qs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", field.ErrBadTable, len(qs))
	}
	for i := 1; i < len(qs); i++ {
		if qs[i] <= qs[i-1] {
			return nil, fmt.Errorf("%w: pose axis at index %d", field.ErrNonMonotonic, i)
		}
	}
	for i, c := range cs {
		if c < 0 {
			return nil, fmt.Errorf("%w: coefficient %g at index %d is negative", field.ErrBadTable, c, i)
		}
	}

	e := &EddyCoefficient{policy: policy}
	e.qs = append(e.qs, qs...)
	if err := e.pl.Fit(qs, cs); err != nil {
		return nil, fmt.Errorf("%w: %v", field.ErrBadTable, err)
	}
	return e, nil
}

func (e *EddyCoefficient) Domain() (float64, float64) {
	return e.qs[0], e.qs[len(e.qs)-1]
}

// At interpolates the coefficient magnitude at pose q.
func (e *EddyCoefficient) At(q float64) (float64, error) {
	min, max := e.Domain()
	if q < min || q > max {
		if e.policy != field.Clamp {
			return 0, &field.DomainError{Position: q, Min: min, Max: max}
		}
		q = math.Min(math.Max(q, min), max)
	}
	return e.pl.Predict(q), nil
}

// TableDamper models square plates with the viscous-drag approximation:
// the force or torque is the interpolated coefficient scaled by velocity.
type TableDamper struct {
	coeff *EddyCoefficient
}

func NewTableDamper(plate PlateSpec, coeff *EddyCoefficient) (*TableDamper, error) {
	if err := plate.Validate(); err != nil {
		return nil, err
	}
	if coeff == nil {
		return nil, fmt.Errorf("%w: table damper needs a coefficient map", ErrInvalidSpec)
	}
	return &TableDamper{coeff: coeff}, nil
}

func (t *TableDamper) Coefficient(q float64) (float64, error) {
	return t.coeff.At(q)
}

func (t *TableDamper) Drag(q, v float64) (float64, error) {
	if v == 0 {
		return 0, nil
	}
	c, err := t.coeff.At(q)
	if err != nil {
		return 0, err
	}
	drag := -c * v
	if err := checkDissipative(drag, v); err != nil {
		return 0, err
	}
	return drag, nil
}

// ZeroDamper disables the magnet for with/without comparison runs.
type ZeroDamper struct{}

func (ZeroDamper) Drag(q, v float64) (float64, error) { return 0, nil }
func (ZeroDamper) Coefficient(q float64) (float64, error) { return 0, nil }
