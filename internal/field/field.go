// Package field models the static magnetic field of the scanner along the
// degree of freedom of a moving plate. Two branches exist: a closed-form
// solenoid expression for positions inside the bore, and tabulated maps
// produced by electromagnetic simulation for the fringe region.
//
// All quantities are SI: positions in meters, flux density in tesla,
// gradients in tesla per meter.
package field

import (
	"errors"
	"fmt"
	"math"
)

// Model returns the local field magnitude and its derivative along the
// motion axis. Implementations are pure functions of position once built.
type Model interface {
	B(q float64) (float64, error)
	Gradient(q float64) (float64, error)
	Domain() (min, max float64)
}

// EdgePolicy fixes the behavior for queries outside the sampled domain.
// The default is Reject: extrapolation is never silent.
type EdgePolicy int

const (
	// Reject fails queries outside the domain with a DomainError.
	Reject EdgePolicy = iota
	// Clamp holds the boundary sample (zero gradient) outside the domain.
	Clamp
)

func (p EdgePolicy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Clamp:
		return "clamp"
	}
	return fmt.Sprintf("EdgePolicy(%d)", int(p))
}

// ParseEdgePolicy maps a config string to an EdgePolicy.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch s {
	case "", "reject":
		return Reject, nil
	case "clamp":
		return Clamp, nil
	}
	return Reject, fmt.Errorf("unknown edge policy: %q", s)
}

var (
	ErrOutOfDomain  = errors.New("field: position outside sampled domain")
	ErrBadTable     = errors.New("field: malformed table")
	ErrNonMonotonic = errors.New("field: table axis not strictly increasing")
)

// DomainError reports a query outside the valid range of a model.
type DomainError struct {
	Position float64
	Min, Max float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("field: position %g outside domain [%g, %g]", e.Position, e.Min, e.Max)
}

func (e *DomainError) Unwrap() error { return ErrOutOfDomain }

// Solenoid is the analytic branch: the on-axis flux density of a finite
// solenoid of radius R and half-length L, normalized so that B(0) = B0.
//
//	B(z) = C * [ (z+L)/sqrt((z+L)^2+R^2) - (z-L)/sqrt((z-L)^2+R^2) ]
//
// Valid only for |z| <= Extent; larger excursions are a modelling error and
// are always rejected, regardless of edge policy.
type Solenoid struct {
	B0         float64
	Radius     float64
	HalfLength float64
	Extent     float64

	norm float64
}

func NewSolenoid(b0, radius, halfLength, extent float64) (*Solenoid, error) {
	if b0 <= 0 || radius <= 0 || halfLength <= 0 || extent <= 0 {
		return nil, fmt.Errorf("field: solenoid parameters must be positive (B0=%g R=%g L=%g extent=%g)",
			b0, radius, halfLength, extent)
	}
	s := &Solenoid{B0: b0, Radius: radius, HalfLength: halfLength, Extent: extent}
	s.norm = b0 / (2 * halfLength / math.Sqrt(halfLength*halfLength+radius*radius))
	return s, nil
}

func (s *Solenoid) Domain() (float64, float64) {
	return -s.Extent, s.Extent
}

func (s *Solenoid) B(z float64) (float64, error) {
	if math.Abs(z) > s.Extent {
		return 0, &DomainError{Position: z, Min: -s.Extent, Max: s.Extent}
	}
	up := z + s.HalfLength
	um := z - s.HalfLength
	r2 := s.Radius * s.Radius
	return s.norm * (up/math.Sqrt(up*up+r2) - um/math.Sqrt(um*um+r2)), nil
}

func (s *Solenoid) Gradient(z float64) (float64, error) {
	if math.Abs(z) > s.Extent {
		return 0, &DomainError{Position: z, Min: -s.Extent, Max: s.Extent}
	}
	up := z + s.HalfLength
	um := z - s.HalfLength
	r2 := s.Radius * s.Radius
	dp := r2 / math.Pow(up*up+r2, 1.5)
	dm := r2 / math.Pow(um*um+r2, 1.5)
	return s.norm * (dp - dm), nil
}
