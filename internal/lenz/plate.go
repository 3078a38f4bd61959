// Package lenz computes the eddy-current braking force or torque on a
// conductive plate moving through the scanner field. For the circular
// plate the coefficient comes from the closed-form disk solution; for
// square plates it is interpolated from tables derived once from
// electromagnetic simulation.
package lenz

import (
	"errors"
	"fmt"
)

type Shape string

const (
	Circle Shape = "circle"
	Square Shape = "square"
)

var ErrInvalidSpec = errors.New("lenz: invalid plate spec")

// PlateSpec describes the moving plate. Immutable per scenario.
// SI units: meters, kilograms, siemens per meter.
type PlateSpec struct {
	Shape        Shape   `yaml:"shape"`
	Size         float64 `yaml:"size"`         // radius (circle) or side (square)
	Thickness    float64 `yaml:"thickness"`    // m
	Conductivity float64 `yaml:"conductivity"` // S/m
	Mass         float64 `yaml:"mass"`         // kg
	Inertia      float64 `yaml:"inertia"`      // kg m^2, rotation cases
	Arm          float64 `yaml:"arm"`          // pivot-to-centroid distance, rotation cases
}

func (p PlateSpec) Validate() error {
	if p.Shape != Circle && p.Shape != Square {
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidSpec, p.Shape)
	}
	if p.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %g", ErrInvalidSpec, p.Size)
	}
	if p.Thickness <= 0 {
		return fmt.Errorf("%w: thickness must be positive, got %g", ErrInvalidSpec, p.Thickness)
	}
	if p.Conductivity <= 0 {
		return fmt.Errorf("%w: conductivity must be positive, got %g", ErrInvalidSpec, p.Conductivity)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidSpec, p.Mass)
	}
	if p.Inertia < 0 || p.Arm < 0 {
		return fmt.Errorf("%w: inertia and arm must be non-negative", ErrInvalidSpec)
	}
	return nil
}

// RotationalInertia is the effective inertia for rotation scenarios;
// it must have been set explicitly on the spec.
func (p PlateSpec) RotationalInertia() (float64, error) {
	if p.Inertia <= 0 {
		return 0, fmt.Errorf("%w: rotation scenario needs a positive inertia", ErrInvalidSpec)
	}
	return p.Inertia, nil
}
