// Package ode provides the numerical primitives for integrating ordinary
// differential equations: the state vector, the system interface, and a
// family of explicit steppers (Euler, RK4, adaptive Dormand-Prince RK45).
//
// Systems may fail mid-evaluation, e.g. when the state leaves the domain of
// an interpolated field table. Steppers propagate such errors unchanged so
// the caller can distinguish them from step-size failures.
package ode

import (
	"errors"
	"math"
)

// State is the instantaneous ODE state vector.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a first-order ODE dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) (State, error)
	Dim() int
}

// Stepper advances the state by a single fixed step.
type Stepper interface {
	Step(sys System, x State, t, dt float64) (State, error)
}

// AdaptiveStepper additionally produces an embedded error estimate.
// StepAdaptive returns the trial state, a suggested next step size, and the
// error estimate normalized by tol: a ratio above 1 means the trial step
// missed the tolerance and must be rejected by the caller.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, float64, error)
}

var ErrInvalidState = errors.New("ode: invalid state (NaN or Inf)")
