package sim

import (
	"errors"
	"fmt"

	"github.com/alessandroarduino/lenz-effect/internal/ode"
)

var (
	// ErrToleranceNotMet: the adaptive stepper could not satisfy the error
	// tolerance within the retry budget.
	ErrToleranceNotMet = errors.New("sim: error tolerance not met within retry budget")

	// ErrInvalidConfig: integration parameters failed setup validation.
	ErrInvalidConfig = errors.New("sim: invalid integration config")
)

// IntegrationError reports a failed run together with the last valid state,
// so the partial trajectory stays interpretable.
type IntegrationError struct {
	Time      float64
	Step      int
	LastState ode.State
	Wrapped   error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error { return e.Wrapped }
