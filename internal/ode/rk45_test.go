package ode

import (
	"errors"
	"math"
	"testing"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) Dim() int { return 2 }

func (h *harmonicOscillator) Derive(x State, t float64) (State, error) {
	return State{x[1], -x[0]}, nil
}

func (h *harmonicOscillator) Energy(x State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

type failingSystem struct{}

func (f *failingSystem) Dim() int { return 2 }

func (f *failingSystem) Derive(x State, t float64) (State, error) {
	return nil, errors.New("out of domain")
}

func TestRK45_Step(t *testing.T) {
	stepper := NewRK45()
	sys := &harmonicOscillator{}
	x := State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		var err error
		x, err = stepper.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step %d returned error: %v", i, err)
		}
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	stepper := NewRK45()
	sys := &harmonicOscillator{}
	x0 := State{1.0, 0.0}

	initialEnergy := sys.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		var err error
		x, err = stepper.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	finalEnergy := sys.Energy(x)
	drift := math.Abs(finalEnergy-initialEnergy) / initialEnergy

	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	stepper := NewRK45()
	sys := &harmonicOscillator{}
	x0 := State{1.0, 0.0}

	x, newDt, ratio, err := stepper.StepAdaptive(sys, x0, 0, 0.1, 1e-8)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}

	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}

	if newDt <= 0 {
		t.Errorf("StepAdaptive returned invalid dt: %f", newDt)
	}

	if ratio < 0 {
		t.Errorf("StepAdaptive returned negative error ratio: %f", ratio)
	}
}

func TestRK45_ErrorRatioSignalsRejection(t *testing.T) {
	stepper := NewRK45()
	sys := &harmonicOscillator{}
	x0 := State{1.0, 0.0}

	// A huge step at a tight tolerance must report a ratio above 1 and
	// suggest a smaller retry step.
	_, newDt, ratio, err := stepper.StepAdaptive(sys, x0, 0, 5.0, 1e-12)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if ratio <= 1 {
		t.Errorf("expected error ratio > 1 for oversized step, got %f", ratio)
	}
	if newDt >= 5.0 {
		t.Errorf("expected reduced step suggestion, got %f", newDt)
	}
}

func TestRK45_DeriveErrorPropagates(t *testing.T) {
	stepper := NewRK45()
	_, _, _, err := stepper.StepAdaptive(&failingSystem{}, State{0, 0}, 0, 0.01, 1e-6)
	if err == nil {
		t.Error("expected error from failing system, got nil")
	}
}
