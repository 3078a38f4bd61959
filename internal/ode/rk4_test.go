package ode

import (
	"math"
	"testing"
)

func TestRK4Accuracy(t *testing.T) {
	sys := &harmonicOscillator{}
	integ := NewRK4()

	x := State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		var err error
		x, err = integ.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerConvergesToExponentialDecay(t *testing.T) {
	sys := &decaySystem{}
	integ := NewEuler()

	x := State{1.0}
	dt := 0.001
	steps := 1000

	for i := 0; i < steps; i++ {
		var err error
		x, err = integ.Step(sys, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	expected := math.Exp(-1.0)
	if math.Abs(x[0]-expected) > 1e-3 {
		t.Errorf("expected ~%.4f, got %.4f", expected, x[0])
	}
}

type decaySystem struct{}

func (d *decaySystem) Dim() int { return 1 }

func (d *decaySystem) Derive(x State, t float64) (State, error) {
	return State{-x[0]}, nil
}

func TestStateValidity(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"ok", State{1.0, -2.0}, true},
		{"nan", State{math.NaN(), 0}, false},
		{"inf", State{0, math.Inf(1)}, false},
		{"empty", State{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
