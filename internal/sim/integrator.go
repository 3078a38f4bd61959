// Package sim assembles the plate's equation of motion and integrates it
// forward in time. The ODE is the second-order system
//
//	dq/dt = v
//	dv/dt = drive(t, q) + drag(q, v) / inertia
//
// where drive is the external forcing per unit inertia (gravity moment,
// incline component) and drag is the Lenz term from the damper. The run
// terminates on a geometric bound, on quasi-steady settling, or when the
// horizon is exhausted; each cause is reported distinctly.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/alessandroarduino/lenz-effect/internal/lenz"
	"github.com/alessandroarduino/lenz-effect/internal/ode"
)

// DriveFunc is the external forcing divided by the effective inertia.
type DriveFunc func(t, q float64) float64

// Observer is notified at every recorded sample. Drive and drag are in
// physical units.
type Observer interface {
	OnSample(t, q, v, drive, drag float64)
}

// Config holds the integration parameters for one run.
type Config struct {
	Dt         float64 // output sampling step (s)
	Horizon    float64 // end of the integration interval (s)
	QMin       float64 // lower geometric bound on the pose
	QMax       float64 // upper geometric bound on the pose
	Tol        float64 // adaptive error tolerance
	VelTol     float64 // quasi-steady velocity threshold; 0 disables
	SettleTime float64 // how long VelTol must hold before stopping (s)
	MaxRetries int     // rejected-step retries per output interval
	MinDt      float64 // smallest internal step
	MaxDt      float64 // largest internal step
}

func DefaultConfig() Config {
	return Config{
		Dt:         0.01,
		Horizon:    10.0,
		QMin:       math.Inf(-1),
		QMax:       math.Inf(1),
		Tol:        1e-8,
		VelTol:     0,
		SettleTime: 0.5,
		MaxRetries: 20,
		MinDt:      1e-10,
		MaxDt:      0.1,
	}
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %g", ErrInvalidConfig, c.Horizon)
	}
	if c.QMin >= c.QMax {
		return fmt.Errorf("%w: pose bounds [%g, %g] are empty", ErrInvalidConfig, c.QMin, c.QMax)
	}
	if c.Tol <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalidConfig, c.Tol)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("%w: retry budget must be positive, got %d", ErrInvalidConfig, c.MaxRetries)
	}
	if c.MinDt <= 0 || c.MaxDt < c.MinDt {
		return fmt.Errorf("%w: step bounds [%g, %g] invalid", ErrInvalidConfig, c.MinDt, c.MaxDt)
	}
	if c.VelTol < 0 || c.SettleTime < 0 {
		return fmt.Errorf("%w: quasi-steady thresholds must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// eom adapts the drive and damper to the first-order ODE interface.
// State layout: x[0] = pose, x[1] = velocity.
type eom struct {
	drive   DriveFunc
	damper  lenz.Damper
	inertia float64
}

func (e *eom) Dim() int { return 2 }

func (e *eom) Derive(x ode.State, t float64) (ode.State, error) {
	q, v := x[0], x[1]
	drag, err := e.damper.Drag(q, v)
	if err != nil {
		return nil, err
	}
	return ode.State{v, e.drive(t, q) + drag/e.inertia}, nil
}

// Integrator runs the assembled equation of motion. With an adaptive
// stepper the internal step follows the embedded error estimate; a plain
// stepper advances at the fixed output step.
type Integrator struct {
	sys       *eom
	stepper   ode.Stepper
	observers []Observer
}

// New builds an integrator. inertia is the effective inertia of the moving
// plate: its mass for translations, its moment of inertia for rotations.
func New(drive DriveFunc, damper lenz.Damper, inertia float64, stepper ode.Stepper) (*Integrator, error) {
	if drive == nil || damper == nil {
		return nil, fmt.Errorf("%w: drive and damper are required", ErrInvalidConfig)
	}
	if inertia <= 0 {
		return nil, fmt.Errorf("%w: inertia must be positive, got %g", ErrInvalidConfig, inertia)
	}
	if stepper == nil {
		stepper = ode.NewRK45()
	}
	return &Integrator{
		sys:     &eom{drive: drive, damper: damper, inertia: inertia},
		stepper: stepper,
	}, nil
}

func (s *Integrator) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Run integrates from (q0, v0) at t = 0. On success the returned trajectory
// carries its termination reason. On failure the trajectory recorded so far
// is returned alongside an *IntegrationError; the two are never ambiguous.
func (s *Integrator) Run(ctx context.Context, q0, v0 float64, cfg Config) (*Trajectory, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if q0 < cfg.QMin || q0 > cfg.QMax {
		return nil, fmt.Errorf("%w: initial pose %g outside bounds [%g, %g]",
			ErrInvalidConfig, q0, cfg.QMin, cfg.QMax)
	}

	samples := int(cfg.Horizon/cfg.Dt) + 2
	traj := newTrajectory(samples)

	x := ode.State{q0, v0}
	t := 0.0
	h := math.Min(cfg.Dt, cfg.MaxDt)

	if err := s.record(traj, t, x); err != nil {
		return traj, &IntegrationError{Time: t, LastState: x.Clone(), Wrapped: err}
	}

	settled := 0.0
	step := 0
	adaptive, isAdaptive := s.stepper.(ode.AdaptiveStepper)

	for t < cfg.Horizon-1e-12 {
		select {
		case <-ctx.Done():
			return traj, &IntegrationError{Time: t, Step: step, LastState: x.Clone(), Wrapped: ctx.Err()}
		default:
		}

		tNext := math.Min(t+cfg.Dt, cfg.Horizon)

		for t < tNext-1e-12 {
			prevT, prevX := t, x

			var trial ode.State
			if isAdaptive {
				if h > tNext-t {
					h = tNext - t
				}
				retries := 0
				for {
					var (
						hNext float64
						ratio float64
						err   error
					)
					trial, hNext, ratio, err = adaptive.StepAdaptive(s.sys, x, t, h, cfg.Tol)
					if err != nil {
						return traj, &IntegrationError{Time: t, Step: step, LastState: x.Clone(), Wrapped: err}
					}
					if ratio <= 1 {
						t += h
						h = clamp(hNext, cfg.MinDt, cfg.MaxDt)
						break
					}
					retries++
					if retries > cfg.MaxRetries {
						return traj, &IntegrationError{
							Time: t, Step: step, LastState: x.Clone(),
							Wrapped: fmt.Errorf("%w: %d retries at t=%.6g (dt=%.3g)", ErrToleranceNotMet, retries-1, t, h),
						}
					}
					h = clamp(hNext, cfg.MinDt, cfg.MaxDt)
				}
			} else {
				hStep := math.Min(math.Min(cfg.Dt, cfg.MaxDt), tNext-t)
				var err error
				trial, err = s.stepper.Step(s.sys, x, t, hStep)
				if err != nil {
					return traj, &IntegrationError{Time: t, Step: step, LastState: x.Clone(), Wrapped: err}
				}
				t += hStep
			}

			if !trial.IsValid() {
				return traj, &IntegrationError{Time: t, Step: step, LastState: x.Clone(), Wrapped: ode.ErrInvalidState}
			}
			x = trial
			step++

			if x[0] <= cfg.QMin || x[0] >= cfg.QMax {
				et, ex := refineBound(prevT, prevX, t, x, cfg.QMin, cfg.QMax)
				if et > lastTime(traj) {
					if err := s.record(traj, et, ex); err != nil {
						return traj, &IntegrationError{Time: et, Step: step, LastState: ex.Clone(), Wrapped: err}
					}
				}
				traj.Reason = BoundReached
				return traj, nil
			}
		}
		t = tNext

		if err := s.record(traj, t, x); err != nil {
			return traj, &IntegrationError{Time: t, Step: step, LastState: x.Clone(), Wrapped: err}
		}

		if cfg.VelTol > 0 {
			if math.Abs(x[1]) < cfg.VelTol {
				settled += cfg.Dt
				if settled >= cfg.SettleTime {
					traj.Reason = QuasiSteady
					return traj, nil
				}
			} else {
				settled = 0
			}
		}
	}

	traj.Reason = HorizonExhausted
	return traj, nil
}

// record appends a sample with the instantaneous physical forcing terms.
func (s *Integrator) record(traj *Trajectory, t float64, x ode.State) error {
	q, v := x[0], x[1]
	drag, err := s.sys.damper.Drag(q, v)
	if err != nil {
		return err
	}
	drive := s.sys.drive(t, q) * s.sys.inertia
	traj.append(t, q, v, drive, drag)
	for _, o := range s.observers {
		o.OnSample(t, q, v, drive, drag)
	}
	return nil
}

// refineBound linearly interpolates the crossing of whichever bound was hit
// inside the last accepted step. Linear refinement is adequate at the step
// sizes the error controller produces for these scenarios.
func refineBound(t0 float64, x0 ode.State, t1 float64, x1 ode.State, qMin, qMax float64) (float64, ode.State) {
	q0, q1 := x0[0], x1[0]

	bound := qMax
	if q1 <= qMin {
		bound = qMin
	}
	if q1 == q0 {
		return t1, x1
	}

	f := (bound - q0) / (q1 - q0)
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	et := t0 + f*(t1-t0)
	ev := x0[1] + f*(x1[1]-x0[1])
	return et, ode.State{bound, ev}
}

func lastTime(traj *Trajectory) float64 {
	if traj.Len() == 0 {
		return math.Inf(-1)
	}
	return traj.Times[traj.Len()-1]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
