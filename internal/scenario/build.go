package scenario

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/alessandroarduino/lenz-effect/internal/field"
	"github.com/alessandroarduino/lenz-effect/internal/lenz"
	"github.com/alessandroarduino/lenz-effect/internal/ode"
	"github.com/alessandroarduino/lenz-effect/internal/sim"
)

// Pipeline is a fully assembled scenario, ready to run.
type Pipeline struct {
	Integrator *sim.Integrator
	Damper     lenz.Damper
	SimCfg     sim.Config
	Q0, V0     float64
	Rotational bool
}

// Registry maps scenario and integrator names to constructors.
type Registry struct {
	steppers map[string]func() ode.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{steppers: make(map[string]func() ode.Stepper)}
	r.steppers["euler"] = func() ode.Stepper { return ode.NewEuler() }
	r.steppers["rk4"] = func() ode.Stepper { return ode.NewRK4() }
	r.steppers["rk45"] = func() ode.Stepper { return ode.NewRK45() }
	return r
}

func (r *Registry) Stepper(name string) (ode.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", ErrInvalidConfig, name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	return []string{"euler", "rk4", "rk45"}
}

// Build validates the configuration and assembles the pipeline: field model
// first, damper on top of it, then the equation-of-motion integrator. All
// table files are loaded here, once, before the first step.
func (r *Registry) Build(cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stepper, err := r.Stepper(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	rotational := cfg.Motion == Rotation
	var inertia float64
	if rotational {
		inertia, err = cfg.Plate.RotationalInertia()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	} else {
		inertia = cfg.Plate.Mass
	}

	damper, err := buildDamper(cfg)
	if err != nil {
		return nil, err
	}

	drive, err := buildDrive(cfg, inertia)
	if err != nil {
		return nil, err
	}

	integ, err := sim.New(drive, damper, inertia, stepper)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"scenario":   cfg.Scenario,
		"motion":     cfg.Motion,
		"integrator": cfg.Integrator,
		"no_magnet":  cfg.NoMagnet,
	}).Debug("pipeline assembled")

	return &Pipeline{
		Integrator: integ,
		Damper:     damper,
		SimCfg: sim.Config{
			Dt:         cfg.Dt,
			Horizon:    cfg.Horizon,
			QMin:       cfg.QMin,
			QMax:       cfg.QMax,
			Tol:        cfg.Tol,
			VelTol:     cfg.VelTol,
			SettleTime: cfg.SettleTime,
			MaxRetries: cfg.MaxRetries,
			MinDt:      1e-10,
			MaxDt:      cfg.Dt,
		},
		Q0:         cfg.Q0,
		V0:         cfg.V0,
		Rotational: rotational,
	}, nil
}

func buildDamper(cfg *Config) (lenz.Damper, error) {
	if cfg.NoMagnet {
		return lenz.ZeroDamper{}, nil
	}

	switch cfg.Plate.Shape {
	case lenz.Circle:
		fm, err := buildField(cfg)
		if err != nil {
			return nil, err
		}
		return lenz.NewDiskDamper(cfg.Plate, fm)
	case lenz.Square:
		coeff, err := buildEddy(cfg)
		if err != nil {
			return nil, err
		}
		return lenz.NewTableDamper(cfg.Plate, coeff)
	}
	return nil, fmt.Errorf("%w: no damper for shape %q", ErrInvalidConfig, cfg.Plate.Shape)
}

func buildField(cfg *Config) (field.Model, error) {
	policy, err := field.ParseEdgePolicy(cfg.Field.Edge)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var fm field.Model
	switch cfg.Field.Kind {
	case "solenoid":
		fm, err = field.NewSolenoid(cfg.Field.B0, cfg.Field.Radius, cfg.Field.HalfLength, cfg.Field.Extent)
	case "table":
		fm, err = field.LoadTable(cfg.Field.Path, columnOrDefault(cfg.Field.Column), policy)
	case "grid":
		var g *field.Grid
		g, err = field.LoadGrid(cfg.Field.Path, policy)
		if err == nil {
			fm, err = g.Profile(cfg.OffsetMM / 1000.0)
		}
	default:
		return nil, fmt.Errorf("%w: unknown field kind %q", ErrInvalidConfig, cfg.Field.Kind)
	}
	if err != nil {
		return nil, err
	}

	// Position-space field models must be remapped to the angular DOF for
	// rotation scenarios. Tabulated maps are assumed to be exported in DOF
	// coordinates already.
	if cfg.Motion == Rotation && cfg.Field.Kind == "solenoid" {
		fm = &armField{fm: fm, mount: cfg.Field.Mount, arm: cfg.Plate.Arm}
	}
	return fm, nil
}

// armField evaluates a position-space field model at the centroid of a
// plate swinging about a pivot at axial position mount.
type armField struct {
	fm         field.Model
	mount, arm float64
}

func (a *armField) Domain() (float64, float64) {
	return -math.Pi, math.Pi
}

func (a *armField) B(q float64) (float64, error) {
	return a.fm.B(a.mount + a.arm*math.Sin(q))
}

func (a *armField) Gradient(q float64) (float64, error) {
	g, err := a.fm.Gradient(a.mount + a.arm*math.Sin(q))
	if err != nil {
		return 0, err
	}
	return g * a.arm * math.Cos(q), nil
}

func buildEddy(cfg *Config) (*lenz.EddyCoefficient, error) {
	policy, err := field.ParseEdgePolicy(cfg.Eddy.Edge)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.Eddy.Builtin != "" {
		tab, ok := builtinEddy[cfg.Eddy.Builtin]
		if !ok {
			return nil, fmt.Errorf("%w: unknown builtin eddy map %q", ErrInvalidConfig, cfg.Eddy.Builtin)
		}
		return lenz.NewEddyCoefficient(tab.qs, tab.cs, policy)
	}
	return lenz.LoadEddyCoefficient(cfg.Eddy.Path, columnOrDefault(cfg.Eddy.Column), policy)
}

func buildDrive(cfg *Config, inertia float64) (sim.DriveFunc, error) {
	switch cfg.Drive.Kind {
	case "pendulum":
		// Gravity moment about the pivot, per unit inertia; drives the
		// plate toward q = 0.
		k := cfg.Plate.Mass * Gravity * cfg.Plate.Arm / inertia
		return func(t, q float64) float64 { return -k * math.Sin(q) }, nil
	case "incline":
		a := Gravity * math.Sin(cfg.Drive.Angle)
		return func(t, q float64) float64 { return a }, nil
	case "constant":
		a := cfg.Drive.Accel
		return func(t, q float64) float64 { return a }, nil
	}
	return nil, fmt.Errorf("%w: unknown drive kind %q", ErrInvalidConfig, cfg.Drive.Kind)
}

func columnOrDefault(col int) int {
	if col == 0 {
		return 1
	}
	return col
}
