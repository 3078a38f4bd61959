// Package scenario enumerates the four measured configurations and builds
// the field -> damper -> integrator pipeline for each: rotating circular
// plate, rotating square plate, and translating square plate at lateral
// offsets 0 mm and 300 mm.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alessandroarduino/lenz-effect/internal/lenz"
)

var ErrInvalidConfig = errors.New("scenario: invalid configuration")

type Motion string

const (
	Rotation    Motion = "rotation"
	Translation Motion = "translation"
)

// FieldConfig selects the field model branch. The branch is chosen once at
// setup time, never inside the integration loop.
type FieldConfig struct {
	// Kind: "solenoid" (analytic), "table" (1-D map) or "grid" (2-D fringe
	// map sampled over axial position and lateral offset).
	Kind   string `yaml:"kind"`
	Path   string `yaml:"path,omitempty"`
	Column int    `yaml:"column,omitempty"`
	Edge   string `yaml:"edge,omitempty"` // reject (default) | clamp

	// Solenoid parameters.
	B0         float64 `yaml:"b0,omitempty"`          // center field (T)
	Radius     float64 `yaml:"radius,omitempty"`      // bore radius (m)
	HalfLength float64 `yaml:"half_length,omitempty"` // magnet half-length (m)
	Extent     float64 `yaml:"extent,omitempty"`      // valid |z| range (m)

	// Mount is the axial position of the rotation pivot (m). Rotation
	// scenarios with a position-space field model evaluate the field at
	// the centroid, mount + arm*sin(q).
	Mount float64 `yaml:"mount,omitempty"`
}

// EddyConfig selects the eddy-coefficient map for square plates: either a
// simulation export on disk or one of the built-in digitized maps.
type EddyConfig struct {
	Path    string `yaml:"path,omitempty"`
	Column  int    `yaml:"column,omitempty"`
	Edge    string `yaml:"edge,omitempty"`
	Builtin string `yaml:"builtin,omitempty"`
}

// DriveConfig describes the external forcing per unit inertia.
type DriveConfig struct {
	// Kind: "pendulum" (gravity moment -m g arm sin q / I), "incline"
	// (constant g sin angle) or "constant" (accel used as-is).
	Kind  string  `yaml:"kind"`
	Angle float64 `yaml:"angle,omitempty"` // incline angle (rad)
	Accel float64 `yaml:"accel,omitempty"` // constant per-unit-inertia drive
}

// Config is one scenario run, loadable from yaml. Flags in the CLI override
// individual fields after load.
type Config struct {
	Scenario   string  `yaml:"scenario"`
	Motion     Motion  `yaml:"motion"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Horizon    float64 `yaml:"horizon"`
	Q0         float64 `yaml:"q0"`
	V0         float64 `yaml:"v0"`
	QMin       float64 `yaml:"q_min"`
	QMax       float64 `yaml:"q_max"`
	Tol        float64 `yaml:"tol"`
	VelTol     float64 `yaml:"vel_tol"`
	SettleTime float64 `yaml:"settle_time"`
	MaxRetries int     `yaml:"max_retries"`
	OffsetMM   float64 `yaml:"offset_mm"`
	NoMagnet   bool    `yaml:"no_magnet"`

	Plate lenz.PlateSpec `yaml:"plate"`
	Field FieldConfig    `yaml:"field"`
	Eddy  EddyConfig     `yaml:"eddy"`
	Drive DriveConfig    `yaml:"drive"`
}

const (
	DefaultDt         = 0.01
	DefaultHorizon    = 60.0
	DefaultTol        = 1e-8
	DefaultVelTol     = 1e-5
	DefaultSettleTime = 0.5
	DefaultMaxRetries = 20
	Gravity           = 9.81
)

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk45",
		Dt:         DefaultDt,
		Horizon:    DefaultHorizon,
		Tol:        DefaultTol,
		VelTol:     DefaultVelTol,
		SettleTime: DefaultSettleTime,
		MaxRetries: DefaultMaxRetries,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on incompatible parameters, before any integration
// step runs.
func (c *Config) Validate() error {
	if c.Motion != Rotation && c.Motion != Translation {
		return fmt.Errorf("%w: motion must be rotation or translation, got %q", ErrInvalidConfig, c.Motion)
	}
	if c.Dt <= 0 || c.Horizon <= 0 {
		return fmt.Errorf("%w: dt and horizon must be positive", ErrInvalidConfig)
	}
	if c.QMin >= c.QMax {
		return fmt.Errorf("%w: pose bounds [%g, %g] are empty", ErrInvalidConfig, c.QMin, c.QMax)
	}
	if c.Tol <= 0 || c.MaxRetries <= 0 {
		return fmt.Errorf("%w: tolerance and retry budget must be positive", ErrInvalidConfig)
	}
	if err := c.Plate.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Motion == Rotation {
		if _, err := c.Plate.RotationalInertia(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if c.OffsetMM != 0 && c.OffsetMM != 300 {
		return fmt.Errorf("%w: offset_mm is enumerated, must be 0 or 300, got %g", ErrInvalidConfig, c.OffsetMM)
	}

	switch c.Plate.Shape {
	case lenz.Circle:
		if !c.NoMagnet && c.Field.Kind == "" {
			return fmt.Errorf("%w: circular plate needs a field model", ErrInvalidConfig)
		}
	case lenz.Square:
		if !c.NoMagnet && c.Eddy.Path == "" && c.Eddy.Builtin == "" {
			return fmt.Errorf("%w: square plate needs an eddy coefficient map (path or builtin)", ErrInvalidConfig)
		}
	}

	switch c.Drive.Kind {
	case "pendulum":
		if c.Motion != Rotation {
			return fmt.Errorf("%w: pendulum drive needs a rotation scenario", ErrInvalidConfig)
		}
	case "incline", "constant":
	default:
		return fmt.Errorf("%w: unknown drive kind %q", ErrInvalidConfig, c.Drive.Kind)
	}

	return nil
}
