package scenario

import (
	"math"
	"sort"

	"github.com/alessandroarduino/lenz-effect/internal/lenz"
)

// builtinEddy holds the digitized per-unit-velocity coefficient maps for
// the square plates, reduced from the electromagnetic simulation exports.
// Rotation maps are indexed by tilt angle (rad), translation maps by the
// position along the guide (m, bore entrance at 1.2).
var builtinEddy = map[string]struct{ qs, cs []float64 }{
	"square-rotation": {
		qs: []float64{-3.142, -2.618, -2.094, -1.571, -1.047, -0.524, 0, 0.524, 1.047, 1.571, 2.094, 2.618, 3.142},
		cs: []float64{0.398, 0.296, 0.104, 0.011, 0.107, 0.301, 0.405, 0.299, 0.102, 0.012, 0.098, 0.303, 0.398},
	},
	"square-translation-0": {
		qs: []float64{-0.2, 0, 0.2, 0.4, 0.6, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3, 1.4},
		cs: []float64{0.001, 0.004, 0.018, 0.070, 0.240, 0.860, 1.520, 2.310, 2.950, 3.210, 3.050, 2.640},
	},
	"square-translation-300": {
		qs: []float64{-0.2, 0, 0.2, 0.4, 0.6, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3, 1.4},
		cs: []float64{0.001, 0.003, 0.015, 0.059, 0.205, 0.730, 1.290, 1.970, 2.520, 2.760, 2.610, 2.280},
	},
}

// aluminiumDisc is the circular test plate: 50 mm radius, 2 mm sheet,
// pivoting about a rim diameter.
func aluminiumDisc() lenz.PlateSpec {
	return lenz.PlateSpec{
		Shape:        lenz.Circle,
		Size:         0.05,
		Thickness:    0.002,
		Conductivity: 3.5e7,
		Mass:         0.042,
		Inertia:      1.3e-4,
		Arm:          0.05,
	}
}

// aluminiumSquare is the square test plate: 100 mm side, 2 mm sheet.
func aluminiumSquare(inertia, arm float64) lenz.PlateSpec {
	return lenz.PlateSpec{
		Shape:        lenz.Square,
		Size:         0.1,
		Thickness:    0.002,
		Conductivity: 3.5e7,
		Mass:         0.054,
		Inertia:      inertia,
		Arm:          arm,
	}
}

// Presets enumerates the four measured configurations.
var Presets = map[string]func() *Config{
	"rotating-disc": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "rotating-disc"
		cfg.Motion = Rotation
		cfg.Horizon = 120
		cfg.Q0 = 1.5
		cfg.QMin = -math.Pi
		cfg.QMax = math.Pi
		cfg.VelTol = 1e-4
		cfg.Plate = aluminiumDisc()
		cfg.Field = FieldConfig{
			Kind:       "solenoid",
			B0:         3.0,
			Radius:     0.3,
			HalfLength: 0.8,
			Extent:     2.0,
			Mount:      0.75,
		}
		cfg.Drive = DriveConfig{Kind: "pendulum"}
		return cfg
	},
	"rotating-square": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "rotating-square"
		cfg.Motion = Rotation
		cfg.Horizon = 120
		cfg.Q0 = 1.5
		cfg.QMin = -math.Pi
		cfg.QMax = math.Pi
		cfg.VelTol = 1e-4
		cfg.Plate = aluminiumSquare(1.8e-4, 0.05)
		cfg.Eddy = EddyConfig{Builtin: "square-rotation"}
		cfg.Drive = DriveConfig{Kind: "pendulum"}
		return cfg
	},
	"translating-square-0": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "translating-square-0"
		cfg.Motion = Translation
		cfg.Horizon = 30
		cfg.Q0 = 0
		cfg.QMin = -0.2
		cfg.QMax = 1.2 // bore entrance
		cfg.VelTol = 0 // terminal velocity stays finite
		cfg.OffsetMM = 0
		cfg.Plate = aluminiumSquare(0, 0)
		cfg.Eddy = EddyConfig{Builtin: "square-translation-0"}
		cfg.Drive = DriveConfig{Kind: "incline", Angle: 0.12}
		return cfg
	},
	"translating-square-300": func() *Config {
		cfg := DefaultConfig()
		cfg.Scenario = "translating-square-300"
		cfg.Motion = Translation
		cfg.Horizon = 30
		cfg.Q0 = 0
		cfg.QMin = -0.2
		cfg.QMax = 1.2
		cfg.VelTol = 0
		cfg.OffsetMM = 300
		cfg.Plate = aluminiumSquare(0, 0)
		cfg.Eddy = EddyConfig{Builtin: "square-translation-300"}
		cfg.Drive = DriveConfig{Kind: "incline", Angle: 0.12}
		return cfg
	},
}

// Preset returns a fresh config for a named scenario, or nil.
func Preset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListScenarios() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
