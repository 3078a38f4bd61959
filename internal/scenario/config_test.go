package scenario

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/alessandroarduino/lenz-effect/internal/lenz"
)

func TestPresets_AllValid(t *testing.T) {
	for _, name := range ListScenarios() {
		cfg := Preset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestPreset_NotFound(t *testing.T) {
	if Preset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestListScenarios(t *testing.T) {
	names := ListScenarios()
	if len(names) != 4 {
		t.Fatalf("expected 4 scenarios, got %d", len(names))
	}
	want := map[string]bool{
		"rotating-disc": true, "rotating-square": true,
		"translating-square-0": true, "translating-square-300": true,
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected scenario %s", n)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad motion", func(c *Config) { c.Motion = "orbit" }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"empty bounds", func(c *Config) { c.QMin, c.QMax = 1, -1 }},
		{"zero conductivity", func(c *Config) { c.Plate.Conductivity = 0 }},
		{"bad offset", func(c *Config) { c.OffsetMM = 150 }},
		{"square without eddy map", func(c *Config) { c.Eddy = EddyConfig{} }},
		{"bad drive", func(c *Config) { c.Drive.Kind = "rocket" }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Preset("rotating-square")
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfig_PendulumDriveNeedsRotation(t *testing.T) {
	cfg := Preset("translating-square-0")
	cfg.Drive = DriveConfig{Kind: "pendulum"}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfig_RotationNeedsInertia(t *testing.T) {
	cfg := Preset("rotating-disc")
	cfg.Plate.Inertia = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfig_LoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	cfg := Preset("rotating-disc")
	cfg.Horizon = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Horizon != 42 {
		t.Errorf("horizon = %g, want 42", loaded.Horizon)
	}
	if loaded.Plate.Shape != lenz.Circle {
		t.Errorf("plate shape = %q, want circle", loaded.Plate.Shape)
	}
	if loaded.Field.Kind != "solenoid" {
		t.Errorf("field kind = %q, want solenoid", loaded.Field.Kind)
	}
}

func TestRegistry_Steppers(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.ListIntegrators() {
		if _, err := r.Stepper(name); err != nil {
			t.Errorf("stepper %s: %v", name, err)
		}
	}
	if _, err := r.Stepper("rk99"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown stepper, got %v", err)
	}
}

func TestBuild_UnknownBuiltinEddy(t *testing.T) {
	cfg := Preset("rotating-square")
	cfg.Eddy.Builtin = "hexagon"
	if _, err := NewRegistry().Build(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuild_NoMagnetUsesZeroDamper(t *testing.T) {
	cfg := Preset("rotating-square")
	cfg.NoMagnet = true
	// No eddy map needed without the magnet.
	cfg.Eddy = EddyConfig{}

	p, err := NewRegistry().Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := p.Damper.(lenz.ZeroDamper); !ok {
		t.Errorf("expected ZeroDamper, got %T", p.Damper)
	}
}
