package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	yml := `
camera:
  target_fps: 15
  flip_horizontal: false
tracking:
  kp_yaw: 42.5
  lost_threshold: 5
robot:
  addr: "192.168.68.80:8000"
  control_tick: 50ms
  head:
    yaw_amplitude: 30
api:
  port: 9000
`
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Camera.TargetFPS != 15 {
		t.Errorf("target_fps = %d, want 15", cfg.Camera.TargetFPS)
	}
	if cfg.Camera.FlipHorizontal {
		t.Error("flip_horizontal should be overridden to false")
	}
	if cfg.Tracking.KpYaw != 42.5 {
		t.Errorf("kp_yaw = %v, want 42.5", cfg.Tracking.KpYaw)
	}
	if cfg.Tracking.LostThreshold != 5 {
		t.Errorf("lost_threshold = %d, want 5", cfg.Tracking.LostThreshold)
	}
	if cfg.Robot.Addr != "192.168.68.80:8000" {
		t.Errorf("addr = %q", cfg.Robot.Addr)
	}
	if cfg.Robot.ControlTick.Std() != 50*time.Millisecond {
		t.Errorf("control_tick = %v, want 50ms", cfg.Robot.ControlTick.Std())
	}
	if cfg.Robot.Head.YawAmplitude != 30 {
		t.Errorf("yaw_amplitude = %v, want 30", cfg.Robot.Head.YawAmplitude)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.API.Port)
	}

	// Untouched fields keep their defaults.
	if cfg.Tracking.KdYaw != 5.0 {
		t.Errorf("kd_yaw = %v, want default 5.0", cfg.Tracking.KdYaw)
	}
	if cfg.Robot.Head.PitchMax != 20.0 {
		t.Errorf("pitch_max = %v, want default 20.0", cfg.Robot.Head.PitchMax)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("robot:\n  control_tick: fast\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("expected invalid duration error, got: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no camera indices", func(c *Config) { c.Camera.Indices = nil }},
		{"zero fps", func(c *Config) { c.Camera.TargetFPS = 0 }},
		{"zero lost threshold", func(c *Config) { c.Tracking.LostThreshold = 0 }},
		{"inverted pitch bounds", func(c *Config) { c.Robot.Head.PitchMin = 30 }},
		{"zero yaw amplitude", func(c *Config) { c.Robot.Head.YawAmplitude = 0 }},
		{"zero control tick", func(c *Config) { c.Robot.ControlTick = 0 }},
		{"bad port", func(c *Config) { c.API.Port = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
