// Package config loads the daemon configuration from a YAML file.
//
// The configuration is read once at startup and passed by value into each
// component's constructor. Nothing in the process mutates it afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files can use strings like "20ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full daemon configuration.
type Config struct {
	Camera   Camera   `yaml:"camera"`
	Tracking Tracking `yaml:"tracking"`
	Robot    Robot    `yaml:"robot"`
	API      API      `yaml:"api"`
	Log      Log      `yaml:"log"`
}

// Camera configures frame acquisition.
type Camera struct {
	Indices        []int `yaml:"indices"`
	Width          int   `yaml:"width"`
	Height         int   `yaml:"height"`
	TargetFPS      int   `yaml:"target_fps"`
	FlipHorizontal bool  `yaml:"flip_horizontal"`
}

// Tracking configures the detectors and the face-tracking PID loops.
type Tracking struct {
	FaceModelPath          string  `yaml:"face_model_path"`
	HandModelPath          string  `yaml:"hand_model_path"`
	MaxHands               int     `yaml:"max_hands"`
	MinDetectionConfidence float64 `yaml:"min_detection_confidence"`

	KpYaw   float64 `yaml:"kp_yaw"`
	KiYaw   float64 `yaml:"ki_yaw"`
	KdYaw   float64 `yaml:"kd_yaw"`
	KpPitch float64 `yaml:"kp_pitch"`
	KiPitch float64 `yaml:"ki_pitch"`
	KdPitch float64 `yaml:"kd_pitch"`

	// IntegralLimit bounds each PID's accumulated integral term.
	IntegralLimit float64 `yaml:"integral_limit"`

	// LostThreshold is the number of consecutive frames without a target
	// after which the PID state is reset.
	LostThreshold int `yaml:"lost_threshold"`
}

// Robot configures the daemon connection and motion bounds.
type Robot struct {
	// Addr is the host:port of the robot daemon HTTP API.
	Addr string `yaml:"addr"`

	Head    Head    `yaml:"head"`
	Antenna Antenna `yaml:"antenna"`

	// ControlTick is the control loop interval.
	ControlTick Duration `yaml:"control_tick"`

	// Sound is the sample played when a play request comes in.
	Sound string `yaml:"sound"`
}

// Head bounds the absolute head orientation in degrees.
type Head struct {
	PitchMin     float64 `yaml:"pitch_min"`
	PitchMax     float64 `yaml:"pitch_max"`
	YawAmplitude float64 `yaml:"yaw_amplitude"`
}

// Antenna configures the idle antenna oscillation.
type Antenna struct {
	Amplitude float64 `yaml:"amplitude"` // degrees
	Frequency float64 `yaml:"frequency"` // Hz
}

// API configures the local HTTP control surface.
type API struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Log configures process logging.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the recommended configuration.
func Default() Config {
	return Config{
		Camera: Camera{
			Indices:        []int{0, 1, 2},
			Width:          640,
			Height:         480,
			TargetFPS:      30,
			FlipHorizontal: true,
		},
		Tracking: Tracking{
			FaceModelPath:          "models/face_detection_yunet.onnx",
			HandModelPath:          "models/hand_landmark.onnx",
			MaxHands:               2,
			MinDetectionConfidence: 0.5,

			KpYaw:   30.0,
			KiYaw:   0.0,
			KdYaw:   5.0,
			KpPitch: 20.0,
			KiPitch: 0.0,
			KdPitch: 3.0,

			IntegralLimit: 0.5,
			LostThreshold: 10,
		},
		Robot: Robot{
			Addr: "localhost:8000",
			Head: Head{
				PitchMin:     -20.0,
				PitchMax:     20.0,
				YawAmplitude: 15.0,
			},
			Antenna: Antenna{
				Amplitude: 25.0,
				Frequency: 0.5,
			},
			ControlTick: Duration(20 * time.Millisecond),
			Sound:       "wake_up.wav",
		},
		API: API{
			Host: "0.0.0.0",
			Port: 8042,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// A missing or invalid file is an unrecoverable startup error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if len(c.Camera.Indices) == 0 {
		return fmt.Errorf("camera.indices must not be empty")
	}
	if c.Camera.TargetFPS < 1 || c.Camera.TargetFPS > 120 {
		return fmt.Errorf("camera.target_fps must be between 1 and 120")
	}
	if c.Tracking.MaxHands < 1 {
		return fmt.Errorf("tracking.max_hands must be at least 1")
	}
	if c.Tracking.MinDetectionConfidence <= 0 || c.Tracking.MinDetectionConfidence > 1 {
		return fmt.Errorf("tracking.min_detection_confidence must be in (0, 1]")
	}
	if c.Tracking.LostThreshold < 1 {
		return fmt.Errorf("tracking.lost_threshold must be at least 1")
	}
	if c.Tracking.IntegralLimit <= 0 {
		return fmt.Errorf("tracking.integral_limit must be positive")
	}
	if c.Robot.Head.PitchMin >= c.Robot.Head.PitchMax {
		return fmt.Errorf("robot.head.pitch_min must be below pitch_max")
	}
	if c.Robot.Head.YawAmplitude <= 0 {
		return fmt.Errorf("robot.head.yaw_amplitude must be positive")
	}
	if c.Robot.ControlTick.Std() <= 0 {
		return fmt.Errorf("robot.control_tick must be positive")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port must be a valid port")
	}
	return nil
}
