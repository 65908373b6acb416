package robot

import (
	"math"
	"time"

	"github.com/agrobotics/reachy-mini-vision/pkg/tracking"
)

// Physical head limits (radians). Safety limits so the daemon never
// receives an impossible command.
const (
	MaxHeadRoll  = 0.35 // ±20° (conservative)
	MaxHeadPitch = 0.52 // ±30°
	MaxHeadYaw   = 0.70 // ±40°
)

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Clamp returns a new HeadTarget with values clamped to physical limits.
func (h HeadTarget) Clamp() HeadTarget {
	return HeadTarget{
		Roll:  clamp(h.Roll, -MaxHeadRoll, MaxHeadRoll),
		Pitch: clamp(h.Pitch, -MaxHeadPitch, MaxHeadPitch),
		Yaw:   clamp(h.Yaw, -MaxHeadYaw, MaxHeadYaw),
	}
}

// PoseConfig bounds the integrated pose and shapes the antenna sway.
// Angles are in degrees; the wire boundary converts to radians.
type PoseConfig struct {
	YawAmplitudeDeg     float64 // yaw is clamped to ±this
	PitchMinDeg         float64
	PitchMaxDeg         float64
	AntennaAmplitudeDeg float64
	AntennaFrequencyHz  float64
}

// PoseIntegrator accumulates per-frame tracking corrections into an
// absolute head pose, and generates the idle antenna sway. Not safe for
// concurrent use; the control loop is its only caller.
type PoseIntegrator struct {
	config   PoseConfig
	yawDeg   float64
	pitchDeg float64
	start    time.Time
}

// NewPoseIntegrator starts from the neutral pose.
func NewPoseIntegrator(cfg PoseConfig) *PoseIntegrator {
	return &PoseIntegrator{config: cfg, start: time.Now()}
}

// HeadPose folds the latest tracking result into the accumulated pose
// and returns it in degrees. When there is no result or no target, the
// head holds its last position rather than snapping back to center.
func (p *PoseIntegrator) HeadPose(res *tracking.Result) (yawDeg, pitchDeg float64) {
	if res != nil && res.Tracking {
		p.yawDeg = clamp(p.yawDeg+res.YawCorrectionDeg,
			-p.config.YawAmplitudeDeg, p.config.YawAmplitudeDeg)
		p.pitchDeg = clamp(p.pitchDeg+res.PitchCorrectionDeg,
			p.config.PitchMinDeg, p.config.PitchMaxDeg)
	}
	return p.yawDeg, p.pitchDeg
}

// AntennaPositions returns mirrored antenna angles in radians for the
// given elapsed time. Disabled antennas sit at exactly zero.
func (p *PoseIntegrator) AntennaPositions(elapsed time.Duration, enabled bool) (left, right float64) {
	if !enabled {
		return 0, 0
	}
	ampRad := p.config.AntennaAmplitudeDeg * math.Pi / 180
	a := ampRad * math.Sin(2*math.Pi*p.config.AntennaFrequencyHz*elapsed.Seconds())
	return a, -a
}

// Elapsed returns time since the integrator was created; it drives the
// antenna sway phase.
func (p *PoseIntegrator) Elapsed() time.Duration {
	return time.Since(p.start)
}
