package robot

import (
	"math"
	"testing"
	"time"

	"github.com/agrobotics/reachy-mini-vision/pkg/tracking"
)

func testPoseConfig() PoseConfig {
	return PoseConfig{
		YawAmplitudeDeg:     15,
		PitchMinDeg:         -20,
		PitchMaxDeg:         20,
		AntennaAmplitudeDeg: 25,
		AntennaFrequencyHz:  0.5,
	}
}

func TestHeadTarget_Clamp(t *testing.T) {
	h := HeadTarget{Roll: 1.0, Pitch: -1.0, Yaw: 2.0}.Clamp()
	if h.Roll != MaxHeadRoll {
		t.Errorf("roll = %v, want %v", h.Roll, MaxHeadRoll)
	}
	if h.Pitch != -MaxHeadPitch {
		t.Errorf("pitch = %v, want %v", h.Pitch, -MaxHeadPitch)
	}
	if h.Yaw != MaxHeadYaw {
		t.Errorf("yaw = %v, want %v", h.Yaw, MaxHeadYaw)
	}
}

func TestPoseIntegrator_AccumulatesCorrections(t *testing.T) {
	p := NewPoseIntegrator(testPoseConfig())

	res := &tracking.Result{Tracking: true, YawCorrectionDeg: 4, PitchCorrectionDeg: -3}
	yaw, pitch := p.HeadPose(res)
	if yaw != 4 || pitch != -3 {
		t.Fatalf("first update = (%v, %v), want (4, -3)", yaw, pitch)
	}
	yaw, pitch = p.HeadPose(res)
	if yaw != 8 || pitch != -6 {
		t.Fatalf("second update = (%v, %v), want (8, -6)", yaw, pitch)
	}
}

func TestPoseIntegrator_ClampsToBounds(t *testing.T) {
	p := NewPoseIntegrator(testPoseConfig())

	res := &tracking.Result{Tracking: true, YawCorrectionDeg: 10, PitchCorrectionDeg: 30}
	for i := 0; i < 5; i++ {
		p.HeadPose(res)
	}
	yaw, pitch := p.HeadPose(res)
	if yaw != 15 {
		t.Errorf("yaw = %v, want clamped 15", yaw)
	}
	if pitch != 20 {
		t.Errorf("pitch = %v, want clamped 20", pitch)
	}
}

func TestPoseIntegrator_HoldsPoseWhenNotTracking(t *testing.T) {
	p := NewPoseIntegrator(testPoseConfig())
	p.HeadPose(&tracking.Result{Tracking: true, YawCorrectionDeg: 5, PitchCorrectionDeg: 2})

	yaw, pitch := p.HeadPose(&tracking.Result{Tracking: false})
	if yaw != 5 || pitch != 2 {
		t.Errorf("lost target pose = (%v, %v), want held (5, 2)", yaw, pitch)
	}
	yaw, pitch = p.HeadPose(nil)
	if yaw != 5 || pitch != 2 {
		t.Errorf("nil result pose = (%v, %v), want held (5, 2)", yaw, pitch)
	}
}

func TestAntennaPositions_DisabledIsExactlyZero(t *testing.T) {
	p := NewPoseIntegrator(testPoseConfig())
	left, right := p.AntennaPositions(137*time.Millisecond, false)
	if left != 0 || right != 0 {
		t.Errorf("disabled antennas = (%v, %v), want (0, 0)", left, right)
	}
}

func TestAntennaPositions_MirroredSine(t *testing.T) {
	p := NewPoseIntegrator(testPoseConfig())

	// 0.5s at 0.5Hz is a quarter period: sine peak.
	left, right := p.AntennaPositions(500*time.Millisecond, true)
	wantPeak := 25 * math.Pi / 180
	if math.Abs(left-wantPeak) > 1e-9 {
		t.Errorf("left = %v, want %v", left, wantPeak)
	}
	if math.Abs(right+left) > 1e-12 {
		t.Errorf("right = %v, want mirror of left %v", right, left)
	}
}
