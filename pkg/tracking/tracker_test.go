package tracking

import (
	"errors"
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/agrobotics/reachy-mini-vision/pkg/tracking/detection"
)

// fakeDetector returns a scripted sequence of detection sets.
type fakeDetector struct {
	frames [][]detection.Detection
	calls  int
	err    error
}

func (f *fakeDetector) Detect(gocv.Mat) ([]detection.Detection, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.frames) {
		return nil, nil
	}
	dets := f.frames[f.calls]
	f.calls++
	return dets, nil
}

func (f *fakeDetector) Close() error { return nil }

// repeat builds a detector that reports the same set for n frames.
func repeat(dets []detection.Detection, n int) *fakeDetector {
	frames := make([][]detection.Detection, n)
	for i := range frames {
		frames[i] = dets
	}
	return &fakeDetector{frames: frames}
}

func faceAt(x, y, w, h float64) detection.Detection {
	return detection.Detection{X: x, Y: y, W: w, H: h, Confidence: 0.9}
}

func TestFaceTracker_SelectsLargestFaceFirstWins(t *testing.T) {
	// Areas: 0.02, 0.05, 0.05, 0.01 — the first of the two 0.05 faces
	// must win.
	dets := []detection.Detection{
		faceAt(0.1, 0.1, 0.1, 0.2),  // 0.02
		faceAt(0.3, 0.3, 0.25, 0.2), // 0.05, expected target
		faceAt(0.7, 0.7, 0.2, 0.25), // 0.05
		faceAt(0.9, 0.9, 0.1, 0.1),  // 0.01
	}

	tr := NewFaceTracker(DefaultConfig(), repeat(dets, 1))
	res, err := tr.Update(gocv.Mat{}, 0.033)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !res.Tracking {
		t.Fatal("expected tracking=true")
	}
	if res.Target == nil {
		t.Fatal("expected a target")
	}
	if res.Target.XCenter != 0.3 || res.Target.YCenter != 0.3 {
		t.Errorf("target = (%v, %v), want first max-area face at (0.3, 0.3)",
			res.Target.XCenter, res.Target.YCenter)
	}
	if len(res.Faces) != 4 {
		t.Errorf("faces = %d, want all 4 raw detections", len(res.Faces))
	}
}

func TestFaceTracker_NoTarget(t *testing.T) {
	tr := NewFaceTracker(DefaultConfig(), &fakeDetector{})

	res, err := tr.Update(gocv.Mat{}, 0.033)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if res.Tracking {
		t.Error("expected tracking=false with no detections")
	}
	if res.Target != nil {
		t.Error("expected nil target")
	}
	if res.YawCorrectionDeg != 0 || res.PitchCorrectionDeg != 0 {
		t.Errorf("corrections = (%v, %v), want exactly zero when not tracking",
			res.YawCorrectionDeg, res.PitchCorrectionDeg)
	}
	if tr.LostFrames() != 1 {
		t.Errorf("lostFrames = %d, want 1", tr.LostFrames())
	}
}

func TestFaceTracker_OffsetsAndSignConvention(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KpYaw, cfg.KiYaw, cfg.KdYaw = 30, 0, 0
	cfg.KpPitch, cfg.KiPitch, cfg.KdPitch = 20, 0, 0
	cfg.YawLimit, cfg.PitchLimit = 100, 100

	// Target right of center and below center.
	tr := NewFaceTracker(cfg, repeat([]detection.Detection{faceAt(0.7, 0.6, 0.2, 0.2)}, 1))
	res, err := tr.Update(gocv.Mat{}, 0.033)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if math.Abs(res.DX-0.2) > 1e-9 || math.Abs(res.DY-0.1) > 1e-9 {
		t.Errorf("offsets = (%v, %v), want (0.2, 0.1)", res.DX, res.DY)
	}
	// Yaw is negated, pitch is not.
	if math.Abs(res.YawCorrectionDeg-(-6.0)) > 1e-9 {
		t.Errorf("yaw correction = %v, want -6.0", res.YawCorrectionDeg)
	}
	if math.Abs(res.PitchCorrectionDeg-2.0) > 1e-9 {
		t.Errorf("pitch correction = %v, want 2.0", res.PitchCorrectionDeg)
	}
}

func TestFaceTracker_LostThresholdResetsPIDs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KiYaw, cfg.KiPitch = 1.0, 1.0 // make the integral observable
	cfg.LostThreshold = 10

	tr := NewFaceTracker(cfg, nil)

	// Wind up both integrals with a few tracked frames.
	tr.detector = repeat([]detection.Detection{faceAt(0.8, 0.8, 0.2, 0.2)}, 5)
	for i := 0; i < 5; i++ {
		if _, err := tr.Update(gocv.Mat{}, 0.033); err != nil {
			t.Fatal(err)
		}
	}
	if tr.pidYaw.Integral() == 0 || tr.pidPitch.Integral() == 0 {
		t.Fatal("precondition: integrals should be nonzero while tracking")
	}

	// 9 lost frames: state survives.
	tr.detector = &fakeDetector{}
	for i := 0; i < 9; i++ {
		if _, err := tr.Update(gocv.Mat{}, 0.033); err != nil {
			t.Fatal(err)
		}
	}
	if tr.pidYaw.Integral() == 0 {
		t.Error("integral reset too early: 9 lost frames are below the threshold")
	}

	// The 10th lost frame crosses the threshold and resets both axes.
	if _, err := tr.Update(gocv.Mat{}, 0.033); err != nil {
		t.Fatal(err)
	}
	if tr.pidYaw.Integral() != 0 || tr.pidPitch.Integral() != 0 {
		t.Errorf("integrals = (%v, %v), want zero after %d lost frames",
			tr.pidYaw.Integral(), tr.pidPitch.Integral(), cfg.LostThreshold)
	}
}

func TestFaceTracker_LostCounterResetsOnRecovery(t *testing.T) {
	tr := NewFaceTracker(DefaultConfig(), &fakeDetector{
		frames: [][]detection.Detection{
			nil,
			nil,
			{faceAt(0.5, 0.5, 0.2, 0.2)},
			nil,
		},
	})

	for i := 0; i < 2; i++ {
		tr.Update(gocv.Mat{}, 0.033)
	}
	if tr.LostFrames() != 2 {
		t.Fatalf("lostFrames = %d, want 2", tr.LostFrames())
	}

	tr.Update(gocv.Mat{}, 0.033) // target present
	if tr.LostFrames() != 0 {
		t.Errorf("lostFrames = %d, want 0 after recovery", tr.LostFrames())
	}

	tr.Update(gocv.Mat{}, 0.033)
	if tr.LostFrames() != 1 {
		t.Errorf("lostFrames = %d, want 1", tr.LostFrames())
	}
}

func TestFaceTracker_CenteredTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.YawLimit, cfg.PitchLimit = 1000, 1000

	tr := NewFaceTracker(cfg, &fakeDetector{
		frames: [][]detection.Detection{
			{faceAt(0.7, 0.5, 0.2, 0.2)}, // off-center history
			{faceAt(0.5, 0.5, 0.2, 0.2)}, // exactly centered
			{faceAt(0.5, 0.5, 0.2, 0.2)},
		},
	})

	tr.Update(gocv.Mat{}, 0.033)

	// First centered frame: proportional term is zero but the yaw
	// derivative still reacts to the error step.
	res, _ := tr.Update(gocv.Mat{}, 0.033)
	if !res.Tracking {
		t.Fatal("expected tracking=true")
	}
	if res.DX != 0 || res.DY != 0 {
		t.Errorf("offsets = (%v, %v), want (0, 0)", res.DX, res.DY)
	}
	if res.YawCorrectionDeg == 0 {
		t.Error("expected derivative kick on the first centered frame")
	}

	// Second centered frame: correction converges to zero (ki=0).
	res, _ = tr.Update(gocv.Mat{}, 0.033)
	if res.YawCorrectionDeg != 0 {
		t.Errorf("yaw correction = %v, want 0 once the derivative settles", res.YawCorrectionDeg)
	}
}

func TestFaceTracker_DetectorErrorPropagates(t *testing.T) {
	detErr := errors.New("inference backend crashed")
	tr := NewFaceTracker(DefaultConfig(), &fakeDetector{err: detErr})

	if _, err := tr.Update(gocv.Mat{}, 0.033); !errors.Is(err, detErr) {
		t.Errorf("expected detector error to propagate, got: %v", err)
	}
}
