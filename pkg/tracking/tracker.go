package tracking

import (
	"gocv.io/x/gocv"

	"github.com/agrobotics/reachy-mini-vision/pkg/control"
	"github.com/agrobotics/reachy-mini-vision/pkg/tracking/detection"
)

// FaceTracker selects a target face each frame and drives one PID per
// head axis. It is owned and driven by the vision loop only; instances
// are not safe for concurrent use.
type FaceTracker struct {
	config   Config
	detector detection.Detector

	pidYaw   *control.PID
	pidPitch *control.PID

	lostFrames int
}

// NewFaceTracker creates a tracker around an already-constructed detector.
// Detector construction failures belong to the caller; a tracker never
// exists without a working backend.
func NewFaceTracker(cfg Config, det detection.Detector) *FaceTracker {
	return &FaceTracker{
		config:   cfg,
		detector: det,
		pidYaw:   control.NewPID(cfg.KpYaw, cfg.KiYaw, cfg.KdYaw, cfg.YawLimit, cfg.IntegralLimit),
		pidPitch: control.NewPID(cfg.KpPitch, cfg.KiPitch, cfg.KdPitch, cfg.PitchLimit, cfg.IntegralLimit),
	}
}

// Update runs detection on one frame and returns the tracking result.
// Detector errors propagate to the caller; the vision loop decides
// whether to log and continue.
func (t *FaceTracker) Update(frame gocv.Mat, dt float64) (Result, error) {
	detections, err := t.detector.Detect(frame)
	if err != nil {
		return Result{}, err
	}

	faces := make([]Face, 0, len(detections))
	for _, d := range detections {
		faces = append(faces, Face{
			XCenter: d.X,
			YCenter: d.Y,
			Width:   d.W,
			Height:  d.H,
			Score:   d.Confidence,
		})
	}

	target := selectTarget(faces)
	if target == nil {
		t.lostFrames++
		if t.lostFrames >= t.config.LostThreshold {
			// Sustained loss: drop the integral so tracking does not
			// resume with a stale bias.
			t.pidYaw.Reset()
			t.pidPitch.Reset()
		}
		return Result{Faces: faces}, nil
	}
	t.lostFrames = 0

	dx := target.XCenter - 0.5
	dy := target.YCenter - 0.5

	// The yaw sign is flipped so a target right of center turns the head
	// right. Pitch is unnegated. This encodes the camera mounting; do not
	// "fix" it from first principles.
	yaw := -t.pidYaw.Update(dx, dt)
	pitch := t.pidPitch.Update(dy, dt)

	return Result{
		Faces:              faces,
		Target:             target,
		DX:                 dx,
		DY:                 dy,
		Tracking:           true,
		YawCorrectionDeg:   yaw,
		PitchCorrectionDeg: pitch,
	}, nil
}

// LostFrames returns the current consecutive lost-frame count.
func (t *FaceTracker) LostFrames() int {
	return t.lostFrames
}

// Close releases the detector resources.
func (t *FaceTracker) Close() error {
	return t.detector.Close()
}

// selectTarget picks the largest face; the first one wins on ties.
// Largest ≈ closest, which is the right subject for a single-target
// desktop robot.
func selectTarget(faces []Face) *Face {
	if len(faces) == 0 {
		return nil
	}

	best := 0
	for i := 1; i < len(faces); i++ {
		if faces[i].Area() > faces[best].Area() {
			best = i
		}
	}
	return &faces[best]
}
