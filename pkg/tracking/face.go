// Package tracking turns raw face detections into smooth, bounded head
// corrections using one PID loop per axis.
package tracking

// Face is one detected face in normalized frame coordinates.
// Faces are created fresh each frame and never mutated.
type Face struct {
	XCenter float64 // 0 = left edge, 1 = right edge
	YCenter float64 // 0 = top edge, 1 = bottom edge
	Width   float64
	Height  float64
	Score   float64
}

// Area returns the normalized bounding-box area.
func (f Face) Area() float64 {
	return f.Width * f.Height
}

// Result is the outcome of one tracking update. Immutable after
// construction; consumed by the pose integrator and the push channel.
type Result struct {
	Faces  []Face
	Target *Face // nil when no face was selected this frame

	// Signed offset of the target from frame center, each in [-0.5, 0.5].
	// Positive DX = target right of center, positive DY = below center.
	DX float64
	DY float64

	Tracking bool

	// PID outputs for this frame, in degrees. Exactly zero when not
	// tracking — stale corrections are never carried over.
	YawCorrectionDeg   float64
	PitchCorrectionDeg float64
}
