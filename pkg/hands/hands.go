// Package hands provides hand landmark detection and raised-finger
// counting for the dashboard's finger-count signal.
package hands

import "gocv.io/x/gocv"

// Landmark is one of the 21 hand keypoints in normalized coordinates.
type Landmark struct {
	X, Y, Z float64
}

// Hand is one detected hand with its landmarks and handedness.
type Hand struct {
	Handedness string // "Left" or "Right"
	Score      float64
	Landmarks  []Landmark // 21 points in MediaPipe topology order
}

// Summary is the per-hand detail pushed to dashboard subscribers.
type Summary struct {
	Handedness string `json:"handedness"`
	Fingers    int    `json:"fingers"`
}

// Detector is the interface for hand landmark backends.
type Detector interface {
	// Detect finds hands in the frame.
	Detect(img gocv.Mat) ([]Hand, error)

	// Close releases resources.
	Close() error
}

// Landmark indices of each finger tip and its PIP joint, thumb first.
var (
	fingerTips = [5]int{4, 8, 12, 16, 20}
	fingerPIPs = [5]int{2, 6, 10, 14, 18}
)

// CountRaisedFingers counts how many fingers are extended.
// Landmarks must be the full 21-point set; anything shorter counts as
// zero raised fingers.
func CountRaisedFingers(lm []Landmark, handedness string) int {
	if len(lm) < 21 {
		return 0
	}

	count := 0
	if thumbRaised(lm, handedness) {
		count++
	}
	for i := 1; i < 5; i++ {
		if fingerRaised(lm, i) {
			count++
		}
	}
	return count
}

// thumbRaised compares the thumb tip against its joint horizontally;
// the direction depends on which hand it is (the frame is mirrored).
func thumbRaised(lm []Landmark, handedness string) bool {
	tip := lm[fingerTips[0]]
	pip := lm[fingerPIPs[0]]

	if handedness == "Right" {
		return tip.X < pip.X
	}
	return tip.X > pip.X
}

// fingerRaised reports whether the finger tip sits above its PIP joint.
// Image coordinates grow downward, so raised means a smaller Y.
func fingerRaised(lm []Landmark, i int) bool {
	return lm[fingerTips[i]].Y < lm[fingerPIPs[i]].Y
}
