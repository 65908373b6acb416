// Package detection provides face detection backends for the tracking
// pipeline.
package detection

import "gocv.io/x/gocv"

// Detection represents a detected face.
// Coordinates are normalized to the frame: X and Y are the box center.
type Detection struct {
	X, Y       float64 // center position (0-1)
	W, H       float64 // width and height (0-1)
	Confidence float64 // detection confidence (0-1)
}

// Area returns the normalized area of the bounding box.
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Detector is the interface for face detection backends.
// Implementations own their model resources; Close releases them.
type Detector interface {
	// Detect finds faces in the frame and returns their positions.
	Detect(img gocv.Mat) ([]Detection, error)

	// Close releases resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for YuNet.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}
