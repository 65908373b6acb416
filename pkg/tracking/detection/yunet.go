package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/agrobotics/reachy-mini-vision/pkg/debug"
)

// YuNet uses OpenCV's FaceDetectorYN for face detection.
type YuNet struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a face detector backed by GoCV's FaceDetectorYN.
// It fails fast if the model file cannot be loaded so a broken install
// never degrades into silently empty detections.
func NewYuNet(cfg Config) (*YuNet, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("face model not found: %s", cfg.ModelPath)
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",                                        // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight), // Initial input size, updated per frame
		float32(cfg.ConfidenceThresh),             // Score threshold
		0.3,                                       // NMS threshold
		5000,                                      // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNet{
		detector: detector,
		config:   cfg,
	}, nil
}

// Detect finds faces in the frame.
func (d *YuNet) Detect(img gocv.Mat) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	// YuNet output format (15 columns per row):
	// 0-3: x, y, w, h (bounding box in pixels)
	// 4-13: 5 facial landmarks (x,y pairs)
	// 14: face score
	var detections []Detection
	for r := 0; r < faces.Rows(); r++ {
		x := float64(faces.GetFloatAt(r, 0))
		y := float64(faces.GetFloatAt(r, 1))
		w := float64(faces.GetFloatAt(r, 2))
		h := float64(faces.GetFloatAt(r, 3))
		score := float64(faces.GetFloatAt(r, 14))

		detections = append(detections, Detection{
			X:          (x + w/2) / imgW,
			Y:          (y + h/2) / imgH,
			W:          w / imgW,
			H:          h / imgH,
			Confidence: score,
		})
	}

	if len(detections) > 0 {
		debug.TrackLog("YuNet found %d face(s)\n", len(detections))
	}

	return detections, nil
}

// Close releases the detector resources.
func (d *YuNet) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
