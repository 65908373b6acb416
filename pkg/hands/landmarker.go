package hands

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/agrobotics/reachy-mini-vision/pkg/debug"
)

// Model input size for the hand landmark network.
const (
	inputSize     = 224
	numLandmarks  = 21
	presenceIndex = numLandmarks * 3 // flat output: 63 coords, presence, handedness
	handedIndex   = presenceIndex + 1
)

// Config holds landmarker configuration.
type Config struct {
	ModelPath   string  // Path to ONNX model
	ScoreThresh float64 // Minimum hand presence score
	MaxHands    int     // Cap on reported hands
}

// DefaultConfig returns production defaults for the hand landmarker.
func DefaultConfig() Config {
	return Config{
		ModelPath:   "models/hand_landmark.onnx",
		ScoreThresh: 0.5,
		MaxHands:    2,
	}
}

// Landmarker runs the hand landmark ONNX model through GoCV's DNN module.
type Landmarker struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex // Protects inference
}

// NewLandmarker loads the model. It fails fast on a missing or broken
// model file, like the face detector does.
func NewLandmarker(cfg Config) (*Landmarker, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("hand model not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load hand model: %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Landmarker{
		net:    net,
		config: cfg,
	}, nil
}

// Detect finds hands in the frame.
// The landmark model evaluates one hand per pass; frames with two clearly
// separated hands report only the dominant one, which is acceptable for
// the finger-count signal.
func (l *Landmarker) Detect(img gocv.Mat) ([]Hand, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	blob := gocv.BlobFromImage(img, 1.0/255.0, image.Pt(inputSize, inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	l.net.SetInput(blob, "")
	out := l.net.Forward("")
	defer out.Close()

	flat, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read landmark output: %w", err)
	}
	if len(flat) <= handedIndex {
		return nil, fmt.Errorf("unexpected landmark output size %d", len(flat))
	}

	score := float64(flat[presenceIndex])
	if score < l.config.ScoreThresh {
		return nil, nil
	}

	// Landmarks come out in model input pixel space; normalize to 0-1.
	landmarks := make([]Landmark, numLandmarks)
	for i := 0; i < numLandmarks; i++ {
		landmarks[i] = Landmark{
			X: float64(flat[i*3]) / inputSize,
			Y: float64(flat[i*3+1]) / inputSize,
			Z: float64(flat[i*3+2]) / inputSize,
		}
	}

	handedness := "Left"
	if float64(flat[handedIndex]) > 0.5 {
		handedness = "Right"
	}

	debug.TrackLog("hand detected (%s, score %.2f)\n", handedness, score)

	hands := []Hand{{
		Handedness: handedness,
		Score:      score,
		Landmarks:  landmarks,
	}}
	if l.config.MaxHands > 0 && len(hands) > l.config.MaxHands {
		hands = hands[:l.config.MaxHands]
	}
	return hands, nil
}

// Close releases the network resources.
func (l *Landmarker) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.net.Close()
}
