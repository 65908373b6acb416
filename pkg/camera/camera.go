// Package camera owns the capture device for the vision loop.
// The device is opened once at startup and only ever touched from the
// vision goroutine.
package camera

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/agrobotics/reachy-mini-vision/internal/log"
)

// Config holds capture settings.
type Config struct {
	Indices        []int // device indices to probe, in order
	Width          int
	Height         int
	FlipHorizontal bool // mirror the frame so movement feels natural
}

// Camera wraps a gocv VideoCapture with the configured preprocessing.
type Camera struct {
	cap    *gocv.VideoCapture
	config Config
	index  int
}

// Open probes the configured device indices and returns the first camera
// that opens. Failing every index is a resource-unavailable error: the
// caller disables the vision task but keeps the rest of the process up.
func Open(cfg Config) (*Camera, error) {
	for _, idx := range cfg.Indices {
		cap, err := gocv.OpenVideoCapture(idx)
		if err != nil {
			continue
		}
		if !cap.IsOpened() {
			cap.Close()
			continue
		}

		if cfg.Width > 0 {
			cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		}
		if cfg.Height > 0 {
			cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
		}

		log.Info("camera opened", "index", idx, "width", cfg.Width, "height", cfg.Height)
		return &Camera{cap: cap, config: cfg, index: idx}, nil
	}

	return nil, fmt.Errorf("could not open camera on any index %v", cfg.Indices)
}

// Read grabs the next frame into dst, applying the mirror flip.
// Returns false on a failed grab; the caller backs off and retries.
func (c *Camera) Read(dst *gocv.Mat) bool {
	if !c.cap.Read(dst) || dst.Empty() {
		return false
	}
	if c.config.FlipHorizontal {
		gocv.Flip(*dst, dst, 1)
	}
	return true
}

// Index returns the device index that was opened.
func (c *Camera) Index() int {
	return c.index
}

// Close releases the capture device.
func (c *Camera) Close() error {
	log.Info("camera released", "index", c.index)
	return c.cap.Close()
}
