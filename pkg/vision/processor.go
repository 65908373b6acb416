// Package vision runs the frame acquisition loop: camera reads, hand and
// face detection, and typed update events for the rest of the process.
package vision

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"github.com/agrobotics/reachy-mini-vision/internal/log"
	"github.com/agrobotics/reachy-mini-vision/pkg/debug"
	"github.com/agrobotics/reachy-mini-vision/pkg/hands"
	"github.com/agrobotics/reachy-mini-vision/pkg/tracking"
)

// readBackoff is how long to wait after a failed frame grab before the
// next attempt.
const readBackoff = 100 * time.Millisecond

// FrameSource produces frames for the loop. *camera.Camera satisfies it.
type FrameSource interface {
	Read(dst *gocv.Mat) bool
	Close() error
}

// Processor is the vision task. It exclusively owns the camera and both
// detectors; nothing else may touch them while the loop runs.
type Processor struct {
	source  FrameSource
	hands   hands.Detector
	tracker *tracking.FaceTracker

	targetFPS int

	events chan Event
	done   chan struct{}
}

// NewProcessor wires a vision task around already-opened resources.
// The event channel is buffered so a briefly slow consumer does not
// stall the capture cadence.
func NewProcessor(source FrameSource, handDet hands.Detector, tracker *tracking.FaceTracker, targetFPS int) *Processor {
	return &Processor{
		source:    source,
		hands:     handDet,
		tracker:   tracker,
		targetFPS: targetFPS,
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
	}
}

// Events returns the update stream. The channel is closed when the loop
// exits, so consumers can simply range over it.
func (p *Processor) Events() <-chan Event {
	return p.events
}

// Done is closed once the loop has exited and resources are released.
// Shutdown joins on this with a bounded timeout.
func (p *Processor) Done() <-chan struct{} {
	return p.done
}

// Run executes the acquisition loop until ctx is cancelled. An in-flight
// iteration always completes; cancellation is only observed at the top
// of the loop.
func (p *Processor) Run(ctx context.Context) {
	defer close(p.done)
	defer p.release()
	defer close(p.events)

	frame := gocv.NewMat()
	defer frame.Close()

	budget := time.Second / time.Duration(p.targetFPS)
	log.Info("vision loop started", "target_fps", p.targetFPS, "frame_budget", budget)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info("vision loop stopping")
			return
		default:
		}

		start := time.Now()
		if !p.source.Read(&frame) {
			log.Warn("frame grab failed")
			time.Sleep(readBackoff)
			continue
		}

		dt := start.Sub(last).Seconds()
		last = start

		p.processFrame(frame, dt)

		// Sleep whatever is left of the frame budget. When processing
		// overruns, start the next frame immediately; late frames are
		// dropped, never queued.
		if remaining := budget - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// processFrame runs both detectors on one frame. Detector failures are
// logged and skipped here so a bad frame never kills the loop.
// Finger count is always delivered before tracking.
func (p *Processor) processFrame(frame gocv.Mat, dt float64) {
	detected, err := p.hands.Detect(frame)
	if err != nil {
		log.Error("hand detection failed", "err", err)
	} else {
		total := 0
		summaries := make([]hands.Summary, 0, len(detected))
		for _, h := range detected {
			fingers := hands.CountRaisedFingers(h.Landmarks, h.Handedness)
			total += fingers
			summaries = append(summaries, hands.Summary{
				Handedness: h.Handedness,
				Fingers:    fingers,
			})
		}
		p.emit(FingerCountEvent{Count: total, Hands: summaries})
	}

	result, err := p.tracker.Update(frame, dt)
	if err != nil {
		log.Error("face tracking failed", "err", err)
		return
	}
	debug.TrackLog("frame: tracking=%v faces=%d dx=%.3f dy=%.3f\n",
		result.Tracking, len(result.Faces), result.DX, result.DY)
	p.emit(TrackingEvent{Result: result})
}

// emit queues an event without ever blocking the capture loop. If the
// consumer is behind, the stalest update is the right one to lose.
func (p *Processor) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
		debug.TrackLog("event channel full, dropping update\n")
	}
}

// release frees the loop's resources: camera first, then detectors.
func (p *Processor) release() {
	if err := p.source.Close(); err != nil {
		log.Error("camera close failed", "err", err)
	}
	if err := p.hands.Close(); err != nil {
		log.Error("hand detector close failed", "err", err)
	}
	if err := p.tracker.Close(); err != nil {
		log.Error("face detector close failed", "err", err)
	}
	log.Info("vision loop stopped")
}
