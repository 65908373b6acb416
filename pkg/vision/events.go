package vision

import (
	"github.com/agrobotics/reachy-mini-vision/pkg/hands"
	"github.com/agrobotics/reachy-mini-vision/pkg/tracking"
)

// Event is a typed update emitted by the acquisition loop. The loop
// never touches shared state or the network directly; a single consumer
// drains the event channel and fans the updates out.
type Event interface {
	isEvent()
}

// FingerCountEvent carries the total raised-finger count and the
// per-hand detail for one frame.
type FingerCountEvent struct {
	Count int
	Hands []hands.Summary
}

// TrackingEvent carries the face-tracking result for one frame.
type TrackingEvent struct {
	Result tracking.Result
}

func (FingerCountEvent) isEvent() {}
func (TrackingEvent) isEvent()    {}
