// Package robot talks to the Reachy Mini daemon: pose integration, the
// fixed-rate control loop, and the HTTP transport.
package robot

// HeadTarget is an absolute head pose in radians.
type HeadTarget struct {
	Roll, Pitch, Yaw float64
}

// TargetController sends a full pose update (head plus antennas) to the
// daemon in one call.
type TargetController interface {
	SetTarget(head HeadTarget, antennas [2]float64) error
}

// SoundPlayer triggers playback of a named sound on the robot.
type SoundPlayer interface {
	PlaySound(name string) error
}

// StatusController queries the daemon state.
type StatusController interface {
	DaemonStatus() (string, error)
}

// Controller is the full daemon surface the control loop needs.
type Controller interface {
	TargetController
	SoundPlayer
	StatusController
}
