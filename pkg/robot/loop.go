package robot

import (
	"math"
	"time"

	"github.com/agrobotics/reachy-mini-vision/internal/log"
	"github.com/agrobotics/reachy-mini-vision/pkg/state"
)

// Dead-zone thresholds. Skip sending if the pose hasn't changed enough;
// cuts network traffic heavily when the head is idle.
const (
	DeadZoneHeadRad    = 0.005 // ~0.3 degrees
	DeadZoneAntennaRad = 0.009 // ~0.5 degrees
)

// ControlLoop drives the robot at a fixed rate. All movement flows
// through here: it reads the shared state, integrates the pose, and
// sends at most one daemon call per tick.
type ControlLoop struct {
	robot Controller
	state *state.AppState
	pose  *PoseIntegrator

	rate      time.Duration
	soundName string

	stop chan struct{}
	done chan struct{}

	// Dead-zone filtering
	lastHead     HeadTarget
	lastAntennas [2]float64
	sentOnce     bool

	// Diagnostics
	tickCount     uint64
	skippedTicks  uint64
	errorCount    uint64
	lastErrorTime time.Time
}

// NewControlLoop creates a control loop running at the given rate.
// Typical rate is 20ms (50Hz) for smooth motion.
func NewControlLoop(robot Controller, st *state.AppState, pose *PoseIntegrator, rate time.Duration, soundName string) *ControlLoop {
	return &ControlLoop{
		robot:     robot,
		state:     st,
		pose:      pose,
		rate:      rate,
		soundName: soundName,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run starts the control loop. Blocks until Stop is called.
func (l *ControlLoop) Run() {
	defer close(l.done)

	ticker := time.NewTicker(l.rate)
	defer ticker.Stop()

	log.Info("control loop started", "rate", l.rate)
	for {
		select {
		case <-l.stop:
			log.Info("control loop stopped",
				"ticks", l.tickCount, "skipped", l.skippedTicks, "errors", l.errorCount)
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

// Stop halts the control loop and waits for the current tick to finish.
func (l *ControlLoop) Stop() {
	close(l.stop)
	<-l.done
}

// tick executes one control cycle: integrate pose, fire any pending
// sound, and send the batched target to the daemon.
func (l *ControlLoop) tick() {
	l.tickCount++

	yawDeg, pitchDeg := l.pose.HeadPose(l.state.TrackingSnapshot())
	left, right := l.pose.AntennaPositions(l.pose.Elapsed(), l.state.AntennasEnabled())

	if l.state.ConsumeSoundRequest() {
		if err := l.robot.PlaySound(l.soundName); err != nil {
			log.Error("sound playback failed", "sound", l.soundName, "err", err)
		} else {
			log.Info("sound played", "sound", l.soundName)
		}
	}

	head := HeadTarget{
		Pitch: pitchDeg * math.Pi / 180,
		Yaw:   yawDeg * math.Pi / 180,
	}.Clamp()
	antennas := [2]float64{left, right}

	// Dead-zone filtering: skip the daemon call when nothing moved.
	if l.sentOnce {
		headDiff := math.Max(math.Max(
			math.Abs(head.Roll-l.lastHead.Roll),
			math.Abs(head.Pitch-l.lastHead.Pitch)),
			math.Abs(head.Yaw-l.lastHead.Yaw))
		antennaDiff := math.Max(
			math.Abs(antennas[0]-l.lastAntennas[0]),
			math.Abs(antennas[1]-l.lastAntennas[1]))
		if headDiff < DeadZoneHeadRad && antennaDiff < DeadZoneAntennaRad {
			l.skippedTicks++
			return
		}
	}

	if err := l.robot.SetTarget(head, antennas); err != nil {
		// Log errors, but don't spam - max once per 5 seconds.
		l.errorCount++
		if l.lastErrorTime.IsZero() || time.Since(l.lastErrorTime) > 5*time.Second {
			log.Error("set target failed", "err", err, "total_errors", l.errorCount)
			l.lastErrorTime = time.Now()
		}
		return
	}

	l.lastHead = head
	l.lastAntennas = antennas
	l.sentOnce = true
}
