// vision-tracking is the face tracking daemon for Reachy Mini.
//
// It runs three tasks: a vision loop (camera, face and hand detection,
// PID corrections), a fixed-rate control loop (pose integration, daemon
// commands), and a web server (control API plus websocket dashboard).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrobotics/reachy-mini-vision/internal/config"
	"github.com/agrobotics/reachy-mini-vision/internal/log"
	"github.com/agrobotics/reachy-mini-vision/pkg/camera"
	"github.com/agrobotics/reachy-mini-vision/pkg/debug"
	"github.com/agrobotics/reachy-mini-vision/pkg/hands"
	"github.com/agrobotics/reachy-mini-vision/pkg/robot"
	"github.com/agrobotics/reachy-mini-vision/pkg/state"
	"github.com/agrobotics/reachy-mini-vision/pkg/tracking"
	"github.com/agrobotics/reachy-mini-vision/pkg/tracking/detection"
	"github.com/agrobotics/reachy-mini-vision/pkg/vision"
	"github.com/agrobotics/reachy-mini-vision/pkg/web"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to YAML configuration")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	debugTracking := flag.Bool("debug-tracking", false, "Enable per-frame tracking logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Log.Level
	if *debugFlag {
		level = "debug"
	}
	log.Init(level)
	debug.Enabled = *debugFlag
	debug.Tracking = *debugTracking

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := state.New()

	// Robot side: HTTP client, pose integrator, fixed-rate control loop.
	robotClient := robot.NewClient(cfg.Robot.Addr)
	if status, err := robotClient.DaemonStatus(); err != nil {
		log.Warn("robot daemon unreachable at startup", "addr", cfg.Robot.Addr, "err", err)
	} else {
		log.Info("robot daemon", "addr", cfg.Robot.Addr, "state", status)
	}

	pose := robot.NewPoseIntegrator(robot.PoseConfig{
		YawAmplitudeDeg:     cfg.Robot.Head.YawAmplitude,
		PitchMinDeg:         cfg.Robot.Head.PitchMin,
		PitchMaxDeg:         cfg.Robot.Head.PitchMax,
		AntennaAmplitudeDeg: cfg.Robot.Antenna.Amplitude,
		AntennaFrequencyHz:  cfg.Robot.Antenna.Frequency,
	})
	loop := robot.NewControlLoop(robotClient, st, pose, cfg.Robot.ControlTick.Std(), cfg.Robot.Sound)
	go loop.Run()

	// Web side: control API and dashboard websocket.
	server := web.NewServer(fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port), st)
	server.StartAsync(ctx)

	// Vision side. A missing camera or model disables vision; the control
	// loop and the API stay up so the robot remains reachable.
	proc, procErr := setupVision(cfg)
	if procErr != nil {
		log.Error("vision disabled", "err", procErr)
	} else {
		go proc.Run(ctx)
		go dispatch(proc, st, server)
	}

	<-ctx.Done()
	log.Info("shutting down")

	if proc != nil {
		select {
		case <-proc.Done():
		case <-time.After(2 * time.Second):
			log.Warn("vision loop did not stop in time")
		}
	}
	loop.Stop()
	if err := server.Shutdown(); err != nil {
		log.Error("web server shutdown failed", "err", err)
	}
	log.Info("goodbye")
}

// setupVision opens the camera and both detectors and assembles the
// acquisition loop. Any failure tears down what was already opened.
func setupVision(cfg config.Config) (*vision.Processor, error) {
	cam, err := camera.Open(camera.Config{
		Indices:        cfg.Camera.Indices,
		Width:          cfg.Camera.Width,
		Height:         cfg.Camera.Height,
		FlipHorizontal: cfg.Camera.FlipHorizontal,
	})
	if err != nil {
		return nil, fmt.Errorf("open camera: %w", err)
	}

	faceDet, err := detection.NewYuNet(detection.Config{
		ModelPath:        cfg.Tracking.FaceModelPath,
		ConfidenceThresh: cfg.Tracking.MinDetectionConfidence,
		InputWidth:       cfg.Camera.Width,
		InputHeight:      cfg.Camera.Height,
	})
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("load face detector: %w", err)
	}

	handDet, err := hands.NewLandmarker(hands.Config{
		ModelPath:   cfg.Tracking.HandModelPath,
		ScoreThresh: cfg.Tracking.MinDetectionConfidence,
		MaxHands:    cfg.Tracking.MaxHands,
	})
	if err != nil {
		faceDet.Close()
		cam.Close()
		return nil, fmt.Errorf("load hand landmarker: %w", err)
	}

	tracker := tracking.NewFaceTracker(tracking.Config{
		KpYaw:    cfg.Tracking.KpYaw,
		KiYaw:    cfg.Tracking.KiYaw,
		KdYaw:    cfg.Tracking.KdYaw,
		YawLimit: cfg.Robot.Head.YawAmplitude,

		KpPitch:    cfg.Tracking.KpPitch,
		KiPitch:    cfg.Tracking.KiPitch,
		KdPitch:    cfg.Tracking.KdPitch,
		PitchLimit: cfg.Robot.Head.PitchMax,

		IntegralLimit: cfg.Tracking.IntegralLimit,
		LostThreshold: cfg.Tracking.LostThreshold,
	}, faceDet)

	log.Info("tracking configured",
		"camera_index", cam.Index(),
		"kp_yaw", cfg.Tracking.KpYaw, "kd_yaw", cfg.Tracking.KdYaw,
		"kp_pitch", cfg.Tracking.KpPitch, "kd_pitch", cfg.Tracking.KdPitch,
		"lost_threshold", cfg.Tracking.LostThreshold,
		"target_fps", cfg.Camera.TargetFPS)

	return vision.NewProcessor(cam, handDet, tracker, cfg.Camera.TargetFPS), nil
}

// dispatch is the single consumer of vision events. It updates the
// shared state first, then broadcasts, so HTTP reads never lag the
// websocket feed.
func dispatch(proc *vision.Processor, st *state.AppState, server *web.Server) {
	for ev := range proc.Events() {
		switch e := ev.(type) {
		case vision.FingerCountEvent:
			st.SetFingerCount(e.Count)
			st.SetHands(e.Hands)
			server.PublishFingerCount(e.Count, e.Hands)
		case vision.TrackingEvent:
			res := e.Result
			st.SetTracking(&res)
			server.PublishTracking(res)
		}
	}
}
