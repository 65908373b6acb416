// Package web exposes the control API and the realtime dashboard feed.
package web

import (
	"context"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/agrobotics/reachy-mini-vision/internal/log"
	"github.com/agrobotics/reachy-mini-vision/pkg/hands"
	"github.com/agrobotics/reachy-mini-vision/pkg/hub"
	"github.com/agrobotics/reachy-mini-vision/pkg/state"
	"github.com/agrobotics/reachy-mini-vision/pkg/tracking"
)

// Server is the HTTP and websocket front of the process.
type Server struct {
	app   *fiber.App
	addr  string
	state *state.AppState
	hub   *hub.Hub
}

// NewServer builds the fiber app and wires all routes.
func NewServer(addr string, st *state.AppState) *Server {
	s := &Server{
		addr:  addr,
		state: st,
		hub:   hub.New("dashboard"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "reachy-mini-vision",
		DisableStartupMessage: true,
	})

	// CORS for the local dashboard
	app.Use(cors.New())

	app.Get("/health", s.handleHealth)
	app.Get("/finger_count", s.handleFingerCount)
	app.Post("/antennas", s.handleAntennas)
	app.Post("/play_sound", s.handlePlaySound)
	app.Post("/robot_control", s.handleRobotControl)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleWS))

	s.app = app
	return s
}

// Start runs the hub and blocks serving HTTP. ctx cancellation stops
// the hub; Shutdown stops the listener.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)
	log.Info("web server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			log.Error("web server error", "err", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// ClientCount returns the number of live dashboard connections.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// round3 trims broadcast floats to three decimals; the dashboard does
// not need more and it keeps the frames small.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// PublishFingerCount broadcasts a finger-count update to all clients.
func (s *Server) PublishFingerCount(count int, detected []hands.Summary) {
	s.hub.BroadcastJSON(fiber.Map{
		"type":           "finger_count",
		"finger_count":   count,
		"hands_detected": len(detected),
		"hands":          detected,
	})
}

// PublishTracking broadcasts a face-tracking update to all clients.
func (s *Server) PublishTracking(res tracking.Result) {
	s.hub.BroadcastJSON(fiber.Map{
		"type":           "tracking",
		"tracking":       res.Tracking,
		"faces_detected": len(res.Faces),
		"dx":             round3(res.DX),
		"dy":             round3(res.DY),
	})
}
