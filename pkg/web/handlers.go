package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/agrobotics/reachy-mini-vision/internal/log"
	"github.com/agrobotics/reachy-mini-vision/pkg/hub"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleFingerCount returns the latest raised-finger count.
func (s *Server) handleFingerCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"finger_count": s.state.FingerCount()})
}

// AntennasRequest toggles the antenna animation.
type AntennasRequest struct {
	Enabled bool `json:"enabled"`
}

// handleAntennas enables or disables the antenna sway. The change takes
// effect on the next control tick.
func (s *Server) handleAntennas(c *fiber.Ctx) error {
	var req AntennasRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "invalid request body",
		})
	}
	s.state.SetAntennasEnabled(req.Enabled)
	log.Info("antennas toggled", "enabled", req.Enabled)
	return c.JSON(fiber.Map{"antennas_enabled": req.Enabled})
}

// handlePlaySound arms the one-shot sound flag for the control loop.
func (s *Server) handlePlaySound(c *fiber.Ctx) error {
	s.state.RequestSound()
	return c.JSON(fiber.Map{"status": "requested"})
}

// RobotControlRequest is a manual nudge from the dashboard.
type RobotControlRequest struct {
	Direction string `json:"direction"`
}

var validDirections = map[string]bool{
	"up":    true,
	"down":  true,
	"left":  true,
	"right": true,
}

// handleRobotControl validates a manual direction command. The command
// is acknowledged and logged; tracking keeps pose authority, so manual
// nudges do not move the head while the tracker is active.
func (s *Server) handleRobotControl(c *fiber.Ctx) error {
	var req RobotControlRequest
	if err := c.BodyParser(&req); err != nil || !validDirections[req.Direction] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "direction must be one of: up, down, left, right",
		})
	}
	log.Info("manual control", "direction", req.Direction)
	return c.JSON(fiber.Map{
		"status":    "ok",
		"direction": req.Direction,
	})
}

// handleWS serves one dashboard connection: register with the hub, send
// an initial snapshot, then pump until disconnect.
func (s *Server) handleWS(c *websocket.Conn) {
	client := hub.NewClient(s.hub, c)
	snapshot := s.state.Hands()
	client.SendJSON(fiber.Map{
		"type":           "finger_count",
		"finger_count":   s.state.FingerCount(),
		"hands_detected": len(snapshot),
		"hands":          snapshot,
	})
	client.Run()
}
