package robot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agrobotics/reachy-mini-vision/internal/httpc"
)

// Client implements Controller against the daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Controller = (*Client)(nil)

// NewClient creates an HTTP-based daemon client. addr is host:port.
// The short timeout keeps a wedged daemon from stalling the control
// loop for long.
func NewClient(addr string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		http:    httpc.NewClient(2 * time.Second),
	}
}

// SetTarget sends a full pose update in one call. The head pose is
// clamped to physical limits before it goes on the wire.
func (c *Client) SetTarget(head HeadTarget, antennas [2]float64) error {
	head = head.Clamp()
	payload := map[string]interface{}{
		"target_head_pose": map[string]float64{
			"roll":  head.Roll,
			"pitch": head.Pitch,
			"yaw":   head.Yaw,
		},
		"target_antennas": []float64{antennas[0], antennas[1]},
		"duration":        0.1,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal move payload: %w", err)
	}

	resp, err := c.http.Post(
		c.baseURL+"/api/move/set_target",
		"application/json",
		strings.NewReader(string(data)),
	)
	if err != nil {
		return fmt.Errorf("move request failed: %w", err)
	}
	resp.Body.Close()

	return nil
}

// PlaySound asks the daemon to play a named sound file.
func (c *Client) PlaySound(name string) error {
	payload := fmt.Sprintf(`{"name": %q}`, name)
	resp, err := c.http.Post(
		c.baseURL+"/api/sound/play",
		"application/json",
		strings.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("sound request failed: %w", err)
	}
	resp.Body.Close()

	return nil
}

// DaemonStatus returns the daemon state string.
func (c *Client) DaemonStatus() (string, error) {
	resp, err := c.http.Get(c.baseURL + "/api/daemon/status")
	if err != nil {
		return "", fmt.Errorf("daemon status request failed: %w", err)
	}
	defer resp.Body.Close()

	var status struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("failed to decode daemon status: %w", err)
	}

	return status.State, nil
}
