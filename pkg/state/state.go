// Package state holds the mutable application state shared between the
// vision dispatcher, the control loop, and the HTTP handlers.
package state

import (
	"sync"

	"github.com/agrobotics/reachy-mini-vision/pkg/hands"
	"github.com/agrobotics/reachy-mini-vision/pkg/tracking"
)

// AppState is the single shared store. Every accessor takes the one
// mutex; no caller ever holds it across an external call.
type AppState struct {
	mu sync.Mutex

	fingerCount     int
	hands           []hands.Summary
	antennasEnabled bool
	soundRequested  bool
	tracking        *tracking.Result
}

// New returns an AppState with antennas enabled, matching power-on
// behavior.
func New() *AppState {
	return &AppState{antennasEnabled: true}
}

// SetFingerCount stores the latest total raised-finger count.
func (s *AppState) SetFingerCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerCount = n
}

// FingerCount returns the latest total raised-finger count.
func (s *AppState) FingerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerCount
}

// SetHands stores the latest per-hand detail.
func (s *AppState) SetHands(h []hands.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hands = h
}

// Hands returns the latest per-hand detail.
func (s *AppState) Hands() []hands.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hands
}

// SetAntennasEnabled flips the antenna animation on or off.
func (s *AppState) SetAntennasEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.antennasEnabled = enabled
}

// AntennasEnabled reports whether the antenna animation is on.
func (s *AppState) AntennasEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.antennasEnabled
}

// RequestSound arms the one-shot sound flag. The next control tick
// consumes it.
func (s *AppState) RequestSound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.soundRequested = true
}

// ConsumeSoundRequest atomically reads and clears the sound flag, so a
// single request plays exactly once no matter how many ticks race it.
func (s *AppState) ConsumeSoundRequest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	requested := s.soundRequested
	s.soundRequested = false
	return requested
}

// SetTracking stores the latest face-tracking result.
func (s *AppState) SetTracking(r *tracking.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracking = r
}

// TrackingSnapshot returns the latest face-tracking result, or nil when
// no frame has been processed yet.
func (s *AppState) TrackingSnapshot() *tracking.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracking
}
