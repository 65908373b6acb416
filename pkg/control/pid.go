// Package control provides the feedback-control primitive used by the
// face tracker to turn frame offsets into head corrections.
package control

// minDT floors non-positive time steps so the derivative term cannot blow up.
const minDT = 1e-3

// PID is a single-axis PID controller with symmetric clamping on both the
// accumulated integral and the output.
//
// Each instance is owned by exactly one signal and driven from one
// goroutine; it does no internal locking.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	OutputLimit   float64 // output clamped to ±OutputLimit
	IntegralLimit float64 // integral clamped to ±IntegralLimit

	integral  float64
	prevError float64
}

// NewPID creates a controller with the given gains and clamp limits.
func NewPID(kp, ki, kd, outputLimit, integralLimit float64) *PID {
	return &PID{
		Kp:            kp,
		Ki:            ki,
		Kd:            kd,
		OutputLimit:   outputLimit,
		IntegralLimit: integralLimit,
	}
}

// Update advances the controller by one step and returns the correction.
// The previous error is updated unconditionally, even when the output
// saturates.
func (c *PID) Update(err, dt float64) float64 {
	if dt <= 0 {
		dt = minDT
	}

	c.integral = clamp(c.integral+err*dt, -c.IntegralLimit, c.IntegralLimit)
	derivative := (err - c.prevError) / dt
	c.prevError = err

	out := c.Kp*err + c.Ki*c.integral + c.Kd*derivative
	return clamp(out, -c.OutputLimit, c.OutputLimit)
}

// Reset zeroes the integral and previous error. Called by the owning
// tracker on sustained target loss, not on every missed frame.
func (c *PID) Reset() {
	c.integral = 0
	c.prevError = 0
}

// Integral returns the accumulated integral term.
func (c *PID) Integral() float64 {
	return c.integral
}

// clamp limits a value to a range
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
