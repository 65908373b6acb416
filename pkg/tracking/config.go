package tracking

// Config holds the tunable parameters for the face-tracking PID loops.
type Config struct {
	// Yaw axis gains. The yaw output limit is the head yaw amplitude in
	// degrees, so a single correction can never out-run the head range.
	KpYaw, KiYaw, KdYaw float64
	YawLimit            float64

	// Pitch axis gains. The pitch output limit is the head pitch maximum.
	KpPitch, KiPitch, KdPitch float64
	PitchLimit                float64

	// IntegralLimit bounds each axis' accumulated integral.
	IntegralLimit float64

	// LostThreshold is how many consecutive frames without a target are
	// tolerated before the PID state is reset.
	LostThreshold int
}

// DefaultConfig returns gains tuned for a 30fps capture loop.
func DefaultConfig() Config {
	return Config{
		KpYaw:    30.0,
		KiYaw:    0.0,
		KdYaw:    5.0,
		YawLimit: 15.0,

		KpPitch:    20.0,
		KiPitch:    0.0,
		KdPitch:    3.0,
		PitchLimit: 20.0,

		IntegralLimit: 0.5,
		LostThreshold: 10,
	}
}
