// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Tracking controls whether very verbose per-frame tracking logs are shown.
// Use --debug-tracking to enable these.
var Tracking bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// TrackLog prints a message only if tracking debug mode is enabled
func TrackLog(format string, args ...interface{}) {
	if Tracking {
		fmt.Printf(format, args...)
	}
}
