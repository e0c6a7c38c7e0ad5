package delin

import (
	"fmt"
	"os"
	"time"
)

// debugMode gates stderr diagnostics for the whole package. Off by default;
// the library stays silent in production.
var debugMode bool

// SetDebugMode enables or disables stderr diagnostics: per-gesture stats,
// metadata fallbacks, and caught sampling errors.
func SetDebugMode(v bool) {
	debugMode = v
}

// debugf prints one diagnostic line to stderr when debug mode is on.
func debugf(format string, args ...any) {
	if !debugMode {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[delin] "+format+"\n", args...)
}

// gestureStats accumulates per-gesture counters, logged on finalize.
type gestureStats struct {
	tool       ToolType
	start      time.Time
	samples    int // stored samples
	rejected   int // samples dropped by the min-step filter
	emitted    int // points in the finalized payload
	sampleErrs int // caught intensity sampling failures
}

// log prints the gesture summary to stderr in debug mode.
func (g gestureStats) log(clock Clock) {
	if !debugMode {
		return
	}
	dur := time.Duration(0)
	if clock != nil && !g.start.IsZero() {
		dur = clock.Now().Sub(g.start)
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[delin] %s gesture: %v | samples: %d | rejected: %d | emitted: %d | sample errors: %d\n",
		g.tool, dur, g.samples, g.rejected, g.emitted, g.sampleErrs)
}
