package probe

import (
	"context"
	"math"
)

// DefaultDurationSeconds is used when the probe fails or returns an
// unusable value.
const DefaultDurationSeconds = 30

// Resolve returns the probed duration when it is finite and strictly
// positive, and DefaultDurationSeconds otherwise. Probe failure never
// propagates to the caller.
func Resolve(ctx context.Context, p Prober, videoRef string) float64 {
	sec, err := p.DurationSeconds(ctx, videoRef)
	if err != nil {
		return DefaultDurationSeconds
	}
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec <= 0 {
		return DefaultDurationSeconds
	}
	return sec
}
