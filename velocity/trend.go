// Package velocity provides a multi-sample, noise-robust alternative to
// servobus.Bus.VelocityRead: instead of differentiating exactly two timed
// position reads, Trend fits a line through N samples with gonum/stat and
// reports its slope.
//
// This generalizes spec.md's two-point estimator (kept, unchanged, as
// servobus.Bus.VelocityRead) rather than replacing it — the teacher's
// posture of delegating numerically sensitive math to gonum (matrix.go's
// SVD pseudo-inverse) extended to this domain's velocity estimation.
package velocity

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Sample is one timed position observation, in degrees.
type Sample struct {
	At    time.Time
	Angle float64
}

// Trend fits a line through samples and returns its slope in degrees per
// second: the least-squares angular velocity across the whole window.
//
// Timestamps are converted to seconds relative to the first sample so the
// regression is well-conditioned regardless of the wall-clock epoch.
func Trend(samples []Sample) (degPerSec float64, err error) {
	if len(samples) < 2 {
		return 0, fmt.Errorf("velocity: need at least 2 samples, got %d", len(samples))
	}
	t0 := samples[0].At
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.At.Sub(t0).Seconds()
		ys[i] = s.Angle
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope, nil
}
