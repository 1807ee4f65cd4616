package velocity

import (
	"math"
	"testing"
	"time"
)

func TestTrendConstantVelocity(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	samples := []Sample{
		{At: base, Angle: 0},
		{At: base.Add(1 * time.Second), Angle: 10},
		{At: base.Add(2 * time.Second), Angle: 20},
		{At: base.Add(3 * time.Second), Angle: 30},
	}
	got, err := Trend(samples)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("Trend = %v, want 10", got)
	}
}

func TestTrendNoisyButLinear(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	samples := []Sample{
		{At: base, Angle: 0.1},
		{At: base.Add(1 * time.Second), Angle: 4.9},
		{At: base.Add(2 * time.Second), Angle: 10.2},
		{At: base.Add(3 * time.Second), Angle: 14.8},
	}
	got, err := Trend(samples)
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if math.Abs(got-5) > 0.3 {
		t.Fatalf("Trend = %v, want ~5", got)
	}
}

func TestTrendRequiresTwoSamples(t *testing.T) {
	if _, err := Trend(nil); err == nil {
		t.Fatal("Trend(nil) should error")
	}
	if _, err := Trend([]Sample{{At: time.Now(), Angle: 1}}); err == nil {
		t.Fatal("Trend with one sample should error")
	}
}
