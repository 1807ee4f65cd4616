package codec

import "testing"

func TestAngleToRaw(t *testing.T) {
	cases := []struct {
		deg  float64
		want uint16
	}{
		{0, 0},
		{90, 375},
		{180, 750},
		{2, 8},
		{12.4, 52},
	}
	for _, c := range cases {
		if got := AngleToRaw(c.deg); got != c.want {
			t.Errorf("AngleToRaw(%v) = %d, want %d", c.deg, got, c.want)
		}
	}
}

func TestAngleToRawTruncate(t *testing.T) {
	cases := []struct {
		deg  float64
		want uint16
	}{
		{0, 0},
		{90, 375},
		{12.4, 51}, // truncates 51.666..., unlike AngleToRaw's round-to-nearest (52)
	}
	for _, c := range cases {
		if got := AngleToRawTruncate(c.deg); got != c.want {
			t.Errorf("AngleToRawTruncate(%v) = %d, want %d", c.deg, got, c.want)
		}
	}
}

func TestRawToAngle(t *testing.T) {
	cases := []struct {
		raw  uint16
		want float64
	}{
		{0, 0},
		{375, 90},
		{750, 180},
		{10, 2.4},
		{258, 61.92},
		{772, 185.28},
	}
	for _, c := range cases {
		if got := RawToAngle(c.raw); got != c.want {
			t.Errorf("RawToAngle(%d) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestAngleRawRoundTrip(t *testing.T) {
	for raw := uint16(0); raw <= 1000; raw++ {
		got := AngleToRaw(RawToAngle(raw))
		if got != raw {
			t.Fatalf("round-trip failed for raw=%d: got %d", raw, got)
		}
	}
}

func TestSignedAngleOffsetRoundTrip(t *testing.T) {
	// -118 raw (0x8A unsigned) -> -28.32 degrees, per the original fixture.
	got := RawToSignedAngleOffset(0x8A)
	if got != -28.32 {
		t.Fatalf("RawToSignedAngleOffset(0x8A) = %v, want -28.32", got)
	}
	raw := SignedAngleOffsetToRaw(-28.32)
	if byte(uint8(raw)) != 0x8A {
		t.Fatalf("SignedAngleOffsetToRaw(-28.32) = %d (0x%02X), want 0x8A", raw, uint8(raw))
	}
}

func TestSignedAngleOffsetClamp(t *testing.T) {
	if got := SignedAngleOffsetToRaw(1000); got != 125 {
		t.Fatalf("SignedAngleOffsetToRaw(1000) = %d, want 125", got)
	}
	if got := SignedAngleOffsetToRaw(-1000); got != -125 {
		t.Fatalf("SignedAngleOffsetToRaw(-1000) = %d, want -125", got)
	}
}

func TestVoltageRoundTrip(t *testing.T) {
	raw := VoltageToRaw(7.4)
	if raw != 7400 {
		t.Fatalf("VoltageToRaw(7.4) = %d, want 7400", raw)
	}
	if got := RawToVoltage(raw); got != 7.4 {
		t.Fatalf("RawToVoltage(7400) = %v, want 7.4", got)
	}
}

func TestTemperatureEncodeDecode(t *testing.T) {
	// 100C -> 212F
	if got := TemperatureDecode(100, Fahrenheit); got != 212 {
		t.Fatalf("TemperatureDecode(100, F) = %v, want 212", got)
	}
	for c := uint8(0); c <= 125; c++ {
		if got := TemperatureEncode(float64(TemperatureDecode(c, Celsius)), Celsius); got != c {
			t.Fatalf("round trip failed for c=%d: got %d", c, got)
		}
	}
	// Fahrenheit input round-trips through Celsius encoding.
	if got := TemperatureEncode(212, Fahrenheit); got != 100 {
		t.Fatalf("TemperatureEncode(212, F) = %d, want 100", got)
	}
}

func TestMsRoundTrip(t *testing.T) {
	raw := MsToRaw(3)
	if raw != 3000 {
		t.Fatalf("MsToRaw(3) = %d, want 3000", raw)
	}
	if got := RawToSeconds(raw); got != 3 {
		t.Fatalf("RawToSeconds(3000) = %v, want 3", got)
	}
}

func TestPackUnpackU16LE(t *testing.T) {
	buf := PackU16LE(nil, 3000)
	if len(buf) != 2 || buf[0] != 184 || buf[1] != 11 {
		t.Fatalf("PackU16LE(3000) = %v, want [184 11]", buf)
	}
	if got := UnpackU16LE(buf); got != 3000 {
		t.Fatalf("UnpackU16LE(%v) = %d, want 3000", buf, got)
	}
}

func TestPackUnpackI16LE(t *testing.T) {
	buf := PackI16LE(nil, 770)
	if len(buf) != 2 || buf[0] != 2 || buf[1] != 3 {
		t.Fatalf("PackI16LE(770) = %v, want [2 3]", buf)
	}
	if got := UnpackI16LE(buf); got != 770 {
		t.Fatalf("UnpackI16LE(%v) = %d, want 770", buf, got)
	}
	neg := PackI16LE(nil, -10)
	if got := UnpackI16LE(neg); got != -10 {
		t.Fatalf("UnpackI16LE(PackI16LE(-10)) = %d, want -10", got)
	}
}
