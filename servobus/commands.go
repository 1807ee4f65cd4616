package servobus

import (
	"fmt"
	"time"

	"github.com/CK6170/lewanbus/codec"
)

// Command bytes from the LewanSoul command table (spec §4.4).
const (
	cmdMoveTimeWrite     = 1
	cmdMoveTimeRead      = 2
	cmdMoveTimeWaitWrite = 7
	cmdMoveTimeWaitRead  = 8
	cmdMoveStart         = 11
	cmdMoveStop          = 12
	cmdIDWrite           = 13
	cmdAngleOffsetAdjust = 17
	cmdAngleOffsetWrite  = 18
	cmdAngleOffsetRead   = 19
	cmdAngleLimitWrite   = 20
	cmdAngleLimitRead    = 21
	cmdVinLimitWrite     = 22
	cmdVinLimitRead      = 23
	cmdTempMaxLimitWrite = 24
	cmdTempMaxLimitRead  = 25
	cmdTempRead          = 26
	cmdVinRead           = 27
	cmdPosRead           = 28
	cmdModeWrite         = 29
	cmdModeRead          = 30
	cmdSetPowered        = 31
	cmdIsPowered         = 32
	cmdLedCtrlWrite      = 33
	cmdLedCtrlRead       = 34
	cmdLedErrorWrite     = 35
	cmdLedErrorRead      = 36
)

// Mode is a tagged union of the two ways a servo can be driven: Servo
// (positioning) or Motor (continuous rotation at a signed speed). It is
// modeled as a sealed interface rather than a (kind string, optional int)
// pair so illegal states — a speed attached to Servo mode — are
// unrepresentable.
type Mode interface {
	isMode()
}

// ServoMode drives the actuator to hold/seek a commanded position.
type ServoMode struct{}

func (ServoMode) isMode() {}

// MotorMode drives the actuator at a continuous signed speed (wire units,
// two's-complement 16-bit).
type MotorMode struct {
	Speed int16
}

func (MotorMode) isMode() {}

// LedErrorMask selects which fault conditions light the status LED.
type LedErrorMask struct {
	OverTemperature bool
	OverVoltage     bool
	Stalled         bool
}

func (m LedErrorMask) raw() uint8 {
	var b uint8
	if m.OverTemperature {
		b |= 1 << 0
	}
	if m.OverVoltage {
		b |= 1 << 1
	}
	if m.Stalled {
		b |= 1 << 2
	}
	return b
}

func ledErrorMaskFromRaw(b uint8) LedErrorMask {
	return LedErrorMask{
		OverTemperature: b&(1<<0) != 0,
		OverVoltage:     b&(1<<1) != 0,
		Stalled:         b&(1<<2) != 0,
	}
}

func checkRawPos(raw uint16) error {
	if raw > 1000 {
		return fmt.Errorf("%w: raw position %d exceeds 1000", ErrOutOfRange, raw)
	}
	return nil
}

// MoveTimeWrite commands id to move to angleDeg over the given duration,
// starting immediately.
func (b *Bus) MoveTimeWrite(id uint8, angleDeg float64, duration time.Duration) error {
	raw := codec.AngleToRaw(angleDeg)
	if err := checkRawPos(raw); err != nil {
		return err
	}
	payload := codec.PackU16LE(nil, raw)
	payload = codec.PackU16LE(payload, codec.MsToRaw(duration.Seconds()))
	return b.transport.Send(BuildFrame(id, cmdMoveTimeWrite, payload))
}

// MoveTimeRead returns the last commanded angle and duration for id.
func (b *Bus) MoveTimeRead(id uint8) (angleDeg float64, duration time.Duration, err error) {
	frame, err := b.transport.Query(id, cmdMoveTimeRead, nil, 4)
	if err != nil {
		return 0, 0, err
	}
	raw := codec.UnpackU16LE(frame.Payload[0:2])
	ms := codec.UnpackU16LE(frame.Payload[2:4])
	return codec.RawToAngle(raw), time.Duration(codec.RawToSeconds(ms) * float64(time.Second)), nil
}

// MoveTimeWaitWrite stages a move to angleDeg over duration that executes
// only once MoveStart is issued.
func (b *Bus) MoveTimeWaitWrite(id uint8, angleDeg float64, duration time.Duration) error {
	raw := codec.AngleToRaw(angleDeg)
	if err := checkRawPos(raw); err != nil {
		return err
	}
	payload := codec.PackU16LE(nil, raw)
	payload = codec.PackU16LE(payload, codec.MsToRaw(duration.Seconds()))
	return b.transport.Send(BuildFrame(id, cmdMoveTimeWaitWrite, payload))
}

// MoveTimeWaitRead returns the staged angle and duration set by
// MoveTimeWaitWrite.
func (b *Bus) MoveTimeWaitRead(id uint8) (angleDeg float64, duration time.Duration, err error) {
	frame, err := b.transport.Query(id, cmdMoveTimeWaitRead, nil, 4)
	if err != nil {
		return 0, 0, err
	}
	raw := codec.UnpackU16LE(frame.Payload[0:2])
	ms := codec.UnpackU16LE(frame.Payload[2:4])
	return codec.RawToAngle(raw), time.Duration(codec.RawToSeconds(ms) * float64(time.Second)), nil
}

// MoveStart executes a move previously staged with MoveTimeWaitWrite.
func (b *Bus) MoveStart(id uint8) error {
	return b.transport.Send(BuildFrame(id, cmdMoveStart, nil))
}

// MoveStop halts whatever move is in progress.
func (b *Bus) MoveStop(id uint8) error {
	return b.transport.Send(BuildFrame(id, cmdMoveStop, nil))
}

// IDWrite reassigns id's servo address to newID.
func (b *Bus) IDWrite(id, newID uint8) error {
	return b.transport.Send(BuildFrame(id, cmdIDWrite, []byte{newID}))
}

// AngleOffsetAdjust nudges id's zero position by offsetDeg (volatile, not
// persisted until AngleOffsetWrite).
func (b *Bus) AngleOffsetAdjust(id uint8, offsetDeg float64) error {
	raw := codec.SignedAngleOffsetToRaw(offsetDeg)
	return b.transport.Send(BuildFrame(id, cmdAngleOffsetAdjust, []byte{byte(raw)}))
}

// AngleOffsetWrite persists the offset last set by AngleOffsetAdjust.
func (b *Bus) AngleOffsetWrite(id uint8) error {
	return b.transport.Send(BuildFrame(id, cmdAngleOffsetWrite, nil))
}

// AngleOffsetRead returns id's persisted zero-position offset, in degrees.
func (b *Bus) AngleOffsetRead(id uint8) (float64, error) {
	frame, err := b.transport.Query(id, cmdAngleOffsetRead, nil, 1)
	if err != nil {
		return 0, err
	}
	return codec.RawToSignedAngleOffset(frame.Payload[0]), nil
}

// AngleLimitWrite sets id's allowed travel range, in degrees.
func (b *Bus) AngleLimitWrite(id uint8, minDeg, maxDeg float64) error {
	minRaw := codec.AngleToRaw(minDeg)
	maxRaw := codec.AngleToRaw(maxDeg)
	if err := checkRawPos(minRaw); err != nil {
		return err
	}
	if err := checkRawPos(maxRaw); err != nil {
		return err
	}
	payload := codec.PackU16LE(nil, minRaw)
	payload = codec.PackU16LE(payload, maxRaw)
	return b.transport.Send(BuildFrame(id, cmdAngleLimitWrite, payload))
}

// AngleLimitRead returns id's allowed travel range, in degrees.
func (b *Bus) AngleLimitRead(id uint8) (minDeg, maxDeg float64, err error) {
	frame, err := b.transport.Query(id, cmdAngleLimitRead, nil, 4)
	if err != nil {
		return 0, 0, err
	}
	minRaw := codec.UnpackU16LE(frame.Payload[0:2])
	maxRaw := codec.UnpackU16LE(frame.Payload[2:4])
	return codec.RawToAngle(minRaw), codec.RawToAngle(maxRaw), nil
}

// VinLimitWrite sets id's allowed input-voltage range, in volts.
func (b *Bus) VinLimitWrite(id uint8, minVolts, maxVolts float64) error {
	payload := codec.PackU16LE(nil, codec.VoltageToRaw(minVolts))
	payload = codec.PackU16LE(payload, codec.VoltageToRaw(maxVolts))
	return b.transport.Send(BuildFrame(id, cmdVinLimitWrite, payload))
}

// VinLimitRead returns id's allowed input-voltage range, in volts.
func (b *Bus) VinLimitRead(id uint8) (minVolts, maxVolts float64, err error) {
	frame, err := b.transport.Query(id, cmdVinLimitRead, nil, 4)
	if err != nil {
		return 0, 0, err
	}
	minRaw := codec.UnpackU16LE(frame.Payload[0:2])
	maxRaw := codec.UnpackU16LE(frame.Payload[2:4])
	return codec.RawToVoltage(minRaw), codec.RawToVoltage(maxRaw), nil
}

// TempMaxLimitWrite sets id's over-temperature shutdown threshold.
func (b *Bus) TempMaxLimitWrite(id uint8, value float64, unit codec.TemperatureUnit) error {
	return b.transport.Send(BuildFrame(id, cmdTempMaxLimitWrite, []byte{codec.TemperatureEncode(value, unit)}))
}

// TempMaxLimitRead returns id's over-temperature shutdown threshold.
func (b *Bus) TempMaxLimitRead(id uint8, unit codec.TemperatureUnit) (float64, error) {
	frame, err := b.transport.Query(id, cmdTempMaxLimitRead, nil, 1)
	if err != nil {
		return 0, err
	}
	return codec.TemperatureDecode(frame.Payload[0], unit), nil
}

// TempRead returns id's current temperature.
func (b *Bus) TempRead(id uint8, unit codec.TemperatureUnit) (float64, error) {
	frame, err := b.transport.Query(id, cmdTempRead, nil, 1)
	if err != nil {
		return 0, err
	}
	return codec.TemperatureDecode(frame.Payload[0], unit), nil
}

// VinRead returns id's current input voltage, in volts.
func (b *Bus) VinRead(id uint8) (float64, error) {
	frame, err := b.transport.Query(id, cmdVinRead, nil, 2)
	if err != nil {
		return 0, err
	}
	return codec.RawToVoltage(codec.UnpackU16LE(frame.Payload)), nil
}

// PosRead returns id's current angle, in degrees. The raw reading is passed
// through unclamped: a disabled servo can legitimately report a raw value
// outside [0, 1000], which this surfaces as an angle outside [0°, 240°]
// rather than erroring.
func (b *Bus) PosRead(id uint8) (float64, error) {
	raw, err := b.posReadRaw(id)
	if err != nil {
		return 0, err
	}
	return codec.RawToAngle(raw), nil
}

func (b *Bus) posReadRaw(id uint8) (uint16, error) {
	frame, err := b.transport.Query(id, cmdPosRead, nil, 2)
	if err != nil {
		return 0, err
	}
	raw := codec.UnpackU16LE(frame.Payload)
	b.lastSample[id] = sample{pos: codec.RawToAngle(raw), at: b.clock.Now()}
	return raw, nil
}

// ModeWrite sets id's drive mode.
func (b *Bus) ModeWrite(id uint8, mode Mode) error {
	var payload []byte
	switch m := mode.(type) {
	case ServoMode:
		payload = []byte{0, 0, 0, 0}
	case MotorMode:
		payload = append([]byte{1, 0}, codec.PackI16LE(nil, m.Speed)...)
	default:
		return fmt.Errorf("servobus: unknown Mode %T", mode)
	}
	return b.transport.Send(BuildFrame(id, cmdModeWrite, payload))
}

// ModeRead returns id's current drive mode.
func (b *Bus) ModeRead(id uint8) (Mode, error) {
	frame, err := b.transport.Query(id, cmdModeRead, nil, 4)
	if err != nil {
		return nil, err
	}
	if frame.Payload[0] == 0 {
		return ServoMode{}, nil
	}
	return MotorMode{Speed: codec.UnpackI16LE(frame.Payload[2:4])}, nil
}

// SetPowered enables or disables id's torque output.
func (b *Bus) SetPowered(id uint8, on bool) error {
	var flag uint8
	if on {
		flag = 1
	}
	return b.transport.Send(BuildFrame(id, cmdSetPowered, []byte{flag}))
}

// IsPowered returns whether id's torque output is enabled.
func (b *Bus) IsPowered(id uint8) (bool, error) {
	frame, err := b.transport.Query(id, cmdIsPowered, nil, 1)
	if err != nil {
		return false, err
	}
	return frame.Payload[0] != 0, nil
}

// LedCtrlWrite turns id's status LED on or off. The wire convention is
// inverted (0 means on); this method exposes the natural boolean and
// inverts it at the boundary so callers never have to think about it.
func (b *Bus) LedCtrlWrite(id uint8, on bool) error {
	var inverted uint8
	if !on {
		inverted = 1
	}
	return b.transport.Send(BuildFrame(id, cmdLedCtrlWrite, []byte{inverted}))
}

// LedCtrlRead returns whether id's status LED is on.
func (b *Bus) LedCtrlRead(id uint8) (bool, error) {
	frame, err := b.transport.Query(id, cmdLedCtrlRead, nil, 1)
	if err != nil {
		return false, err
	}
	return frame.Payload[0] == 0, nil
}

// LedErrorWrite sets which fault conditions light id's status LED.
func (b *Bus) LedErrorWrite(id uint8, mask LedErrorMask) error {
	return b.transport.Send(BuildFrame(id, cmdLedErrorWrite, []byte{mask.raw()}))
}

// LedErrorRead returns which fault conditions light id's status LED.
func (b *Bus) LedErrorRead(id uint8) (LedErrorMask, error) {
	frame, err := b.transport.Query(id, cmdLedErrorRead, nil, 1)
	if err != nil {
		return LedErrorMask{}, err
	}
	return ledErrorMaskFromRaw(frame.Payload[0]), nil
}

// MoveSpeedWrite reads id's current position — which also updates the Bus's
// per-id position record — and then commands a move to targetDeg over
// durationDeciseconds, in units of 100ms. The position it reads is not used
// to compute the move.
//
// The wire fixture for this command (move_speed_write(2, 12.4, 10)) encodes
// the position as raw 51 and the duration as raw 1000: 12.4 degrees only
// reaches 51 under truncation (see codec.AngleToRawTruncate), and 10 only
// reaches raw 1000 if the third argument is counted in tenths of a second
// rather than plain milliseconds. Neither unit is pinned down by anything else in
// the retrieved sources, so both choices are fixture-driven rather than
// independently confirmed.
func (b *Bus) MoveSpeedWrite(id uint8, targetDeg float64, durationDeciseconds uint16) error {
	if _, err := b.PosRead(id); err != nil {
		return err
	}
	raw := codec.AngleToRawTruncate(targetDeg)
	if err := checkRawPos(raw); err != nil {
		return err
	}
	payload := codec.PackU16LE(nil, raw)
	payload = codec.PackU16LE(payload, durationDeciseconds*100)
	return b.transport.Send(BuildFrame(id, cmdMoveTimeWrite, payload))
}
