package subghz

import (
	"time"

	"subghz-go/x/mathx"
)

// Timeout is a radio hardware timer value: a 24-bit tick count with a
// 15.625 µs tick. Zero disables the timer; TimeoutContinuous on SetRx
// selects continuous reception.
type Timeout uint32

const (
	TimeoutDisabled   Timeout = 0x000000
	TimeoutContinuous Timeout = 0xFFFFFF

	timeoutTickNs = 15625 // 15.625 µs
	timeoutMax            = 0xFFFFFE
)

// NewTimeout converts a duration to ticks, clamping to the representable
// range; zero or negative durations disable the timer. Sub-tick
// durations round up to one tick so a requested bound never vanishes.
func NewTimeout(d time.Duration) Timeout {
	if d <= 0 {
		return TimeoutDisabled
	}
	ticks := mathx.CeilDiv(uint64(d.Nanoseconds()), timeoutTickNs)
	return Timeout(mathx.Clamp(ticks, 1, timeoutMax))
}

// Duration converts ticks back to a duration. TimeoutContinuous has no
// duration meaning and reports zero, as does TimeoutDisabled.
func (t Timeout) Duration() time.Duration {
	if t == TimeoutDisabled || t == TimeoutContinuous {
		return 0
	}
	return time.Duration(uint64(t) * timeoutTickNs)
}

// put24 stores the low 24 bits big-endian.
func put24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
