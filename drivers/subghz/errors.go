package subghz

import "errors"

// Sentinel errors (TinyGo-safe; no fmt).
var (
	// ErrBusTimeout means the busy line did not clear within the
	// configured bound. Recoverable: re-check the mode, then retry.
	ErrBusTimeout = errors.New("subghz: busy did not clear")

	// ErrBufferOverflow means an offset/length pair exceeds the data
	// buffer capacity. Caller error; never retried.
	ErrBufferOverflow = errors.New("subghz: buffer bounds exceeded")

	// ErrIllegalTransition means the command is not permitted in the
	// current operating mode. Resync before retrying.
	ErrIllegalTransition = errors.New("subghz: command illegal in current mode")

	// ErrPacketTypeMismatch means a parameter struct does not match the
	// configured packet type. Raised before any bus traffic.
	ErrPacketTypeMismatch = errors.New("subghz: params do not match packet type")

	// ErrNoCalibration means no image-calibration band covers the
	// requested frequency.
	ErrNoCalibration = errors.New("subghz: no calibration band for frequency")

	// ErrNotReady is returned by the polling workflow checks while the
	// operation is still in flight.
	ErrNotReady = errors.New("subghz: not ready")

	// ErrTimeout means the radio reported its timeout event, or a
	// blocking wait ran out of its bound.
	ErrTimeout = errors.New("subghz: operation timed out")

	// ErrUnknownChipMode means a resynchronization read returned a chip
	// mode this driver cannot map; the mode model is left untouched.
	ErrUnknownChipMode = errors.New("subghz: unknown chip mode")

	// ErrParamRange means a configuration value is outside its legal range.
	ErrParamRange = errors.New("subghz: parameter out of range")

	// ErrNotConfigured means a workflow was started before the packet
	// type and packet parameters were applied.
	ErrNotConfigured = errors.New("subghz: packet params not configured")
)

// TransportError wraps a fault reported by the underlying byte transport.
// Fatal to the in-flight operation; the caller must reset the link.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "subghz: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// RadioError wraps a failure at the workflow level with the operation
// that produced it, in the manner of os.PathError.
type RadioError struct {
	Op  string
	Err error
}

func (e *RadioError) Error() string { return "subghz: " + e.Op + ": " + e.Err.Error() }
func (e *RadioError) Unwrap() error { return e.Err }
