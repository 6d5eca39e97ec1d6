package subghz

// Status is the raw status byte returned as the first byte of every
// command response. Layout: bits [6:4] chip mode, bits [3:1] command
// status. Decoding is pure and total: undefined patterns are observed on
// real hardware and decode to the Unknown values, never to a failure.
type Status uint8

// ChipMode is the operating mode reported in the status byte.
type ChipMode uint8

const (
	ChipModeStandbyRC   ChipMode = 0x2
	ChipModeStandbyXOSC ChipMode = 0x3
	ChipModeFS          ChipMode = 0x4
	ChipModeRX          ChipMode = 0x5
	ChipModeTX          ChipMode = 0x6

	ChipModeUnknown ChipMode = 0xFF
)

// CmdStatus is the command outcome reported in the status byte.
type CmdStatus uint8

const (
	CmdDataAvailable CmdStatus = 0x2
	CmdTimeout       CmdStatus = 0x3
	CmdProcessingErr CmdStatus = 0x4
	CmdExecFailure   CmdStatus = 0x5
	CmdDone          CmdStatus = 0x6

	CmdStatusUnknown CmdStatus = 0xFF
)

// Mode extracts the chip mode; patterns outside the documented set map
// to ChipModeUnknown.
func (s Status) Mode() ChipMode {
	m := ChipMode(s>>4) & 0x7
	switch m {
	case ChipModeStandbyRC, ChipModeStandbyXOSC, ChipModeFS, ChipModeRX, ChipModeTX:
		return m
	default:
		return ChipModeUnknown
	}
}

// Cmd extracts the command status; patterns outside the documented set
// map to CmdStatusUnknown.
func (s Status) Cmd() CmdStatus {
	c := CmdStatus(s>>1) & 0x7
	switch c {
	case CmdDataAvailable, CmdTimeout, CmdProcessingErr, CmdExecFailure, CmdDone:
		return c
	default:
		return CmdStatusUnknown
	}
}

// IsError reports whether the command status is one of the failure
// outcomes.
func (c CmdStatus) IsError() bool {
	return c == CmdTimeout || c == CmdProcessingErr || c == CmdExecFailure
}

func (m ChipMode) String() string {
	switch m {
	case ChipModeStandbyRC:
		return "standby-rc"
	case ChipModeStandbyXOSC:
		return "standby-xosc"
	case ChipModeFS:
		return "fs"
	case ChipModeRX:
		return "rx"
	case ChipModeTX:
		return "tx"
	default:
		return "unknown"
	}
}

func (c CmdStatus) String() string {
	switch c {
	case CmdDataAvailable:
		return "data-available"
	case CmdTimeout:
		return "command-timeout"
	case CmdProcessingErr:
		return "processing-error"
	case CmdExecFailure:
		return "execution-failure"
	case CmdDone:
		return "done"
	default:
		return "unknown"
	}
}
