package subghz

// Mode is the driver's model of the radio operating mode. It is owned by
// the mode machine and updated from the transition table on successful
// commands, never from the status byte of an individual response; the
// two can disagree transiently, and Resync exists to realign them.
type Mode uint8

const (
	ModeSleep Mode = iota
	ModeStandbyRC
	ModeStandbyXOSC
	ModeFS
	ModeRX
	ModeTX
)

func (m Mode) String() string {
	switch m {
	case ModeSleep:
		return "sleep"
	case ModeStandbyRC:
		return "standby-rc"
	case ModeStandbyXOSC:
		return "standby-xosc"
	case ModeFS:
		return "fs"
	case ModeRX:
		return "rx"
	case ModeTX:
		return "tx"
	default:
		return "invalid"
	}
}

type modeMask uint8

func maskOf(m Mode) modeMask { return 1 << m }

const (
	maskStandby = modeMask(1<<ModeStandbyRC | 1<<ModeStandbyXOSC)
	maskConfig  = maskStandby | 1<<ModeFS // mode-entry + buffer-read commands
	maskAwake   = modeMask(1<<ModeStandbyRC | 1<<ModeStandbyXOSC | 1<<ModeFS | 1<<ModeRX | 1<<ModeTX)
	maskAll     = maskAwake | 1<<ModeSleep
)

// permittedModes is the command legality table. A zero mask means the
// opcode is never accepted through the guarded path.
func permittedModes(op Opcode) modeMask {
	switch op {
	// Legal everywhere: waking from sleep and mode queries.
	case OpSetStandby, OpGetStatus:
		return maskAll

	// Housekeeping, queries and aborts: any awake mode.
	case OpSetSleep, OpSetFs,
		OpGetIrqStatus, OpClrIrqStatus, OpCfgDioIrq,
		OpGetRxBufferStatus, OpGetPacketStatus, OpGetPacketType,
		OpGetRssiInst, OpGetStats, OpResetStats,
		OpGetError, OpClrError:
		return maskAwake

	// Packet reads happen after completion, including during
	// continuous reception, so RX stays legal.
	case OpReadBuffer, OpReadRegister:
		return maskAwake

	// Configuration: standby only.
	case OpSetPacketType, OpSetModulationParams, OpSetPacketParams,
		OpSetBufferBaseAddr, OpSetRfFrequency, OpCalibrateImage,
		OpSetPaConfig, OpSetTxParams, OpSetTcxoMode, OpSetRegulatorMode,
		OpSetTxRxFallbackMode, OpSetCadParams, OpSetLoRaSymbTimeout,
		OpStopRxTimerOnPreamb, OpWriteRegister:
		return maskStandby

	// Block calibration needs the RC clock.
	case OpCalibrate:
		return maskOf(ModeStandbyRC)

	// Active-mode entry and buffer loads: never while transmitting or
	// receiving; abort via SetStandby first.
	case OpSetTx, OpSetRx, OpSetCad, OpSetRxDutyCycle,
		OpSetTxContinuousWave, OpSetTxContinuousPre,
		OpWriteBuffer:
		return maskConfig

	default:
		return 0
	}
}

// Values carried by commands that steer the machine.
const (
	standbyClkRC   = 0x00
	standbyClkXOSC = 0x01

	fallbackStandbyRC   = 0x20
	fallbackStandbyXOSC = 0x30
	fallbackFS          = 0x40
)

// commandTransition returns the mode a successfully executed command
// moves the radio to, if it is documented to cause a transition.
func commandTransition(op Opcode, payload []byte) (Mode, bool) {
	switch op {
	case OpSetSleep:
		return ModeSleep, true
	case OpSetStandby:
		if len(payload) > 0 && payload[0] == standbyClkXOSC {
			return ModeStandbyXOSC, true
		}
		return ModeStandbyRC, true
	case OpSetFs:
		return ModeFS, true
	case OpSetTx, OpSetTxContinuousWave, OpSetTxContinuousPre:
		return ModeTX, true
	case OpSetRx, OpSetRxDutyCycle, OpSetCad:
		return ModeRX, true
	default:
		return 0, false
	}
}

// modeMachine owns the authoritative mode model and the TX/RX fallback
// target. Initial model: Sleep, which is the power-up assumption and not
// independently verifiable; callers resynchronize rather than trust it.
type modeMachine struct {
	mode     Mode
	fallback Mode
}

func newModeMachine() modeMachine {
	return modeMachine{mode: ModeSleep, fallback: ModeStandbyRC}
}

// guard rejects a command not permitted in the current mode. Checked
// before every bus transaction; a rejection causes no bus traffic.
func (m *modeMachine) guard(op Opcode) error {
	if permittedModes(op)&maskOf(m.mode) == 0 {
		return ErrIllegalTransition
	}
	return nil
}

// apply records the side effects of a successfully executed command.
func (m *modeMachine) apply(op Opcode, payload []byte) {
	if op == OpSetTxRxFallbackMode && len(payload) > 0 {
		switch payload[0] {
		case fallbackStandbyXOSC:
			m.fallback = ModeStandbyXOSC
		case fallbackFS:
			m.fallback = ModeFS
		default:
			m.fallback = ModeStandbyRC
		}
	}
	if next, ok := commandTransition(op, payload); ok {
		m.mode = next
	}
}

// complete records the automatic transition the radio performs when an
// active operation finishes (completion or timeout interrupt).
func (m *modeMachine) complete() {
	if m.mode == ModeTX || m.mode == ModeRX {
		m.mode = m.fallback
	}
}

// adoptChip realigns the model with a decoded status byte.
func (m *modeMachine) adoptChip(c ChipMode) error {
	switch c {
	case ChipModeStandbyRC:
		m.mode = ModeStandbyRC
	case ChipModeStandbyXOSC:
		m.mode = ModeStandbyXOSC
	case ChipModeFS:
		m.mode = ModeFS
	case ChipModeRX:
		m.mode = ModeRX
	case ChipModeTX:
		m.mode = ModeTX
	default:
		return ErrUnknownChipMode
	}
	return nil
}
