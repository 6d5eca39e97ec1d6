package subghz

import "subghz-go/x/mathx"

// RampTime is the PA ramp-up time for SetTxParams.
type RampTime uint8

const (
	Ramp10us   RampTime = 0x00
	Ramp20us   RampTime = 0x01
	Ramp40us   RampTime = 0x02
	Ramp80us   RampTime = 0x03
	Ramp200us  RampTime = 0x04
	Ramp800us  RampTime = 0x05
	Ramp1700us RampTime = 0x06
	Ramp3400us RampTime = 0x07
)

// SetTxParams sets the transmit power (dBm, two's complement on the
// wire) and the PA ramp time.
func (d *Device) SetTxParams(powerDbm int8, ramp RampTime) error {
	if ramp > Ramp3400us || !mathx.Between(powerDbm, -17, 22) {
		return ErrParamRange
	}
	d.pb[0] = byte(powerDbm)
	d.pb[1] = byte(ramp)
	_, err := d.exec(Command{Op: OpSetTxParams, Payload: d.pb[:2]})
	return err
}

// PaSel selects which power amplifier SetPaConfig targets.
type PaSel uint8

const (
	PaSelHP PaSel = 0x00 // high-power PA
	PaSelLP PaSel = 0x01 // low-power PA
)

// PaConfig shapes the power-amplifier configuration.
type PaConfig struct {
	// PaDutyCycle trims the PA conduction angle.
	PaDutyCycle uint8
	// HpMax sizes the high-power PA; meaningful for PaSelHP only.
	HpMax uint8
	// Pa selects the amplifier.
	Pa PaSel
}

// SetPaConfig applies the PA configuration. The trailing lookup-table
// byte is fixed by the command reference.
func (d *Device) SetPaConfig(p PaConfig) error {
	if p.Pa > PaSelLP {
		return ErrParamRange
	}
	b := d.pb[:4]
	b[0] = p.PaDutyCycle
	b[1] = p.HpMax
	b[2] = byte(p.Pa)
	b[3] = 0x01
	_, err := d.exec(Command{Op: OpSetPaConfig, Payload: b})
	return err
}

// TcxoTrim is the TCXO supply voltage selection.
type TcxoTrim uint8

const (
	Tcxo1V6 TcxoTrim = 0x00
	Tcxo1V7 TcxoTrim = 0x01
	Tcxo1V8 TcxoTrim = 0x02
	Tcxo2V2 TcxoTrim = 0x03
	Tcxo2V4 TcxoTrim = 0x04
	Tcxo2V7 TcxoTrim = 0x05
	Tcxo3V0 TcxoTrim = 0x06
	Tcxo3V3 TcxoTrim = 0x07
)

// SetTcxoMode powers the oscillator from the given trim and allows it
// the given startup time before commands proceed.
func (d *Device) SetTcxoMode(trim TcxoTrim, startup Timeout) error {
	if trim > Tcxo3V3 {
		return ErrParamRange
	}
	b := d.pb[:4]
	b[0] = byte(trim)
	put24(b[1:], uint32(startup))
	_, err := d.exec(Command{Op: OpSetTcxoMode, Payload: b})
	return err
}

// RegMode selects the radio's internal supply regulator.
type RegMode uint8

const (
	RegLDO  RegMode = 0x00
	RegSMPS RegMode = 0x01
)

// SetRegulatorMode selects LDO-only or SMPS+LDO regulation.
func (d *Device) SetRegulatorMode(m RegMode) error {
	if m > RegSMPS {
		return ErrParamRange
	}
	d.pb[0] = byte(m)
	_, err := d.exec(Command{Op: OpSetRegulatorMode, Payload: d.pb[:1]})
	return err
}

// FallbackMode is the mode the radio drops to when a TX/RX operation
// completes.
type FallbackMode uint8

const (
	FallbackStandbyRC   FallbackMode = fallbackStandbyRC
	FallbackStandbyXOSC FallbackMode = fallbackStandbyXOSC
	FallbackFS          FallbackMode = fallbackFS
)

// SetTxRxFallbackMode sets the post-completion mode. The mode model
// tracks it and applies it when a workflow consumes a completion event.
func (d *Device) SetTxRxFallbackMode(m FallbackMode) error {
	switch m {
	case FallbackStandbyRC, FallbackStandbyXOSC, FallbackFS:
	default:
		return ErrParamRange
	}
	d.pb[0] = byte(m)
	_, err := d.exec(Command{Op: OpSetTxRxFallbackMode, Payload: d.pb[:1]})
	return err
}

// CadSymbols is the number of symbols a channel-activity detection
// listens for.
type CadSymbols uint8

const (
	Cad1Symb  CadSymbols = 0x00
	Cad2Symb  CadSymbols = 0x01
	Cad4Symb  CadSymbols = 0x02
	Cad8Symb  CadSymbols = 0x03
	Cad16Symb CadSymbols = 0x04
)

// CadExit selects what the radio does when detection finishes.
type CadExit uint8

const (
	// CadExitStandby falls back after CadDone.
	CadExitStandby CadExit = 0x00
	// CadExitRx stays in RX to receive when activity was detected.
	CadExitRx CadExit = 0x01
)

// CadParams shapes channel-activity detection.
type CadParams struct {
	Symbols CadSymbols
	DetPeak uint8
	DetMin  uint8
	Exit    CadExit
	// Timeout bounds the RX that follows a detection in CadExitRx.
	Timeout Timeout
}

// SetCadParams applies detection parameters; required before SetCad.
func (d *Device) SetCadParams(p CadParams) error {
	if p.Symbols > Cad16Symb || p.Exit > CadExitRx {
		return ErrParamRange
	}
	b := d.pb[:7]
	b[0] = byte(p.Symbols)
	b[1] = p.DetPeak
	b[2] = p.DetMin
	b[3] = byte(p.Exit)
	put24(b[4:], uint32(p.Timeout))
	if _, err := d.exec(Command{Op: OpSetCadParams, Payload: b}); err != nil {
		return err
	}
	d.cadRxExit = p.Exit == CadExitRx
	return nil
}

// SetRxDutyCycle cycles the radio between rx listening windows and
// sleep, repeating until a packet arrives or the caller aborts.
func (d *Device) SetRxDutyCycle(rx, sleep Timeout) error {
	b := d.pb[:6]
	put24(b[0:], uint32(rx))
	put24(b[3:], uint32(sleep))
	if _, err := d.exec(Command{Op: OpSetRxDutyCycle, Payload: b}); err != nil {
		return err
	}
	d.rxContinuous = false
	return nil
}

// SetLoRaSymbTimeout requires n valid LoRa symbols before reception
// locks on; zero validates on the first symbol.
func (d *Device) SetLoRaSymbTimeout(n uint8) error {
	d.pb[0] = n
	_, err := d.exec(Command{Op: OpSetLoRaSymbTimeout, Payload: d.pb[:1]})
	return err
}

// StopRxTimerOnPreamble stops the RX timeout timer on preamble
// detection instead of header/sync detection.
func (d *Device) StopRxTimerOnPreamble(stop bool) error {
	d.pb[0] = boolByte(stop)
	_, err := d.exec(Command{Op: OpStopRxTimerOnPreamb, Payload: d.pb[:1]})
	return err
}

// SetTxContinuousWave transmits an unmodulated carrier until aborted;
// a test mode.
func (d *Device) SetTxContinuousWave() error {
	_, err := d.exec(Command{Op: OpSetTxContinuousWave})
	return err
}

// SetTxContinuousPreamble transmits preamble symbols until aborted; a
// test mode.
func (d *Device) SetTxContinuousPreamble() error {
	_, err := d.exec(Command{Op: OpSetTxContinuousPre})
	return err
}
