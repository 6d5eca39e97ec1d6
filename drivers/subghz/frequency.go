package subghz

// Crystal reference for all frequency-derived encodings.
const xtalHz = 32_000_000

// freqCode converts Hz to the radio's fixed-point frequency word:
// code = hz * 2^25 / fxtal.
func freqCode(hz uint32) uint32 {
	return uint32((uint64(hz) << 25) / xtalHz)
}

// SetRfFrequency programs the RF synthesizer to hz. This is the raw
// command; SetFrequency additionally runs image calibration.
func (d *Device) SetRfFrequency(hz uint32) error {
	code := freqCode(hz)
	b := d.pb[:4]
	b[0] = byte(code >> 24)
	b[1] = byte(code >> 16)
	b[2] = byte(code >> 8)
	b[3] = byte(code)
	_, err := d.exec(Command{Op: OpSetRfFrequency, Payload: b})
	return err
}

// SetFrequency tunes to hz: when a calibration band covers the
// frequency the image calibration runs first, then the synthesizer is
// programmed. Frequencies outside every band skip the calibration step.
func (d *Device) SetFrequency(hz uint32) error {
	if _, _, ok := imageCalibration(hz); ok {
		if err := d.CalibrateImage(hz); err != nil {
			return &RadioError{Op: "frequency", Err: err}
		}
	}
	if err := d.SetRfFrequency(hz); err != nil {
		return &RadioError{Op: "frequency", Err: err}
	}
	return nil
}
