package subghz

// CalBlock selects calibration blocks for the Calibrate command.
type CalBlock uint8

const (
	CalRC64K    CalBlock = 1 << 0
	CalRC13M    CalBlock = 1 << 1
	CalPLL      CalBlock = 1 << 2
	CalADCPulse CalBlock = 1 << 3
	CalADCBulkN CalBlock = 1 << 4
	CalADCBulkP CalBlock = 1 << 5
	CalImage    CalBlock = 1 << 6

	CalAll CalBlock = 0x7F
)

// calBand is one image-calibration entry: a frequency range and the two
// band-edge bytes the CalibrateImage command takes. The table is static
// and read-only.
type calBand struct {
	loHz, hiHz uint32
	f1, f2     byte
}

var imageCalBands = [...]calBand{
	{430_000_000, 440_000_000, 0x6B, 0x6F},
	{470_000_000, 510_000_000, 0x75, 0x81},
	{779_000_000, 787_000_000, 0xC1, 0xC5},
	{863_000_000, 870_000_000, 0xD7, 0xDB},
	{902_000_000, 928_000_000, 0xE1, 0xE9},
}

// imageCalibration looks up the calibration bytes for hz. ok is false
// when no band covers the frequency.
func imageCalibration(hz uint32) (f1, f2 byte, ok bool) {
	for _, b := range imageCalBands {
		if hz >= b.loHz && hz <= b.hiHz {
			return b.f1, b.f2, true
		}
	}
	return 0, 0, false
}

// CalibrateImage runs the image calibration for the band covering hz.
func (d *Device) CalibrateImage(hz uint32) error {
	f1, f2, ok := imageCalibration(hz)
	if !ok {
		return ErrNoCalibration
	}
	d.pb[0] = f1
	d.pb[1] = f2
	_, err := d.exec(Command{Op: OpCalibrateImage, Payload: d.pb[:2]})
	return err
}

// Calibrate runs the selected block calibrations. Only legal from
// RC standby, since the blocks are trimmed against the RC clock.
func (d *Device) Calibrate(blocks CalBlock) error {
	d.pb[0] = byte(blocks & CalAll)
	_, err := d.exec(Command{Op: OpCalibrate, Payload: d.pb[:1]})
	return err
}
