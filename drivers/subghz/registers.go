package subghz

// Register is a 16-bit radio register address, reachable through the
// ReadRegister/WriteRegister commands (big-endian address on the wire).
type Register uint16

const (
	RegGenSync    Register = 0x06C0 // FSK sync word, 8 bytes, MSB first
	RegLoRaSyncHi Register = 0x0740 // LoRa sync word, high byte
	RegLoRaSyncLo Register = 0x0741
	RegPaOcp      Register = 0x08E7 // PA over-current protection trim
	RegHseInTrim  Register = 0x0911 // HSE32 input capacitor trim
	RegHseOutTrim Register = 0x0912 // HSE32 output capacitor trim
)

// Ocp is a PA over-current protection trim value.
type Ocp uint8

const (
	OcpMax60mA  Ocp = 0x18 // low-power PA default
	OcpMax140mA Ocp = 0x38 // high-power PA default
)

// WriteRegister writes data to consecutive registers starting at reg.
func (d *Device) WriteRegister(reg Register, data []byte) error {
	if len(data) == 0 || len(data) > maxWriteLen-3 {
		return ErrParamRange
	}
	d.pb[0] = byte(reg >> 8)
	d.pb[1] = byte(reg)
	n := 2 + copy(d.pb[2:], data)
	_, err := d.exec(Command{Op: OpWriteRegister, Payload: d.pb[:n]})
	return err
}

// ReadRegister fills into from consecutive registers starting at reg.
func (d *Device) ReadRegister(reg Register, into []byte) error {
	if len(into) == 0 || len(into) > maxRespLen-1 {
		return ErrParamRange
	}
	d.pb[0] = byte(reg >> 8)
	d.pb[1] = byte(reg)
	resp, err := d.exec(Command{Op: OpReadRegister, Payload: d.pb[:2], RespLen: 1 + len(into)})
	if err != nil {
		return err
	}
	copy(into, resp[1:])
	return nil
}

// SetSyncWord programs the FSK sync word, up to 8 bytes, MSB first.
func (d *Device) SetSyncWord(sw []byte) error {
	if len(sw) == 0 || len(sw) > 8 {
		return ErrParamRange
	}
	return d.WriteRegister(RegGenSync, sw)
}

// SetLoRaSyncWord programs the LoRa sync word (0x3444 public network,
// 0x1424 private).
func (d *Device) SetLoRaSyncWord(sw uint16) error {
	var b [2]byte
	b[0] = byte(sw >> 8)
	b[1] = byte(sw)
	return d.WriteRegister(RegLoRaSyncHi, b[:])
}

// SetPaOcp sets the PA over-current protection trim.
func (d *Device) SetPaOcp(ocp Ocp) error {
	var b [1]byte
	b[0] = byte(ocp)
	return d.WriteRegister(RegPaOcp, b[:])
}
