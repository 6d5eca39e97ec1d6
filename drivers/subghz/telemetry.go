package subghz

// Stats are the radio's rolling reception counters. For LoRa the third
// counter holds header errors; for FSK it counts length errors.
type Stats struct {
	RxPkts  uint16
	CrcErrs uint16
	HdrErrs uint16
}

// Stats reads the reception counters.
func (d *Device) Stats() (Stats, error) {
	resp, err := d.exec(Command{Op: OpGetStats, RespLen: 7})
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		RxPkts:  uint16(resp[1])<<8 | uint16(resp[2]),
		CrcErrs: uint16(resp[3])<<8 | uint16(resp[4]),
		HdrErrs: uint16(resp[5])<<8 | uint16(resp[6]),
	}, nil
}

// ResetStats zeroes the reception counters.
func (d *Device) ResetStats() error {
	p := d.pb[:6]
	for i := range p {
		p[i] = 0
	}
	_, err := d.exec(Command{Op: OpResetStats, Payload: p})
	return err
}

// LoRaPacketStatus describes the last received LoRa packet.
type LoRaPacketStatus struct {
	RssiDbm       int16 // averaged over the packet
	SnrDb         int8  // rounded toward zero
	SignalRssiDbm int16 // after despreading
}

// LoRaPacketStatus reads signal metrics for the last LoRa packet.
func (d *Device) LoRaPacketStatus() (LoRaPacketStatus, error) {
	resp, err := d.exec(Command{Op: OpGetPacketStatus, RespLen: 4})
	if err != nil {
		return LoRaPacketStatus{}, err
	}
	return LoRaPacketStatus{
		RssiDbm:       -int16(resp[1]) / 2,
		SnrDb:         int8(resp[2]) / 4,
		SignalRssiDbm: -int16(resp[3]) / 2,
	}, nil
}

// FskPacketStatus describes the last received FSK packet. RxStatus is
// the raw status bitfield (preamble/sync/address/CRC/length outcomes).
type FskPacketStatus struct {
	RxStatus    byte
	RssiAvgDbm  int16
	RssiSyncDbm int16
}

// FskPacketStatus reads signal metrics for the last FSK packet.
func (d *Device) FskPacketStatus() (FskPacketStatus, error) {
	resp, err := d.exec(Command{Op: OpGetPacketStatus, RespLen: 4})
	if err != nil {
		return FskPacketStatus{}, err
	}
	return FskPacketStatus{
		RxStatus:    resp[1],
		RssiAvgDbm:  -int16(resp[2]) / 2,
		RssiSyncDbm: -int16(resp[3]) / 2,
	}, nil
}

// RssiInst reads the instantaneous signal strength in dBm, meaningful
// during reception.
func (d *Device) RssiInst() (int16, error) {
	resp, err := d.exec(Command{Op: OpGetRssiInst, RespLen: 2})
	if err != nil {
		return 0, err
	}
	return -int16(resp[1]) / 2, nil
}

// OpError is the radio's operation-error bitfield.
type OpError uint16

const (
	OpErrRC64KCal  OpError = 1 << 0
	OpErrRC13MCal  OpError = 1 << 1
	OpErrPLLCal    OpError = 1 << 2
	OpErrADCCal    OpError = 1 << 3
	OpErrImageCal  OpError = 1 << 4
	OpErrXoscStart OpError = 1 << 5
	OpErrPLLLock   OpError = 1 << 6
	OpErrPaRamp    OpError = 1 << 8
)

// Errors reads the operation-error bitfield (wire order little-endian).
func (d *Device) Errors() (OpError, error) {
	resp, err := d.exec(Command{Op: OpGetError, RespLen: 3})
	if err != nil {
		return 0, err
	}
	return OpError(resp[1]) | OpError(resp[2])<<8, nil
}

// ClearErrors resets the operation-error bitfield.
func (d *Device) ClearErrors() error {
	d.pb[0] = 0x00
	_, err := d.exec(Command{Op: OpClrError, Payload: d.pb[:1]})
	return err
}
