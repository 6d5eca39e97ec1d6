package subghz

// Irq is the interrupt-flag bitset. Flags are level-held by the radio
// until cleared with an explicit write-1-to-clear mask; reading never
// clears them.
type Irq uint16

const (
	IrqTxDone           Irq = 1 << 0
	IrqRxDone           Irq = 1 << 1
	IrqPreambleDetected Irq = 1 << 2
	IrqSyncDetected     Irq = 1 << 3
	IrqHeaderValid      Irq = 1 << 4
	IrqHeaderErr        Irq = 1 << 5
	IrqCrcErr           Irq = 1 << 6
	IrqCadDone          Irq = 1 << 7
	IrqCadDetected      Irq = 1 << 8
	IrqTimeout          Irq = 1 << 9

	// IrqErr is the reference-manual name for bit 6.
	IrqErr = IrqCrcErr

	IrqNone Irq = 0
	IrqAll  Irq = 0x03FF
)

// IrqStatus reads the interrupt flags. Reading does not clear them.
func (d *Device) IrqStatus() (Irq, error) {
	resp, err := d.exec(Command{Op: OpGetIrqStatus, RespLen: 3})
	if err != nil {
		return 0, err
	}
	return Irq(resp[1])<<8 | Irq(resp[2]), nil
}

// ClearIrq clears exactly the flags in mask, never a superset: events
// arriving between a read and the clear stay pending and are observed on
// the next read. Read-then-clear is not atomic at the hardware level, so
// a cleared flag may legitimately reappear.
func (d *Device) ClearIrq(mask Irq) error {
	d.pb[0] = byte(mask >> 8)
	d.pb[1] = byte(mask)
	_, err := d.exec(Command{Op: OpClrIrqStatus, Payload: d.pb[:2]})
	return err
}

// SetDioIrqParams enables the events in mask and routes them to the
// three interrupt lines. Events not in mask are never latched.
func (d *Device) SetDioIrqParams(mask, line1, line2, line3 Irq) error {
	p := d.pb[:8]
	p[0] = byte(mask >> 8)
	p[1] = byte(mask)
	p[2] = byte(line1 >> 8)
	p[3] = byte(line1)
	p[4] = byte(line2 >> 8)
	p[5] = byte(line2)
	p[6] = byte(line3 >> 8)
	p[7] = byte(line3)
	_, err := d.exec(Command{Op: OpCfgDioIrq, Payload: p})
	return err
}
