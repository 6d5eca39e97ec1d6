package subghz

// BufferCapacity is the size of the shared on-chip TX/RX data buffer.
const BufferCapacity = 256

// checkBounds validates an offset/length request against a buffer
// capacity. Every buffer operation runs this before any bus traffic.
func checkBounds(capacity int, offset uint8, length int) error {
	if length < 0 || int(offset)+length > capacity {
		return ErrBufferOverflow
	}
	return nil
}

// SetBufferBaseAddress sets the TX and RX base offsets within the data
// buffer. If a packet payload length is already configured, both bases
// are checked so a full payload fits above them.
func (d *Device) SetBufferBaseAddress(txBase, rxBase uint8) error {
	if d.maxPayload > 0 {
		if err := checkBounds(BufferCapacity, txBase, int(d.maxPayload)); err != nil {
			return err
		}
		if err := checkBounds(BufferCapacity, rxBase, int(d.maxPayload)); err != nil {
			return err
		}
	}
	d.pb[0] = txBase
	d.pb[1] = rxBase
	if _, err := d.exec(Command{Op: OpSetBufferBaseAddr, Payload: d.pb[:2]}); err != nil {
		return err
	}
	d.txBase = txBase
	d.rxBase = rxBase
	return nil
}

// WriteBuffer copies data into the buffer at offset. Illegal while
// transmitting or receiving.
func (d *Device) WriteBuffer(offset uint8, data []byte) error {
	if err := checkBounds(BufferCapacity, offset, len(data)); err != nil {
		return err
	}
	d.pb[0] = offset
	n := 1 + copy(d.pb[1:], data)
	_, err := d.exec(Command{Op: OpWriteBuffer, Payload: d.pb[:n]})
	return err
}

// ReadBuffer fills into from the buffer at offset.
func (d *Device) ReadBuffer(offset uint8, into []byte) error {
	if err := checkBounds(BufferCapacity, offset, len(into)); err != nil {
		return err
	}
	d.pb[0] = offset
	resp, err := d.exec(Command{Op: OpReadBuffer, Payload: d.pb[:1], RespLen: 1 + len(into)})
	if err != nil {
		return err
	}
	copy(into, resp[1:])
	return nil
}

// RxBufferStatus reports the payload length and start offset of the most
// recently received packet. The length of an incoming packet is never
// known in advance; the receive workflow queries it here before reading.
func (d *Device) RxBufferStatus() (payloadLen, bufPtr uint8, err error) {
	resp, err := d.exec(Command{Op: OpGetRxBufferStatus, RespLen: 3})
	if err != nil {
		return 0, 0, err
	}
	return resp[1], resp[2], nil
}
