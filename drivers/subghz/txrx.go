package subghz

import "time"

// Packet workflows. Each comes in a blocking form with a bounded wait
// and a Start/Poll pair for schedulerless callers; both are access
// patterns over the same flag and mode state. Completion events are
// consumed by clearing exactly the observed bits, and the mode model
// follows the radio's automatic fallback transition. On a timeout the
// driver surfaces ErrTimeout and cancels nothing: aborting (SetStandby)
// and retrying are caller policy.

// SetTx starts a transmission of the configured packet from the TX base
// address; zero timeout disables the transmit watchdog.
func (d *Device) SetTx(t Timeout) error {
	b := d.pb[:3]
	put24(b, uint32(t))
	_, err := d.exec(Command{Op: OpSetTx, Payload: b})
	return err
}

// SetRx starts reception. TimeoutDisabled waits indefinitely for one
// packet; TimeoutContinuous keeps receiving until aborted.
func (d *Device) SetRx(t Timeout) error {
	b := d.pb[:3]
	put24(b, uint32(t))
	if _, err := d.exec(Command{Op: OpSetRx, Payload: b}); err != nil {
		return err
	}
	d.rxContinuous = t == TimeoutContinuous
	return nil
}

// SetCad starts a channel-activity detection with the parameters from
// SetCadParams.
func (d *Device) SetCad() error {
	_, err := d.exec(Command{Op: OpSetCad})
	return err
}

// startOp discards stale completion flags from an earlier session so a
// fresh operation cannot observe them. Only flags both present and
// belonging to the new operation are cleared, one mask, nothing more.
func (d *Device) startOp(op string, mask Irq) error {
	flags, err := d.IrqStatus()
	if err != nil {
		return &RadioError{Op: op, Err: err}
	}
	if stale := flags & mask; stale != 0 {
		if err := d.ClearIrq(stale); err != nil {
			return &RadioError{Op: op, Err: err}
		}
	}
	return nil
}

// ---------------- Transmit ----------------

// StartTransmit loads data at the TX base address and starts the
// transmission. When the configured payload length differs from
// len(data) the packet parameters are re-applied with the new length
// first, since the radio sends exactly the configured number of bytes.
// Completion is collected with PollTransmit.
func (d *Device) StartTransmit(data []byte, t Timeout) error {
	if len(data) == 0 || len(data) > 255 {
		return &RadioError{Op: "transmit", Err: ErrParamRange}
	}
	if !d.typeSet || !d.pktSet {
		return &RadioError{Op: "transmit", Err: ErrNotConfigured}
	}
	if err := d.setPayloadLen(uint8(len(data))); err != nil {
		return &RadioError{Op: "transmit", Err: err}
	}
	if err := d.startOp("transmit", IrqTxDone|IrqTimeout); err != nil {
		return err
	}
	if err := d.WriteBuffer(d.txBase, data); err != nil {
		return &RadioError{Op: "transmit", Err: err}
	}
	if err := d.SetTx(t); err != nil {
		return &RadioError{Op: "transmit", Err: err}
	}
	return nil
}

// setPayloadLen re-applies the stored packet parameters when the
// session payload length changes.
func (d *Device) setPayloadLen(n uint8) error {
	switch {
	case d.packetType == PacketTypeLoRa && d.loraPkt.PayloadLen != n:
		p := d.loraPkt
		p.PayloadLen = n
		return d.SetLoRaPacketParams(p)
	case d.packetType == PacketTypeFSK && d.fskPkt.PayloadLen != n:
		p := d.fskPkt
		p.PayloadLen = n
		return d.SetFskPacketParams(p)
	}
	return nil
}

// PollTransmit is the non-suspending completion check: ErrNotReady
// while the transmission is in flight, nil once it completed, and
// ErrTimeout (wrapped) when the transmit watchdog fired. The observed
// completion bits are cleared, exactly and only.
func (d *Device) PollTransmit() error {
	flags, err := d.IrqStatus()
	if err != nil {
		return &RadioError{Op: "transmit", Err: err}
	}
	consumed := flags & (IrqTxDone | IrqTimeout)
	if consumed == 0 {
		return ErrNotReady
	}
	// The radio has already dropped to the fallback mode on its own.
	d.sm.complete()
	if err := d.ClearIrq(consumed); err != nil {
		return &RadioError{Op: "transmit", Err: err}
	}
	if consumed&IrqTxDone == 0 {
		return &RadioError{Op: "transmit", Err: ErrTimeout}
	}
	return nil
}

// Transmit sends data and blocks until completion, the hardware
// watchdog, or the software bound (timeout plus the configured slack).
func (d *Device) Transmit(data []byte, timeout time.Duration) error {
	if timeout <= 0 {
		return &RadioError{Op: "transmit", Err: ErrParamRange}
	}
	if err := d.StartTransmit(data, NewTimeout(timeout)); err != nil {
		return err
	}
	deadline := time.Now().Add(timeout + d.cfg.WaitSlack)
	for {
		err := d.PollTransmit()
		if err != ErrNotReady {
			return err
		}
		if time.Now().After(deadline) {
			return &RadioError{Op: "transmit", Err: ErrTimeout}
		}
		time.Sleep(d.cfg.PollInterval)
	}
}

// ---------------- Receive ----------------

// RxPacket is one reception outcome. A CRC failure still delivers the
// payload with CrcErr set; corrupted packets are expected radio
// behaviour, not driver faults. A header failure delivers no payload.
// Signal metrics are filled for the LoRa packet type.
type RxPacket struct {
	Data      []byte // aliases the buffer passed to the poll/receive call
	RssiDbm   int16
	SnrDb     int8
	CrcErr    bool
	HeaderErr bool
}

const rxEvents = IrqRxDone | IrqTimeout | IrqHeaderErr | IrqCrcErr |
	IrqHeaderValid | IrqPreambleDetected | IrqSyncDetected

// StartReceive opens reception; collect packets with PollReceive.
func (d *Device) StartReceive(t Timeout) error {
	if err := d.startOp("receive", rxEvents); err != nil {
		return err
	}
	if err := d.SetRx(t); err != nil {
		return &RadioError{Op: "receive", Err: err}
	}
	return nil
}

// PollReceive is the non-suspending reception check. ErrNotReady while
// nothing completed; ErrTimeout (wrapped) when the RX timer fired; a
// packet otherwise. The payload length is queried from the radio (it
// is never known in advance) and read into buf, which must be at
// least that long or the poll fails with ErrBufferOverflow, leaving
// the completion flags pending for a retry with a larger buffer.
func (d *Device) PollReceive(buf []byte) (RxPacket, error) {
	var pkt RxPacket
	flags, err := d.IrqStatus()
	if err != nil {
		return pkt, &RadioError{Op: "receive", Err: err}
	}
	if flags&(IrqRxDone|IrqTimeout|IrqHeaderErr) == 0 {
		return pkt, ErrNotReady
	}

	if flags&IrqRxDone == 0 && flags&IrqTimeout != 0 {
		d.sm.complete()
		if err := d.ClearIrq(IrqTimeout); err != nil {
			return pkt, &RadioError{Op: "receive", Err: err}
		}
		return pkt, &RadioError{Op: "receive", Err: ErrTimeout}
	}

	if flags&IrqRxDone == 0 {
		// Header corrupted: reception aborted, nothing to read.
		if !d.rxContinuous {
			d.sm.complete()
		}
		if err := d.ClearIrq(IrqHeaderErr); err != nil {
			return pkt, &RadioError{Op: "receive", Err: err}
		}
		pkt.HeaderErr = true
		return pkt, nil
	}

	// In single mode the radio has already fallen back; continuous
	// reception stays in RX and packets are read from there.
	if !d.rxContinuous {
		d.sm.complete()
	}
	n, ptr, err := d.RxBufferStatus()
	if err != nil {
		return pkt, &RadioError{Op: "receive", Err: err}
	}
	if int(n) > len(buf) {
		return pkt, &RadioError{Op: "receive", Err: ErrBufferOverflow}
	}
	if err := d.ReadBuffer(ptr, buf[:n]); err != nil {
		return pkt, &RadioError{Op: "receive", Err: err}
	}
	pkt.Data = buf[:n]
	pkt.CrcErr = flags&IrqCrcErr != 0
	if d.typeSet && d.packetType == PacketTypeLoRa {
		ps, err := d.LoRaPacketStatus()
		if err != nil {
			return pkt, &RadioError{Op: "receive", Err: err}
		}
		pkt.RssiDbm = ps.RssiDbm
		pkt.SnrDb = ps.SnrDb
	}
	if err := d.ClearIrq(flags & (IrqRxDone | IrqCrcErr)); err != nil {
		return pkt, &RadioError{Op: "receive", Err: err}
	}
	return pkt, nil
}

// Receive blocks until one reception outcome or the software bound.
// The hardware RX timer is armed with the same timeout. On the software
// bound expiring nothing is aborted; the caller decides whether to
// SetStandby and resynchronize.
func (d *Device) Receive(buf []byte, timeout time.Duration) (RxPacket, error) {
	if timeout <= 0 {
		return RxPacket{}, &RadioError{Op: "receive", Err: ErrParamRange}
	}
	if err := d.StartReceive(NewTimeout(timeout)); err != nil {
		return RxPacket{}, err
	}
	deadline := time.Now().Add(timeout + d.cfg.WaitSlack)
	for {
		pkt, err := d.PollReceive(buf)
		if err != ErrNotReady {
			return pkt, err
		}
		if time.Now().After(deadline) {
			return RxPacket{}, &RadioError{Op: "receive", Err: ErrTimeout}
		}
		time.Sleep(d.cfg.PollInterval)
	}
}

// ---------------- Channel-activity detection ----------------

// StartCad starts a detection; collect the verdict with PollCad.
func (d *Device) StartCad() error {
	if err := d.startOp("cad", IrqCadDone|IrqCadDetected|IrqTimeout); err != nil {
		return err
	}
	if err := d.SetCad(); err != nil {
		return &RadioError{Op: "cad", Err: err}
	}
	return nil
}

// PollCad is the non-suspending detection check: ErrNotReady until the
// detection finishes, then whether channel activity was seen. With the
// CadExitRx exit mode and activity present the radio stays in RX to
// receive the incoming packet.
func (d *Device) PollCad() (bool, error) {
	flags, err := d.IrqStatus()
	if err != nil {
		return false, &RadioError{Op: "cad", Err: err}
	}
	if flags&IrqCadDone == 0 {
		return false, ErrNotReady
	}
	detected := flags&IrqCadDetected != 0
	if !(detected && d.cadRxExit) {
		d.sm.complete()
	}
	if err := d.ClearIrq(flags & (IrqCadDone | IrqCadDetected)); err != nil {
		return false, &RadioError{Op: "cad", Err: err}
	}
	return detected, nil
}

// DetectChannel runs one bounded channel-activity detection.
func (d *Device) DetectChannel(bound time.Duration) (bool, error) {
	if bound <= 0 {
		return false, &RadioError{Op: "cad", Err: ErrParamRange}
	}
	if err := d.StartCad(); err != nil {
		return false, err
	}
	deadline := time.Now().Add(bound)
	for {
		detected, err := d.PollCad()
		if err != ErrNotReady {
			return detected, err
		}
		if time.Now().After(deadline) {
			return false, &RadioError{Op: "cad", Err: ErrTimeout}
		}
		time.Sleep(d.cfg.PollInterval)
	}
}
