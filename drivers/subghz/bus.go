package subghz

import "time"

// Scratch sizing: the largest write is WriteBuffer (opcode + offset + a
// full buffer), the largest read is ReadBuffer (status + a full buffer).
const (
	maxWriteLen = 2 + BufferCapacity
	maxRespLen  = 1 + BufferCapacity
)

// Bus serializes command transactions over a Transport, honouring the
// busy line before and after each select window. It holds no queue: one
// transaction at a time, under exclusive ownership of the handle.
type Bus struct {
	t       Transport
	timeout time.Duration
	poll    time.Duration

	w [maxWriteLen]byte
	r [maxRespLen]byte
}

// NewBus wraps t. timeout bounds each busy wait; poll is the interval
// between busy-line reads.
func NewBus(t Transport, timeout, poll time.Duration) *Bus {
	return &Bus{t: t, timeout: timeout, poll: poll}
}

// Execute runs one transaction: wait ready, open a single select window,
// clock out the opcode and payload, clock c.RespLen bytes back in (the
// first is the status byte), close the window, wait ready again.
//
// The returned slice aliases an internal scratch buffer and is only
// valid until the next Execute call.
func (b *Bus) Execute(c Command) ([]byte, error) {
	if len(c.Payload) > maxWriteLen-1 || c.RespLen > maxRespLen {
		return nil, ErrBufferOverflow
	}
	if err := b.waitReady(); err != nil {
		return nil, err
	}
	b.w[0] = byte(c.Op)
	n := 1 + copy(b.w[1:], c.Payload)
	var resp []byte
	if c.RespLen > 0 {
		resp = b.r[:c.RespLen]
	}
	if err := b.t.Xfer(b.w[:n], resp); err != nil {
		return nil, &TransportError{Err: err}
	}
	// The command may have executed even if this wait times out; the
	// caller recovers by resynchronizing the mode model.
	if err := b.waitReady(); err != nil {
		return nil, err
	}
	return resp, nil
}

// waitReady polls the busy line until it clears or the bound elapses.
func (b *Bus) waitReady() error {
	if !b.t.Busy() {
		return nil
	}
	start := time.Now()
	for {
		time.Sleep(b.poll)
		if !b.t.Busy() {
			return nil
		}
		if time.Since(start) >= b.timeout {
			return ErrBusTimeout
		}
	}
}

// window opens a select window without the leading busy gate. Waking a
// sleeping chip requires exactly that, so Wake and Resync use it; every
// normal transaction goes through Execute.
func (b *Bus) window(w, r []byte) error {
	if err := b.t.Xfer(w, r); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}
