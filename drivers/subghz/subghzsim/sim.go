// Package subghzsim is a scripted in-memory model of the sub-GHz radio
// for tests and host tooling. It speaks the raw command protocol (one
// select window per Xfer, opcode plus payload out, status-led response
// back) and models the busy line, the mode register, the interrupt
// flags with their enable mask, the 256-byte data buffer, registers and
// reception counters.
//
// The model powers up the way the chip does: awake in RC standby with
// every interrupt masked. Tests script it through QueueRx, Fire,
// BusyFor and the public knobs, and inspect LastTx, Violations and the
// opcode Log. Safe for concurrent use.
package subghzsim

import "sync"

// Chip-mode register values as they appear in the status byte.
const (
	chipStandbyRC   = 0x2
	chipStandbyXOSC = 0x3
	chipFS          = 0x4
	chipRX          = 0x5
	chipTX          = 0x6
)

// Interrupt bits.
const (
	irqTxDone      = 1 << 0
	irqRxDone      = 1 << 1
	irqHeaderErr   = 1 << 5
	irqCrcErr      = 1 << 6
	irqCadDone     = 1 << 7
	irqCadDetected = 1 << 8
	irqTimeout     = 1 << 9
)

type queuedRx struct {
	data   []byte
	crcErr bool
}

// Radio is one simulated transceiver.
type Radio struct {
	mu sync.Mutex

	// AutoComplete makes SetTx latch TxDone immediately; clear it to
	// drive completion from the test with Fire. Set before use.
	AutoComplete bool
	// ChannelActive makes channel-activity detections report activity.
	ChannelActive bool
	// WakeLatency is how many busy polls a wake-up costs.
	WakeLatency int
	// CmdStat is the command-status field placed in every status byte.
	CmdStat byte
	// RssiRaw, SnrRaw, SignalRssiRaw feed the packet-status and
	// instantaneous RSSI responses.
	RssiRaw       byte
	SnrRaw        byte
	SignalRssiRaw byte

	mode       byte
	sleeping   bool
	busyLeft   int
	violations int
	failNext   error
	log        []byte

	irq     uint16
	irqMask uint16

	buf        [256]byte
	txBase     uint8
	rxBase     uint8
	payloadLen uint8
	packetType byte
	continuous bool
	cadRxExit  bool
	fallback   byte

	freqCode uint32
	calImage [2]byte
	regs     map[uint16]byte

	rxQueue   []queuedRx
	lastRxLen uint8
	lastTx    []byte

	rxPkts, crcErrs, hdrErrs uint16
	opErr                    uint16
}

// New returns a radio in its power-on state: RC standby, interrupts
// masked, counters zero.
func New() *Radio {
	return &Radio{
		AutoComplete: true,
		WakeLatency:  2,
		CmdStat:      0x6,
		RssiRaw:      100, // -50 dBm
		SnrRaw:       20,  // +5 dB
		mode:         chipStandbyRC,
		fallback:     chipStandbyRC,
		regs:         make(map[uint16]byte),
	}
}

// ---------------- scripting API ----------------

// BusyFor holds the busy line for the next n polls.
func (r *Radio) BusyFor(n int) {
	r.mu.Lock()
	r.busyLeft = n
	r.mu.Unlock()
}

// FailNext makes the next select window fail with err.
func (r *Radio) FailNext(err error) {
	r.mu.Lock()
	r.failNext = err
	r.mu.Unlock()
}

// Fire latches interrupt bits directly, subject to the enable mask.
// The mode register is left alone; use it for scripted event timing.
func (r *Radio) Fire(bits uint16) {
	r.mu.Lock()
	r.irq |= bits & r.irqMask
	r.mu.Unlock()
}

// QueueRx delivers a packet: immediately when the radio is receiving,
// otherwise on its next SetRx.
func (r *Radio) QueueRx(data []byte, crcErr bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := queuedRx{data: append([]byte(nil), data...), crcErr: crcErr}
	if r.mode == chipRX {
		r.deliver(q)
		return
	}
	r.rxQueue = append(r.rxQueue, q)
}

// Violations reports how many select windows were opened while the
// busy line was held. Waking from sleep is not counted: asserting the
// select is precisely how the chip is woken.
func (r *Radio) Violations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.violations
}

// LastTx returns the payload captured by the most recent transmission.
func (r *Radio) LastTx() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.lastTx...)
}

// Log returns the opcodes executed so far, in order.
func (r *Radio) Log() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.log...)
}

// ChipMode returns the raw chip-mode register value.
func (r *Radio) ChipMode() byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Irq returns the pending interrupt bits.
func (r *Radio) Irq() uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.irq
}

// FreqCode returns the last programmed synthesizer word.
func (r *Radio) FreqCode() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.freqCode
}

// CalImage returns the last image-calibration band bytes.
func (r *Radio) CalImage() (byte, byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calImage[0], r.calImage[1]
}

// Reg returns a register byte.
func (r *Radio) Reg(addr uint16) byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regs[addr]
}

// SetOpError scripts the operation-error bitfield.
func (r *Radio) SetOpError(v uint16) {
	r.mu.Lock()
	r.opErr = v
	r.mu.Unlock()
}

// Sleeping reports whether the model is asleep.
func (r *Radio) Sleeping() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sleeping
}

// ---------------- transport face ----------------

// Busy reports the busy line; scripted holds count down one per poll,
// and a sleeping chip holds the line until a select window wakes it.
func (r *Radio) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busyLeft > 0 {
		r.busyLeft--
		return true
	}
	return r.sleeping
}

// Xfer runs one select window against the model.
func (r *Radio) Xfer(w, rd []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	if r.busyLeft > 0 {
		r.violations++
	}
	if r.sleeping {
		// The select edge wakes the chip; it answers nothing useful
		// while coming up.
		r.sleeping = false
		r.mode = chipStandbyRC
		r.busyLeft = r.WakeLatency
		for i := range rd {
			rd[i] = 0
		}
		if len(w) > 0 {
			r.log = append(r.log, w[0])
		}
		return nil
	}
	if len(w) == 0 {
		return nil
	}
	op := w[0]
	r.log = append(r.log, op)
	r.step(op, w[1:], rd)
	return nil
}

func (r *Radio) status() byte { return r.mode<<4 | r.CmdStat<<1 }

// step interprets one command. Unknown opcodes are ignored, as the
// chip ignores them.
func (r *Radio) step(op byte, p, rd []byte) {
	if len(rd) > 0 {
		rd[0] = r.status()
		for i := 1; i < len(rd); i++ {
			rd[i] = 0
		}
	}
	switch op {
	case 0x80: // SetStandby
		if len(p) > 0 && p[0] == 0x01 {
			r.mode = chipStandbyXOSC
		} else {
			r.mode = chipStandbyRC
		}
	case 0x84: // SetSleep
		r.sleeping = true
	case 0xC1: // SetFs
		r.mode = chipFS
	case 0x83: // SetTx
		r.mode = chipTX
		if r.AutoComplete {
			end := int(r.txBase) + int(r.payloadLen)
			r.lastTx = append([]byte(nil), r.buf[r.txBase:end]...)
			r.irq |= irqTxDone & r.irqMask
			r.mode = r.fallback
		}
	case 0x82: // SetRx
		r.mode = chipRX
		r.continuous = len(p) >= 3 && p[0] == 0xFF && p[1] == 0xFF && p[2] == 0xFF
		if len(r.rxQueue) > 0 {
			q := r.rxQueue[0]
			r.rxQueue = r.rxQueue[1:]
			r.deliver(q)
		}
	case 0x94: // SetRxDutyCycle
		r.mode = chipRX
		r.continuous = false
	case 0xC5: // SetCad
		r.mode = chipRX
		r.irq |= irqCadDone & r.irqMask
		if r.ChannelActive {
			r.irq |= irqCadDetected & r.irqMask
		}
		if r.ChannelActive && r.cadRxExit {
			// stays in RX to catch the packet
		} else {
			r.mode = r.fallback
		}
	case 0xD1, 0xD2: // continuous wave / preamble
		r.mode = chipTX
	case 0x8A: // SetPacketType
		if len(p) > 0 {
			r.packetType = p[0]
		}
	case 0x8C: // SetPacketParams
		switch r.packetType {
		case 0x01: // LoRa: payload length at byte 3
			if len(p) > 3 {
				r.payloadLen = p[3]
			}
		default: // FSK shape: payload length at byte 6
			if len(p) > 6 {
				r.payloadLen = p[6]
			}
		}
	case 0x8F: // SetBufferBaseAddress
		if len(p) > 1 {
			r.txBase, r.rxBase = p[0], p[1]
		}
	case 0x0E: // WriteBuffer
		if len(p) > 0 {
			copy(r.buf[p[0]:], p[1:])
		}
	case 0x1E: // ReadBuffer
		if len(p) > 0 && len(rd) > 1 {
			copy(rd[1:], r.buf[p[0]:])
		}
	case 0x12: // GetIrqStatus
		if len(rd) > 2 {
			rd[1] = byte(r.irq >> 8)
			rd[2] = byte(r.irq)
		}
	case 0x02: // ClrIrqStatus
		if len(p) > 1 {
			r.irq &^= uint16(p[0])<<8 | uint16(p[1])
		}
	case 0x08: // CfgDioIrq
		if len(p) > 1 {
			r.irqMask = uint16(p[0])<<8 | uint16(p[1])
		}
	case 0x13: // GetRxBufferStatus
		if len(rd) > 2 {
			rd[1] = r.lastRxLen
			rd[2] = r.rxBase
		}
	case 0x14: // GetPacketStatus
		if len(rd) > 3 {
			rd[1] = r.RssiRaw
			rd[2] = r.SnrRaw
			rd[3] = r.SignalRssiRaw
		}
	case 0x15: // GetRssiInst
		if len(rd) > 1 {
			rd[1] = r.RssiRaw
		}
	case 0x10: // GetStats
		if len(rd) > 6 {
			rd[1] = byte(r.rxPkts >> 8)
			rd[2] = byte(r.rxPkts)
			rd[3] = byte(r.crcErrs >> 8)
			rd[4] = byte(r.crcErrs)
			rd[5] = byte(r.hdrErrs >> 8)
			rd[6] = byte(r.hdrErrs)
		}
	case 0x00: // ResetStats
		r.rxPkts, r.crcErrs, r.hdrErrs = 0, 0, 0
	case 0x17: // GetError
		if len(rd) > 2 {
			rd[1] = byte(r.opErr) // little-endian on the wire
			rd[2] = byte(r.opErr >> 8)
		}
	case 0x07: // ClrError
		r.opErr = 0
	case 0x0D: // WriteRegister
		if len(p) > 2 {
			addr := uint16(p[0])<<8 | uint16(p[1])
			for i, b := range p[2:] {
				r.regs[addr+uint16(i)] = b
			}
		}
	case 0x1D: // ReadRegister
		if len(p) > 1 && len(rd) > 1 {
			addr := uint16(p[0])<<8 | uint16(p[1])
			for i := 1; i < len(rd); i++ {
				rd[i] = r.regs[addr+uint16(i-1)]
			}
		}
	case 0x86: // SetRfFrequency
		if len(p) > 3 {
			r.freqCode = uint32(p[0])<<24 | uint32(p[1])<<16 |
				uint32(p[2])<<8 | uint32(p[3])
		}
	case 0x98: // CalibrateImage
		if len(p) > 1 {
			r.calImage[0], r.calImage[1] = p[0], p[1]
		}
	case 0x93: // SetTxRxFallbackMode
		if len(p) > 0 {
			switch p[0] {
			case 0x30:
				r.fallback = chipStandbyXOSC
			case 0x40:
				r.fallback = chipFS
			default:
				r.fallback = chipStandbyRC
			}
		}
	case 0x88: // SetCadParams
		if len(p) > 3 {
			r.cadRxExit = p[3] == 0x01
		}
	}
}

// deliver writes a queued packet into the buffer and latches the
// reception events; the counters advance the way the chip's do.
func (r *Radio) deliver(q queuedRx) {
	n := copy(r.buf[r.rxBase:], q.data)
	r.lastRxLen = uint8(n)
	r.rxPkts++
	bits := uint16(irqRxDone)
	if q.crcErr {
		bits |= irqCrcErr
		r.crcErrs++
	}
	r.irq |= bits & r.irqMask
	if !r.continuous {
		r.mode = r.fallback
	}
}
