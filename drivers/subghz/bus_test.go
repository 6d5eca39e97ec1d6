package subghz

import (
	"errors"
	"testing"
	"time"
)

// countingTransport counts busy polls and notes whether the line was
// still scripted busy when a window opened.
type countingTransport struct {
	recorder
	busyPolls int
}

func (c *countingTransport) Busy() bool {
	c.busyPolls++
	return c.recorder.Busy()
}

// postBusy is ready before the window and busy forever after it.
type postBusy struct{ sent bool }

func (p *postBusy) Busy() bool { return p.sent }

func (p *postBusy) Xfer(_, _ []byte) error {
	p.sent = true
	return nil
}

// failingTransport fails every window.
type failingTransport struct{ err error }

func (f *failingTransport) Busy() bool { return false }

func (f *failingTransport) Xfer(_, _ []byte) error { return f.err }

func TestExecuteFramesCommand(t *testing.T) {
	rec := &recorder{}
	b := NewBus(rec, 5*time.Millisecond, 50*time.Microsecond)
	rec.push(0x2C, 0x01, 0x02)

	resp, err := b.Execute(Command{Op: OpGetIrqStatus, Payload: []byte{0xAA, 0xBB}, RespLen: 3})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	wantBytes(t, rec.lastFrame(t), []byte{0x12, 0xAA, 0xBB})
	wantBytes(t, resp, []byte{0x2C, 0x01, 0x02})
}

func TestExecuteWaitsOutBusyLine(t *testing.T) {
	ct := &countingTransport{}
	ct.busy = 3
	b := NewBus(ct, 5*time.Millisecond, 50*time.Microsecond)

	if _, err := b.Execute(Command{Op: OpGetStatus, RespLen: 1}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ct.violations != 0 {
		t.Fatalf("window opened %d times while busy", ct.violations)
	}
	// Busy reads both sides of the window: the scripted holds plus at
	// least one ready read before and one after.
	if ct.busyPolls < 5 {
		t.Fatalf("busy polled %d times, want >= 5", ct.busyPolls)
	}
	if len(ct.frames) != 1 {
		t.Fatalf("%d windows, want 1", len(ct.frames))
	}
}

func TestExecuteBusTimeoutOpensNoWindow(t *testing.T) {
	rec := &recorder{busy: 1 << 30}
	b := NewBus(rec, 2*time.Millisecond, 50*time.Microsecond)

	if _, err := b.Execute(Command{Op: OpGetStatus, RespLen: 1}); err != ErrBusTimeout {
		t.Fatalf("err = %v, want ErrBusTimeout", err)
	}
	if len(rec.frames) != 0 {
		t.Fatalf("%d windows opened during a busy hold", len(rec.frames))
	}
}

func TestExecuteReportsPostWindowTimeout(t *testing.T) {
	b := NewBus(&postBusy{}, 2*time.Millisecond, 50*time.Microsecond)

	// The window itself succeeds; the chip then never comes ready.
	if _, err := b.Execute(Command{Op: OpSetStandby, Payload: []byte{0x00}}); err != ErrBusTimeout {
		t.Fatalf("err = %v, want ErrBusTimeout", err)
	}
}

func TestExecuteWrapsTransportFault(t *testing.T) {
	fault := errors.New("bus fault")
	b := NewBus(&failingTransport{err: fault}, 2*time.Millisecond, 50*time.Microsecond)

	_, err := b.Execute(Command{Op: OpGetStatus, RespLen: 1})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if !errors.Is(err, fault) {
		t.Fatalf("err = %v, does not unwrap to the transport fault", err)
	}
}

func TestExecuteRejectsOversizedExchanges(t *testing.T) {
	rec := &recorder{}
	b := NewBus(rec, 2*time.Millisecond, 50*time.Microsecond)

	big := make([]byte, maxWriteLen) // one more than fits after the opcode
	if _, err := b.Execute(Command{Op: OpWriteBuffer, Payload: big}); err != ErrBufferOverflow {
		t.Fatalf("payload err = %v, want ErrBufferOverflow", err)
	}
	if _, err := b.Execute(Command{Op: OpReadBuffer, RespLen: maxRespLen + 1}); err != ErrBufferOverflow {
		t.Fatalf("resp err = %v, want ErrBufferOverflow", err)
	}
	if len(rec.frames) != 0 {
		t.Fatalf("%d windows opened for rejected commands", len(rec.frames))
	}
}

func TestExecuteResponseAliasesScratch(t *testing.T) {
	rec := &recorder{}
	b := NewBus(rec, 5*time.Millisecond, 50*time.Microsecond)

	rec.push(0x2C, 0xAA)
	first, err := b.Execute(Command{Op: OpGetRssiInst, RespLen: 2})
	if err != nil {
		t.Fatalf("first execute: %v", err)
	}
	if first[1] != 0xAA {
		t.Fatalf("first resp byte %#02x, want 0xAA", first[1])
	}

	rec.push(0x2C, 0xBB)
	if _, err := b.Execute(Command{Op: OpGetRssiInst, RespLen: 2}); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	// Valid until the next Execute, and no longer.
	if first[1] != 0xBB {
		t.Fatalf("first resp still %#02x after reuse, scratch is not shared", first[1])
	}
}
