package spidev

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"

	"subghz-go/drivers/subghz"
)

var _ subghz.Transport = (*Link)(nil)

type fakeConn struct {
	calls int
	tx    []byte
	resp  []byte
	fail  error
}

var _ spi.Conn = (*fakeConn)(nil)

func (f *fakeConn) String() string      { return "fake" }
func (f *fakeConn) Duplex() conn.Duplex { return conn.Full }

func (f *fakeConn) Tx(w, r []byte) error {
	f.calls++
	f.tx = append([]byte(nil), w...)
	if f.fail != nil {
		return f.fail
	}
	copy(r, f.resp)
	return nil
}

func (f *fakeConn) TxPackets(p []spi.Packet) error {
	return errors.New("not used")
}

type fakePin struct {
	level gpio.Level
}

func (f *fakePin) Read() gpio.Level { return f.level }

func TestXferPacksOneMessage(t *testing.T) {
	fc := &fakeConn{resp: []byte{0xFF, 0xFF, 0x2C, 0xAB, 0xCD}}
	l := &Link{conn: fc, busy: &fakePin{}}

	r := make([]byte, 3)
	if err := l.Xfer([]byte{0x12, 0x34}, r); err != nil {
		t.Fatalf("Xfer: %v", err)
	}
	if fc.calls != 1 {
		t.Fatalf("conn.Tx calls = %d, want 1", fc.calls)
	}
	if want := []byte{0x12, 0x34, 0, 0, 0}; !bytes.Equal(fc.tx, want) {
		t.Errorf("tx = %x, want %x", fc.tx, want)
	}
	if want := []byte{0x2C, 0xAB, 0xCD}; !bytes.Equal(r, want) {
		t.Errorf("r = %x, want %x", r, want)
	}
}

func TestXferWriteOnly(t *testing.T) {
	fc := &fakeConn{}
	l := &Link{conn: fc, busy: &fakePin{}}

	if err := l.Xfer([]byte{0x80, 0x00}, nil); err != nil {
		t.Fatalf("Xfer: %v", err)
	}
	if want := []byte{0x80, 0x00}; !bytes.Equal(fc.tx, want) {
		t.Errorf("tx = %x, want %x", fc.tx, want)
	}
}

func TestXferRejectsOversizeWindow(t *testing.T) {
	fc := &fakeConn{}
	l := &Link{conn: fc, busy: &fakePin{}}

	if err := l.Xfer(make([]byte, 3), make([]byte, maxWindow)); err == nil {
		t.Fatal("oversize window accepted")
	}
	if fc.calls != 0 {
		t.Errorf("conn.Tx calls = %d, want 0", fc.calls)
	}
}

func TestXferFaultPropagates(t *testing.T) {
	fault := errors.New("spi broke")
	l := &Link{conn: &fakeConn{fail: fault}, busy: &fakePin{}}

	err := l.Xfer([]byte{0xC0}, make([]byte, 1))
	if !errors.Is(err, fault) {
		t.Fatalf("err = %v, want wrapped %v", err, fault)
	}
}

func TestBusyFollowsLine(t *testing.T) {
	pin := &fakePin{level: gpio.High}
	l := &Link{busy: pin}
	if !l.Busy() {
		t.Error("Busy() = false with line high")
	}
	pin.level = gpio.Low
	if l.Busy() {
		t.Error("Busy() = true with line low")
	}
}
