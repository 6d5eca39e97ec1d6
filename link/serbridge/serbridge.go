// Package serbridge drives a radio that sits behind a serial bridge.
// A small MCU owns the SPI bus and the busy line and exposes both
// over a framed protocol: a transfer request carries the write bytes
// and the expected read length, a busy request polls the line. The
// bridge answers with a result code and any read bytes.
//
// Every busy poll is a full serial round trip, so a driver running
// over this link wants a much coarser poll interval than it would use
// against memory-mapped hardware.
package serbridge

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"subghz-go/drivers/subghz"
)

var (
	// ErrBridgeTimeout means the bridge stopped answering within the
	// port's read timeout.
	ErrBridgeTimeout = errors.New("serbridge: read timeout")

	// ErrProtocol means the bridge answered with something the framing
	// does not allow.
	ErrProtocol = errors.New("serbridge: protocol violation")

	// ErrRemoteFault means the bridge reported an SPI fault on its side
	// of the link.
	ErrRemoteFault = errors.New("serbridge: remote bus fault")
)

// Config selects the serial port. Zero fields take defaults.
type Config struct {
	// Port is the device path, e.g. "/dev/ttyUSB0".
	Port string
	// BaudRate defaults to 115200.
	BaudRate int
	// ReadTimeout bounds each read from the port, default 500ms.
	ReadTimeout time.Duration
}

// Link is a radio transport over a serial bridge. Not safe for
// concurrent use.
type Link struct {
	rw    io.ReadWriteCloser
	sc    frameScanner
	frame []byte
	pl    []byte
}

// Open opens the serial port and wraps it in a Link.
func Open(cfg Config) (*Link, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 115200
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("serbridge: open %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("serbridge: read timeout: %w", err)
	}
	return newLink(port), nil
}

func newLink(rw io.ReadWriteCloser) *Link {
	l := &Link{rw: rw}
	l.sc.r = rw
	return l
}

// Close closes the serial port.
func (l *Link) Close() error { return l.rw.Close() }

func (l *Link) exchange(typ byte, payload []byte) (byte, []byte, error) {
	l.frame = appendFrame(l.frame[:0], typ, payload)
	if _, err := l.rw.Write(l.frame); err != nil {
		return 0, nil, fmt.Errorf("serbridge: write: %w", err)
	}
	return l.sc.next()
}

// Busy polls the bridge for the radio's busy line. A link that cannot
// confirm the line reads as busy; a wedged bridge then surfaces as the
// driver's busy timeout rather than a silent misread.
func (l *Link) Busy() bool {
	typ, p, err := l.exchange(typBusy, nil)
	if err != nil || typ != typBusyReply || len(p) != 1 {
		return true
	}
	return p[0] != 0
}

// Xfer runs one select window through the bridge: the write bytes go
// out, the bridge clocks len(r) more bytes and sends them back.
func (l *Link) Xfer(w, r []byte) error {
	if len(w)+4 > maxPayload || len(r)+1 > maxPayload {
		return fmt.Errorf("serbridge: window %d+%d exceeds frame payload", len(w), len(r))
	}
	p := l.pl[:0]
	p = append(p, byte(len(w)>>8), byte(len(w)))
	p = append(p, w...)
	p = append(p, byte(len(r)>>8), byte(len(r)))
	l.pl = p

	typ, rp, err := l.exchange(typXfer, p)
	if err != nil {
		return err
	}
	if typ != typXferReply || len(rp) < 1 {
		return fmt.Errorf("serbridge: transfer reply: %w", ErrProtocol)
	}
	switch rp[0] {
	case codeOK:
	case codeBusyStuck:
		return fmt.Errorf("serbridge: remote: %w", subghz.ErrBusTimeout)
	case codeBusFault:
		return fmt.Errorf("serbridge: remote: %w", ErrRemoteFault)
	default:
		return fmt.Errorf("serbridge: reply code %#x: %w", rp[0], ErrProtocol)
	}
	if len(rp)-1 != len(r) {
		return fmt.Errorf("serbridge: reply carries %d bytes, want %d: %w", len(rp)-1, len(r), ErrProtocol)
	}
	copy(r, rp[1:])
	return nil
}
