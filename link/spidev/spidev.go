// Package spidev is the Linux host transport: the radio on a spidev
// port, the busy line on a GPIO read through the gpioreg registry.
package spidev

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Config selects the port and pin. Zero fields take defaults.
type Config struct {
	// Port is the spireg name, default "/dev/spidev0.0".
	Port string
	// BusyPin is the gpioreg name of the busy line, default "GPIO24".
	BusyPin string
	// SpeedHz is the SPI clock, default 8 MHz. The radio tops out at 16.
	SpeedHz int64
}

// A select window never exceeds opcode + payload + response; 1 KiB
// leaves headroom over the largest command the driver can frame.
const maxWindow = 1024

// busyLine is the one pin capability the link needs. gpio.PinIO
// satisfies it; tests substitute a fake.
type busyLine interface {
	Read() gpio.Level
}

// Link is a radio transport over a kernel spidev port. Not safe for
// concurrent use; it is owned by a single Device like the driver
// itself.
type Link struct {
	port spi.PortCloser
	conn spi.Conn
	busy busyLine
	wbuf [maxWindow]byte
	rbuf [maxWindow]byte
}

// Open initialises the periph host, opens the SPI port and claims the
// busy pin as an input.
func Open(cfg Config) (*Link, error) {
	if cfg.Port == "" {
		cfg.Port = "/dev/spidev0.0"
	}
	if cfg.BusyPin == "" {
		cfg.BusyPin = "GPIO24"
	}
	if cfg.SpeedHz == 0 {
		cfg.SpeedHz = 8_000_000
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("spidev: host init: %w", err)
	}
	p, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("spidev: open %s: %w", cfg.Port, err)
	}
	c, err := p.Connect(physic.Frequency(cfg.SpeedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("spidev: connect: %w", err)
	}
	pin := gpioreg.ByName(cfg.BusyPin)
	if pin == nil {
		p.Close()
		return nil, fmt.Errorf("spidev: no pin %q", cfg.BusyPin)
	}
	if err := pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		p.Close()
		return nil, fmt.Errorf("spidev: busy pin %s: %w", cfg.BusyPin, err)
	}
	return &Link{port: p, conn: c, busy: pin}, nil
}

// Close releases the SPI port.
func (l *Link) Close() error { return l.port.Close() }

// Busy reports the busy line level.
func (l *Link) Busy() bool { return l.busy.Read() == gpio.High }

// Xfer runs one select window. The kernel holds chip select across a
// single message, so the write and read halves are packed into one
// full-duplex exchange: zeroes are clocked while the response comes
// back, and the response is picked off the tail of the read buffer.
func (l *Link) Xfer(w, r []byte) error {
	n := len(w) + len(r)
	if n > maxWindow {
		return fmt.Errorf("spidev: %d byte window exceeds %d", n, maxWindow)
	}
	tx := l.wbuf[:n]
	copy(tx, w)
	for i := len(w); i < n; i++ {
		tx[i] = 0
	}
	rx := l.rbuf[:n]
	if err := l.conn.Tx(tx, rx); err != nil {
		return fmt.Errorf("spidev: xfer: %w", err)
	}
	copy(r, rx[len(w):])
	return nil
}
