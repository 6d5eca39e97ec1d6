// Package spilink adapts a local SPI bus plus two GPIO lines into the
// transport the radio driver expects. It is TinyGo-friendly: the bus is
// anything satisfying drivers.SPI (machine.SPI qualifies on MCU builds)
// and the pins are plain functions, so machine.Pin methods wire straight
// in:
//
//	busy := machine.GP22
//	nss := machine.GP17
//	busy.Configure(machine.PinConfig{Mode: machine.PinInput})
//	nss.Configure(machine.PinConfig{Mode: machine.PinOutput})
//	link := spilink.New(machine.SPI0, busy.Get, nss.Set)
//	dev, err := subghz.New(link, subghz.DefaultConfig())
//
// Xfer holds NSS low for exactly one select window: the command bytes
// are clocked out, the response bytes are clocked back in, NSS is
// released. The radio ignores MOSI while it answers, so the read half
// clocks zeroes.
package spilink

import "tinygo.org/x/drivers"

// Link is a radio transport over a directly attached SPI bus.
type Link struct {
	bus  drivers.SPI
	busy func() bool
	nss  func(level bool)
}

// New wires the transport. busy reads the busy line (true = held high),
// nss drives the chip-select line level (false selects the chip, the
// line idles high).
func New(bus drivers.SPI, busy func() bool, nss func(level bool)) *Link {
	return &Link{bus: bus, busy: busy, nss: nss}
}

// Busy reports the busy line level.
func (l *Link) Busy() bool { return l.busy() }

// Xfer clocks one select window.
func (l *Link) Xfer(w, r []byte) error {
	l.nss(false)
	defer l.nss(true)
	if len(w) > 0 {
		if err := l.bus.Tx(w, nil); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if err := l.bus.Tx(nil, r); err != nil {
			return err
		}
	}
	return nil
}
