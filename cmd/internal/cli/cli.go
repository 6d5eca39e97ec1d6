// Package cli carries the flag plumbing the radio tools share: link
// selection, bus timing for the chosen link, and the service profile.
package cli

import (
	"flag"
	"fmt"
	"io"
	"time"

	"subghz-go/drivers/subghz"
	"subghz-go/link/serbridge"
	"subghz-go/link/spidev"
	"subghz-go/services/radio"
)

// Conn is an open transport with its Close.
type Conn interface {
	subghz.Transport
	io.Closer
}

// LinkFlags selects how a tool reaches the radio: the kernel SPI port
// by default, a serial bridge when -serial is set.
type LinkFlags struct {
	SpiPort string
	BusyPin string
	SpeedHz int64
	Serial  string
	Baud    int
}

func (f *LinkFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.SpiPort, "spi", "/dev/spidev0.0", "SPI port of the radio")
	fs.StringVar(&f.BusyPin, "busy", "GPIO24", "GPIO name of the busy line")
	fs.Int64Var(&f.SpeedHz, "speed", 8_000_000, "SPI clock in Hz")
	fs.StringVar(&f.Serial, "serial", "", "serial bridge port, overrides -spi")
	fs.IntVar(&f.Baud, "baud", 115200, "serial bridge baud rate")
}

// Open opens the selected link. The returned bus config carries poll
// timing suited to it: bridge round trips cost milliseconds, so the
// busy poll slows down accordingly.
func (f *LinkFlags) Open() (Conn, subghz.Config, error) {
	if f.Serial != "" {
		l, err := serbridge.Open(serbridge.Config{Port: f.Serial, BaudRate: f.Baud})
		if err != nil {
			return nil, subghz.Config{}, err
		}
		cfg := subghz.DefaultConfig()
		cfg.PollInterval = 2 * time.Millisecond
		cfg.BusyTimeout = 2 * time.Second
		return l, cfg, nil
	}
	l, err := spidev.Open(spidev.Config{Port: f.SpiPort, BusyPin: f.BusyPin, SpeedHz: f.SpeedHz})
	if err != nil {
		return nil, subghz.Config{}, err
	}
	return l, subghz.DefaultConfig(), nil
}

// RadioFlags is the tunable part of the service profile.
type RadioFlags struct {
	FreqHz uint
	SF     uint
	Power  int
}

func (f *RadioFlags) Register(fs *flag.FlagSet) {
	fs.UintVar(&f.FreqHz, "freq", 868_000_000, "RF frequency in Hz")
	fs.UintVar(&f.SF, "sf", 7, "LoRa spreading factor, 5..12")
	fs.IntVar(&f.Power, "power", 14, "TX power in dBm")
}

// Config folds the flags into the default service profile.
func (f *RadioFlags) Config() (radio.Config, error) {
	if f.SF < 5 || f.SF > 12 {
		return radio.Config{}, fmt.Errorf("spreading factor %d out of range 5..12", f.SF)
	}
	cfg := radio.DefaultConfig()
	cfg.Frequency = uint32(f.FreqHz)
	cfg.Mod.SF = subghz.SpreadingFactor(f.SF)
	cfg.PowerDbm = int8(f.Power)
	return cfg, nil
}
