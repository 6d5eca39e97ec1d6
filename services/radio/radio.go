// Package radio runs a transceiver as a service. One goroutine owns
// the device: it keeps the chip in continuous receive, publishes what
// arrives on an event channel, and serialises transmits and channel
// probes against the receive pump.
package radio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subghz-go/drivers/subghz"
)

// ErrStopped reports a request made after the service shut down.
var ErrStopped = errors.New("radio: service stopped")

// Packet is one received frame with its radio metadata. Corrupt
// frames are delivered too, flagged, so the consumer decides what a
// bad CRC is worth.
type Packet struct {
	Data      []byte
	RssiDbm   int16
	SnrDb     int8
	CrcErr    bool
	HeaderErr bool
	TS        time.Time
}

// Event is what the service publishes: a packet, or an error from the
// receive pump.
type Event struct {
	Packet *Packet
	Err    error
}

// Config is the radio profile the service applies at bring-up. Zero
// fields take the defaults below.
type Config struct {
	// Frequency in Hz, default 868 MHz.
	Frequency uint32
	// Mod defaults to SF7, 125 kHz, CR 4/5.
	Mod subghz.LoRaModParams
	// Packet defaults to an 8 symbol preamble, 255 byte variable
	// length frames with CRC.
	Packet subghz.LoRaPacketParams
	// PowerDbm is used as given; DefaultConfig sets 14.
	PowerDbm int8
	Ramp     subghz.RampTime
	// Pa defaults to the high-power amplifier at duty cycle 4, HP max 7.
	Pa subghz.PaConfig
	// Regulator zero value is the LDO, the chip's own default.
	Regulator subghz.RegMode
	// Cad defaults to 8 symbols, peak 22, min 10. The exit mode is
	// always standby: the service owns reception and resumes it itself
	// after a probe.
	Cad subghz.CadParams

	// EventBuffer is the event channel depth, default 16.
	EventBuffer int
	// PollInterval is the completion poll cadence, default 2ms. Links
	// with expensive round trips want this much coarser.
	PollInterval time.Duration
	// SendTimeout bounds one Send on the air, default 2s.
	SendTimeout time.Duration
}

// DefaultConfig is the profile New falls back on field by field.
func DefaultConfig() Config {
	return Config{
		Frequency: 868_000_000,
		Mod: subghz.LoRaModParams{
			SF: subghz.SF7,
			BW: subghz.LoRaBw125,
			CR: subghz.Cr45,
		},
		Packet: subghz.LoRaPacketParams{
			PreambleLen: 8,
			PayloadLen:  255,
			CrcOn:       true,
		},
		PowerDbm: 14,
		Ramp:     subghz.Ramp200us,
		Pa: subghz.PaConfig{
			PaDutyCycle: 0x04,
			HpMax:       0x07,
			Pa:          subghz.PaSelHP,
		},
		Cad: subghz.CadParams{
			Symbols: subghz.Cad8Symb,
			DetPeak: 22,
			DetMin:  10,
		},
		EventBuffer:  16,
		PollInterval: 2 * time.Millisecond,
		SendTimeout:  2 * time.Second,
	}
}

type sendReq struct {
	data []byte
	done chan error
}

type probeReq struct {
	bound time.Duration
	done  chan probeResult
}

type probeResult struct {
	detected bool
	err      error
}

// Service drives one device. Construct with New, configure the chip
// with Bringup, then Start the loop. The device must not be touched by
// anyone else once the loop runs.
type Service struct {
	dev *subghz.Device
	cfg Config

	outQ   chan Event
	sendQ  chan sendReq
	probeQ chan probeReq
	done   chan struct{}

	buf [subghz.BufferCapacity]byte
}

func New(dev *subghz.Device, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.Frequency == 0 {
		cfg.Frequency = def.Frequency
	}
	if cfg.Mod == (subghz.LoRaModParams{}) {
		cfg.Mod = def.Mod
	}
	if cfg.Packet.PreambleLen == 0 {
		cfg.Packet = def.Packet
	}
	if cfg.Pa == (subghz.PaConfig{}) {
		cfg.Pa = def.Pa
	}
	if cfg.Cad == (subghz.CadParams{}) {
		cfg.Cad = def.Cad
	}
	cfg.Cad.Exit = subghz.CadExitStandby
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	return &Service{
		dev:    dev,
		cfg:    cfg,
		outQ:   make(chan Event, cfg.EventBuffer),
		sendQ:  make(chan sendReq),
		probeQ: make(chan probeReq),
		done:   make(chan struct{}),
	}
}

// Events is the stream of received packets and pump errors. Events are
// dropped, not queued, when the consumer falls behind.
func (s *Service) Events() <-chan Event { return s.outQ }

// Done closes when the service loop has exited and the chip is back in
// standby.
func (s *Service) Done() <-chan struct{} { return s.done }

// Bringup takes the chip from an unknown power state to a configured
// standby: resynchronise, then apply the whole LoRa profile.
func (s *Service) Bringup() error {
	if err := s.resync(); err != nil {
		return err
	}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"standby", func() error { return s.dev.SetStandby(subghz.StandbyRC) }},
		{"regulator", func() error { return s.dev.SetRegulatorMode(s.cfg.Regulator) }},
		{"calibrate", func() error { return s.dev.Calibrate(subghz.CalAll) }},
		{"frequency", func() error { return s.dev.SetFrequency(s.cfg.Frequency) }},
		{"buffer base", func() error { return s.dev.SetBufferBaseAddress(0, 0) }},
		{"packet type", func() error { return s.dev.SetPacketType(subghz.PacketTypeLoRa) }},
		{"modulation", func() error { return s.dev.SetLoRaModParams(s.cfg.Mod) }},
		{"packet params", func() error { return s.dev.SetLoRaPacketParams(s.cfg.Packet) }},
		{"pa config", func() error { return s.dev.SetPaConfig(s.cfg.Pa) }},
		{"tx params", func() error { return s.dev.SetTxParams(s.cfg.PowerDbm, s.cfg.Ramp) }},
		{"fallback", func() error { return s.dev.SetTxRxFallbackMode(subghz.FallbackStandbyRC) }},
		{"cad params", func() error { return s.dev.SetCadParams(s.cfg.Cad) }},
		{"irq routing", func() error {
			return s.dev.SetDioIrqParams(subghz.IrqAll, subghz.IrqAll, subghz.IrqNone, subghz.IrqNone)
		}},
	}
	for _, st := range steps {
		if err := st.fn(); err != nil {
			return fmt.Errorf("radio: bringup %s: %w", st.name, err)
		}
	}
	return nil
}

// resync realigns the driver with whatever state the chip is actually
// in. A sleeping chip needs a second pass: the first select window
// wakes it but reads garbage, or holds busy until an explicit wake.
func (s *Service) resync() error {
	_, err := s.dev.Resync()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, subghz.ErrUnknownChipMode):
		_, err = s.dev.Resync()
	case errors.Is(err, subghz.ErrBusTimeout):
		if werr := s.dev.Wake(); werr != nil {
			return fmt.Errorf("radio: wake: %w", werr)
		}
		_, err = s.dev.Resync()
	}
	if err != nil {
		return fmt.Errorf("radio: resync: %w", err)
	}
	return nil
}

// Start opens continuous reception and launches the service loop.
func (s *Service) Start(ctx context.Context) error {
	if err := s.dev.StartReceive(subghz.TimeoutContinuous); err != nil {
		return fmt.Errorf("radio: start receive: %w", err)
	}
	go s.run(ctx)
	return nil
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	tick := time.NewTicker(s.cfg.PollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			// best effort; the chip may be unreachable by now
			s.dev.SetStandby(subghz.StandbyRC)
			return
		case req := <-s.sendQ:
			req.done <- s.transmit(req.data)
		case req := <-s.probeQ:
			req.done <- s.probe(req.bound)
		case <-tick.C:
			s.pump()
		}
	}
}

// Send transmits data and blocks until it is on the air or has failed.
// Sends serialise with each other and with reception.
func (s *Service) Send(data []byte) error {
	req := sendReq{data: append([]byte(nil), data...), done: make(chan error, 1)}
	select {
	case s.sendQ <- req:
	case <-s.done:
		return ErrStopped
	}
	select {
	case err := <-req.done:
		return err
	case <-s.done:
		return ErrStopped
	}
}

// Detect probes the channel for activity and reports whether it is in
// use. Reception pauses for the probe.
func (s *Service) Detect(bound time.Duration) (bool, error) {
	req := probeReq{bound: bound, done: make(chan probeResult, 1)}
	select {
	case s.probeQ <- req:
	case <-s.done:
		return false, ErrStopped
	}
	select {
	case res := <-req.done:
		return res.detected, res.err
	case <-s.done:
		return false, ErrStopped
	}
}

// transmit suspends reception for one send. A failed resume goes to
// the event stream; the send result goes back to the caller.
func (s *Service) transmit(data []byte) error {
	if err := s.dev.SetStandby(subghz.StandbyRC); err != nil {
		return err
	}
	err := s.dev.Transmit(data, s.cfg.SendTimeout)
	if rerr := s.dev.StartReceive(subghz.TimeoutContinuous); rerr != nil {
		s.emit(Event{Err: fmt.Errorf("radio: resume receive: %w", rerr)})
	}
	return err
}

func (s *Service) probe(bound time.Duration) probeResult {
	if err := s.dev.SetStandby(subghz.StandbyRC); err != nil {
		return probeResult{err: err}
	}
	detected, err := s.dev.DetectChannel(bound)
	if rerr := s.dev.StartReceive(subghz.TimeoutContinuous); rerr != nil {
		s.emit(Event{Err: fmt.Errorf("radio: resume receive: %w", rerr)})
	}
	return probeResult{detected: detected, err: err}
}

// pump drains one receive completion if one is pending.
func (s *Service) pump() {
	pkt, err := s.dev.PollReceive(s.buf[:])
	if err != nil {
		if errors.Is(err, subghz.ErrNotReady) {
			return
		}
		s.emit(Event{Err: err})
		return
	}
	p := &Packet{
		Data:      append([]byte(nil), pkt.Data...),
		RssiDbm:   pkt.RssiDbm,
		SnrDb:     pkt.SnrDb,
		CrcErr:    pkt.CrcErr,
		HeaderErr: pkt.HeaderErr,
		TS:        time.Now(),
	}
	s.emit(Event{Packet: p})
}

func (s *Service) emit(ev Event) {
	select {
	case s.outQ <- ev:
	default:
		// drop if consumer is slow
	}
}
