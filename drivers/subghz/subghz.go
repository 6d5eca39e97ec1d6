// Package subghz drives a sub-GHz LoRa/FSK radio transceiver that is
// controlled through a binary command/response protocol rather than
// memory-mapped registers: every interaction is an opcode plus payload
// clocked over an internal bus, gated by a hardware busy line, with a
// status byte leading every response.
//
// The package layers, leaves first:
//
//	Bus          one busy-gated command transaction at a time
//	Status       total decode of the status byte (mode + outcome)
//	mode machine legality guard + transition table for the mode model
//	Irq          read/clear of the packet-lifecycle event flags
//	buffer ops   offset/length-checked access to the 256-byte data buffer
//	Device       the façade: configuration sequences and the transmit /
//	             receive / channel-activity workflows
//
// Workflows come in two styles over the same state: blocking calls with
// a bounded wait, and Start/Poll pairs for callers that run no
// scheduler (Poll* return ErrNotReady while the operation is in
// flight). The Device is a singleton handle: construct exactly one per
// radio and pass it around; any multiplexing between logical users
// belongs above this driver.
//
// Received-packet corruption (CRC or header errors) is reported as data
// on the returned packet, not as an error: a corrupted packet is an
// expected outcome of radio reception. Nothing is retried internally.
package subghz

import "time"

// Config tunes the driver's waiting behaviour.
type Config struct {
	// BusyTimeout bounds each busy-line wait.
	BusyTimeout time.Duration
	// PollInterval is the delay between busy-line or flag polls.
	PollInterval time.Duration
	// WaitSlack is added to a blocking workflow's hardware timeout to
	// form the software wait bound.
	WaitSlack time.Duration
}

// DefaultConfig returns conservative defaults: block calibration and
// oscillator starts keep the busy line high for milliseconds.
func DefaultConfig() Config {
	return Config{
		BusyTimeout:  100 * time.Millisecond,
		PollInterval: 100 * time.Microsecond,
		WaitSlack:    200 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BusyTimeout <= 0 || c.PollInterval <= 0 || c.WaitSlack <= 0 ||
		c.PollInterval > c.BusyTimeout {
		return ErrParamRange
	}
	return nil
}

// Device is the unique handle to one radio. All methods issue guarded
// command transactions; none is safe for concurrent use.
type Device struct {
	bus Bus
	sm  modeMachine
	cfg Config

	typeSet    bool
	packetType PacketType
	pktSet     bool
	loraPkt    LoRaPacketParams
	fskPkt     FskPacketParams
	maxPayload uint8
	txBase     uint8
	rxBase     uint8

	rxContinuous bool
	cadRxExit    bool

	// Payload scratch: offset byte plus a full buffer, which also
	// covers the largest register write.
	pb [2 + BufferCapacity]byte
}

// New builds the handle for the radio behind t. The mode model starts
// at Sleep, the power-up assumption; call Resync (or Wake, if the chip
// is really asleep) before trusting it.
func New(t Transport, cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Device{
		bus: Bus{t: t, timeout: cfg.BusyTimeout, poll: cfg.PollInterval},
		sm:  newModeMachine(),
		cfg: cfg,
	}
	return d, nil
}

// Mode returns the driver's mode model. The model follows the
// transition table, not the status byte; use Resync to realign after
// errors.
func (d *Device) Mode() Mode { return d.sm.mode }

// exec runs one guarded transaction: mode legality first (a rejection
// causes no bus traffic), then the bus transaction, then the mode model
// update from the transition table.
func (d *Device) exec(c Command) ([]byte, error) {
	if err := d.sm.guard(c.Op); err != nil {
		return nil, err
	}
	resp, err := d.bus.Execute(c)
	if err != nil {
		return nil, err
	}
	d.sm.apply(c.Op, c.Payload)
	return resp, nil
}

// ---------------- Lifecycle ----------------

// StandbyClk selects the standby clock source.
type StandbyClk uint8

const (
	StandbyRC   StandbyClk = standbyClkRC
	StandbyXOSC StandbyClk = standbyClkXOSC
)

// SetStandby enters standby on the given clock. Legal from every mode;
// this is also the cooperative abort for an in-flight TX/RX wait.
func (d *Device) SetStandby(clk StandbyClk) error {
	if clk != StandbyRC && clk != StandbyXOSC {
		return ErrParamRange
	}
	d.pb[0] = byte(clk)
	_, err := d.exec(Command{Op: OpSetStandby, Payload: d.pb[:1]})
	return err
}

// SleepCfg is the SetSleep configuration byte.
type SleepCfg uint8

const (
	// SleepCold discards the radio configuration while asleep.
	SleepCold SleepCfg = 0x00
	// SleepWarm retains the radio configuration while asleep.
	SleepWarm SleepCfg = 0x04
	// SleepRtcWake allows the RTC to wake the radio.
	SleepRtcWake SleepCfg = 0x01
)

// SetSleep puts the radio to sleep. The post-transaction busy wait is
// skipped: a sleeping chip holds the busy line, which is not a fault.
// Wake it with Wake, or with SetStandby through the guard table.
func (d *Device) SetSleep(cfg SleepCfg) error {
	if err := d.sm.guard(OpSetSleep); err != nil {
		return err
	}
	if err := d.bus.waitReady(); err != nil {
		return err
	}
	d.pb[0] = byte(OpSetSleep)
	d.pb[1] = byte(cfg)
	if err := d.bus.window(d.pb[:2], nil); err != nil {
		return err
	}
	d.sm.apply(OpSetSleep, nil)
	return nil
}

// SetFs enters frequency-synthesis mode.
func (d *Device) SetFs() error {
	_, err := d.exec(Command{Op: OpSetFs})
	return err
}

// Wake pulls a sleeping radio back up: opening a select window is what
// wakes the chip, so this deliberately skips the busy gate, then waits
// for the chip to come ready. The radio wakes into RC standby.
func (d *Device) Wake() error {
	d.pb[0] = byte(OpGetStatus)
	if err := d.bus.window(d.pb[:1], nil); err != nil {
		return err
	}
	if err := d.bus.waitReady(); err != nil {
		return err
	}
	d.sm.mode = ModeStandbyRC
	return nil
}

// Status reads and decodes the status byte without touching the mode
// model.
func (d *Device) Status() (Status, error) {
	resp, err := d.exec(Command{Op: OpGetStatus, RespLen: 1})
	if err != nil {
		return 0, err
	}
	return Status(resp[0]), nil
}

// Resync realigns the mode model with the chip. It is the recovery
// path after an illegal transition or a timeout, and the first call at
// startup when the power-up assumption (Sleep) is unverifiable. The
// busy gate is best-effort here, since a sleeping chip holds busy and
// the select window itself wakes it; the chip must come ready
// afterwards. An undecodable chip mode leaves the model untouched.
func (d *Device) Resync() (Status, error) {
	_ = d.bus.waitReady()
	d.pb[0] = byte(OpGetStatus)
	var r [1]byte
	if err := d.bus.window(d.pb[:1], r[:]); err != nil {
		return 0, err
	}
	if err := d.bus.waitReady(); err != nil {
		return 0, err
	}
	s := Status(r[0])
	if err := d.sm.adoptChip(s.Mode()); err != nil {
		return s, err
	}
	return s, nil
}
