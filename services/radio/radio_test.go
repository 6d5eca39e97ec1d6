package radio

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"subghz-go/drivers/subghz"
	"subghz-go/drivers/subghz/subghzsim"
)

func testBusConfig() subghz.Config {
	return subghz.Config{
		BusyTimeout:  5 * time.Millisecond,
		PollInterval: 50 * time.Microsecond,
		WaitSlack:    50 * time.Millisecond,
	}
}

// newService wires a service to a fresh simulated radio. tweak runs
// before anything touches the chip, so tests preset simulator knobs
// and the service profile without racing the loop.
func newService(t *testing.T, tweak func(sim *subghzsim.Radio, cfg *Config)) (*Service, *subghzsim.Radio) {
	t.Helper()
	sim := subghzsim.New()
	cfg := Config{PollInterval: time.Millisecond}
	if tweak != nil {
		tweak(sim, &cfg)
	}
	dev, err := subghz.New(sim, testBusConfig())
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	return New(dev, cfg), sim
}

func startService(t *testing.T, s *Service) {
	t.Helper()
	if err := s.Bringup(); err != nil {
		t.Fatalf("bringup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		<-s.Done()
	})
}

func waitEvent(t *testing.T, s *Service) Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}
	return Event{}
}

func TestBringupConfiguresRadio(t *testing.T) {
	s, sim := newService(t, nil)

	if err := s.Bringup(); err != nil {
		t.Fatalf("bringup: %v", err)
	}
	if got := sim.FreqCode(); got != 0x36400000 {
		t.Errorf("frequency code = %#x, want 0x36400000", got)
	}
	f1, f2 := sim.CalImage()
	if f1 != 0xD7 || f2 != 0xDB {
		t.Errorf("image calibration = %#x %#x, want 0xd7 0xdb", f1, f2)
	}
	if n := sim.Violations(); n != 0 {
		t.Errorf("busy violations = %d", n)
	}
	if got := s.dev.Mode(); got != subghz.ModeStandbyRC {
		t.Errorf("mode = %v, want %v", got, subghz.ModeStandbyRC)
	}
}

func TestBringupWakesSleepingChip(t *testing.T) {
	sim := subghzsim.New()
	dev, err := subghz.New(sim, testBusConfig())
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	if _, err := dev.Resync(); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if err := dev.SetSleep(subghz.SleepWarm); err != nil {
		t.Fatalf("sleep: %v", err)
	}

	s := New(dev, Config{})
	if err := s.Bringup(); err != nil {
		t.Fatalf("bringup: %v", err)
	}
	if sim.Sleeping() {
		t.Error("chip still asleep after bringup")
	}
	if got := s.dev.Mode(); got != subghz.ModeStandbyRC {
		t.Errorf("mode = %v, want %v", got, subghz.ModeStandbyRC)
	}
}

func TestReceivePumpEmitsPackets(t *testing.T) {
	s, sim := newService(t, nil)
	startService(t, s)

	sim.QueueRx([]byte{0x01, 0x02, 0x03}, false)
	ev := waitEvent(t, s)
	if ev.Err != nil {
		t.Fatalf("event error: %v", ev.Err)
	}
	if ev.Packet == nil {
		t.Fatal("event carries no packet")
	}
	if want := []byte{0x01, 0x02, 0x03}; !bytes.Equal(ev.Packet.Data, want) {
		t.Errorf("data = %x, want %x", ev.Packet.Data, want)
	}
	if ev.Packet.CrcErr || ev.Packet.HeaderErr {
		t.Errorf("clean packet flagged: %+v", ev.Packet)
	}
	if ev.Packet.RssiDbm != -50 || ev.Packet.SnrDb != 5 {
		t.Errorf("rssi/snr = %d/%d, want -50/5", ev.Packet.RssiDbm, ev.Packet.SnrDb)
	}

	// continuous receive: a second packet arrives without any restart
	sim.QueueRx([]byte{0x04}, false)
	ev = waitEvent(t, s)
	if ev.Packet == nil || !bytes.Equal(ev.Packet.Data, []byte{0x04}) {
		t.Fatalf("second event = %+v", ev)
	}
}

func TestSendSerialisesWithReception(t *testing.T) {
	s, sim := newService(t, nil)
	startService(t, s)

	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := s.Send(data); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !bytes.Equal(sim.LastTx(), data) {
		t.Errorf("aired %x, want %x", sim.LastTx(), data)
	}

	// reception resumed once the send finished
	sim.QueueRx([]byte{0x42}, false)
	ev := waitEvent(t, s)
	if ev.Packet == nil || !bytes.Equal(ev.Packet.Data, []byte{0x42}) {
		t.Fatalf("event after send = %+v", ev)
	}
}

func TestCorruptPacketIsDeliveredFlagged(t *testing.T) {
	s, sim := newService(t, nil)
	startService(t, s)

	sim.QueueRx([]byte{0xBA, 0xD1}, true)
	ev := waitEvent(t, s)
	if ev.Packet == nil || !ev.Packet.CrcErr {
		t.Fatalf("corrupt packet event = %+v", ev)
	}
	if !bytes.Equal(ev.Packet.Data, []byte{0xBA, 0xD1}) {
		t.Errorf("data = %x, want ba d1", ev.Packet.Data)
	}
	if got := sim.Irq(); got != 0 {
		t.Errorf("pending irq after pump = %#x, want 0", got)
	}
}

func TestHeaderErrSurfacesAsFlaggedPacket(t *testing.T) {
	s, sim := newService(t, nil)
	startService(t, s)

	sim.Fire(uint16(subghz.IrqHeaderErr))
	ev := waitEvent(t, s)
	if ev.Packet == nil || !ev.Packet.HeaderErr {
		t.Fatalf("header error event = %+v", ev)
	}
	if len(ev.Packet.Data) != 0 {
		t.Errorf("payload delivered with a broken header: %x", ev.Packet.Data)
	}
}

func TestDetectReportsChannelState(t *testing.T) {
	cases := map[string]bool{
		"clear":  false,
		"active": true,
	}
	for name, active := range cases {
		t.Run(name, func(t *testing.T) {
			s, _ := newService(t, func(sim *subghzsim.Radio, cfg *Config) {
				sim.ChannelActive = active
			})
			startService(t, s)

			got, err := s.Detect(100 * time.Millisecond)
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if got != active {
				t.Errorf("Detect() = %v, want %v", got, active)
			}

			// the probe hands the chip back to the receive pump
			if got := s.dev.Mode(); got != subghz.ModeRX {
				t.Errorf("mode after probe = %v, want %v", got, subghz.ModeRX)
			}
		})
	}
}

func TestSendFaultSurfaces(t *testing.T) {
	s, sim := newService(t, func(sim *subghzsim.Radio, cfg *Config) {
		// keep the pump off the bus so the armed fault hits the send
		cfg.PollInterval = time.Hour
	})
	startService(t, s)

	fault := errors.New("link dropped")
	sim.FailNext(fault)
	if err := s.Send([]byte{0x01}); !errors.Is(err, fault) {
		t.Fatalf("send error = %v, want the link fault", err)
	}
}

func TestSendAfterStopReturnsErrStopped(t *testing.T) {
	s, sim := newService(t, nil)
	if err := s.Bringup(); err != nil {
		t.Fatalf("bringup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
	<-s.Done()

	if err := s.Send([]byte{0x01}); !errors.Is(err, ErrStopped) {
		t.Fatalf("send after stop = %v, want ErrStopped", err)
	}
	if _, err := s.Detect(time.Second); !errors.Is(err, ErrStopped) {
		t.Fatalf("detect after stop = %v, want ErrStopped", err)
	}
	if got := sim.ChipMode(); got != 0x2 {
		t.Errorf("chip mode after stop = %#x, want RC standby", got)
	}
}
