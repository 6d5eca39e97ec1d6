package subghz

import (
	"testing"
	"time"

	"subghz-go/drivers/subghz/subghzsim"
)

var _ Transport = (*subghzsim.Radio)(nil)

// testConfig keeps the waits short so failure paths resolve quickly.
func testConfig() Config {
	return Config{
		BusyTimeout:  5 * time.Millisecond,
		PollInterval: 50 * time.Microsecond,
		WaitSlack:    50 * time.Millisecond,
	}
}

// recorder is a scripted transport: it captures every select window and
// answers reads from a queued response list, zero-filling past the end.
type recorder struct {
	frames     [][]byte
	resps      [][]byte
	busy       int
	violations int
}

var _ Transport = (*recorder)(nil)

func (r *recorder) Busy() bool {
	if r.busy > 0 {
		r.busy--
		return true
	}
	return false
}

func (r *recorder) Xfer(w, rd []byte) error {
	if r.busy > 0 {
		r.violations++
	}
	r.frames = append(r.frames, append([]byte(nil), w...))
	var resp []byte
	if len(rd) > 0 && len(r.resps) > 0 {
		resp = r.resps[0]
		r.resps = r.resps[1:]
	}
	for i := range rd {
		if i < len(resp) {
			rd[i] = resp[i]
		} else {
			rd[i] = 0
		}
	}
	return nil
}

func (r *recorder) push(resp ...byte) {
	r.resps = append(r.resps, resp)
}

func (r *recorder) lastFrame(t *testing.T) []byte {
	t.Helper()
	if len(r.frames) == 0 {
		t.Fatal("no select windows were opened")
	}
	return r.frames[len(r.frames)-1]
}

func wantBytes(t *testing.T, got, want []byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d (% X vs % X)", len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("byte %d is %#02x, want %#02x (% X)", i, got[i], want[i], got)
		}
	}
}

// newRecDevice returns a device over a recorder with the mode model
// forced to RC standby; most commands are illegal from the power-up
// assumption and the wire-format tests are not about that.
func newRecDevice(t *testing.T) (*Device, *recorder) {
	t.Helper()
	rec := &recorder{}
	d, err := New(rec, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.sm.mode = ModeStandbyRC
	return d, rec
}

// newSimDevice returns a device over the chip model, resynchronized out
// of the power-up assumption and with every event enabled.
func newSimDevice(t *testing.T) (*Device, *subghzsim.Radio) {
	t.Helper()
	sim := subghzsim.New()
	d, err := New(sim, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.Resync(); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if err := d.SetDioIrqParams(IrqAll, IrqAll, IrqNone, IrqNone); err != nil {
		t.Fatalf("irq config: %v", err)
	}
	return d, sim
}

// bringUpLoRa walks the standard LoRa bring-up sequence.
func bringUpLoRa(t *testing.T, d *Device) {
	t.Helper()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"standby", func() error { return d.SetStandby(StandbyRC) }},
		{"calibrate", func() error { return d.Calibrate(CalAll) }},
		{"frequency", func() error { return d.SetFrequency(868_000_000) }},
		{"buffer base", func() error { return d.SetBufferBaseAddress(0x00, 0x00) }},
		{"packet type", func() error { return d.SetPacketType(PacketTypeLoRa) }},
		{"mod params", func() error {
			return d.SetLoRaModParams(LoRaModParams{SF: SF7, BW: LoRaBw125, CR: Cr45})
		}},
		{"packet params", func() error {
			return d.SetLoRaPacketParams(LoRaPacketParams{PreambleLen: 8, PayloadLen: 16, CrcOn: true})
		}},
		{"pa config", func() error {
			return d.SetPaConfig(PaConfig{PaDutyCycle: 0x04, HpMax: 0x07, Pa: PaSelHP})
		}},
		{"tx params", func() error { return d.SetTxParams(14, Ramp200us) }},
		{"fallback", func() error { return d.SetTxRxFallbackMode(FallbackStandbyRC) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			t.Fatalf("bring-up %s: %v", s.name, err)
		}
	}
}
