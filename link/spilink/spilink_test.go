package spilink

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"

	"subghz-go/drivers/subghz"
)

var _ subghz.Transport = (*Link)(nil)

// fakeSPI records bus traffic as a sequence of step strings so the
// select-window composition can be asserted, pin edges included.
type fakeSPI struct {
	steps []string
	resp  []byte
	fail  error
}

var _ drivers.SPI = (*fakeSPI)(nil)

func (f *fakeSPI) Tx(w, r []byte) error {
	if f.fail != nil {
		return f.fail
	}
	if len(w) > 0 {
		f.steps = append(f.steps, "tx")
	}
	if len(r) > 0 {
		f.steps = append(f.steps, "rx")
		for i := range r {
			if i < len(f.resp) {
				r[i] = f.resp[i]
			} else {
				r[i] = 0
			}
		}
	}
	return nil
}

func (f *fakeSPI) Transfer(b byte) (byte, error) {
	f.steps = append(f.steps, "transfer")
	return 0, nil
}

func harness(bus *fakeSPI) (*Link, *bool) {
	level := true
	l := New(bus, func() bool { return false }, func(v bool) {
		if v {
			bus.steps = append(bus.steps, "nss-high")
		} else {
			bus.steps = append(bus.steps, "nss-low")
		}
		level = v
	})
	return l, &level
}

func wantSteps(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("steps %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("step %d is %q, want %q (%v)", i, got[i], want[i], got)
		}
	}
}

func TestXferComposesOneWindow(t *testing.T) {
	bus := &fakeSPI{resp: []byte{0x2C, 0xAB}}
	l, level := harness(bus)

	r := make([]byte, 2)
	if err := l.Xfer([]byte{0x12}, r); err != nil {
		t.Fatalf("xfer: %v", err)
	}
	wantSteps(t, bus.steps, []string{"nss-low", "tx", "rx", "nss-high"})
	if r[0] != 0x2C || r[1] != 0xAB {
		t.Fatalf("read % X, want 2C AB", r)
	}
	if !*level {
		t.Fatal("chip still selected after the window")
	}
}

func TestXferWriteOnlyWindow(t *testing.T) {
	bus := &fakeSPI{}
	l, _ := harness(bus)

	if err := l.Xfer([]byte{0x80, 0x00}, nil); err != nil {
		t.Fatalf("xfer: %v", err)
	}
	wantSteps(t, bus.steps, []string{"nss-low", "tx", "nss-high"})
}

func TestXferReleasesSelectOnFault(t *testing.T) {
	fault := errors.New("spi stuck")
	bus := &fakeSPI{fail: fault}
	l, level := harness(bus)

	if err := l.Xfer([]byte{0xC0}, nil); !errors.Is(err, fault) {
		t.Fatalf("err = %v, want the bus fault", err)
	}
	if !*level {
		t.Fatal("chip left selected after a fault")
	}
}

func TestBusyPassesThrough(t *testing.T) {
	held := true
	l := New(&fakeSPI{}, func() bool { return held }, func(bool) {})
	if !l.Busy() {
		t.Fatal("busy line high not reported")
	}
	held = false
	if l.Busy() {
		t.Fatal("busy line low reported busy")
	}
}
