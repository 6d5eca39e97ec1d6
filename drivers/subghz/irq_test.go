package subghz

import "testing"

func TestIrqStatusWire(t *testing.T) {
	d, rec := newRecDevice(t)
	rec.push(0x2C, 0x02, 0x41)

	flags, err := d.IrqStatus()
	if err != nil {
		t.Fatalf("irq status: %v", err)
	}
	if flags != IrqTimeout|IrqCrcErr|IrqTxDone {
		t.Fatalf("flags %#04x, want %#04x", uint16(flags), uint16(IrqTimeout|IrqCrcErr|IrqTxDone))
	}
	// One read window and nothing else: reading never clears.
	if len(rec.frames) != 1 {
		t.Fatalf("%d windows, want 1", len(rec.frames))
	}
	wantBytes(t, rec.lastFrame(t), []byte{0x12})
}

func TestClearIrqWire(t *testing.T) {
	d, rec := newRecDevice(t)

	if err := d.ClearIrq(IrqTxDone | IrqTimeout); err != nil {
		t.Fatalf("clear: %v", err)
	}
	wantBytes(t, rec.lastFrame(t), []byte{0x02, 0x02, 0x01})

	if err := d.ClearIrq(IrqAll); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	wantBytes(t, rec.lastFrame(t), []byte{0x02, 0x03, 0xFF})
}

func TestSetDioIrqParamsWire(t *testing.T) {
	d, rec := newRecDevice(t)

	err := d.SetDioIrqParams(IrqAll, IrqRxDone|IrqTxDone, IrqNone, IrqNone)
	if err != nil {
		t.Fatalf("dio irq params: %v", err)
	}
	wantBytes(t, rec.lastFrame(t), []byte{
		0x08,
		0x03, 0xFF, // enable mask
		0x00, 0x03, // line 1
		0x00, 0x00, // line 2
		0x00, 0x00, // line 3
	})
}

func TestIrqOpsIllegalFromSleep(t *testing.T) {
	rec := &recorder{}
	d, err := New(rec, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.IrqStatus(); err != ErrIllegalTransition {
		t.Fatalf("read err = %v, want ErrIllegalTransition", err)
	}
	if err := d.ClearIrq(IrqAll); err != ErrIllegalTransition {
		t.Fatalf("clear err = %v, want ErrIllegalTransition", err)
	}
	if len(rec.frames) != 0 {
		t.Fatalf("%d windows opened from sleep", len(rec.frames))
	}
}
