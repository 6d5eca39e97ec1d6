package subghz

import "testing"

func TestCheckBoundsSweep(t *testing.T) {
	for _, capacity := range []int{0, 1, BufferCapacity} {
		for off := 0; off < 256; off++ {
			for _, n := range []int{0, 1, 2, 255, 256} {
				want := off+n <= capacity
				got := checkBounds(capacity, uint8(off), n) == nil
				if got != want {
					t.Fatalf("cap %d offset %d len %d: legal=%v, want %v",
						capacity, off, n, got, want)
				}
			}
		}
	}
	if checkBounds(BufferCapacity, 0, -1) == nil {
		t.Fatal("negative length accepted")
	}
}

func TestWriteBufferWire(t *testing.T) {
	d, rec := newRecDevice(t)

	if err := d.WriteBuffer(0x10, []byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	wantBytes(t, rec.lastFrame(t), []byte{0x0E, 0x10, 1, 2, 3})

	// A full buffer from offset zero is the largest legal write.
	if err := d.WriteBuffer(0, make([]byte, BufferCapacity)); err != nil {
		t.Fatalf("full write: %v", err)
	}
	if got := len(rec.lastFrame(t)); got != 2+BufferCapacity {
		t.Fatalf("full write frame is %d bytes, want %d", got, 2+BufferCapacity)
	}
}

func TestWriteBufferBounds(t *testing.T) {
	d, rec := newRecDevice(t)

	if err := d.WriteBuffer(250, make([]byte, 10)); err != ErrBufferOverflow {
		t.Fatalf("err = %v, want ErrBufferOverflow", err)
	}
	if err := d.WriteBuffer(1, make([]byte, BufferCapacity)); err != ErrBufferOverflow {
		t.Fatalf("err = %v, want ErrBufferOverflow", err)
	}
	if len(rec.frames) != 0 {
		t.Fatalf("%d windows opened for rejected writes", len(rec.frames))
	}
}

func TestReadBufferWire(t *testing.T) {
	d, rec := newRecDevice(t)
	rec.push(0x2C, 0xDE, 0xAD, 0xBE)

	buf := make([]byte, 3)
	if err := d.ReadBuffer(0x05, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	wantBytes(t, rec.lastFrame(t), []byte{0x1E, 0x05})
	wantBytes(t, buf, []byte{0xDE, 0xAD, 0xBE})

	if err := d.ReadBuffer(250, make([]byte, 10)); err != ErrBufferOverflow {
		t.Fatalf("err = %v, want ErrBufferOverflow", err)
	}
}

func TestRxBufferStatusParse(t *testing.T) {
	d, rec := newRecDevice(t)
	rec.push(0x2C, 0x20, 0x80)

	n, ptr, err := d.RxBufferStatus()
	if err != nil {
		t.Fatalf("rx buffer status: %v", err)
	}
	if n != 0x20 || ptr != 0x80 {
		t.Fatalf("got (%d, %#02x), want (32, 0x80)", n, ptr)
	}
	wantBytes(t, rec.lastFrame(t), []byte{0x13})
}

func TestSetBufferBaseAddressChecksConfiguredPayload(t *testing.T) {
	d, rec := newRecDevice(t)
	d.maxPayload = 16

	if err := d.SetBufferBaseAddress(0xF8, 0x00); err != ErrBufferOverflow {
		t.Fatalf("tx base err = %v, want ErrBufferOverflow", err)
	}
	if err := d.SetBufferBaseAddress(0x00, 0xF8); err != ErrBufferOverflow {
		t.Fatalf("rx base err = %v, want ErrBufferOverflow", err)
	}
	if len(rec.frames) != 0 {
		t.Fatalf("%d windows opened for rejected bases", len(rec.frames))
	}

	// 0xF0+16 lands exactly on the capacity.
	if err := d.SetBufferBaseAddress(0xF0, 0xF0); err != nil {
		t.Fatalf("boundary bases: %v", err)
	}
	wantBytes(t, rec.lastFrame(t), []byte{0x8F, 0xF0, 0xF0})
	if d.txBase != 0xF0 || d.rxBase != 0xF0 {
		t.Fatalf("bases not recorded: tx %#02x rx %#02x", d.txBase, d.rxBase)
	}
}
