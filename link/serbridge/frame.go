package serbridge

import (
	"fmt"
	"io"
)

// Wire format: 0x7E, type, big-endian payload length, payload, then a
// checksum that XORs the type, length and payload bytes. The start
// byte is excluded so the scanner can resynchronise on it.
const (
	sof byte = 0x7E

	typXfer      byte = 0x01
	typBusy      byte = 0x02
	typXferReply byte = 0x81
	typBusyReply byte = 0x82

	codeOK        byte = 0x00
	codeBusyStuck byte = 0x01
	codeBusFault  byte = 0x02
)

// maxPayload bounds a frame payload. The largest radio window is an
// opcode plus a 255 byte buffer plus the length prefixes, so 600
// leaves room without letting a corrupt length field stall the reader.
const maxPayload = 600

func checksum(typ byte, n uint16, payload []byte) byte {
	s := typ ^ byte(n>>8) ^ byte(n)
	for _, b := range payload {
		s ^= b
	}
	return s
}

func appendFrame(dst []byte, typ byte, payload []byte) []byte {
	n := uint16(len(payload))
	dst = append(dst, sof, typ, byte(n>>8), byte(n))
	dst = append(dst, payload...)
	return append(dst, checksum(typ, n, payload))
}

// frameScanner pulls frames off a byte stream, skipping noise between
// them.
type frameScanner struct {
	r   io.Reader
	buf [3 + maxPayload + 1]byte
}

// next blocks for the next well-formed frame and returns its type and
// payload. The payload aliases the scanner's buffer and is only valid
// until the following call.
func (sc *frameScanner) next() (byte, []byte, error) {
	for {
		if err := readFull(sc.r, sc.buf[:1]); err != nil {
			return 0, nil, err
		}
		if sc.buf[0] == sof {
			break
		}
	}
	if err := readFull(sc.r, sc.buf[:3]); err != nil {
		return 0, nil, err
	}
	typ := sc.buf[0]
	n := uint16(sc.buf[1])<<8 | uint16(sc.buf[2])
	if n > maxPayload {
		return 0, nil, fmt.Errorf("serbridge: frame length %d: %w", n, ErrProtocol)
	}
	body := sc.buf[3 : 3+int(n)+1]
	if err := readFull(sc.r, body); err != nil {
		return 0, nil, err
	}
	payload := body[:n]
	if body[n] != checksum(typ, n, payload) {
		return 0, nil, fmt.Errorf("serbridge: frame checksum: %w", ErrProtocol)
	}
	return typ, payload, nil
}

// readFull fills p. Serial ports with a read timeout report the
// timeout as a zero-byte read with a nil error; treating that as io
// progress would spin forever, so it surfaces as ErrBridgeTimeout.
func readFull(r io.Reader, p []byte) error {
	for len(p) > 0 {
		n, err := r.Read(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrBridgeTimeout
		}
		p = p[n:]
	}
	return nil
}
