package subghz

// Transport is the physical command-bus access the driver needs: the
// radio's busy line plus raw byte exchange inside one select window.
//
// Xfer opens one select window, clocks out w, then clocks len(r) bytes
// back in, and closes the window. Either slice may be empty. The first
// byte clocked in after a command's opcode/payload is the status byte.
//
// Busy must be a plain level read with no side effects; the driver polls
// it before and after every window.
type Transport interface {
	Busy() bool
	Xfer(w, r []byte) error
}
