// Package console describes the external, line-oriented text console that
// the kernel traces to. The console itself (VGA text mode, serial port, ...)
// is an external collaborator; this package only states its contract and
// ships a dependency-free in-memory buffer implementation that is good enough to
// observe kernel tracing in tests before any real device is attached.
package console

// Console is implemented by any device that can display traced output.
// Puts/Puti are used only for human readable tracing, never for control
// flow, matching spec.md §6.
type Console interface {
	// Puts writes a line-oriented string to the console.
	Puts(s string)
	// Puti writes a decimal integer to the console.
	Puti(n int)
}

// RingConsole is a dependency-free Console that buffers everything it is
// given into memory. It is grounded on the early ring buffer that
// gopheros/kernel/kfmt uses to hold Printf output before a real TTY is
// attached.
type RingConsole struct {
	buf []byte
}

// NewRingConsole returns a RingConsole with no backing capacity limit other
// than available memory.
func NewRingConsole() *RingConsole {
	return &RingConsole{}
}

// Puts implements Console.
func (c *RingConsole) Puts(s string) {
	c.buf = append(c.buf, s...)
}

// Write implements io.Writer so a RingConsole can be attached directly to
// kfmt.SetOutputSink.
func (c *RingConsole) Write(p []byte) (int, error) {
	c.buf = append(c.buf, p...)
	return len(p), nil
}

// Puti implements Console.
func (c *RingConsole) Puti(n int) {
	c.buf = append(c.buf, itoa(n)...)
}

// String returns everything written to the console so far.
func (c *RingConsole) String() string {
	return string(c.buf)
}

// Reset discards any buffered output.
func (c *RingConsole) Reset() {
	c.buf = c.buf[:0]
}

func itoa(n int) []byte {
	if n == 0 {
		return []byte{'0'}
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		tmp[i] = '-'
	}
	return tmp[i:]
}
