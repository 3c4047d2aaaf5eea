package transport

import (
	"io"
	"net"
	"strings"
	"time"
)

// InheritTimeout means "use whatever deadline the underlying connection
// already carries" rather than setting one explicitly.
const InheritTimeout = -1 * time.Second

// Conn wraps a net.Conn with the fixed-header framing and state this
// transport needs: a reusable body buffer sized to the largest frame
// seen so far, and a receive-side timeout (send has none; only receive
// blocks on peer data that may never arrive).
type Conn struct {
	raw            net.Conn
	buffer         []byte // reused across Receive calls, grown on demand
	timeoutSeconds time.Duration
	remoteAddr     string
}

// NewConn wraps raw. timeout == InheritTimeout leaves raw's existing
// deadline (if any) untouched; any other value is applied to every
// subsequent Receive.
func NewConn(raw net.Conn, timeout time.Duration) *Conn {
	return &Conn{
		raw:            raw,
		timeoutSeconds: timeout,
		remoteAddr:     canonicalAddr(raw.RemoteAddr().String()),
	}
}

// RemoteAddr returns the peer's canonicalized address (the ::ffff:
// IPv4-mapped-IPv6 prefix stripped, if present).
func (c *Conn) RemoteAddr() string { return c.remoteAddr }

// canonicalAddr strips the ::ffff: IPv4-mapped IPv6 prefix some stacks
// report a plain IPv4 peer under.
func canonicalAddr(addr string) string {
	return strings.TrimPrefix(addr, "::ffff:")
}

// Send optionally AES-ECB-encrypts f.Body in place (the caller must have
// already padded it to a 16-byte multiple), writes the header and body,
// and closes the connection afterward if FlagCloseAfterSend is set.
func (c *Conn) Send(f Frame) error {
	body := f.Body
	if f.Flags&FlagEncrypted != 0 {
		if err := encryptECB(body); err != nil {
			return err
		}
	}
	f.TransmissionBytes = int64(HeaderBytes + len(body))

	if _, err := c.raw.Write(f.encodeHeader()); err != nil {
		return wrapWriteErr(err)
	}
	if len(body) > 0 {
		if _, err := c.raw.Write(body); err != nil {
			return wrapWriteErr(err)
		}
	}
	if f.Flags&FlagCloseAfterSend != 0 {
		return c.raw.Close()
	}
	return nil
}

// Receive reads exactly one frame: the 16-byte header, then
// header.TransmissionBytes-HeaderBytes of body, growing c.buffer if
// needed. If wantID is non-empty, a mismatching header ID is rejected
// with ErrIDMismatch before any body bytes are read. The body is
// decrypted in place when FlagEncrypted is set.
func (c *Conn) Receive(wantID string) (Frame, error) {
	if c.timeoutSeconds != InheritTimeout {
		if err := c.raw.SetReadDeadline(time.Now().Add(c.timeoutSeconds)); err != nil {
			return Frame{}, err
		}
	}

	header := make([]byte, HeaderBytes)
	if _, err := io.ReadFull(c.raw, header); err != nil {
		return Frame{}, classifyReadErr(err)
	}
	f := decodeHeader(header)

	if wantID != "" {
		var want [4]byte
		copy(want[:], wantID)
		if f.ID != want {
			return Frame{}, ErrIDMismatch
		}
	}

	bodyLen := int(f.TransmissionBytes) - HeaderBytes
	if bodyLen < 0 {
		return Frame{}, ErrSocketClosed
	}
	if cap(c.buffer) < bodyLen {
		c.buffer = make([]byte, bodyLen)
	}
	body := c.buffer[:bodyLen]
	if bodyLen > 0 {
		if _, err := io.ReadFull(c.raw, body); err != nil {
			return Frame{}, classifyReadErr(err)
		}
	}
	if f.Flags&FlagEncrypted != 0 {
		if err := decryptECB(body); err != nil {
			return Frame{}, err
		}
	}
	f.Body = body
	return f, nil
}

// Dial opens a stream connection to addr and wraps it.
func Dial(network, addr string, timeout time.Duration) (*Conn, error) {
	raw, err := net.Dial(network, addr)
	if err != nil {
		return nil, ErrSocketOpenFailed
	}
	return NewConn(raw, timeout), nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.raw.Close() }

func wrapWriteErr(err error) error {
	if err == io.ErrClosedPipe {
		return ErrSocketClosed
	}
	return err
}

func classifyReadErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrSocketClosed
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrTimeout
	}
	return err
}
