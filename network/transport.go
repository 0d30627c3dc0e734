package network

import (
	"io"
	"net"
	"time"

	"github.com/kostaleonard/leocoin/errors"
	pkgerrors "github.com/pkg/errors"
)

// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
const maxEmptyReads = 100

func networkError(err error, op string) error {
	return pkgerrors.Wrap(errors.NewError(errors.CodeNetworkFunction, err.Error()), op)
}

// RecvExact reads exactly n bytes from r, looping over partial reads. It
// never returns fewer than n bytes without an error.
func RecvExact(r io.Reader, n int) ([]byte, error) {
	if r == nil || n < 0 {
		return nil, errors.NewError(errors.CodeInvalidInput, "bad RecvExact arguments")
	}
	buf := make([]byte, n)
	got, empty := 0, 0
	for got < n {
		k, err := r.Read(buf[got:])
		got += k
		if got == n {
			break
		}
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, networkError(err, "recv")
		}
		if k == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, networkError(io.ErrNoProgress, "recv")
			}
			continue
		}
		empty = 0
	}
	return buf, nil
}

// SendExact writes all of b to w, looping over partial writes.
func SendExact(w io.Writer, b []byte) error {
	if w == nil {
		return errors.NewError(errors.CodeInvalidInput, "nil writer")
	}
	sent, empty := 0, 0
	for sent < len(b) {
		k, err := w.Write(b[sent:])
		sent += k
		if err != nil {
			return networkError(err, "send")
		}
		if k == 0 {
			empty++
			if empty >= maxEmptyReads {
				return networkError(io.ErrShortWrite, "send")
			}
			continue
		}
		empty = 0
	}
	return nil
}

// ReadMessage reads one frame: the fixed header, then exactly payloadLen
// bytes. Frames larger than maxPayload are rejected before reading the
// payload.
func ReadMessage(r io.Reader, maxPayload uint64) (Message, error) {
	raw, err := RecvExact(r, HeaderSize)
	if err != nil {
		return nil, err
	}
	h, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}
	if h.PayloadLen > maxPayload {
		return nil, errors.Newf(errors.CodeInvalidCommandLength, "payload of %d bytes exceeds limit %d", h.PayloadLen, maxPayload)
	}
	payload, err := RecvExact(r, int(h.PayloadLen))
	if err != nil {
		return nil, err
	}
	return DecodePayload(h, payload)
}

func WriteMessage(w io.Writer, msg Message) error {
	frame, err := Serialize(msg)
	if err != nil {
		return err
	}
	return SendExact(w, frame)
}

// Conn wraps a connection with a per-operation deadline and a frame size
// limit.
type Conn struct {
	net.Conn
	IOTimeout  time.Duration
	MaxPayload uint64
}

func NewConn(c net.Conn, ioTimeout time.Duration, maxPayload uint64) *Conn {
	if ioTimeout <= 0 {
		ioTimeout = DefaultIOTimeout
	}
	if maxPayload == 0 {
		maxPayload = DefaultMaxMessageSize
	}
	return &Conn{Conn: c, IOTimeout: ioTimeout, MaxPayload: maxPayload}
}

// Dial connects to addr with a connect timeout.
func Dial(addr string, dialTimeout, ioTimeout time.Duration, maxPayload uint64) (*Conn, error) {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	c, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, networkError(err, "dial "+addr)
	}
	return NewConn(c, ioTimeout, maxPayload), nil
}

func (c *Conn) Send(msg Message) error {
	if err := c.SetWriteDeadline(time.Now().Add(c.IOTimeout)); err != nil {
		return networkError(err, "set write deadline")
	}
	return WriteMessage(c.Conn, msg)
}

func (c *Conn) Receive() (Message, error) {
	if err := c.SetReadDeadline(time.Now().Add(c.IOTimeout)); err != nil {
		return nil, networkError(err, "set read deadline")
	}
	return ReadMessage(c.Conn, c.MaxPayload)
}

// ReceiveExpect receives one message and checks its command.
func (c *Conn) ReceiveExpect(cmd Command) (Message, error) {
	msg, err := c.Receive()
	if err != nil {
		return nil, err
	}
	if err := ExpectCommand(msg, cmd); err != nil {
		return nil, err
	}
	return msg, nil
}

// Request sends req and waits for a reply of kind want.
func (c *Conn) Request(req Message, want Command) (Message, error) {
	if err := c.Send(req); err != nil {
		return nil, err
	}
	return c.ReceiveExpect(want)
}
