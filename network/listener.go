package network

import (
	"context"
	stderrors "errors"
	"net"
	"net/netip"
	"os"
	"time"
)

// Listen opens a TCP listener with SO_REUSEADDR. IPv6 and wildcard addresses
// get an IPv6-only socket; IPv4 literals get an IPv4 socket.
func Listen(addr string) (*net.TCPListener, error) {
	network := listenNetwork(addr)
	lc := net.ListenConfig{Control: controlFor(network)}
	l, err := lc.Listen(context.Background(), network, addr)
	if err != nil {
		return nil, networkError(err, "listen "+addr)
	}
	return l.(*net.TCPListener), nil
}

func listenNetwork(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return "tcp6"
	}
	ip, err := netip.ParseAddr(host)
	if err == nil && ip.Is4() {
		return "tcp4"
	}
	return "tcp6"
}

// AcceptWithPoll waits up to poll for a connection. It returns (nil, nil)
// when the wait times out so callers can recheck their stop signal.
func AcceptWithPoll(l *net.TCPListener, poll time.Duration) (net.Conn, error) {
	if poll <= 0 {
		poll = DefaultPollTimeout
	}
	if err := l.SetDeadline(time.Now().Add(poll)); err != nil {
		return nil, networkError(err, "set accept deadline")
	}
	c, err := l.Accept()
	if err != nil {
		if stderrors.Is(err, os.ErrDeadlineExceeded) {
			return nil, nil
		}
		return nil, networkError(err, "accept")
	}
	return c, nil
}
