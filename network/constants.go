package network

import "time"

const (
	// HeaderSize is prefix(4) + command(4) + payloadLen(8).
	HeaderSize = 4 + 4 + 8

	// ErrorMessageSize is the fixed payload size of an Error frame.
	ErrorMessageSize = 256

	// SockAddrSize is family(2) + port(2) + flowinfo(4) + address(16) + scope(4).
	SockAddrSize = 2 + 2 + 4 + 16 + 4
	// PeerEntrySize is a SockAddr followed by lastConnected:u64.
	PeerEntrySize = SockAddrSize + 8

	// AddressFamilyIPv6 is the AF_INET6 value written in RegisterPeer frames.
	AddressFamilyIPv6 = 10

	// DefaultMaxMessageSize bounds payloadLen before any payload is read.
	DefaultMaxMessageSize = 32 * 1024 * 1024

	// This prevents a silent peer from stalling an exchange.
	DefaultIOTimeout   = 10 * time.Second
	DefaultDialTimeout = 5 * time.Second
	// How long the accept loop blocks before rechecking its stop signal.
	DefaultPollTimeout = 100 * time.Millisecond
)

// Prefix starts every frame.
var Prefix = [4]byte{'L', 'E', 'O', 0}
