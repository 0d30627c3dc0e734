//go:build !unix

package network

import "syscall"

func controlFor(string) func(network, address string, c syscall.RawConn) error {
	return nil
}
