//go:build !linux

package control

import "syscall"

func controlSocket(network, address string, conn syscall.RawConn) error {
	return nil
}
