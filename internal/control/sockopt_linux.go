//go:build linux

package control

import (
	"syscall"

	"golang.org/x/sys/unix"
)

const recvBufferSize = 1 << 20

// controlSocket applies socket options before bind: address reuse for fast
// restarts and a receive buffer sized for registration bursts.
func controlSocket(network, address string, conn syscall.RawConn) error {
	var opErr error
	err := conn.Control(func(fd uintptr) {
		if opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); opErr != nil {
			return
		}
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, recvBufferSize)
	})
	if err != nil {
		return err
	}
	return opErr
}
