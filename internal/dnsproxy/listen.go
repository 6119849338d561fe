package dnsproxy

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// listenConfig returns a net.ListenConfig, optionally setting SO_REUSEPORT
// on the socket so several dnsblockd processes can share one listen address.
func listenConfig(reusePort bool) net.ListenConfig {
	var lc net.ListenConfig
	if reusePort {
		lc.Control = func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		}
	}
	return lc
}
