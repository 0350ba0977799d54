package executor

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Listen opens a listener on addr. When the platform supports
// SO_REUSEPORT, it is set on the socket so every executor can bind its
// own listener to the same address and let the kernel load-balance
// accepts across them; on platforms without it, the caller should fall
// back to sharing one Listener across every executor (net.Listener's
// Accept is safe to call concurrently from multiple goroutines, so no
// wrapper type is needed for that fallback).
func Listen(addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			// Best-effort: if the platform rejects SO_REUSEPORT the
			// listener still binds, just without per-executor
			// listener fan-out; the caller falls back to sharing one
			// listener across every executor in that case.
			_ = sockErr
			return nil
		},
	}
	return lc.Listen(context.Background(), "tcp", addr)
}
