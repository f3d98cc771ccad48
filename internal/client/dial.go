package client

import (
	"context"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// dial opens the connection to the relay. A non-zero localPort is bound
// with SO_REUSEPORT so a restarted client can reclaim its port while the
// old connection is still in TIME_WAIT.
func dial(ctx context.Context, serverAddr string, localPort int) (net.Conn, error) {
	d := net.Dialer{Timeout: 10 * time.Second}
	if localPort > 0 {
		d.LocalAddr = &net.TCPAddr{Port: localPort}
		d.Control = reusePort
	}
	return d.DialContext(ctx, "tcp", serverAddr)
}

func reusePort(network, address string, c syscall.RawConn) error {
	var opErr error
	if err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	}); err != nil {
		return err
	}
	return opErr
}
