//go:build linux

package dialer

import (
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

func interfaceDialerControl(ifaceName string) (func(network, address string, c syscall.RawConn) error, error) {
	ifaceName = strings.TrimSpace(ifaceName)
	if ifaceName == "" {
		return nil, nil
	}

	return func(network, address string, c syscall.RawConn) error {
		var controlErr error
		if err := c.Control(func(fd uintptr) {
			controlErr = unix.BindToDevice(int(fd), ifaceName)
		}); err != nil {
			return err
		}
		return controlErr
	}, nil
}
