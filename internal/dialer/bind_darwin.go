//go:build darwin

package dialer

import (
	"net"
	"strings"
	"syscall"
)

func interfaceDialerControl(ifaceName string) (func(network, address string, c syscall.RawConn) error, error) {
	ifaceName = strings.TrimSpace(ifaceName)
	if ifaceName == "" {
		return nil, nil
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, err
	}
	index := iface.Index

	return func(network, address string, c syscall.RawConn) error {
		var controlErr error
		if err := c.Control(func(fd uintptr) {
			err4 := syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IP, syscall.IP_BOUND_IF, index)
			err6 := syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IPV6, syscall.IPV6_BOUND_IF, index)
			if err4 != nil && err6 != nil {
				controlErr = err4
			}
		}); err != nil {
			return err
		}
		return controlErr
	}, nil
}
