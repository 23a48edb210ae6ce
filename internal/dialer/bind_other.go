//go:build !darwin && !linux

package dialer

import (
	"fmt"
	"strings"
	"syscall"
)

func interfaceDialerControl(ifaceName string) (func(network, address string, c syscall.RawConn) error, error) {
	ifaceName = strings.TrimSpace(ifaceName)
	if ifaceName == "" {
		return nil, nil
	}
	return nil, fmt.Errorf("dialer: binding to interface %q is not supported on this platform", ifaceName)
}
