// Package dialer builds the shared outbound net.Dialer used for both Direct
// target dials and Proxy node dials, optionally bound to a single network
// interface.
package dialer

import (
	"context"
	"net"
	"time"
)

// New returns a dialer with the given timeout, optionally bound to
// ifaceName. An empty ifaceName leaves the dialer unbound. Binding is
// platform-specific; see bind_*.go.
func New(timeout time.Duration, ifaceName string) (*net.Dialer, error) {
	d := &net.Dialer{Timeout: timeout}

	control, err := interfaceDialerControl(ifaceName)
	if err != nil {
		return nil, err
	}
	d.Control = control

	return d, nil
}

// DialContext is a convenience wrapper matching the relay/handler call
// shape; it exists so handler code does not need to import "net" just to
// call Dialer.DialContext.
func DialContext(ctx context.Context, d *net.Dialer, address string) (net.Conn, error) {
	return d.DialContext(ctx, "tcp", address)
}
