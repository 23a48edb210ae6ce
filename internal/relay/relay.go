// Package relay implements the full-duplex byte copy between a client and a
// target connection that every proxied connection ends in.
package relay

import (
	"errors"
	"io"
	"net"

	"golang.org/x/sync/errgroup"
)

const bufSize = 32 * 1024

// Relay copies a<->b concurrently until both directions have closed or
// errored, and returns the number of bytes copied in the b->a direction
// (the direction conventionally accounted against the connection, since
// a->b is the client's own upload and not billed to the node). A
// net.ErrClosed observed while either copy is winding down is treated as a
// clean close rather than surfaced as a failure, matching the shutdown
// behavior spec'd for process-level drain.
func Relay(a, b net.Conn) (int64, error) {
	var g errgroup.Group
	var bToA int64

	g.Go(func() error {
		_, err := io.CopyBuffer(b, a, make([]byte, bufSize))
		halfClose(b)
		return suppressClosed(err)
	})

	g.Go(func() error {
		n, err := io.CopyBuffer(a, b, make([]byte, bufSize))
		bToA = n
		halfClose(a)
		return suppressClosed(err)
	})

	err := g.Wait()
	return bToA, err
}

// halfClose signals EOF to the peer without tearing down the whole
// connection, so the still-running copy in the other direction can finish
// draining. Connections without CloseWrite (e.g. test doubles) fall back to
// a full close.
func halfClose(c net.Conn) {
	type writeCloser interface {
		CloseWrite() error
	}
	if wc, ok := c.(writeCloser); ok {
		_ = wc.CloseWrite()
		return
	}
	_ = c.Close()
}

func suppressClosed(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
