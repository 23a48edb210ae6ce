package relay

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeConn pairs one end of a connection with its CloseWrite so Relay's
// half-close path is exercised on a real *net.TCPConn.
type pipeConn struct {
	net.Conn
	closeWrite func() error
}

func (p *pipeConn) CloseWrite() error { return p.closeWrite() }

// newPipePair returns the two ends of a loopback TCP connection. Unlike
// net.Pipe, TCP supports a true half-close: after CloseWrite the peer reads
// EOF while the other direction stays open.
func newPipePair(t *testing.T) (*pipeConn, *pipeConn) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := l.Accept()
		accepted <- c
	}()

	a, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	b := <-accepted
	require.NotNil(t, b)
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })

	ta, tb := a.(*net.TCPConn), b.(*net.TCPConn)
	return &pipeConn{Conn: ta, closeWrite: ta.CloseWrite}, &pipeConn{Conn: tb, closeWrite: tb.CloseWrite}
}

func TestRelayCopiesBothDirections(t *testing.T) {
	t.Parallel()

	clientSide, client := newPipePair(t)
	targetSide, target := newPipePair(t)

	done := make(chan struct{})
	var n int64
	var relayErr error
	go func() {
		n, relayErr = Relay(clientSide, targetSide)
		close(done)
	}()

	go func() {
		_, _ = client.Write([]byte("hello from client"))
		_ = client.closeWrite()
	}()

	got, err := io.ReadAll(target)
	require.NoError(t, err)
	assert.Equal(t, "hello from client", string(got))

	clientRead := make(chan []byte, 1)
	go func() {
		b, _ := io.ReadAll(client)
		clientRead <- b
	}()

	_, _ = target.Write([]byte("hi client"))
	_ = target.closeWrite()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not finish")
	}

	require.NoError(t, relayErr)
	assert.Equal(t, int64(len("hi client")), n)
	assert.Equal(t, "hi client", string(<-clientRead))
}
