package httpproxy

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/arjunvel/tollgate/internal/classify"
	"github.com/arjunvel/tollgate/internal/nodepool"
	"github.com/arjunvel/tollgate/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ruleClassifier returns the same Rule for every host.
type ruleClassifier struct{ rule classify.Rule }

func (c ruleClassifier) Classify(wire.Host) classify.Rule { return c.rule }

func newHandler(t *testing.T, rule classify.Rule, nodes []nodepool.NodeInfo) (*Handler, *nodepool.Pool) {
	t.Helper()
	pool := nodepool.New(nodes)
	return &Handler{
		Classifier:  ruleClassifier{rule},
		Nodes:       pool,
		Dialer:      &net.Dialer{},
		DialTimeout: time.Second,
	}, pool
}

func TestHTTPHandlerDirectGET(t *testing.T) {
	t.Parallel()

	target := startEchoListener(t)
	defer target.Close()

	h, _ := newHandler(t, classify.Direct, nil)

	client, server := net.Pipe()
	go h.Handle(context.Background(), server)

	req := "GET http://" + target.Addr().String() + "/x HTTP/1.1\r\nHost: example.test\r\n\r\n"
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	buf := make([]byte, len(req))
	_, err = io.ReadFull(client, buf)
	require.NoError(t, err)
	assert.Equal(t, req, string(buf))

	client.Close()
}

func TestHTTPHandlerConnectDirect(t *testing.T) {
	t.Parallel()

	target := startEchoListener(t)
	defer target.Close()

	h, _ := newHandler(t, classify.Direct, nil)

	client, server := net.Pipe()
	go h.Handle(context.Background(), server)

	req := "CONNECT " + target.Addr().String() + " HTTP/1.1\r\n\r\n"
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	resp := make([]byte, len("HTTP/1.1 200 Connection established\r\n\r\n"))
	_, err = io.ReadFull(client, resp)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 Connection established\r\n\r\n", string(resp))

	payload := []byte("tunnel payload")
	_, err = client.Write(payload)
	require.NoError(t, err)

	echoed := make([]byte, len(payload))
	_, err = io.ReadFull(client, echoed)
	require.NoError(t, err)
	assert.Equal(t, payload, echoed)

	client.Close()
}

func TestHTTPHandlerReject(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t, classify.Reject, nil)

	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		h.Handle(context.Background(), server)
		server.Close() // mirrors the acceptor's own defer conn.Close()
		close(done)
	}()

	_, err := client.Write([]byte("GET http://example.test/x HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	_, err = client.Read(make([]byte, 1))
	assert.Error(t, err, "rejected connection must be closed with no reply")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return")
	}
}

func TestHTTPHandlerProxiedIncrementsAndDecrements(t *testing.T) {
	t.Parallel()

	target := startEchoListener(t)
	defer target.Close()

	nodes := []nodepool.NodeInfo{{ID: "n1", SocketAddr: target.Addr().String()}}
	h, pool := newHandler(t, classify.Proxy, nodes)

	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		h.Handle(context.Background(), server)
		close(done)
	}()

	req := "GET http://unused.test/x HTTP/1.1\r\n\r\n"
	_, err := client.Write([]byte(req))
	require.NoError(t, err)

	buf := make([]byte, len(req))
	_, err = io.ReadFull(client, buf)
	require.NoError(t, err)
	assert.Equal(t, req, string(buf))

	client.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return")
	}

	assert.Equal(t, 0, pool.Count(nodes[0]))
}

func startEchoListener(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				_, _ = io.Copy(c, c)
				_ = c.Close()
			}(conn)
		}
	}()
	return l
}
