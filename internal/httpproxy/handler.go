// Package httpproxy orchestrates one accepted HTTP/1.x proxy connection:
// parse, classify, pick a node if proxied, dial, and relay.
package httpproxy

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/arjunvel/tollgate/internal/classify"
	"github.com/arjunvel/tollgate/internal/nodepool"
	"github.com/arjunvel/tollgate/internal/proxyerr"
	"github.com/arjunvel/tollgate/internal/relay"
	"github.com/arjunvel/tollgate/internal/wire"
)

// Handler holds the collaborators a connection needs: the classifier, the
// shared node pool, and a dialer for both direct and proxied outbound
// connections.
type Handler struct {
	Classifier  classify.Classifier
	Nodes       *nodepool.Pool
	Dialer      *net.Dialer
	DialTimeout time.Duration
	Log         *slog.Logger
}

func (h *Handler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// Handle implements acceptor.Handler for the HTTP front end.
func (h *Handler) Handle(ctx context.Context, conn net.Conn) {
	log := h.logger().With("proto", "http", "remote", conn.RemoteAddr().String())

	req, err := wire.ParseHTTPRequest(bufio.NewReader(conn))
	if err != nil {
		kind := proxyerr.KindOf(err)
		log.Warn("parse failed", "err", err, "kind", kind.String())
		_, _ = conn.Write(wire.HTTPErrorReply(kind))
		return
	}

	rule := h.Classifier.Classify(req.Dest.Host)
	log.Debug("classified", "host", req.Dest.Host.String(), "rule", rule.String())

	if rule == classify.Reject {
		return
	}

	var node nodepool.NodeInfo
	var proxied bool
	dialAddr := req.Dest.String()

	if rule == classify.Proxy {
		n, err := h.Nodes.PickAndIncrement()
		if err != nil {
			log.Error("no upstream nodes available", "err", err)
			_, _ = conn.Write(wire.HTTPErrorReply(proxyerr.GeneralFailure))
			return
		}
		node = n
		proxied = true
		dialAddr = node.SocketAddr
		defer h.Nodes.Decrement(node)
	}

	dialCtx, cancel := context.WithTimeout(ctx, h.DialTimeout)
	target, err := h.Dialer.DialContext(dialCtx, "tcp", dialAddr)
	cancel()
	if err != nil {
		log.Warn("dial failed", "addr", dialAddr, "err", err)
		_, _ = conn.Write(wire.HTTPErrorReply(proxyerr.ConnectionRefused))
		return
	}
	defer target.Close()

	isConnectDirect := req.Method == "CONNECT" && !proxied
	switch {
	case isConnectDirect:
		if _, err := conn.Write(wire.HTTPConnectEstablished(req.Version)); err != nil {
			return
		}
	default:
		if _, err := target.Write(req.Raw); err != nil {
			log.Warn("write to target failed", "err", err)
			return
		}
	}

	if _, err := relay.Relay(conn, target); err != nil {
		log.Warn("relay error", "err", err)
	}
}
