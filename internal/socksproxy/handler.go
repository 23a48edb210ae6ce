// Package socksproxy orchestrates one accepted SOCKS5 connection: greeting,
// request parsing, classify, pick a node if proxied, dial, and relay.
package socksproxy

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/arjunvel/tollgate/internal/classify"
	"github.com/arjunvel/tollgate/internal/nodepool"
	"github.com/arjunvel/tollgate/internal/proxyerr"
	"github.com/arjunvel/tollgate/internal/relay"
	"github.com/arjunvel/tollgate/internal/wire"
)

// Handler holds the collaborators a connection needs. Same shape as
// httpproxy.Handler; kept as a separate type because the two protocols'
// wire framing and reply sequencing differ enough that sharing one
// orchestration method would obscure both.
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

// Handle implements acceptor.Handler for the SOCKS5 front end.
func (h *Handler) Handle(ctx context.Context, conn net.Conn) {
	log := h.logger().With("proto", "socks5", "remote", conn.RemoteAddr().String())

	var raw bytes.Buffer
	if err := wire.NegotiateSocksGreeting(conn, &raw); err != nil {
		log.Warn("greeting failed", "err", err)
		return
	}

	req, err := wire.ParseSocksRequest(conn, &raw)
	if err != nil {
		kind := proxyerr.KindOf(err)
		log.Warn("request parse failed", "err", err, "kind", kind.String())
		_, _ = conn.Write(wire.SocksReply(kind))
		return
	}
	req.Raw = raw.Bytes()

	if req.Command != wire.SocksConnect {
		_, _ = conn.Write(wire.SocksReply(proxyerr.CommandNotSupported))
		return
	}

	rule := h.Classifier.Classify(req.Dest.Host)
	log.Debug("classified", "host", req.Dest.Host.String(), "rule", rule.String())

	if rule == classify.Reject {
		_, _ = conn.Write(wire.SocksReply(proxyerr.ConnectionNotAllowed))
		return
	}

	var node nodepool.NodeInfo
	proxied := rule == classify.Proxy
	dialAddr := req.Dest.String()

	if proxied {
		n, err := h.Nodes.PickAndIncrement()
		if err != nil {
			log.Error("no upstream nodes available", "err", err)
			_, _ = conn.Write(wire.SocksReply(proxyerr.GeneralFailure))
			return
		}
		node = n
		dialAddr = node.SocketAddr
		defer h.Nodes.Decrement(node)
	}

	dialCtx, cancel := context.WithTimeout(ctx, h.DialTimeout)
	target, err := h.Dialer.DialContext(dialCtx, "tcp", dialAddr)
	cancel()
	if err != nil {
		log.Warn("dial failed", "addr", dialAddr, "err", err)
		_, _ = conn.Write(wire.SocksReply(proxyerr.ConnectionRefused))
		return
	}
	defer target.Close()

	if proxied {
		if _, err := target.Write(req.Raw); err != nil {
			log.Warn("write to upstream failed", "err", err)
			return
		}
		greetingEcho := make([]byte, 2)
		if _, err := io.ReadFull(target, greetingEcho); err != nil {
			log.Warn("upstream greeting echo read failed", "err", err)
			return
		}
	} else {
		if _, err := conn.Write(wire.SocksSuccessReply()); err != nil {
			return
		}
	}

	if _, err := relay.Relay(conn, target); err != nil {
		log.Warn("relay error", "err", err)
	}
}
