// Command tollgate runs the dual-protocol forward proxy: an HTTP/1.x proxy
// front end and a SOCKS5 front end, sharing one traffic classifier and one
// upstream node pool.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arjunvel/tollgate/internal/acceptor"
	"github.com/arjunvel/tollgate/internal/classify"
	"github.com/arjunvel/tollgate/internal/dialer"
	"github.com/arjunvel/tollgate/internal/httpproxy"
	"github.com/arjunvel/tollgate/internal/nodepool"
	"github.com/arjunvel/tollgate/internal/socksproxy"
	"github.com/arjunvel/tollgate/pkg/banner"
	"github.com/arjunvel/tollgate/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	nodes := make([]nodepool.NodeInfo, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		nodes = append(nodes, nodepool.NodeInfo{ID: n.ID, SocketAddr: n.Addr})
	}
	pool := nodepool.New(nodes)

	classifier := classify.NewRuleSet(buildRuleEntries(cfg.Rules), parseRule(cfg.DefaultRule))

	d, err := dialer.New(cfg.DialTimeout, cfg.Interface)
	if err != nil {
		log.Error("failed to build dialer", "err", err)
		os.Exit(1)
	}

	httpHandler := &httpproxy.Handler{
		Classifier:  classifier,
		Nodes:       pool,
		Dialer:      d,
		DialTimeout: cfg.DialTimeout,
		Log:         log,
	}
	socksHandler := &socksproxy.Handler{
		Classifier:  classifier,
		Nodes:       pool,
		Dialer:      d,
		DialTimeout: cfg.DialTimeout,
		Log:         log,
	}

	httpAcceptor := acceptor.New("http", cfg.HTTPListen, httpHandler.Handle, log)
	socksAcceptor := acceptor.New("socks5", cfg.SocksListen, socksHandler.Handle, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	banner.Print()
	banner.PrintListening(cfg.HTTPListen, cfg.SocksListen, len(nodes))

	errCh := make(chan error, 2)
	go func() { errCh <- httpAcceptor.Serve(ctx) }()
	go func() { errCh <- socksAcceptor.Serve(ctx) }()

	<-ctx.Done()
	banner.PrintShutdown()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			log.Error("acceptor exited with error", "err", err)
		}
	}
}

func buildRuleEntries(rules []config.RuleConfig) []classify.Entry {
	entries := make([]classify.Entry, 0, len(rules))
	for _, r := range rules {
		entries = append(entries, classify.Entry{Pattern: r.Pattern, Verdict: parseRule(r.Verdict)})
	}
	return entries
}

func parseRule(s string) classify.Rule {
	switch s {
	case "proxy":
		return classify.Proxy
	case "reject":
		return classify.Reject
	default:
		return classify.Direct
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
