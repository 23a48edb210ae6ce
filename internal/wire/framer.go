package wire

import (
	"fmt"

	"github.com/arjunvel/tollgate/internal/proxyerr"
)

// HTTPErrorReply builds the fixed-form error body the HTTP handler sends
// before closing a failed connection.
func HTTPErrorReply(kind proxyerr.Kind) []byte {
	code := kind.HTTPCode()
	return []byte(fmt.Sprintf(
		"HTTP/1.1 %d Proxy Error\r\nContent-Type: text/plain\r\nContent-Length: 11\r\n\r\nProxy Error",
		code,
	))
}

// HTTPConnectEstablished builds the success line written in place of the
// target's response when a CONNECT tunnel is accepted. version is the
// client's requested HTTP version ("HTTP/1.0" or "HTTP/1.1"), echoed back
// verbatim.
func HTTPConnectEstablished(version string) []byte {
	return []byte(version + " 200 Connection established\r\n\r\n")
}

// socksReply is the fixed 10-byte SOCKS5 reply layout: VER REP RSV ATYP
// BND.ADDR(4) BND.PORT(2). BND.ADDR/BND.PORT are always zero for this
// forward proxy, which has no meaningful bound address to report.
func socksReply(rep byte) []byte {
	return []byte{0x05, rep, 0x00, 0x01, 0, 0, 0, 0, 0, 0}
}

// SocksReply builds the reply frame for the taxonomy kind.
func SocksReply(kind proxyerr.Kind) []byte {
	return socksReply(kind.SocksREP())
}

// SocksSuccessReply is the success-path reply sent after a direct-mode
// CONNECT dial succeeds.
func SocksSuccessReply() []byte {
	return socksReply(0x00)
}
