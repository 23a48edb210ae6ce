package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/arjunvel/tollgate/internal/proxyerr"
)

const (
	socksVersion = 0x05

	atypIPv4   = 0x01
	atypDomain = 0x03
	atypIPv6   = 0x04
)

// SocksCommand is the CMD field of a SOCKS5 request.
type SocksCommand byte

const (
	SocksConnect      SocksCommand = 0x01
	SocksBind         SocksCommand = 0x02
	SocksUDPAssociate SocksCommand = 0x03
)

// SocksRequest is the parsed form of a full SOCKS5 greeting+request
// exchange. Raw captures every byte consumed from the client across both
// phases, for verbatim replay to an upstream SOCKS server in Proxy mode.
type SocksRequest struct {
	Command SocksCommand
	Dest    Destination
	Raw     []byte
}

// NegotiateSocksGreeting drives RFC 1928 phase 1: read VER NMETHODS, then
// NMETHODS method bytes, and reply. It returns an error without writing a
// reply if VER is wrong; if no-auth isn't offered, it writes 05 FF itself
// (the caller must still close the stream) and returns AuthFailed.
func NegotiateSocksGreeting(rw io.ReadWriter, raw *bytes.Buffer) error {
	header := make([]byte, 2)
	if _, err := io.ReadFull(rw, header); err != nil {
		return proxyerr.New(proxyerr.InvalidRequest, err)
	}
	if raw != nil {
		raw.Write(header)
	}
	if header[0] != socksVersion {
		return proxyerr.New(proxyerr.UnsupportedVersion, nil)
	}

	methods := make([]byte, int(header[1]))
	if len(methods) > 0 {
		if _, err := io.ReadFull(rw, methods); err != nil {
			return proxyerr.New(proxyerr.InvalidRequest, err)
		}
	}
	if raw != nil {
		raw.Write(methods)
	}

	hasNoAuth := false
	for _, m := range methods {
		if m == 0x00 {
			hasNoAuth = true
			break
		}
	}

	if !hasNoAuth {
		_, _ = rw.Write([]byte{socksVersion, 0xFF})
		return proxyerr.New(proxyerr.AuthFailed, nil)
	}

	_, err := rw.Write([]byte{socksVersion, 0x00})
	return err
}

// ParseSocksRequest drives RFC 1928 phase 2: read VER CMD RSV ATYP, the
// address payload for the given ATYP, and the 2-byte port. raw, if non-nil,
// accumulates every byte read so the caller can build a SocksRequest whose
// Raw spans both phases.
func ParseSocksRequest(r io.Reader, raw *bytes.Buffer) (*SocksRequest, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, proxyerr.New(proxyerr.InvalidRequest, err)
	}
	if header[0] != socksVersion {
		return nil, proxyerr.New(proxyerr.UnsupportedVersion, nil)
	}
	command := SocksCommand(header[1])
	atyp := header[3]

	host, addrBytes, err := readSocksAddress(r, atyp)
	if err != nil {
		return nil, err
	}

	portBytes := make([]byte, 2)
	if _, err := io.ReadFull(r, portBytes); err != nil {
		return nil, proxyerr.New(proxyerr.InvalidRequest, err)
	}
	port := binary.BigEndian.Uint16(portBytes)

	if raw != nil {
		raw.Write(header)
		raw.Write(addrBytes)
		raw.Write(portBytes)
	}

	switch command {
	case SocksConnect, SocksBind, SocksUDPAssociate:
	default:
		return nil, proxyerr.New(proxyerr.CommandNotSupported, nil)
	}

	return &SocksRequest{
		Command: command,
		Dest:    Destination{Host: host, Port: port},
	}, nil
}

func readSocksAddress(r io.Reader, atyp byte) (Host, []byte, error) {
	switch atyp {
	case atypIPv4:
		b := make([]byte, 4)
		if _, err := io.ReadFull(r, b); err != nil {
			return Host{}, nil, proxyerr.New(proxyerr.InvalidRequest, err)
		}
		var v4 [4]byte
		copy(v4[:], b)
		return NewIPv4Host(v4), b, nil

	case atypIPv6:
		b := make([]byte, 16)
		if _, err := io.ReadFull(r, b); err != nil {
			return Host{}, nil, proxyerr.New(proxyerr.InvalidRequest, err)
		}
		var v6 [16]byte
		copy(v6[:], b)
		return NewIPv6Host(v6), b, nil

	case atypDomain:
		lenBuf := make([]byte, 1)
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			return Host{}, nil, proxyerr.New(proxyerr.InvalidRequest, err)
		}
		domain := make([]byte, int(lenBuf[0]))
		if _, err := io.ReadFull(r, domain); err != nil {
			return Host{}, nil, proxyerr.New(proxyerr.InvalidRequest, err)
		}
		full := append(append([]byte{}, lenBuf...), domain...)
		return NewDomainHost(string(domain)), full, nil

	default:
		return Host{}, nil, proxyerr.New(proxyerr.AddrTypeNotSupported, nil)
	}
}
