// Package wire holds the protocol-agnostic data model (Host, Destination)
// and the HTTP/SOCKS5 framers and parsers that sit directly on the wire.
package wire

import (
	"net"
	"strconv"
)

// HostKind tags which variant a Host holds. Go has no native sum type, so
// Host carries its own discriminant alongside storage for every variant.
type HostKind int

const (
	HostDomain HostKind = iota
	HostIPv4
	HostIPv6
)

// Host is exactly one of an IPv4 address, an IPv6 address (eight 16-bit
// groups), or a domain name. Equality is structural via ==, which is why
// IPv4/IPv6 are fixed-size arrays rather than []byte.
type Host struct {
	Kind   HostKind
	Domain string
	V4     [4]byte
	V6     [16]byte
}

func NewDomainHost(name string) Host {
	return Host{Kind: HostDomain, Domain: name}
}

func NewIPv4Host(b [4]byte) Host {
	return Host{Kind: HostIPv4, V4: b}
}

func NewIPv6Host(b [16]byte) Host {
	return Host{Kind: HostIPv6, V6: b}
}

// HostFromIP classifies a net.IP into the matching Host variant.
func HostFromIP(ip net.IP) (Host, bool) {
	if v4 := ip.To4(); v4 != nil {
		var b [4]byte
		copy(b[:], v4)
		return NewIPv4Host(b), true
	}
	if v6 := ip.To16(); v6 != nil {
		var b [16]byte
		copy(b[:], v6)
		return NewIPv6Host(b), true
	}
	return Host{}, false
}

// ParseHost classifies a textual host (as found in a URL authority or a
// CONNECT target) into the matching Host variant.
func ParseHost(text string) Host {
	if ip := net.ParseIP(text); ip != nil {
		if h, ok := HostFromIP(ip); ok {
			return h
		}
	}
	return NewDomainHost(text)
}

// String is the canonical form used for rule lookup by the classifier.
func (h Host) String() string {
	switch h.Kind {
	case HostIPv4:
		return net.IP(h.V4[:]).String()
	case HostIPv6:
		return net.IP(h.V6[:]).String()
	default:
		return h.Domain
	}
}

// IP returns the net.IP form for dialing. For a domain host it returns nil;
// the domain string itself is used for dialing instead.
func (h Host) IP() net.IP {
	switch h.Kind {
	case HostIPv4:
		return net.IP(h.V4[:])
	case HostIPv6:
		return net.IP(h.V6[:])
	default:
		return nil
	}
}

// Destination is a fully resolved proxy target.
type Destination struct {
	Host Host
	Port uint16
}

func (d Destination) String() string {
	return net.JoinHostPort(d.Host.String(), strconv.Itoa(int(d.Port)))
}

func (d Destination) HostPort() string {
	return d.String()
}
