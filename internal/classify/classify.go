// Package classify implements the traffic-diversion decision: mapping a
// destination host to a Direct, Proxy, or Reject verdict.
package classify

import "github.com/arjunvel/tollgate/internal/wire"

// Rule is the classifier's verdict for a destination host.
type Rule int

const (
	Direct Rule = iota
	Proxy
	Reject
)

func (r Rule) String() string {
	switch r {
	case Direct:
		return "direct"
	case Proxy:
		return "proxy"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Classifier is the collaborator interface spec §4.4/§6 treats as external:
// stateless from the CORE's perspective, consulted exactly once per
// connection after the request is parsed. The same Host must always produce
// the same Rule for the lifetime of a process.
type Classifier interface {
	Classify(host wire.Host) Rule
}
