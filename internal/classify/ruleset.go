package classify

import (
	"net"
	"strings"

	"github.com/arjunvel/tollgate/internal/wire"
)

// Entry is one ordered rule in a RuleSet's pattern list.
type Entry struct {
	// Pattern is an exact host ("example.test"), a wildcard suffix
	// ("*.example.test"), or a CIDR block ("10.0.0.0/8").
	Pattern string
	Verdict Rule
}

// RuleSet is a concrete, in-memory Classifier: an ordered list of entries,
// first match wins, falling back to Default when nothing matches. This
// stands in for the geo-IP/rule-database classifier spec.md treats as an
// external collaborator out of scope; it exists so the CORE is runnable
// without one.
type RuleSet struct {
	entries []Entry
	nets    []*net.IPNet
	netIdx  []int
	Default Rule
}

// NewRuleSet compiles entries into a RuleSet with Default as the fallback
// verdict for hosts matching nothing.
func NewRuleSet(entries []Entry, fallback Rule) *RuleSet {
	rs := &RuleSet{entries: entries, Default: fallback}
	for i, e := range entries {
		if _, ipnet, err := net.ParseCIDR(e.Pattern); err == nil {
			rs.nets = append(rs.nets, ipnet)
			rs.netIdx = append(rs.netIdx, i)
		}
	}
	return rs
}

func (rs *RuleSet) Classify(host wire.Host) Rule {
	canon := host.String()
	ip := host.IP()

	cidr := 0
	for i, e := range rs.entries {
		if cidr < len(rs.netIdx) && rs.netIdx[cidr] == i {
			ipnet := rs.nets[cidr]
			cidr++
			if ip != nil && ipnet.Contains(ip) {
				return e.Verdict
			}
			continue
		}
		if matchesHostPattern(e.Pattern, canon) {
			return e.Verdict
		}
	}

	return rs.Default
}

func matchesHostPattern(pattern, host string) bool {
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return strings.HasSuffix(host, "."+suffix) || host == suffix
	}
	return pattern == host
}
