// Package upstreams provides DNS upstream resolver implementations.
package upstreams

import (
	"context"
	"fmt"
	"net/url"

	"github.com/miekg/dns"
)

// Upstream represents a DNS upstream resolver.
type Upstream interface {
	// Query sends a DNS query to the upstream and returns the response.
	Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error)
	// String returns a human-readable representation of the upstream.
	String() string
	// Close closes any resources held by the upstream.
	Close() error
}

// ParseUpstream parses an upstream URL.
// Supported formats:
//   - udp://ip:port - plain UDP DNS (port defaults to 53)
//   - doh://host/path or https://host/path - DNS-over-HTTPS
//   - bare "ip" or "ip:port" - treated as UDP
func ParseUpstream(upstreamURL string) (Upstream, error) {
	u, err := url.Parse(upstreamURL)
	// If url.Parse fails (e.g. "8.8.8.8:53"), or scheme is empty, try as UDP upstream
	if err != nil || u.Scheme == "" {
		return NewUDPUpstream(upstreamURL)
	}

	switch u.Scheme {
	case "udp":
		return NewUDPUpstream(u.Host)
	case "doh", "https":
		return NewDoHUpstream(upstreamURL), nil
	default:
		return nil, fmt.Errorf("unsupported upstream scheme: %s", u.Scheme)
	}
}

// ParseUpstreams parses a list of upstream URLs into a single Upstream,
// wrapping several resolvers into a failover chain.
func ParseUpstreams(urls []string) (Upstream, error) {
	var list []Upstream
	for _, upstreamURL := range urls {
		upstream, err := ParseUpstream(upstreamURL)
		if err != nil {
			for _, u := range list {
				u.Close()
			}
			return nil, fmt.Errorf("failed to parse upstream %q: %w", upstreamURL, err)
		}
		list = append(list, upstream)
	}

	switch len(list) {
	case 0:
		return nil, fmt.Errorf("no upstreams configured")
	case 1:
		return list[0], nil
	default:
		return NewMultiUpstream(list), nil
	}
}

// queryInfo formats the first question of a request for log lines.
func queryInfo(req *dns.Msg) string {
	if len(req.Question) == 0 {
		return "unknown"
	}
	q := req.Question[0]
	return fmt.Sprintf("%s %s", q.Name, dns.TypeToString[q.Qtype])
}
