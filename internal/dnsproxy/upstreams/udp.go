package upstreams

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/dnsblockd/dnsblockd/internal/log"
)

const (
	defaultDNSPort = "53"

	// Shorter than the handler's context timeout to avoid races.
	udpClientTimeout = 3 * time.Second
)

// UDPUpstream implements Upstream using plain UDP DNS.
type UDPUpstream struct {
	address string
	client  *dns.Client
}

// NewUDPUpstream creates a new UDP DNS upstream.
func NewUDPUpstream(address string) (*UDPUpstream, error) {
	host := address
	if !containsPort(host) {
		host = net.JoinHostPort(host, defaultDNSPort)
	}

	// Validate address
	if _, _, err := net.SplitHostPort(host); err != nil {
		return nil, fmt.Errorf("invalid UDP address: %w", err)
	}

	return &UDPUpstream{
		address: host,
		client: &dns.Client{
			Net:     "udp",
			Timeout: udpClientTimeout,
		},
	}, nil
}

// Query sends a DNS query to the UDP upstream.
func (u *UDPUpstream) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	resp, _, err := u.client.ExchangeContext(ctx, req, u.address)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Warnf("[%04x] Upstream timeout (context) for query: %s (upstream: %s)", req.Id, queryInfo(req), u)
		} else {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debugf("[%04x] Upstream timeout (network) for query: %s (upstream: %s)", req.Id, queryInfo(req), u)
			} else {
				log.Debugf("[%04x] Upstream error for query %s (upstream: %s): %v", req.Id, queryInfo(req), u, err)
			}
		}
		return nil, err
	}
	return resp, nil
}

// String returns a human-readable representation of the upstream.
func (u *UDPUpstream) String() string {
	return fmt.Sprintf("udp://%s", u.address)
}

// Close closes any resources held by the upstream.
func (u *UDPUpstream) Close() error {
	return nil
}

// containsPort checks if the address contains a port number.
func containsPort(address string) bool {
	// For IPv6 addresses like [::1]:53, check after the closing bracket
	if idx := lastIndex(address, ']'); idx != -1 {
		return len(address) > idx+1 && address[idx+1] == ':'
	}
	// For IPv4 addresses, check for colon
	return lastIndex(address, ':') != -1
}

// lastIndex returns the index of the last occurrence of char in s, or -1 if not found.
func lastIndex(s string, char byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == char {
			return i
		}
	}
	return -1
}
