package upstreams

import (
	"context"
	"fmt"
	"strings"

	"github.com/dnsblockd/dnsblockd/internal/log"
	"github.com/miekg/dns"
)

// MultiUpstream tries multiple upstreams in order until one succeeds.
type MultiUpstream struct {
	upstreams []Upstream
}

// NewMultiUpstream creates an upstream that queries the given upstreams
// in order, returning the first successful response.
func NewMultiUpstream(upstreams []Upstream) *MultiUpstream {
	return &MultiUpstream{upstreams: upstreams}
}

// Query tries each upstream in order until one returns a response.
func (m *MultiUpstream) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	var lastErr error

	for _, u := range m.upstreams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := u.Query(ctx, req)
		if err == nil {
			return resp, nil
		}

		log.Debugf("[%04x] Upstream %s failed for %s: %v", req.Id, u, queryInfo(req), err)
		lastErr = err
	}

	return nil, fmt.Errorf("all upstreams failed, last error: %w", lastErr)
}

// String returns a human-readable representation of the upstream chain.
func (m *MultiUpstream) String() string {
	parts := make([]string, 0, len(m.upstreams))
	for _, u := range m.upstreams {
		parts = append(parts, u.String())
	}
	return strings.Join(parts, ", ")
}

// Close closes all underlying upstreams.
func (m *MultiUpstream) Close() error {
	var lastErr error
	for _, u := range m.upstreams {
		if err := u.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
