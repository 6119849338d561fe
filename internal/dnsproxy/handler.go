package dnsproxy

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/filter"
	"github.com/dnsblockd/dnsblockd/internal/log"
	"github.com/miekg/dns"
)

// processRequest processes a DNS request and returns the packed response.
func (p *Proxy) processRequest(clientAddr net.Addr, reqBytes []byte, network string) ([]byte, error) {
	// Parse request
	var reqMsg dns.Msg
	if err := reqMsg.Unpack(reqBytes); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	// Log request
	if len(reqMsg.Question) > 0 {
		q := reqMsg.Question[0]
		log.Debugf("[%04x] DNS query: %s %s from %s via %s",
			reqMsg.Id, q.Name, dns.TypeToString[q.Qtype], clientAddr, network)
	}

	respMsg := p.resolve(&reqMsg)

	// Pack response
	respBytes, err := respMsg.Pack()
	if err != nil {
		return nil, fmt.Errorf("failed to pack response: %w", err)
	}

	return respBytes, nil
}

// resolve classifies the query against the current filter snapshot, then
// either synthesizes a blocked answer or forwards the query upstream.
// Statistics are recorded exactly once per query, at classification time.
func (p *Proxy) resolve(reqMsg *dns.Msg) *dns.Msg {
	decision := p.classify(reqMsg)
	p.stats.Record(decision.Category, decision.Blocked)

	if decision.Blocked {
		q := reqMsg.Question[0]
		log.Infof("[%04x] Blocked %s %s (%s): %s",
			reqMsg.Id, q.Name, dns.TypeToString[q.Qtype], decision.Category, decision.Reason)
		return p.synthesizeBlocked(reqMsg)
	}

	return p.forward(reqMsg)
}

// classify runs the first question through the rule matcher. Queries without
// a question section have nothing to match and pass through as Clean.
func (p *Proxy) classify(reqMsg *dns.Msg) filter.Decision {
	if len(reqMsg.Question) == 0 {
		return filter.Decision{Category: filter.CategoryClean}
	}
	return p.store.Current().Classify(filter.Query{Domain: reqMsg.Question[0].Name})
}

// synthesizeBlocked builds the response for a blocked query without
// contacting any upstream.
func (p *Proxy) synthesizeBlocked(reqMsg *dns.Msg) *dns.Msg {
	respMsg := new(dns.Msg)

	if p.config.BlockingMode == config.BlockingModeNXDomain {
		respMsg.SetRcode(reqMsg, dns.RcodeNameError)
		return respMsg
	}

	// null_ip mode: answer A/AAAA with the unspecified address, everything
	// else with an empty NOERROR response.
	respMsg.SetReply(reqMsg)
	q := reqMsg.Question[0]
	switch q.Qtype {
	case dns.TypeA:
		respMsg.Answer = append(respMsg.Answer, &dns.A{
			Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: p.config.BlockingTTL},
			A:   net.IPv4zero,
		})
	case dns.TypeAAAA:
		respMsg.Answer = append(respMsg.Answer, &dns.AAAA{
			Hdr:  dns.RR_Header{Name: q.Name, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: p.config.BlockingTTL},
			AAAA: net.IPv6zero,
		})
	}

	return respMsg
}

// forward relays the query to the upstream resolver and returns its answer
// verbatim. Resolution failures come back as SERVFAIL, with timeouts counted
// separately from other failures.
func (p *Proxy) forward(reqMsg *dns.Msg) *dns.Msg {
	ctx, cancel := context.WithTimeout(p.ctx, upstreamQueryTimeout)
	defer cancel()

	respMsg, err := p.upstream.Query(ctx, reqMsg)
	if err != nil {
		if isTimeout(ctx, err) {
			p.stats.IncForwardTimeout()
			log.Warnf("[%04x] Upstream timeout for query %s (upstream: %s)",
				reqMsg.Id, queryInfo(reqMsg), p.upstream)
		} else {
			p.stats.IncForwardFailure()
			log.Debugf("[%04x] Upstream resolution failed for query %s (upstream: %s): %v",
				reqMsg.Id, queryInfo(reqMsg), p.upstream, err)
		}

		failMsg := new(dns.Msg)
		failMsg.SetRcode(reqMsg, dns.RcodeServerFailure)
		return failMsg
	}

	return respMsg
}

// isTimeout reports whether an upstream error was a deadline rather than a
// hard failure.
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// queryInfo formats the first question of a request for log lines.
func queryInfo(reqMsg *dns.Msg) string {
	if len(reqMsg.Question) == 0 {
		return "unknown"
	}
	q := reqMsg.Question[0]
	return fmt.Sprintf("%s %s", q.Name, dns.TypeToString[q.Qtype])
}
