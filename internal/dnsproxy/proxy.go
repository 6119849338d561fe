package dnsproxy

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/dnsproxy/upstreams"
	"github.com/dnsblockd/dnsblockd/internal/filter"
	"github.com/dnsblockd/dnsblockd/internal/log"
	"github.com/dnsblockd/dnsblockd/internal/stats"
	"github.com/miekg/dns"
)

const (
	// Network protocol identifiers
	networkUDP = "udp"
	networkTCP = "tcp"

	// Timeout durations
	udpReadTimeout       = 1 * time.Second  // UDP read deadline for non-blocking accept loop
	tcpConnectionTimeout = 10 * time.Second // TCP connection total timeout
	upstreamQueryTimeout = 5 * time.Second  // Timeout for upstream DNS queries
)

// ProxyConfig contains configuration for the DNS proxy.
type ProxyConfig struct {
	// Listen is the "host:port" address to listen on (UDP and TCP)
	Listen string

	// Upstreams is the list of upstream DNS URLs
	// Supported: udp://ip:port, doh://host/path
	Upstreams []string

	// BlockingMode selects the answer for blocked queries: "null_ip" or "nxdomain"
	BlockingMode string

	// BlockingTTL is the TTL in seconds for synthesized answers
	BlockingTTL uint32

	// ReusePort sets SO_REUSEPORT on the listeners
	ReusePort bool
}

// ProxyConfigFromAppConfig creates a ProxyConfig from the application config.
func ProxyConfigFromAppConfig(cfg *config.Config) ProxyConfig {
	return ProxyConfig{
		Listen:       cfg.DNS.Listen,
		Upstreams:    cfg.DNS.Upstreams,
		BlockingMode: cfg.DNS.BlockingMode,
		BlockingTTL:  cfg.DNS.BlockingTTL,
		ReusePort:    cfg.DNS.ReusePort,
	}
}

// Proxy is a filtering DNS resolver. It classifies every query against the
// current filter snapshot, synthesizes answers for blocked domains, and
// forwards everything else to the configured upstream resolvers.
type Proxy struct {
	config ProxyConfig

	// Dependencies
	store *filter.Store
	stats *stats.Aggregator

	// Upstream resolver
	upstream upstreams.Upstream

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Listeners
	udpConn *net.UDPConn
	tcpLn   net.Listener
}

// NewProxy creates a new DNS proxy.
func NewProxy(cfg ProxyConfig, store *filter.Store, aggregator *stats.Aggregator) (*Proxy, error) {
	ctx, cancel := context.WithCancel(context.Background())

	upstream, err := upstreams.ParseUpstreams(cfg.Upstreams)
	if err != nil {
		cancel()
		return nil, err
	}

	return &Proxy{
		config:   cfg,
		store:    store,
		stats:    aggregator,
		upstream: upstream,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start starts the DNS proxy listeners.
func (p *Proxy) Start() error {
	lc := listenConfig(p.config.ReusePort)

	pc, err := lc.ListenPacket(p.ctx, networkUDP, p.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen UDP: %w", err)
	}
	p.udpConn = pc.(*net.UDPConn)

	p.tcpLn, err = lc.Listen(p.ctx, networkTCP, p.config.Listen)
	if err != nil {
		p.udpConn.Close()
		return fmt.Errorf("failed to listen TCP: %w", err)
	}

	log.Infof("DNS proxy started on %s (UDP/TCP), upstream: %s", p.config.Listen, p.upstream)

	p.wg.Add(2)
	go p.serveUDP(p.udpConn)
	go p.serveTCP(p.tcpLn)

	return nil
}

// Stop stops the DNS proxy.
func (p *Proxy) Stop() error {
	log.Infof("Stopping DNS proxy...")
	p.cancel()

	// Close listeners
	if p.udpConn != nil {
		p.udpConn.Close()
	}
	if p.tcpLn != nil {
		p.tcpLn.Close()
	}

	// Wait for goroutines
	p.wg.Wait()

	// Close upstreams
	if p.upstream != nil {
		p.upstream.Close()
	}

	log.Infof("DNS proxy stopped")
	return nil
}

// serveUDP handles incoming UDP DNS queries.
func (p *Proxy) serveUDP(conn *net.UDPConn) {
	defer p.wg.Done()

	buf := make([]byte, dns.MaxMsgSize)

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(udpReadTimeout))
		n, clientAddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if p.ctx.Err() != nil {
				return
			}
			log.Debugf("UDP read error: %v", err)
			continue
		}

		// Handle request in goroutine
		req := make([]byte, n)
		copy(req, buf[:n])

		go func(conn *net.UDPConn, clientAddr *net.UDPAddr, req []byte) {
			resp, err := p.processRequest(clientAddr, req, networkUDP)
			if err != nil {
				log.Debugf("UDP request processing error: %v", err)
				return
			}

			_, err = conn.WriteToUDP(resp, clientAddr)
			if err != nil {
				log.Debugf("UDP write error: %v", err)
			}
		}(conn, clientAddr, req)
	}
}

// serveTCP handles incoming TCP DNS queries.
func (p *Proxy) serveTCP(ln net.Listener) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		conn, err := ln.Accept()
		if err != nil {
			if p.ctx.Err() != nil {
				return
			}
			log.Debugf("TCP accept error: %v", err)
			continue
		}

		go p.handleTCPConnection(conn)
	}
}

// handleTCPConnection handles a single TCP DNS connection.
func (p *Proxy) handleTCPConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(tcpConnectionTimeout))

	// Read length prefix
	var length uint16
	if err := binary.Read(conn, binary.BigEndian, &length); err != nil {
		log.Debugf("TCP read length error: %v", err)
		return
	}

	// Read DNS message
	req := make([]byte, length)
	if _, err := io.ReadFull(conn, req); err != nil {
		log.Debugf("TCP read message error: %v", err)
		return
	}

	// Process request
	resp, err := p.processRequest(conn.RemoteAddr(), req, networkTCP)
	if err != nil {
		log.Debugf("TCP request processing error: %v", err)
		return
	}

	// Write length prefix
	if err := binary.Write(conn, binary.BigEndian, uint16(len(resp))); err != nil {
		log.Debugf("TCP write length error: %v", err)
		return
	}

	// Write response
	if _, err := conn.Write(resp); err != nil {
		log.Debugf("TCP write response error: %v", err)
	}
}
