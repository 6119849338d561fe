package upstreams

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	dohScheme   = "doh://"
	httpsScheme = "https://"

	dohClientTimeout       = 10 * time.Second
	dohIdleConnTimeout     = 30 * time.Second
	dohMaxIdleConns        = 10
	dohMaxIdleConnsPerHost = 5

	dnsMessageContentType = "application/dns-message"
)

// DoHUpstream implements Upstream using DNS-over-HTTPS.
type DoHUpstream struct {
	url    string
	client *http.Client
}

// NewDoHUpstream creates a new DNS-over-HTTPS upstream.
func NewDoHUpstream(urlStr string) *DoHUpstream {
	// Normalize URL scheme
	if strings.HasPrefix(urlStr, dohScheme) {
		urlStr = httpsScheme + strings.TrimPrefix(urlStr, dohScheme)
	}

	return &DoHUpstream{
		url: urlStr,
		client: &http.Client{
			Timeout: dohClientTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				MaxIdleConns:        dohMaxIdleConns,
				IdleConnTimeout:     dohIdleConnTimeout,
				DisableCompression:  true,
				MaxIdleConnsPerHost: dohMaxIdleConnsPerHost,
			},
		},
	}
}

// Query sends a DNS query to the DoH upstream.
func (d *DoHUpstream) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	packed, err := req.Pack()
	if err != nil {
		return nil, fmt.Errorf("failed to pack DNS message: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(packed))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", dnsMessageContentType)
	httpReq.Header.Set("Accept", dnsMessageContentType)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("DoH request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DoH request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read DoH response: %w", err)
	}

	dnsResp := new(dns.Msg)
	if err := dnsResp.Unpack(body); err != nil {
		return nil, fmt.Errorf("failed to unpack DNS response: %w", err)
	}

	return dnsResp, nil
}

// String returns a human-readable representation of the upstream.
func (d *DoHUpstream) String() string {
	return fmt.Sprintf("doh://%s", strings.TrimPrefix(d.url, httpsScheme))
}

// Close closes any resources held by the upstream.
func (d *DoHUpstream) Close() error {
	d.client.CloseIdleConnections()
	return nil
}
