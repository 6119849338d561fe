package upstreams

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/miekg/dns"
)

// mockUpstream is a mock implementation of Upstream for testing.
type mockUpstream struct {
	name    string
	resp    *dns.Msg
	err     error
	queries int
	closed  bool
}

func (m *mockUpstream) Query(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	m.queries++
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *mockUpstream) String() string {
	return m.name
}

func (m *mockUpstream) Close() error {
	m.closed = true
	return nil
}

func testQuery(name string) *dns.Msg {
	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(name), dns.TypeA)
	return req
}

func TestParseUpstream_UDP(t *testing.T) {
	upstream, err := ParseUpstream("udp://1.1.1.1:53")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	udp, ok := upstream.(*UDPUpstream)
	if !ok {
		t.Fatalf("Expected *UDPUpstream, got %T", upstream)
	}

	if udp.address != "1.1.1.1:53" {
		t.Errorf("Expected address '1.1.1.1:53', got %q", udp.address)
	}
}

func TestParseUpstream_UDPDefaultPort(t *testing.T) {
	upstream, err := ParseUpstream("udp://9.9.9.9")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	udp, ok := upstream.(*UDPUpstream)
	if !ok {
		t.Fatalf("Expected *UDPUpstream, got %T", upstream)
	}

	if udp.address != "9.9.9.9:53" {
		t.Errorf("Expected address '9.9.9.9:53', got %q", udp.address)
	}
}

func TestParseUpstream_BareAddress(t *testing.T) {
	upstream, err := ParseUpstream("8.8.8.8:53")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	udp, ok := upstream.(*UDPUpstream)
	if !ok {
		t.Fatalf("Expected *UDPUpstream, got %T", upstream)
	}

	if udp.address != "8.8.8.8:53" {
		t.Errorf("Expected address '8.8.8.8:53', got %q", udp.address)
	}
}

func TestParseUpstream_DoH(t *testing.T) {
	upstream, err := ParseUpstream("doh://dns.google/dns-query")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	doh, ok := upstream.(*DoHUpstream)
	if !ok {
		t.Fatalf("Expected *DoHUpstream, got %T", upstream)
	}

	if doh.url != "https://dns.google/dns-query" {
		t.Errorf("Expected normalized URL 'https://dns.google/dns-query', got %q", doh.url)
	}

	if doh.String() != "doh://dns.google/dns-query" {
		t.Errorf("Expected String 'doh://dns.google/dns-query', got %q", doh.String())
	}
}

func TestParseUpstream_HTTPS(t *testing.T) {
	upstream, err := ParseUpstream("https://cloudflare-dns.com/dns-query")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	doh, ok := upstream.(*DoHUpstream)
	if !ok {
		t.Fatalf("Expected *DoHUpstream, got %T", upstream)
	}

	if doh.url != "https://cloudflare-dns.com/dns-query" {
		t.Errorf("Expected URL unchanged, got %q", doh.url)
	}
}

func TestParseUpstream_UnsupportedScheme(t *testing.T) {
	_, err := ParseUpstream("tls://1.1.1.1")
	if err == nil {
		t.Fatal("Expected error for unsupported scheme")
	}
	if !strings.Contains(err.Error(), "unsupported upstream scheme") {
		t.Errorf("Expected unsupported scheme error, got %v", err)
	}
}

func TestParseUpstreams_Empty(t *testing.T) {
	_, err := ParseUpstreams(nil)
	if err == nil {
		t.Fatal("Expected error for empty upstream list")
	}
}

func TestParseUpstreams_Single(t *testing.T) {
	upstream, err := ParseUpstreams([]string{"udp://1.1.1.1:53"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := upstream.(*UDPUpstream); !ok {
		t.Fatalf("Expected *UDPUpstream for single entry, got %T", upstream)
	}
}

func TestParseUpstreams_Multiple(t *testing.T) {
	upstream, err := ParseUpstreams([]string{"udp://1.1.1.1:53", "udp://8.8.8.8:53"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	multi, ok := upstream.(*MultiUpstream)
	if !ok {
		t.Fatalf("Expected *MultiUpstream, got %T", upstream)
	}

	if multi.String() != "udp://1.1.1.1:53, udp://8.8.8.8:53" {
		t.Errorf("Unexpected String: %q", multi.String())
	}
}

func TestParseUpstreams_InvalidEntry(t *testing.T) {
	_, err := ParseUpstreams([]string{"udp://1.1.1.1:53", "tls://1.1.1.1"})
	if err == nil {
		t.Fatal("Expected error for invalid entry")
	}
	if !strings.Contains(err.Error(), "tls://1.1.1.1") {
		t.Errorf("Expected error to name the bad upstream, got %v", err)
	}
}

func TestMultiUpstream_FirstSucceeds(t *testing.T) {
	resp := new(dns.Msg)
	first := &mockUpstream{name: "first", resp: resp}
	second := &mockUpstream{name: "second", resp: new(dns.Msg)}

	multi := NewMultiUpstream([]Upstream{first, second})

	got, err := multi.Query(context.Background(), testQuery("example.com"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != resp {
		t.Error("Expected response from first upstream")
	}
	if second.queries != 0 {
		t.Errorf("Expected second upstream untouched, got %d queries", second.queries)
	}
}

func TestMultiUpstream_Failover(t *testing.T) {
	resp := new(dns.Msg)
	first := &mockUpstream{name: "first", err: errors.New("connection refused")}
	second := &mockUpstream{name: "second", resp: resp}

	multi := NewMultiUpstream([]Upstream{first, second})

	got, err := multi.Query(context.Background(), testQuery("example.com"))
	if err != nil {
		t.Fatalf("Expected failover to succeed, got %v", err)
	}
	if got != resp {
		t.Error("Expected response from second upstream")
	}
	if first.queries != 1 || second.queries != 1 {
		t.Errorf("Expected one query per upstream, got %d and %d", first.queries, second.queries)
	}
}

func TestMultiUpstream_AllFail(t *testing.T) {
	first := &mockUpstream{name: "first", err: errors.New("refused")}
	second := &mockUpstream{name: "second", err: errors.New("timeout")}

	multi := NewMultiUpstream([]Upstream{first, second})

	_, err := multi.Query(context.Background(), testQuery("example.com"))
	if err == nil {
		t.Fatal("Expected error when all upstreams fail")
	}
	if !strings.Contains(err.Error(), "all upstreams failed") {
		t.Errorf("Expected aggregate error, got %v", err)
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("Expected last error to be wrapped, got %v", err)
	}
}

func TestMultiUpstream_ContextCancelled(t *testing.T) {
	first := &mockUpstream{name: "first", resp: new(dns.Msg)}
	multi := NewMultiUpstream([]Upstream{first})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := multi.Query(ctx, testQuery("example.com"))
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
	if first.queries != 0 {
		t.Errorf("Expected no queries after cancellation, got %d", first.queries)
	}
}

func TestMultiUpstream_Close(t *testing.T) {
	first := &mockUpstream{name: "first"}
	second := &mockUpstream{name: "second"}

	multi := NewMultiUpstream([]Upstream{first, second})
	if err := multi.Close(); err != nil {
		t.Fatalf("Expected no error on close, got %v", err)
	}

	if !first.closed || !second.closed {
		t.Error("Expected all upstreams to be closed")
	}
}

func TestUDPUpstream_String(t *testing.T) {
	upstream, err := NewUDPUpstream("1.1.1.1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if upstream.String() != "udp://1.1.1.1:53" {
		t.Errorf("Expected 'udp://1.1.1.1:53', got %q", upstream.String())
	}
}

func TestNewUDPUpstream_InvalidAddress(t *testing.T) {
	_, err := NewUDPUpstream("not a:valid:address")
	if err == nil {
		t.Fatal("Expected error for invalid address")
	}
}

func TestDoHUpstream_Query(t *testing.T) {
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("Failed to read request body: %v", err)
			return
		}

		req := new(dns.Msg)
		if err := req.Unpack(body); err != nil {
			t.Errorf("Failed to unpack DNS request: %v", err)
			return
		}

		resp := new(dns.Msg)
		resp.SetReply(req)
		rr, _ := dns.NewRR("example.com. 300 IN A 93.184.216.34")
		resp.Answer = append(resp.Answer, rr)

		packed, _ := resp.Pack()
		w.Header().Set("Content-Type", dnsMessageContentType)
		w.Write(packed)
	}))
	defer server.Close()

	doh := NewDoHUpstream(server.URL)
	defer doh.Close()

	req := testQuery("example.com")
	resp, err := doh.Query(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotContentType != dnsMessageContentType {
		t.Errorf("Expected Content-Type %q, got %q", dnsMessageContentType, gotContentType)
	}
	if resp.Id != req.Id {
		t.Errorf("Expected response Id %04x, got %04x", req.Id, resp.Id)
	}
	if len(resp.Answer) != 1 {
		t.Fatalf("Expected 1 answer, got %d", len(resp.Answer))
	}
	a, ok := resp.Answer[0].(*dns.A)
	if !ok {
		t.Fatalf("Expected A record, got %T", resp.Answer[0])
	}
	if a.A.String() != "93.184.216.34" {
		t.Errorf("Expected 93.184.216.34, got %s", a.A)
	}
}

func TestDoHUpstream_QueryHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	doh := NewDoHUpstream(server.URL)
	defer doh.Close()

	_, err := doh.Query(context.Background(), testQuery("example.com"))
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}
