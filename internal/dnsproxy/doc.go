// Package dnsproxy provides the filtering DNS resolver at the core of
// dnsblockd. It listens for DNS queries over UDP and TCP, classifies each
// queried domain against the current filter snapshot, and either synthesizes
// a blocking answer locally or forwards the query to an upstream resolver.
//
// The proxy supports multiple upstream resolver types:
//   - udp://ip:port - plain UDP DNS resolver
//   - doh://host/path - DNS-over-HTTPS resolver
//
// Key features:
//   - Whitelist/exception-aware classification per query
//   - Synthesized answers for blocked domains (null IP or NXDOMAIN)
//   - Ordered failover across multiple upstreams
//   - Optional SO_REUSEPORT listeners for multi-process setups
//   - Per-query statistics recording
//
// Every query is handled in its own goroutine against an immutable filter
// snapshot, so classification never blocks on list refreshes. The filter.Store
// and stats.Aggregator collaborators are injected at construction time.
package dnsproxy
