// Package api provides the HTTP management API for dnsblockd.
//
// The API server runs alongside the DNS proxy in the same process and exposes:
//   - Query statistics and counter reset
//   - Ad-hoc domain classification (without resolving)
//   - Filter snapshot inspection and refresh triggering
//   - Health checks
//   - Prometheus metrics (optional)
//   - A server-rendered HTML status page at /
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "error_code",
//	    "message": "Human-readable error message"
//	  }
//	}
//
// # Access Control
//
// With private_only enabled (the default) requests are only accepted from
// loopback and RFC 1918 / ULA source addresses, so the server can bind to
// 0.0.0.0 on a router without exposing the API to the WAN side.
package api
