package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"
)

// statusPageTemplate is the HTML served at the API root. It is rendered
// server-side so the page works without any frontend tooling.
const statusPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>dnsblockd</title>
<style>
body { font-family: system-ui, sans-serif; background: #1a1d21; color: #e8e8e8; margin: 0; padding: 2rem; }
h1 { font-size: 1.4rem; }
h1 span { color: #6a737d; font-weight: normal; font-size: 0.9rem; }
table { border-collapse: collapse; margin-top: 1rem; }
td { padding: 0.3rem 1rem 0.3rem 0; color: #c8c8c8; }
td:first-child { color: #6a737d; }
.big { font-size: 2rem; color: #58a6ff; }
.blocked { color: #f85149; }
footer { margin-top: 2rem; color: #6a737d; font-size: 0.8rem; }
a { color: #58a6ff; }
</style>
</head>
<body>
<h1>dnsblockd <span>{{version}}</span></h1>
<table>
<tr><td>Queries</td><td class="big">{{total}}</td></tr>
<tr><td>Blocked</td><td class="big blocked">{{blocked}} ({{percentage}}%)</td></tr>
<tr><td>Estimated bytes saved</td><td>{{bytes_saved}}</td></tr>
<tr><td>DNS listener</td><td>{{listen}}</td></tr>
<tr><td>Upstreams</td><td>{{upstreams}}</td></tr>
<tr><td>Rules</td><td>{{rules}}</td></tr>
<tr><td>Uptime</td><td>{{uptime}}</td></tr>
</table>
<footer>API: <a href="/api/v1/stats">/api/v1/stats</a> &middot; <a href="/api/v1/filters">/api/v1/filters</a> &middot; <a href="/api/v1/health">/api/v1/health</a></footer>
</body>
</html>
`

// StatusPage renders the HTML status page.
// GET /
func (h *Handler) StatusPage(w http.ResponseWriter, r *http.Request) {
	s := h.stats.GetStats()

	rules := "no snapshot loaded"
	if idx := h.store.Current(); idx != nil {
		st := idx.Stats()
		rules = fmt.Sprintf("%d domain, %d glob, %d whitelist", st.DomainRules, st.GlobRules, st.WhitelistEntries)
	}

	t := fasttemplate.New(statusPageTemplate, "{{", "}}")
	page := t.ExecuteString(map[string]interface{}{
		"version":     h.version,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"listen":      h.cfg.DNS.Listen,
		"upstreams":   strings.Join(h.cfg.DNS.Upstreams, ", "),
		"total":       strconv.FormatUint(s.TotalRequests, 10),
		"blocked":     strconv.FormatUint(s.BlockedRequests, 10),
		"percentage":  fmt.Sprintf("%.1f", s.BlockPercentage),
		"bytes_saved": formatBytes(s.BytesSaved),
		"rules":       rules,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// formatBytes renders a byte count in human-readable units.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for i := n / unit; i >= unit; i /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
