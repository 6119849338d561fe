package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/filter"
	"github.com/dnsblockd/dnsblockd/internal/stats"
)

// Handler manages all API endpoints and dependencies.
type Handler struct {
	cfg       *config.Config
	store     *filter.Store
	stats     *stats.Aggregator
	refresh   chan<- struct{}
	version   string
	startedAt time.Time
}

// NewHandler creates a new API handler. The refresh channel triggers a filter
// re-compilation in the serve loop; it may be nil when no refresher runs.
func NewHandler(cfg *config.Config, store *filter.Store, aggregator *stats.Aggregator, refresh chan<- struct{}, version string) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		stats:     aggregator,
		refresh:   refresh,
		version:   version,
		startedAt: time.Now(),
	}
}

// GetStats returns the current query counters.
// GET /api/v1/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, StatsResponse(h.stats.GetStats()))
}

// ResetStats zeroes all query counters.
// POST /api/v1/stats/reset
func (h *Handler) ResetStats(w http.ResponseWriter, r *http.Request) {
	h.stats.Reset()
	writeNoContent(w)
}

// CheckDomain classifies a domain without resolving it.
// GET /api/v1/check?domain=ads.example.com&path=/banner.png
func (h *Handler) CheckDomain(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		WriteInvalidRequest(w, "domain query parameter is required")
		return
	}
	path := r.URL.Query().Get("path")

	decision := h.store.Current().Classify(filter.Query{Domain: domain, Path: path})

	writeJSONData(w, CheckResponse{
		Domain:   domain,
		Path:     path,
		Blocked:  decision.Blocked,
		Category: decision.Category.String(),
		Reason:   decision.Reason,
	})
}

// GetFilters describes the live filter snapshot.
// GET /api/v1/filters
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	idx := h.store.Current()

	resp := FiltersResponse{Loaded: idx != nil}
	if idx != nil {
		resp.Index = idx.Stats()
	}

	writeJSONData(w, resp)
}

// RefreshFilters schedules a filter list re-download and re-compilation.
// POST /api/v1/filters/refresh
func (h *Handler) RefreshFilters(w http.ResponseWriter, r *http.Request) {
	if h.refresh == nil {
		WriteServiceError(w, "filter refresh is not available")
		return
	}

	select {
	case h.refresh <- struct{}{}:
		writeJSON(w, http.StatusAccepted, RefreshResponse{Status: "scheduled"})
	default:
		// A refresh is already queued; the pending one will pick up the
		// latest list contents anyway.
		writeJSON(w, http.StatusAccepted, RefreshResponse{Status: "already_pending"})
	}
}

// CheckHealth performs health checks on the resolver.
// GET /api/v1/health
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthCheckResponse{
		Healthy: true,
		Checks:  make(map[string]CheckResult),
	}

	// Check that a filter snapshot has been published
	idx := h.store.Current()
	if idx == nil {
		response.Healthy = false
		response.Checks["filter_index"] = CheckResult{
			Passed:  false,
			Message: "No filter snapshot loaded yet",
		}
	} else {
		s := idx.Stats()
		msg := fmt.Sprintf("%d domain rules, %d glob rules, %d whitelist entries",
			s.DomainRules, s.GlobRules, s.WhitelistEntries)
		if len(s.Warnings) > 0 {
			// Degraded sources do not fail health: the resolver still works
			// on whatever compiled.
			msg += " (degraded: " + strings.Join(s.Warnings, "; ") + ")"
		}
		response.Checks["filter_index"] = CheckResult{
			Passed:  true,
			Message: msg,
		}
	}

	// Check upstream configuration
	if len(h.cfg.DNS.Upstreams) == 0 {
		response.Healthy = false
		response.Checks["dns_upstreams"] = CheckResult{
			Passed:  false,
			Message: "No upstream resolvers configured",
		}
	} else {
		response.Checks["dns_upstreams"] = CheckResult{
			Passed:  true,
			Message: strings.Join(h.cfg.DNS.Upstreams, ", "),
		}
	}

	writeJSONData(w, response)
}
