// Package stats provides concurrent query counters for dnsblockd.
//
// The aggregator is written to from every query-handling goroutine, so all
// counters are plain atomics. Counts are process-lifetime: they start at
// zero, are never persisted, and reset only on restart or an explicit Reset.
package stats

import (
	"sync/atomic"

	"github.com/dnsblockd/dnsblockd/internal/filter"
)

// Aggregator accumulates query and blocking counters.
//
// Counter updates are eventually consistent across fields: a reader may
// observe a total that is ahead of the category counters, but never a
// category counter ahead of the total.
type Aggregator struct {
	total           uint64
	blocked         uint64
	forwardFailures uint64
	forwardTimeouts uint64
	bytesSaved      uint64

	ads         uint64
	trackers    uint64
	malware     uint64
	social      uint64
	custom      uint64
	whitelisted uint64
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record counts one classified query. The total is incremented before the
// category counter so a concurrent snapshot never sees a category exceed it.
func (a *Aggregator) Record(category filter.Category, blocked bool) {
	atomic.AddUint64(&a.total, 1)

	if blocked {
		atomic.AddUint64(&a.blocked, 1)
		atomic.AddUint64(&a.bytesSaved, bytesSavedEstimate(category))
	}

	switch category {
	case filter.CategoryAdvertisement:
		atomic.AddUint64(&a.ads, 1)
	case filter.CategoryTracking:
		atomic.AddUint64(&a.trackers, 1)
	case filter.CategoryMalware:
		atomic.AddUint64(&a.malware, 1)
	case filter.CategorySocial:
		atomic.AddUint64(&a.social, 1)
	case filter.CategoryCustom:
		atomic.AddUint64(&a.custom, 1)
	case filter.CategoryWhitelisted:
		atomic.AddUint64(&a.whitelisted, 1)
	}
}

// IncForwardFailure counts a query that could not be resolved upstream.
func (a *Aggregator) IncForwardFailure() {
	atomic.AddUint64(&a.forwardFailures, 1)
}

// IncForwardTimeout counts a forwarded query that hit the upstream deadline.
func (a *Aggregator) IncForwardTimeout() {
	atomic.AddUint64(&a.forwardTimeouts, 1)
}

// bytesSavedEstimate approximates the payload a blocked request would have
// transferred. The numbers are rough medians for each category of content.
func bytesSavedEstimate(category filter.Category) uint64 {
	switch category {
	case filter.CategoryAdvertisement:
		return 25000
	case filter.CategoryTracking:
		return 5000
	case filter.CategorySocial:
		return 15000
	case filter.CategoryMalware:
		return 10000
	default:
		return 8000
	}
}

// Stats is a point-in-time copy of the counters.
type Stats struct {
	TotalRequests   uint64  `json:"total_requests"`
	BlockedRequests uint64  `json:"blocked_requests"`
	AdsBlocked      uint64  `json:"ads_blocked"`
	TrackersBlocked uint64  `json:"trackers_blocked"`
	MalwareBlocked  uint64  `json:"malware_blocked"`
	SocialBlocked   uint64  `json:"social_blocked"`
	CustomBlocked   uint64  `json:"custom_blocked"`
	Whitelisted     uint64  `json:"whitelisted"`
	ForwardFailures uint64  `json:"forward_failures"`
	ForwardTimeouts uint64  `json:"forward_timeouts"`
	BytesSaved      uint64  `json:"bytes_saved"`
	BlockPercentage float64 `json:"block_percentage"`
}

// GetStats returns the current counters.
func (a *Aggregator) GetStats() Stats {
	s := Stats{
		TotalRequests:   atomic.LoadUint64(&a.total),
		BlockedRequests: atomic.LoadUint64(&a.blocked),
		AdsBlocked:      atomic.LoadUint64(&a.ads),
		TrackersBlocked: atomic.LoadUint64(&a.trackers),
		MalwareBlocked:  atomic.LoadUint64(&a.malware),
		SocialBlocked:   atomic.LoadUint64(&a.social),
		CustomBlocked:   atomic.LoadUint64(&a.custom),
		Whitelisted:     atomic.LoadUint64(&a.whitelisted),
		ForwardFailures: atomic.LoadUint64(&a.forwardFailures),
		ForwardTimeouts: atomic.LoadUint64(&a.forwardTimeouts),
		BytesSaved:      atomic.LoadUint64(&a.bytesSaved),
	}
	if s.TotalRequests > 0 {
		s.BlockPercentage = float64(s.BlockedRequests) / float64(s.TotalRequests) * 100.0
	}
	return s
}

// Reset zeroes all counters.
func (a *Aggregator) Reset() {
	atomic.StoreUint64(&a.total, 0)
	atomic.StoreUint64(&a.blocked, 0)
	atomic.StoreUint64(&a.forwardFailures, 0)
	atomic.StoreUint64(&a.forwardTimeouts, 0)
	atomic.StoreUint64(&a.bytesSaved, 0)
	atomic.StoreUint64(&a.ads, 0)
	atomic.StoreUint64(&a.trackers, 0)
	atomic.StoreUint64(&a.malware, 0)
	atomic.StoreUint64(&a.social, 0)
	atomic.StoreUint64(&a.custom, 0)
	atomic.StoreUint64(&a.whitelisted, 0)
}
