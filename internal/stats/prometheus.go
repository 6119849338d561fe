package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes an Aggregator as prometheus metrics. Values are read on
// scrape, so the collector adds no overhead to the query path.
type Collector struct {
	agg *Aggregator

	queriesDesc         *prometheus.Desc
	blockedDesc         *prometheus.Desc
	byCategoryDesc      *prometheus.Desc
	forwardFailuresDesc *prometheus.Desc
	forwardTimeoutsDesc *prometheus.Desc
	bytesSavedDesc      *prometheus.Desc
}

func NewCollector(agg *Aggregator) *Collector {
	return &Collector{
		agg: agg,
		queriesDesc: prometheus.NewDesc(
			"dnsblockd_queries_total",
			"Total DNS queries handled.",
			nil, nil),
		blockedDesc: prometheus.NewDesc(
			"dnsblockd_queries_blocked_total",
			"DNS queries answered with a synthesized blocking response.",
			nil, nil),
		byCategoryDesc: prometheus.NewDesc(
			"dnsblockd_queries_by_category_total",
			"DNS queries per classification category.",
			[]string{"category"}, nil),
		forwardFailuresDesc: prometheus.NewDesc(
			"dnsblockd_forward_failures_total",
			"Forwarded queries that failed upstream.",
			nil, nil),
		forwardTimeoutsDesc: prometheus.NewDesc(
			"dnsblockd_forward_timeouts_total",
			"Forwarded queries that hit the upstream deadline.",
			nil, nil),
		bytesSavedDesc: prometheus.NewDesc(
			"dnsblockd_bytes_saved_total",
			"Estimated bytes not transferred thanks to blocking.",
			nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queriesDesc
	ch <- c.blockedDesc
	ch <- c.byCategoryDesc
	ch <- c.forwardFailuresDesc
	ch <- c.forwardTimeoutsDesc
	ch <- c.bytesSavedDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.agg.GetStats()

	ch <- prometheus.MustNewConstMetric(c.queriesDesc, prometheus.CounterValue, float64(s.TotalRequests))
	ch <- prometheus.MustNewConstMetric(c.blockedDesc, prometheus.CounterValue, float64(s.BlockedRequests))
	ch <- prometheus.MustNewConstMetric(c.forwardFailuresDesc, prometheus.CounterValue, float64(s.ForwardFailures))
	ch <- prometheus.MustNewConstMetric(c.forwardTimeoutsDesc, prometheus.CounterValue, float64(s.ForwardTimeouts))
	ch <- prometheus.MustNewConstMetric(c.bytesSavedDesc, prometheus.CounterValue, float64(s.BytesSaved))

	byCategory := []struct {
		name  string
		value uint64
	}{
		{"advertisement", s.AdsBlocked},
		{"tracking", s.TrackersBlocked},
		{"malware", s.MalwareBlocked},
		{"social", s.SocialBlocked},
		{"custom", s.CustomBlocked},
		{"whitelisted", s.Whitelisted},
	}
	for _, cat := range byCategory {
		ch <- prometheus.MustNewConstMetric(c.byCategoryDesc, prometheus.CounterValue, float64(cat.value), cat.name)
	}
}
