// Package metrics counts pipeline outcomes with Prometheus collectors and
// dumps them to a node-exporter textfile after each run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons.
const (
	SkipSeen      = "seen"
	SkipDuplicate = "duplicate"
	SkipFiltered  = "filtered"
)

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	discovered  *prometheus.CounterVec
	newEntries  *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	sent        *prometheus.CounterVec
	lastRun     *prometheus.GaugeVec
}

// New registers the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		discovered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_entries_discovered_total",
			Help: "Detail URLs returned by discovery, labeled by site.",
		}, []string{"site"}),
		newEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_entries_new_total",
			Help: "Entries not seen before, labeled by site.",
		}, []string{"site"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_entries_skipped_total",
			Help: "Entries skipped, labeled by site and reason.",
		}, []string{"site", "reason"}),
		fetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_fetch_errors_total",
			Help: "Detail pages that could not be fetched, labeled by site.",
		}, []string{"site"}),
		sent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_notifications_sent_total",
			Help: "Embeds delivered to the webhook, labeled by site.",
		}, []string{"site"}),
		lastRun: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "radar_last_run_timestamp_seconds",
			Help: "Unix time the last run of a site finished.",
		}, []string{"site"}),
	}
}

// Discovered adds n discovered URLs.
func (m *Metrics) Discovered(site string, n int) {
	m.discovered.WithLabelValues(site).Add(float64(n))
}

// NewEntry counts one unseen entry.
func (m *Metrics) NewEntry(site string) {
	m.newEntries.WithLabelValues(site).Inc()
}

// Skipped counts one skipped entry.
func (m *Metrics) Skipped(site, reason string) {
	m.skipped.WithLabelValues(site, reason).Inc()
}

// FetchError counts one failed detail fetch.
func (m *Metrics) FetchError(site string) {
	m.fetchErrors.WithLabelValues(site).Inc()
}

// Sent adds n delivered embeds.
func (m *Metrics) Sent(site string, n int) {
	m.sent.WithLabelValues(site).Add(float64(n))
}

// Finished stamps the completion time of a site run.
func (m *Metrics) Finished(site string, at time.Time) {
	m.lastRun.WithLabelValues(site).Set(float64(at.Unix()))
}

// WriteTextfile writes every collector to path in the text exposition
// format, replacing the file atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
