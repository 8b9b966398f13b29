// SPDX-License-Identifier: Apache-2.0

// Package metrics exports jemalloc's global statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	jemalloc "github.com/wundergraph/go-jemalloc"
	"github.com/wundergraph/go-jemalloc/ctl"
	"github.com/wundergraph/go-jemalloc/internal/logutil"
)

// DefaultNamespace prefixes every metric name unless configured otherwise.
const DefaultNamespace = "jemalloc"

// Collector is a prometheus.Collector that advances the epoch on every
// scrape and reports the refreshed statistics.
type Collector struct {
	native jemalloc.Native
	reader *ctl.StatsReader

	info      *prometheus.Desc
	epoch     *prometheus.Desc
	allocated *prometheus.Desc
	active    *prometheus.Desc
	metadata  *prometheus.Desc
	resident  *prometheus.Desc
	mapped    *prometheus.Desc
	retained  *prometheus.Desc
	bgThread  *prometheus.Desc

	scrapeErrors prometheus.Counter
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for n. The statistics controls are
// resolved once, here.
func NewCollector(n jemalloc.Native, namespace string) (*Collector, error) {
	reader, err := ctl.NewStatsReader(n)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		native:    n,
		reader:    reader,
		info:      desc("info", "jemalloc version and linkage, always 1.", "version", "linked"),
		epoch:     desc("epoch", "Statistics epoch the values were refreshed from."),
		allocated: desc("allocated_bytes", "Bytes allocated by the application."),
		active:    desc("active_bytes", "Bytes in active pages allocated by the application."),
		metadata:  desc("metadata_bytes", "Bytes dedicated to allocator metadata."),
		resident:  desc("resident_bytes", "Bytes in physically resident data pages mapped by the allocator."),
		mapped:    desc("mapped_bytes", "Bytes in active extents mapped by the allocator."),
		retained:  desc("retained_bytes", "Bytes in virtual memory mappings retained rather than returned to the OS."),
		bgThread:  desc("background_thread_enabled", "Whether background purging threads are enabled."),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_errors_total",
			Help:      "Failed reads of allocator statistics.",
		}),
	}, nil
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.info, c.epoch, c.allocated, c.active, c.metadata,
		c.resident, c.mapped, c.retained, c.bgThread,
	} {
		ch <- d
	}
	c.scrapeErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	defer c.scrapeErrors.Collect(ch)

	if version, err := ctl.Version.Read(c.native); err != nil {
		c.fail("version", err)
	} else {
		ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1, version, boolLabel(jemalloc.Linked))
	}

	if enabled, err := ctl.BackgroundThread.Read(c.native); err != nil {
		c.fail(ctl.BackgroundThread.Name().Path(), err)
	} else {
		ch <- prometheus.MustNewConstMetric(c.bgThread, prometheus.GaugeValue, boolValue(enabled))
	}

	stats, err := c.reader.Refresh()
	if err != nil {
		c.fail("stats", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.epoch, prometheus.CounterValue, float64(stats.Epoch))
	for _, m := range []struct {
		desc  *prometheus.Desc
		value uintptr
	}{
		{c.allocated, stats.Allocated},
		{c.active, stats.Active},
		{c.metadata, stats.Metadata},
		{c.resident, stats.Resident},
		{c.mapped, stats.Mapped},
		{c.retained, stats.Retained},
	} {
		ch <- prometheus.MustNewConstMetric(m.desc, prometheus.GaugeValue, float64(m.value))
	}
}

func (c *Collector) fail(what string, err error) {
	c.scrapeErrors.Inc()
	logutil.Warn("failed to read allocator statistics", zap.String("control", what), zap.Error(err))
}

// NewRegistry returns a registry holding a Collector for n together with
// the Go runtime and process collectors.
func NewRegistry(n jemalloc.Native, namespace string) (*prometheus.Registry, error) {
	c, err := NewCollector(n, namespace)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
