// Copyright 2026 The Strand Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package pool

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a snapshot of a pool's counters.
type Metrics struct {
	Gets      uint64
	Hits      uint64
	Misses    uint64
	Puts      uint64
	Evictions uint64
	// Size is the number of idle objects currently held.
	Size int
	// MaxSize is the current capacity.
	MaxSize int
}

// collector exports pool metrics to prometheus. It snapshots on every
// scrape, so it works for both pool variants through the snapshot func.
type collector struct {
	snapshot func() Metrics

	gets      *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	size      *prometheus.Desc
	maxSize   *prometheus.Desc
}

// NewCollector returns a prometheus collector reporting the given pool's
// metrics under the given name, e.g. "zstd_decoders".
func NewCollector(name string, snapshot func() Metrics) prometheus.Collector {
	fqName := func(suffix string) string {
		return prometheus.BuildFQName("strand", "pool", name+"_"+suffix)
	}
	return &collector{
		snapshot: snapshot,
		gets: prometheus.NewDesc(fqName("gets_total"),
			"Total pool lookups.", nil, nil),
		hits: prometheus.NewDesc(fqName("hits_total"),
			"Pool lookups served by recycling an object.", nil, nil),
		misses: prometheus.NewDesc(fqName("misses_total"),
			"Pool lookups that ran the factory.", nil, nil),
		evictions: prometheus.NewDesc(fqName("evictions_total"),
			"Objects destroyed to stay within capacity.", nil, nil),
		size: prometheus.NewDesc(fqName("size"),
			"Idle objects currently held.", nil, nil),
		maxSize: prometheus.NewDesc(fqName("max_size"),
			"Current pool capacity.", nil, nil),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.gets
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.size
	ch <- c.maxSize
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	m := c.snapshot()
	ch <- prometheus.MustNewConstMetric(c.gets, prometheus.CounterValue, float64(m.Gets))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(m.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(m.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(m.Evictions))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(m.Size))
	ch <- prometheus.MustNewConstMetric(c.maxSize, prometheus.GaugeValue, float64(m.MaxSize))
}
