// Package prom implements the observability hooks with Prometheus metrics.
//
// Metrics are registered on a caller-supplied registry so that tests and
// short-lived CLI runs do not touch the global default registry:
//
//	reg := prometheus.NewRegistry()
//	m := prom.New(reg)
//	observability.SetPartitionHooks(m)
//	observability.SetStoreHooks(m)
//	// ... run ...
//	prom.WriteTextfile("isocell.prom", reg)
//
// All metric operations are safe for concurrent use.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/isocell/isocell/pkg/observability"
)

const namespace = "isocell"

// Metrics records partition and store events.
type Metrics struct {
	// PartitionRuns counts partition builds. Labels: status (success, error).
	PartitionRuns *prometheus.CounterVec

	// PartitionDuration measures whole partition builds.
	PartitionDuration prometheus.Histogram

	// Cells is the cell count of the most recent successful build.
	Cells prometheus.Gauge

	// Splits counts node sets divided along a cut.
	Splits prometheus.Counter

	// SplitDuration measures a single split, all directions included.
	SplitDuration prometheus.Histogram

	// CutSize observes the number of cut edges per split.
	CutSize prometheus.Histogram

	// Leaves counts emitted cells. Labels: reason.
	Leaves *prometheus.CounterVec

	// LeafNodes observes the node count of emitted cells.
	LeafNodes prometheus.Histogram

	// StoreCapacity is the backing size of each store. Labels: store.
	StoreCapacity *prometheus.GaugeVec

	// StoreOperations counts flushes and loads. Labels: store, op, status.
	StoreOperations *prometheus.CounterVec

	// StoreBytes counts bytes flushed or loaded. Labels: store, op.
	StoreBytes *prometheus.CounterVec

	// StoreDuration measures flushes and loads. Labels: op.
	StoreDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PartitionRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "runs_total",
			Help:      "Partition builds by status",
		}, []string{"status"}),
		PartitionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "duration_seconds",
			Help:      "Duration of whole partition builds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		Cells: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "cells",
			Help:      "Cell count of the last successful partition build",
		}),
		Splits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "splits_total",
			Help:      "Node sets divided along a minimum cut",
		}),
		SplitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "split_duration_seconds",
			Help:      "Duration of a single split over all projection directions",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		CutSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "cut_edges",
			Help:      "Cut edges per split",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Leaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "leaves_total",
			Help:      "Emitted cells by leaf reason",
		}, []string{"reason"}),
		LeafNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "partition",
			Name:      "leaf_nodes",
			Help:      "Node count of emitted cells",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}),
		StoreCapacity: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "capacity_bytes",
			Help:      "Backing buffer size of each store",
		}, []string{"store"}),
		StoreOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store flushes and loads by status",
		}, []string{"store", "op", "status"}),
		StoreBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "bytes_total",
			Help:      "Bytes written by flushes or read by loads",
		}, []string{"store", "op"}),
		StoreDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of store flushes and loads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) OnPartitionStart(ctx context.Context, nodeCount int) {}

func (m *Metrics) OnSplit(ctx context.Context, nodeCount, cutSize int, duration time.Duration) {
	m.Splits.Inc()
	m.SplitDuration.Observe(duration.Seconds())
	m.CutSize.Observe(float64(cutSize))
}

func (m *Metrics) OnLeaf(ctx context.Context, nodeCount int, reason string) {
	m.Leaves.WithLabelValues(reason).Inc()
	m.LeafNodes.Observe(float64(nodeCount))
}

func (m *Metrics) OnPartitionComplete(ctx context.Context, cellCount int, duration time.Duration, err error) {
	m.PartitionRuns.WithLabelValues(status(err)).Inc()
	m.PartitionDuration.Observe(duration.Seconds())
	if err == nil {
		m.Cells.Set(float64(cellCount))
	}
}

func (m *Metrics) OnGrow(store string, capacityBytes int) {
	m.StoreCapacity.WithLabelValues(store).Set(float64(capacityBytes))
}

func (m *Metrics) OnFlush(ctx context.Context, store string, bytes int, duration time.Duration, err error) {
	m.record(store, "flush", bytes, duration, err)
}

func (m *Metrics) OnLoad(ctx context.Context, store string, bytes int, duration time.Duration, err error) {
	m.record(store, "load", bytes, duration, err)
}

func (m *Metrics) record(store, op string, bytes int, duration time.Duration, err error) {
	m.StoreOperations.WithLabelValues(store, op, status(err)).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err == nil {
		m.StoreBytes.WithLabelValues(store, op).Add(float64(bytes))
	}
}

// WriteTextfile writes everything g gathers to path in the Prometheus text
// format, for the node exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

var (
	_ observability.PartitionHooks = (*Metrics)(nil)
	_ observability.StoreHooks     = (*Metrics)(nil)
)
