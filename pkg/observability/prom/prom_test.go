package prom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(reg), reg
}

func TestPartitionMetrics(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMetrics(t)

	m.OnPartitionStart(ctx, 12)
	m.OnSplit(ctx, 12, 1, time.Millisecond)
	m.OnLeaf(ctx, 6, "within_bounds")
	m.OnLeaf(ctx, 6, "within_bounds")
	m.OnPartitionComplete(ctx, 2, 5*time.Millisecond, nil)
	m.OnPartitionComplete(ctx, 0, time.Millisecond, errors.New("cancelled"))

	if got := testutil.ToFloat64(m.Splits); got != 1 {
		t.Errorf("splits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Leaves.WithLabelValues("within_bounds")); got != 2 {
		t.Errorf("within_bounds leaves = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PartitionRuns.WithLabelValues("success")); got != 1 {
		t.Errorf("successful runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PartitionRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Cells); got != 2 {
		t.Errorf("cells = %v, want 2 from the last successful run", got)
	}
}

func TestStoreMetrics(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMetrics(t)

	m.OnGrow("ext_wheelchair", 4096)
	m.OnGrow("ext_wheelchair", 8192)
	m.OnFlush(ctx, "ext_wheelchair", 520, time.Millisecond, nil)
	m.OnLoad(ctx, "ext_wheelchair", 0, time.Millisecond, errors.New("missing"))

	if got := testutil.ToFloat64(m.StoreCapacity.WithLabelValues("ext_wheelchair")); got != 8192 {
		t.Errorf("capacity = %v, want 8192", got)
	}
	if got := testutil.ToFloat64(m.StoreOperations.WithLabelValues("ext_wheelchair", "flush", "success")); got != 1 {
		t.Errorf("flushes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreOperations.WithLabelValues("ext_wheelchair", "load", "error")); got != 1 {
		t.Errorf("failed loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreBytes.WithLabelValues("ext_wheelchair", "flush")); got != 520 {
		t.Errorf("flushed bytes = %v, want 520", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.OnSplit(context.Background(), 10, 3, time.Millisecond)

	path := filepath.Join(t.TempDir(), "isocell.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "isocell_partition_splits_total 1") {
		t.Errorf("textfile missing splits counter:\n%s", data)
	}
}
