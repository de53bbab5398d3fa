package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/isocell/isocell/pkg/config"
	"github.com/isocell/isocell/pkg/graph"
	"github.com/isocell/isocell/pkg/observability"
)

// lockedBuffer is a bytes.Buffer safe for the spinner goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type countingHooks struct {
	observability.NoopPartitionHooks
	mu     sync.Mutex
	splits int
	leaves int
}

func (h *countingHooks) OnSplit(context.Context, int, int, time.Duration) {
	h.mu.Lock()
	h.splits++
	h.mu.Unlock()
}

func (h *countingHooks) OnLeaf(context.Context, int, string) {
	h.mu.Lock()
	h.leaves++
	h.mu.Unlock()
}

func TestBuildSpinnerDrawsProgress(t *testing.T) {
	defer observability.Reset()
	var w lockedBuffer
	s := startBuildSpinner(context.Background(), &w, 10)

	hooks := observability.Partition()
	hooks.OnSplit(context.Background(), 10, 1, time.Millisecond)
	hooks.OnLeaf(context.Background(), 4, "within_bounds")

	want := "Partitioning 10 nodes: 1 splits, 1 cells (40%)"
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(w.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("status line never drawn, got %q", w.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := s.Stop(); got != 1 {
		t.Errorf("Stop() = %d splits, want 1", got)
	}
	if !strings.HasSuffix(w.String(), "\r") {
		t.Errorf("line not cleared after Stop: %q", w.String())
	}
}

func TestBuildSpinnerForwardsAndRestoresHooks(t *testing.T) {
	defer observability.Reset()
	prev := &countingHooks{}
	observability.SetPartitionHooks(prev)

	s := startBuildSpinner(context.Background(), io.Discard, 3)
	observability.Partition().OnSplit(context.Background(), 3, 1, 0)
	observability.Partition().OnLeaf(context.Background(), 3, "within_bounds")
	s.Stop()
	s.Stop()

	if prev.splits != 1 || prev.leaves != 1 {
		t.Errorf("forwarded splits/leaves = %d/%d, want 1/1", prev.splits, prev.leaves)
	}
	if observability.Partition() != observability.PartitionHooks(prev) {
		t.Error("Stop did not restore the previous hooks")
	}
}

func TestBuildSpinnerStopsOnCancel(t *testing.T) {
	defer observability.Reset()
	ctx, cancel := context.WithCancel(context.Background())
	s := startBuildSpinner(ctx, io.Discard, 1)
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("spinner kept drawing after cancel")
	}
	s.Stop()
}

func TestRunPartitionReportsSplits(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	var out bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, io.Discard
	defer func() { stdout, stderr = oldOut, oldErr }()

	doc, err := graph.ReadDocument(strings.NewReader(trianglesJSON))
	if err != nil {
		t.Fatal(err)
	}
	g, err := doc.Build(1)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendMemory
	cfg.Partition.MinCellNodes = 2
	cfg.Partition.MaxCellNodes = 4

	c := New(io.Discard, log.InfoLevel)
	tree, err := c.runPartition(context.Background(), cfg, g, partitionOutputs{noCache: true})
	if err != nil {
		t.Fatalf("runPartition: %v", err)
	}
	if tree.CellCount() != 2 {
		t.Errorf("CellCount = %d, want 2", tree.CellCount())
	}
	if !strings.Contains(out.String(), "1 splits") {
		t.Errorf("stats should report the split count:\n%s", out.String())
	}
	if _, ok := observability.Partition().(observability.NoopPartitionHooks); !ok {
		t.Errorf("hooks left installed: %T", observability.Partition())
	}
}
