package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/isocell/isocell/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// buildSpinner animates a status line while a partition tree is built.
//
// It installs itself as the partition hooks for its lifetime and counts
// splits and emitted cells, forwarding every event to the hooks that were
// registered before it. Stop restores those hooks.
type buildSpinner struct {
	w     io.Writer
	nodes int
	next  observability.PartitionHooks

	splits atomic.Int64
	cells  atomic.Int64
	placed atomic.Int64 // nodes in emitted cells

	mu    sync.Mutex
	width int // length of the last status line

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// startBuildSpinner registers the spinner and starts drawing to w. Drawing
// ends when ctx is cancelled or Stop is called.
func startBuildSpinner(ctx context.Context, w io.Writer, nodes int) *buildSpinner {
	s := &buildSpinner{
		w:       w,
		nodes:   nodes,
		next:    observability.Partition(),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	observability.SetPartitionHooks(s)
	go s.run(ctx)
	return s
}

func (s *buildSpinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clearLine()
			return
		case <-s.stop:
			s.clearLine()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

// status describes the build so far, e.g.
// "Partitioning 1204 nodes: 12 splits, 9 cells (61%)".
func (s *buildSpinner) status() string {
	pct := 100
	if s.nodes > 0 {
		pct = int(s.placed.Load() * 100 / int64(s.nodes))
	}
	return fmt.Sprintf("Partitioning %d nodes: %d splits, %d cells (%d%%)",
		s.nodes, s.splits.Load(), s.cells.Load(), pct)
}

func (s *buildSpinner) draw(frame string) {
	msg := s.status()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(msg))
	s.width = len(msg) + 2
}

func (s *buildSpinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}

// Stop ends drawing and restores the previous hooks. It returns the number
// of splits seen. Calling Stop again is a no-op.
func (s *buildSpinner) Stop() int {
	s.stopOnce.Do(func() {
		observability.SetPartitionHooks(s.next)
		close(s.stop)
		<-s.stopped
	})
	return int(s.splits.Load())
}

func (s *buildSpinner) OnPartitionStart(ctx context.Context, nodeCount int) {
	s.next.OnPartitionStart(ctx, nodeCount)
}

func (s *buildSpinner) OnSplit(ctx context.Context, nodeCount, cutSize int, d time.Duration) {
	s.splits.Add(1)
	s.next.OnSplit(ctx, nodeCount, cutSize, d)
}

func (s *buildSpinner) OnLeaf(ctx context.Context, nodeCount int, reason string) {
	s.cells.Add(1)
	s.placed.Add(int64(nodeCount))
	s.next.OnLeaf(ctx, nodeCount, reason)
}

func (s *buildSpinner) OnPartitionComplete(ctx context.Context, cellCount int, d time.Duration, err error) {
	s.next.OnPartitionComplete(ctx, cellCount, d, err)
}

var _ observability.PartitionHooks = (*buildSpinner)(nil)
