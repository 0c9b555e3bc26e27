package memory

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeMonitor struct {
	free      int
	refreshes int
}

func (f *fakeMonitor) Refresh()    { f.refreshes++ }
func (f *fakeMonitor) FreeMB() int { return f.free }

// countingAllocator hands out tiny stand-in blocks and fails after
// failAfter successful allocations when failAfter >= 0.
type countingAllocator struct {
	failAfter int
	allocs    int
	frees     int
}

func (c *countingAllocator) Alloc(size int) ([]byte, error) {
	if c.failAfter >= 0 && c.allocs >= c.failAfter {
		return nil, errors.New("refused")
	}
	c.allocs++
	return make([]byte, 64), nil
}

func (c *countingAllocator) Free([]byte) error {
	c.frees++
	return nil
}

func (c *countingAllocator) live() int { return c.allocs - c.frees }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(free, minFree int, opts ...Option) (*Manager, *fakeMonitor, *countingAllocator) {
	mon := &fakeMonitor{free: free}
	alloc := &countingAllocator{failAfter: -1}
	opts = append([]Option{WithAllocator(alloc), WithLogger(quietLogger())}, opts...)
	return New(mon, minFree, opts...), mon, alloc
}

func TestAllocate_GrowsPool(t *testing.T) {
	m, mon, alloc := newTestManager(8192, 1024)

	if err := m.Allocate(50); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if m.AllocatedMB() != 50 {
		t.Errorf("expected 50 MB, got %d", m.AllocatedMB())
	}
	if alloc.live() != 50 {
		t.Errorf("expected 50 live blocks, got %d", alloc.live())
	}
	if mon.refreshes != 1 {
		t.Errorf("allocate should refresh the monitor once, got %d", mon.refreshes)
	}
}

func TestAllocate_TouchesEveryPage(t *testing.T) {
	m := New(&fakeMonitor{free: 1 << 20}, 0, WithLogger(quietLogger()))
	defer m.Close()
	if err := m.Allocate(3); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	for i, b := range m.blocks {
		for off := 0; off < len(b); off += TouchStride {
			if b[off] != byte(i) {
				t.Fatalf("block %d offset %d: expected %d, got %d", i, off, i, b[off])
			}
		}
	}
}

func TestAllocate_RejectsNonPositive(t *testing.T) {
	m, mon, _ := newTestManager(8192, 0)
	for _, n := range []int{0, -5} {
		if err := m.Allocate(n); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Allocate(%d): expected ErrInvalidAmount, got %v", n, err)
		}
	}
	if mon.refreshes != 0 {
		t.Error("invalid amounts should not sample the system")
	}
}

func TestAllocate_FreeBoundary(t *testing.T) {
	tests := []struct {
		free    int
		wantErr bool
	}{
		{free: 100 + 1024, wantErr: false},
		{free: 100 + 1024 - 1, wantErr: true},
	}

	for _, tt := range tests {
		m, _, alloc := newTestManager(tt.free, 1024)
		err := m.Allocate(100)
		if tt.wantErr {
			var ime *InsufficientMemoryError
			if !errors.As(err, &ime) {
				t.Fatalf("free=%d: expected InsufficientMemoryError, got %v", tt.free, err)
			}
			if !errors.Is(err, ErrInsufficientMemory) {
				t.Error("InsufficientMemoryError should match ErrInsufficientMemory")
			}
			if ime.FreeMB != tt.free || ime.MinFreeMB != 1024 {
				t.Errorf("unexpected error fields %+v", ime)
			}
			if alloc.allocs != 0 || m.AllocatedMB() != 0 {
				t.Error("declined allocation must not touch the pool")
			}
		} else if err != nil {
			t.Fatalf("free=%d: unexpected error %v", tt.free, err)
		}
	}
}

func TestAllocate_RollsBackPartialBatch(t *testing.T) {
	m, _, alloc := newTestManager(8192, 0)
	if err := m.Allocate(10); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	alloc.failAfter = alloc.allocs + 7
	err := m.Allocate(20)
	var afe *AllocationFailedError
	if !errors.As(err, &afe) {
		t.Fatalf("expected AllocationFailedError, got %v", err)
	}
	if afe.AcquiredMB != 7 || afe.RequestedMB != 20 {
		t.Errorf("unexpected error fields %+v", afe)
	}
	if !errors.Is(err, ErrAllocationFailed) {
		t.Error("AllocationFailedError should match ErrAllocationFailed")
	}
	if m.AllocatedMB() != 10 {
		t.Errorf("pool should be unchanged at 10 MB, got %d", m.AllocatedMB())
	}
	if alloc.live() != 10 {
		t.Errorf("partial batch leaked: %d live blocks", alloc.live())
	}
}

func TestAllocate_Limit(t *testing.T) {
	m, _, _ := newTestManager(8192, 0, WithLimit(100))
	if err := m.Allocate(90); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := m.Allocate(11); !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("expected ErrLimitExceeded, got %v", err)
	}
	if err := m.Allocate(10); err != nil {
		t.Errorf("allocation up to the limit should succeed: %v", err)
	}
	if m.LimitMB() != 100 {
		t.Errorf("expected limit 100, got %d", m.LimitMB())
	}
}

func TestRelease_Bounds(t *testing.T) {
	m, _, alloc := newTestManager(8192, 0)
	if err := m.Allocate(30); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if got := m.Release(10); got != 10 {
		t.Errorf("expected 10 released, got %d", got)
	}
	if got := m.Digest(0); got != 0 {
		t.Errorf("digesting 0 should release nothing, got %d", got)
	}
	if got := m.Release(-3); got != 0 {
		t.Errorf("negative release should be a no-op, got %d", got)
	}
	if got := m.Release(100); got != 20 {
		t.Errorf("release past pool size should return 20, got %d", got)
	}
	if m.AllocatedMB() != 0 || alloc.live() != 0 {
		t.Errorf("pool should be empty, allocated=%d live=%d", m.AllocatedMB(), alloc.live())
	}
}

func TestAllocateReleaseRoundTrip(t *testing.T) {
	m, _, _ := newTestManager(8192, 0)
	if err := m.Allocate(40); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	before := m.AllocatedMB()

	if err := m.Allocate(25); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	m.Release(25)
	if m.AllocatedMB() != before {
		t.Errorf("expected %d after round trip, got %d", before, m.AllocatedMB())
	}
}

func TestResync(t *testing.T) {
	m, _, alloc := newTestManager(8192, 0)
	if err := m.Allocate(120); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if err := m.Resync(300); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if m.AllocatedMB() != 300 || alloc.live() != 300 {
		t.Errorf("expected 300 MB, allocated=%d live=%d", m.AllocatedMB(), alloc.live())
	}

	if err := m.Resync(0); err != nil {
		t.Fatalf("resync to zero: %v", err)
	}
	if m.AllocatedMB() != 0 {
		t.Errorf("expected empty pool, got %d", m.AllocatedMB())
	}
}

func TestResync_FailureLeavesPoolEmpty(t *testing.T) {
	m, mon, _ := newTestManager(8192, 0)
	if err := m.Allocate(50); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	mon.free = 10

	if err := m.Resync(300); !errors.Is(err, ErrInsufficientMemory) {
		t.Fatalf("expected ErrInsufficientMemory, got %v", err)
	}
	if m.AllocatedMB() != 0 {
		t.Errorf("failed resync should leave an empty pool, got %d", m.AllocatedMB())
	}
}

func TestClose(t *testing.T) {
	m, _, alloc := newTestManager(8192, 0)
	if err := m.Allocate(5); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if alloc.live() != 0 {
		t.Errorf("close leaked %d blocks", alloc.live())
	}
	if err := m.Allocate(1); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestDefaultAllocator(t *testing.T) {
	m := New(&fakeMonitor{free: 1 << 20}, 0, WithLogger(quietLogger()))
	defer m.Close()

	if err := m.Allocate(2); err != nil {
		t.Fatalf("allocate with default allocator: %v", err)
	}
	if len(m.blocks[1]) != BlockSize {
		t.Errorf("expected %d-byte blocks, got %d", BlockSize, len(m.blocks[1]))
	}
	if m.Release(2) != 2 {
		t.Error("expected both blocks released")
	}
}
