// Package memory holds real RAM on behalf of the pet.
//
// The Manager owns a pool of 1 MiB blocks. Every block is written at a
// fixed stride when acquired so the OS commits physical pages instead of
// leaving an untouched virtual reservation; the pool therefore shows up in
// host memory accounting at the size the pet claims to be.
package memory

import (
	"fmt"
	"log/slog"
	"sync"
)

const (
	// BlockSize is the size of one pool block.
	BlockSize = 1 << 20
	// TouchStride is the distance between forced writes inside a block.
	TouchStride = 4096
	// warnFraction of the limit at which a warning is logged.
	warnFraction = 0.8
)

// Monitor is the slice of the system monitor the manager needs: a fresh
// sample on demand and the free RAM it observed.
type Monitor interface {
	Refresh()
	FreeMB() int
}

// Allocator acquires and returns fixed-size blocks.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(b []byte) error
}

// reclaimer is implemented by allocators that need a nudge to return freed
// memory to the OS.
type reclaimer interface {
	reclaim()
}

// Manager tracks the pool of allocated blocks.
type Manager struct {
	mu        sync.Mutex
	blocks    [][]byte
	monitor   Monitor
	minFreeMB int
	limitMB   int
	alloc     Allocator
	closed    bool
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the total pool size. Zero means no cap.
func WithLimit(maxMB int) Option {
	return func(m *Manager) { m.limitMB = maxMB }
}

// WithAllocator replaces the block allocator.
func WithAllocator(a Allocator) Option {
	return func(m *Manager) { m.alloc = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates an empty manager that keeps at least minFreeMB of host RAM free.
func New(monitor Monitor, minFreeMB int, opts ...Option) *Manager {
	if minFreeMB < 0 {
		minFreeMB = 0
	}
	m := &Manager{
		monitor:   monitor,
		minFreeMB: minFreeMB,
		alloc:     newDefaultAllocator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Allocate grows the pool by amountMB blocks, all or nothing.
func (m *Manager) Allocate(amountMB int) error {
	if amountMB <= 0 {
		return fmt.Errorf("%w: got %d MB", ErrInvalidAmount, amountMB)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocateLocked(amountMB)
}

func (m *Manager) allocateLocked(amountMB int) error {
	if m.closed {
		return ErrClosed
	}

	current := len(m.blocks)
	if m.limitMB > 0 && current+amountMB > m.limitMB {
		return &LimitExceededError{RequestedMB: amountMB, AllocatedMB: current, LimitMB: m.limitMB}
	}

	// Always a fresh sample: a stale one could permit an over-allocation.
	m.monitor.Refresh()
	free := m.monitor.FreeMB()
	if free < amountMB+m.minFreeMB {
		return &InsufficientMemoryError{RequestedMB: amountMB, FreeMB: free, MinFreeMB: m.minFreeMB}
	}

	batch, err := m.acquire(amountMB, current)
	if err != nil {
		return err
	}
	m.blocks = append(m.blocks, batch...)

	total := len(m.blocks)
	if m.limitMB > 0 && float64(total) >= float64(m.limitMB)*warnFraction {
		m.logger.Warn("pool nearing limit",
			"allocated_mb", total,
			"limit_mb", m.limitMB,
			"percent", total*100/m.limitMB,
		)
	}
	m.logger.Debug("allocated", "amount_mb", amountMB, "allocated_mb", total, "free_mb", free)
	return nil
}

// acquire collects n touched blocks into a local batch. On failure the batch
// is returned to the allocator and the pool is untouched.
func (m *Manager) acquire(n, offset int) ([][]byte, error) {
	batch := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		b, err := m.alloc.Alloc(BlockSize)
		if err != nil {
			m.freeBlocks(batch)
			return nil, &AllocationFailedError{RequestedMB: n, AcquiredMB: i, Err: err}
		}
		touch(b, byte(offset+i))
		batch = append(batch, b)
	}
	return batch, nil
}

// touch writes pattern every TouchStride bytes so each page is committed.
func touch(b []byte, pattern byte) {
	for i := 0; i < len(b); i += TouchStride {
		b[i] = pattern
	}
}

// Release removes up to amountMB blocks and returns how many were removed.
func (m *Manager) Release(amountMB int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseLocked(amountMB)
}

// Digest is Release on the metabolism path.
func (m *Manager) Digest(amountMB int) int {
	return m.Release(amountMB)
}

func (m *Manager) releaseLocked(amountMB int) int {
	n := min(amountMB, len(m.blocks))
	if n <= 0 {
		return 0
	}
	keep := len(m.blocks) - n
	m.freeBlocks(m.blocks[keep:])
	clear(m.blocks[keep:])
	m.blocks = m.blocks[:keep]
	if r, ok := m.alloc.(reclaimer); ok {
		r.reclaim()
	}
	return n
}

func (m *Manager) freeBlocks(blocks [][]byte) {
	for _, b := range blocks {
		if err := m.alloc.Free(b); err != nil {
			m.logger.Warn("block free failed", "error", err)
		}
	}
}

// Clear releases every block.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked(len(m.blocks))
}

// Resync clears the pool and allocates exactly targetMB, so committed memory
// matches a freshly loaded pet.
func (m *Manager) Resync(targetMB int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked(len(m.blocks))
	if targetMB <= 0 {
		return nil
	}
	return m.allocateLocked(targetMB)
}

// AllocatedMB returns the pool size.
func (m *Manager) AllocatedMB() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks)
}

// LimitMB returns the configured cap, 0 when uncapped.
func (m *Manager) LimitMB() int {
	return m.limitMB
}

// Close releases every block. Further allocations fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.releaseLocked(len(m.blocks))
	m.closed = true
	return nil
}
