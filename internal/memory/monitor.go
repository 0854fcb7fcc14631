// Package memory provides an advisory memory monitor for the ingestion
// pipeline. It is consulted between embedding batches and triggers a
// best-effort release when heap usage crosses a budget threshold.
package memory

import (
	"runtime"
	"runtime/debug"

	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vectra-cli/internal/logger"
)

// Ensure Monitor implements the interface.
var _ driven.MemoryMonitor = (*Monitor)(nil)

const (
	// DefaultBudgetBytes is the assumed memory budget when none is
	// configured.
	DefaultBudgetBytes = 16 << 30 // 16 GiB

	// DefaultThreshold is the usage fraction that triggers a release pass.
	DefaultThreshold = 0.8
)

// Monitor watches heap usage against a fixed budget. It is purely
// advisory: crossing the threshold triggers a collection pass and a
// warning, never an error.
type Monitor struct {
	budgetBytes uint64
	threshold   float64

	// readUsage is swapped in tests to simulate pressure.
	readUsage func() uint64
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithBudget sets the memory budget in bytes. Non-positive values keep
// the default.
func WithBudget(bytes uint64) Option {
	return func(m *Monitor) {
		if bytes > 0 {
			m.budgetBytes = bytes
		}
	}
}

// WithThreshold sets the usage fraction that triggers a release pass.
// Values outside (0, 1] keep the default.
func WithThreshold(threshold float64) Option {
	return func(m *Monitor) {
		if threshold > 0 && threshold <= 1 {
			m.threshold = threshold
		}
	}
}

// NewMonitor creates a monitor with the given options.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		budgetBytes: DefaultBudgetBytes,
		threshold:   DefaultThreshold,
		readUsage:   heapAlloc,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Check compares heap usage to the budget and, when over threshold,
// returns memory to the OS. Safe to call frequently; the release pass
// only runs when actually over.
func (m *Monitor) Check() {
	used := m.readUsage()
	limit := uint64(float64(m.budgetBytes) * m.threshold)
	if used < limit {
		return
	}

	logger.Warn("memory usage %d MB exceeds %.0f%% of %d MB budget, releasing memory",
		used>>20, m.threshold*100, m.budgetBytes>>20)
	debug.FreeOSMemory()
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}
