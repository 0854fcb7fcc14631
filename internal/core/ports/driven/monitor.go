package driven

// MemoryMonitor is an advisory resource guard consulted between
// embedding batches. Crossing the configured threshold triggers a
// best-effort release pass; it never blocks, fails, or retries an
// operation on the caller's behalf.
type MemoryMonitor interface {
	// Check inspects current usage and, when over threshold, performs a
	// best-effort cache-clear/collection pass.
	Check()
}
