// Package entrypool manages process-wide pools of fixed-size entries.
//
// # Overview
//
// Long-running servers churn many short-lived objects of the same handful
// of sizes. entrypool keeps one pool per aligned entry size: entries are
// carved from large blocks, freed entries go onto a reuse list instead of
// back to the heap, and block memory is returned only when the last owner
// of the pool releases its instance. Pools are deduplicated through a
// Registry, so every component asking for, say, 64-byte entries shares one
// pool and one reuse list.
//
// Sizes are clamped to LinkSize and rounded up to a multiple of 8; two
// requests landing on the same aligned size get the same pool. A registry
// serves at most MaxSizeClasses distinct sizes; a process that exceeds
// that limit is misconfigured and the condition is treated as fatal.
//
// # Usage Example
//
//	pool, err := entrypool.AcquirePool(64)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	ref, buf, err := pool.Alloc()
//	if err != nil {
//		return err
//	}
//	copy(buf, payload) // buf holds stale bytes, overwrite before reading
//
//	// ... later, hand the entry back for reuse
//	if err := pool.Free(ref); err != nil {
//		return err
//	}
//
// # Lifecycle and Auditing
//
// Each AcquirePool for a size adds one instance to that size's pool; the
// pool tears down when the last instance is released. Teardown audits the
// bookkeeping: entries never freed show up as "missing", entries freed
// twice as "extra". Both are warnings through the configured diagnostic
// sink and neither stops destruction. Registry.Report exposes the same
// accounting on demand without touching state, and ForceDestroyAll is the
// emergency teardown that skips every check.
//
// # Thread Safety
//
// All exported operations are safe for concurrent use. A registry mutex
// guards the size class table and one mutex per pool guards its blocks and
// reuse list. Entry bytes themselves belong to exactly one owner between
// Alloc and Free; the engine does not mediate access to them, and freeing
// an entry that is still in use elsewhere is caller misuse just as it was
// freeing memory twice in manual allocators.
//
// # Related Packages
//
//   - diag: pluggable diagnostic sink (slog by default)
//   - blockmem: raw block memory sources (heap, anonymous mmap)
package entrypool
