package entrypool

// defaultRegistry backs the package-level functions, so a process that
// wants one shared table of size classes gets it without plumbing a
// Registry everywhere.
var defaultRegistry = NewRegistry(nil)

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry { return defaultRegistry }

// AcquirePool acquires a pool from the process-wide registry.
func AcquirePool(size uint32) (*Pool, error) { return defaultRegistry.AcquirePool(size) }

// PoolCount counts the size classes in the process-wide registry.
func PoolCount() int { return defaultRegistry.PoolCount() }

// DefaultReport snapshots the process-wide registry.
func DefaultReport() *Report { return defaultRegistry.Report() }

// LogReport renders the process-wide report through the registry's sink.
func LogReport() { defaultRegistry.LogReport() }

// ForceDestroyAll tears down the process-wide registry. See
// Registry.ForceDestroyAll for the caveats.
func ForceDestroyAll() { defaultRegistry.ForceDestroyAll() }
