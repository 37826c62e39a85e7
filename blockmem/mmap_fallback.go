//go:build !(linux || darwin || freebsd)

package blockmem

// NewMmapSource reports that anonymous mappings are not available on this
// platform. Callers fall back to HeapSource.
func NewMmapSource() (Source, error) {
	return nil, ErrUnsupported
}
