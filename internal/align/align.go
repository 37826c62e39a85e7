// Package align provides size rounding helpers for entry size classes.
package align

// Up returns n rounded up to the next multiple of align. align must be a
// power of two. Values within align-1 of the top of the uint32 range
// saturate to the largest representable multiple instead of wrapping.
//
// Example:
//
//	Up(1, 8)  = 8
//	Up(8, 8)  = 8
//	Up(9, 8)  = 16
func Up(n, align uint32) uint32 {
	mask := align - 1
	if n > ^uint32(0)-mask {
		return ^uint32(0) &^ mask
	}
	return (n + mask) &^ mask
}
