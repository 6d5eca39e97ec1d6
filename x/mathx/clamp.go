// Package mathx has the small generic helpers the drivers share.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Between reports lo <= v && v <= hi.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}
