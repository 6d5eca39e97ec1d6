package mathx

// CeilDiv returns ceil(a/b) for unsigned integers. A zero divisor
// yields zero rather than a panic; callers validate their own ranges.
func CeilDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundDiv returns a/b rounded to nearest, same zero-divisor rule.
func RoundDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
