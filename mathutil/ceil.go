package mathutil

import (
	"golang.org/x/exp/constraints"
)

// DivCeil returns a/b rounded towards positive infinity.
func DivCeil[T constraints.Signed](a, b T) T {
	if b == 0 {
		panic("division by zero")
	}
	q, r := a/b, a%b
	if r != 0 && (r > 0) == (b > 0) {
		q++
	}
	return q
}

// Pages returns how many pages of size n are needed to hold total items.
// Zero items still occupy one, empty, page.
func Pages[T constraints.Signed](total, n T) T {
	if total <= 0 {
		return 1
	}
	return DivCeil(total, n)
}
