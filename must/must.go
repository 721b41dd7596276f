package must

// Be panics when an internal invariant does not hold.
func Be(expr bool, msg string) {
	if !expr {
		panic("assertion failed: " + msg)
	}
}
