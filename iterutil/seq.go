package iterutil

// Map applies f to every element of s, keeping positions.
func Map[T any, Slice ~[]E, E any](s Slice, f func(i int, v E) T) []T {
	result := make([]T, len(s))
	for i, v := range s {
		result[i] = f(i, v)
	}
	return result
}

// TryMap is Map for fallible functions. It stops at the first error and
// reports the index it failed at.
func TryMap[T any, Slice ~[]E, E any](s Slice, f func(i int, v E) (T, error)) ([]T, int, error) {
	result := make([]T, len(s))
	for i, v := range s {
		out, err := f(i, v)
		if nil != err {
			return nil, i, err
		}
		result[i] = out
	}
	return result, -1, nil
}
