package schema

// Append adds items to the list dst points to, creating the list if it was
// never set. Order is kept and duplicates are allowed.
func Append[T any](dst *[]T, items ...T) {
	if *dst == nil {
		*dst = make([]T, 0, len(items))
	}
	*dst = append(*dst, items...)
}

// Put stores v under k in the map dst points to, creating the map if it was
// never set. A later Put for the same key replaces the earlier value.
func Put[K comparable, V any](dst *map[K]V, k K, v V) {
	if *dst == nil {
		*dst = make(map[K]V)
	}
	(*dst)[k] = v
}
