package loader

// OrderByKeys arranges items to match keys. Keys with no item get the zero value.
func OrderByKeys[K comparable, V any](keys []K, items []V, keyOf func(V) K) []V {
	byKey := make(map[K]V, len(items))
	for _, item := range items {
		byKey[keyOf(item)] = item
	}
	out := make([]V, len(keys))
	for i, key := range keys {
		out[i] = byKey[key]
	}
	return out
}

// GroupByKeys partitions items per key, in key order. Keys with no item get an
// empty, non-nil slice. Items keep their relative order within a group.
func GroupByKeys[K comparable, V any](keys []K, items []V, keyOf func(V) K) [][]V {
	groups := make(map[K][]V, len(keys))
	for _, item := range items {
		k := keyOf(item)
		groups[k] = append(groups[k], item)
	}
	out := make([][]V, len(keys))
	for i, key := range keys {
		if g, ok := groups[key]; ok {
			out[i] = g
		} else {
			out[i] = []V{}
		}
	}
	return out
}
