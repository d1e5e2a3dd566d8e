package datasource

import "fmt"

// keyIndex matches database values back to the keys as requested.
type keyIndex map[string]any

func newKeyIndex(keys []any) keyIndex {
	idx := make(keyIndex, len(keys))
	for _, k := range keys {
		idx[fmt.Sprint(k)] = k
	}

	return idx
}

func (idx keyIndex) lookup(v any) (any, bool) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	k, ok := idx[fmt.Sprint(v)]

	return k, ok
}
