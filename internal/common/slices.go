package common

// Partition splits s into consecutive chunks of at most size elements.
// A size below 2 returns s as a single chunk.
func Partition[S ~[]E, E any](s S, size int) []S {
	if len(s) == 0 {
		return nil
	}

	if size < 2 || len(s) <= size {
		return []S{s}
	}

	chunks := make([]S, 0, (len(s)+size-1)/size)
	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		chunks = append(chunks, s[start:end:end])
	}

	return chunks
}

// UniqueComparable returns the distinct values of s in first-seen order,
// dropping nil and values whose dynamic type is not comparable.
func UniqueComparable(s []any) []any {
	seen := make(map[any]struct{}, len(s))
	out := make([]any, 0, len(s))

	for _, v := range s {
		if v == nil || !IsComparable(v) {
			continue
		}

		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}
