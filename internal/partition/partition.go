// Package partition splits ordered work items into fixed-size chunks.
package partition

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned for a chunk size below 1.
var ErrInvalidSize = errors.New("partition size must be a positive integer")

// Split walks items in order and returns consecutive chunks of exactly size
// elements; the last chunk holds the remainder. Each chunk is a copy, so later
// changes to items do not show through. An empty input yields no chunks.
func Split[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	chunks := make([][]T, 0, Count(len(items), size))
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunk := make([]T, end-start)
		copy(chunk, items[start:end])
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Count returns how many chunks Split produces for n items, or 0 if size < 1.
func Count(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
