package csvgo

import (
	"cmp"
	"slices"
	"time"
)

// Find locates the record whose key equals key, using binary search over the
// resident records. keyOf extracts the lookup key from a record.
//
// Precondition: the records are sorted ascending by keyOf. This is the
// caller's responsibility (typically the table itself is sorted by the key
// column); it is not checked, and results on unsorted records are
// unspecified. Use IsSorted to verify while developing.
//
// When several records share the key, an unspecified one of them is
// returned. Find performs no I/O and no allocation.
func Find[T Record[O], O Offset, K cmp.Ordered](ix *Index[T, O], key K, keyOf func(T) K) (T, bool) {
	start := time.Now()
	i, found := slices.BinarySearchFunc(ix.records, key, func(rec T, k K) int {
		return cmp.Compare(keyOf(rec), k)
	})
	ix.metrics.RecordFind(found, time.Since(start))
	if !found {
		var zero T
		return zero, false
	}
	return ix.records[i], true
}

// IsSorted reports whether the resident records are sorted ascending by
// keyOf, i.e. whether the Find precondition holds.
func IsSorted[T Record[O], O Offset, K cmp.Ordered](ix *Index[T, O], keyOf func(T) K) bool {
	return slices.IsSortedFunc(ix.records, func(a, b T) int {
		return cmp.Compare(keyOf(a), keyOf(b))
	})
}
