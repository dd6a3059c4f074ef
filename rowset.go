package csvgo

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// RowSet is a set of index positions backed by a Roaring Bitmap, produced by
// Select. Positions are 32-bit, which bounds selections to the first 2^32-1
// records of an index.
//
// Combinators return new sets and leave their operands unchanged. A RowSet
// is not safe for concurrent mutation, but shared read-only use is fine.
type RowSet struct {
	rb *roaring.Bitmap
}

// Select scans the resident records once and returns the set of positions
// whose record satisfies pred. Selection never touches the source table.
func (ix *Index[T, O]) Select(pred func(T) bool) *RowSet {
	rb := roaring.New()
	for i, rec := range ix.records {
		if pred(rec) {
			rb.Add(uint32(i))
		}
	}
	return &RowSet{rb: rb}
}

// And returns the intersection of s and other.
func (s *RowSet) And(other *RowSet) *RowSet {
	return &RowSet{rb: roaring.And(s.rb, other.rb)}
}

// Or returns the union of s and other.
func (s *RowSet) Or(other *RowSet) *RowSet {
	return &RowSet{rb: roaring.Or(s.rb, other.rb)}
}

// AndNot returns the positions in s that are not in other.
func (s *RowSet) AndNot(other *RowSet) *RowSet {
	return &RowSet{rb: roaring.AndNot(s.rb, other.rb)}
}

// Contains checks if a position is in the set.
func (s *RowSet) Contains(pos int) bool {
	if pos < 0 {
		return false
	}
	return s.rb.Contains(uint32(pos))
}

// IsEmpty returns true if the set is empty.
func (s *RowSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of positions in the set.
func (s *RowSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Positions returns the positions in ascending order.
func (s *RowSet) Positions() []uint32 {
	return s.rb.ToArray()
}
