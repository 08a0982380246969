package spatial

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Selection is a compressed set of point indices.
// It wraps a 32-bit Roaring bitmap, so indices must fit in a uint32.
type Selection struct {
	rb *roaring.Bitmap
}

// NewSelection returns a selection holding the given indices.
func NewSelection(indices ...int) *Selection {
	s := &Selection{rb: roaring.New()}
	for _, i := range indices {
		s.rb.Add(uint32(i))
	}
	return s
}

// Add adds index i.
func (s *Selection) Add(i int) { s.rb.Add(uint32(i)) }

// Contains reports whether index i is selected.
func (s *Selection) Contains(i int) bool { return s.rb.Contains(uint32(i)) }

// Len returns the number of selected indices.
func (s *Selection) Len() int { return int(s.rb.GetCardinality()) }

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool { return s.rb.IsEmpty() }

// Indices returns the selected indices in ascending order.
func (s *Selection) Indices() []int {
	out := make([]int, 0, s.rb.GetCardinality())
	it := s.rb.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// All iterates the selected indices in ascending order.
func (s *Selection) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// And keeps only indices also in other.
func (s *Selection) And(other *Selection) { s.rb.And(other.rb) }

// Or adds every index in other.
func (s *Selection) Or(other *Selection) { s.rb.Or(other.rb) }

// AndNot removes every index in other.
func (s *Selection) AndNot(other *Selection) { s.rb.AndNot(other.rb) }

// Clone returns a deep copy.
func (s *Selection) Clone() *Selection { return &Selection{rb: s.rb.Clone()} }

// SizeInBytes returns the serialized size of the bitmap.
func (s *Selection) SizeInBytes() uint64 { return s.rb.GetSizeInBytes() }

// SelectBox is QueryBox as a Selection.
func (idx *Index) SelectBox(b Box) *Selection {
	s := NewSelection()
	if b.Empty() {
		return s
	}
	for i := range idx.lons {
		if b.Contains(idx.lons[i], idx.lats[i]) {
			s.rb.Add(uint32(i))
		}
	}
	return s
}

// SelectRadius is QueryRadius as a Selection.
func (idx *Index) SelectRadius(lon, lat, radiusDeg float64) *Selection {
	s := NewSelection()
	q, r2, ok := query(lon, lat, radiusDeg)
	if !ok {
		return s
	}
	for _, i := range idx.tree.within(q, r2, nil) {
		s.rb.Add(uint32(i))
	}
	return s
}
