package segment

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is a set of sample indices backed by a 32-bit Roaring bitmap.
type Bitmap struct {
	rb *roaring.Bitmap
}

// NewBitmap creates a new empty bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{
		rb: roaring.New(),
	}
}

// BitmapOf creates a bitmap holding ids.
func BitmapOf(ids ...uint32) *Bitmap {
	return &Bitmap{
		rb: roaring.BitmapOf(ids...),
	}
}

// Add adds a sample index to the bitmap.
func (b *Bitmap) Add(id uint32) {
	b.rb.Add(id)
}

// Remove removes a sample index from the bitmap.
func (b *Bitmap) Remove(id uint32) {
	b.rb.Remove(id)
}

// Contains checks if a sample index is in the bitmap.
func (b *Bitmap) Contains(id uint32) bool {
	return b.rb.Contains(id)
}

// IsEmpty returns true if the bitmap is empty.
func (b *Bitmap) IsEmpty() bool {
	return b.rb.IsEmpty()
}

// Cardinality returns the number of elements in the bitmap.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// Maximum returns the largest index in the bitmap. The bitmap must not be empty.
func (b *Bitmap) Maximum() uint32 {
	return b.rb.Maximum()
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{
		rb: b.rb.Clone(),
	}
}

// Iterator returns an iterator over the bitmap in ascending order.
func (b *Bitmap) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToArray returns the indices in ascending order.
func (b *Bitmap) ToArray() []uint32 {
	return b.rb.ToArray()
}

// And intersects b with other in place.
func (b *Bitmap) And(other *Bitmap) {
	b.rb.And(other.rb)
}

// Or unions other into b in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// AndNot removes the elements of other from b in place.
func (b *Bitmap) AndNot(other *Bitmap) {
	b.rb.AndNot(other.rb)
}

// Equals reports whether both bitmaps hold the same indices.
func (b *Bitmap) Equals(other *Bitmap) bool {
	return b.rb.Equals(other.rb)
}

// Group returns the union of segments as a new bitmap.
func Group(segments ...*Bitmap) *Bitmap {
	rbs := make([]*roaring.Bitmap, 0, len(segments))
	for _, s := range segments {
		if s != nil {
			rbs = append(rbs, s.rb)
		}
	}
	return &Bitmap{rb: roaring.FastOr(rbs...)}
}
