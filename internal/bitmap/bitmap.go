// Package bitmap provides the compressed id-set used throughout the
// storage core (§3.4): row ids produced by the index and synopsis layers,
// combined by the query pipeline's boolean algebra, and finally handed to
// the segment reader to resolve matching rows.
//
// The implementation wraps github.com/RoaringBitmap/roaring/v2 rather than
// hand-rolling run-length compression: roaring already gives us rank,
// select, and set algebra with the compression characteristics spec.md
// asks for.
package bitmap

import (
	"io"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is an ordered, compressed set of 32-bit ids (roaring's native
// width). Ids of 2^32 and above are not representable; Range converts
// each id to uint32. The zero value is a valid empty bitmap.
type Bitmap struct {
	rb *roaring.Bitmap
}

// New returns an empty bitmap.
func New() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// FromIds builds a bitmap containing exactly the given ids.
func FromIds(ids ...uint32) *Bitmap {
	return &Bitmap{rb: roaring.BitmapOf(ids...)}
}

// Range returns a bitmap containing every id in [lo, hi).
func Range(lo, hi uint64) *Bitmap {
	b := New()
	for i := lo; i < hi; i++ {
		b.Add(uint32(i))
	}
	return b
}

func (b *Bitmap) ensure() *roaring.Bitmap {
	if b.rb == nil {
		b.rb = roaring.New()
	}
	return b.rb
}

// Add appends id to the set.
func (b *Bitmap) Add(id uint32) { b.ensure().Add(id) }

// Contains reports whether id is a member of the set.
func (b *Bitmap) Contains(id uint32) bool { return b.ensure().Contains(id) }

// Cardinality returns |set|.
func (b *Bitmap) Cardinality() uint64 { return b.ensure().GetCardinality() }

// IsEmpty reports whether the set has no members.
func (b *Bitmap) IsEmpty() bool { return b.ensure().IsEmpty() }

// Rank returns the number of members <= id (P2: |a| = rank(a, max(a)+1)).
func (b *Bitmap) Rank(id uint32) uint64 { return b.ensure().Rank(id) }

// Select returns the j-th smallest member (0-indexed).
func (b *Bitmap) Select(j uint64) (uint32, error) { return b.ensure().Select(uint32(j)) }

// ToArray returns the set's members in ascending order.
func (b *Bitmap) ToArray() []uint32 { return b.ensure().ToArray() }

// Clone returns an independent copy.
func (b *Bitmap) Clone() *Bitmap { return &Bitmap{rb: b.ensure().Clone()} }

// Union returns the set union a ∪ b (P2: commutative).
func Union(bitmaps ...*Bitmap) *Bitmap {
	rbs := make([]*roaring.Bitmap, 0, len(bitmaps))
	for _, m := range bitmaps {
		rbs = append(rbs, m.ensure())
	}
	return &Bitmap{rb: roaring.FastOr(rbs...)}
}

// Intersect returns a ∩ b.
func Intersect(bitmaps ...*Bitmap) *Bitmap {
	if len(bitmaps) == 0 {
		return New()
	}
	result := bitmaps[0].Clone()
	for _, m := range bitmaps[1:] {
		result.rb.And(m.ensure())
	}
	return result
}

// Difference returns a \ b.
func Difference(a, b *Bitmap) *Bitmap {
	result := a.Clone()
	result.rb.AndNot(b.ensure())
	return result
}

// Iterator walks the set's members in ascending order.
func (b *Bitmap) Iterator() roaring.IntIterable { return b.ensure().Iterator() }

// WriteTo serializes the bitmap (roaring's own portable format) to w.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) { return b.ensure().WriteTo(w) }

// ReadFrom deserializes a bitmap previously written with WriteTo.
func (b *Bitmap) ReadFrom(r io.Reader) (int64, error) {
	b.rb = roaring.New()
	return b.rb.ReadFrom(r)
}

// ToBytes serializes to a fresh byte slice.
func (b *Bitmap) ToBytes() ([]byte, error) { return b.ensure().ToBytes() }

// FromBytes deserializes a bitmap from bytes produced by ToBytes.
func FromBytes(data []byte) (*Bitmap, error) {
	rb := roaring.New()
	if err := rb.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &Bitmap{rb: rb}, nil
}
