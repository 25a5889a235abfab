package valueindex

import (
	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/value"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

// bucket holds every distinct key that hashed to the same slot, each
// paired with the bitmap of rows holding that exact value. value.Data is
// not itself a comparable Go type (containers embed slices), so keys are
// grouped by value.Hash and disambiguated with value.Equal.
type bucket struct {
	key    value.Data
	bitmap *bitmap.Bitmap
}

// hashIndex is the exact map[value]->bitmap index used for string,
// pattern, address, and subnet columns (§4.5).
type hashIndex struct {
	buckets map[uint64][]bucket
	next    uint32
}

func newHashIndex() *hashIndex {
	return &hashIndex{buckets: make(map[uint64][]bucket)}
}

func (idx *hashIndex) Append(v value.Data) {
	id := idx.next
	idx.next++
	if v.IsNil() {
		return
	}
	idx.add(v, id)
}

func (idx *hashIndex) add(v value.Data, id uint32) {
	h := value.Hash(v)
	bs := idx.buckets[h]
	for i := range bs {
		if value.Equal(bs[i].key, v) {
			bs[i].bitmap.Add(id)
			return
		}
	}
	bm := bitmap.New()
	bm.Add(id)
	idx.buckets[h] = append(bs, bucket{key: v, bitmap: bm})
}

func (idx *hashIndex) find(v value.Data) *bitmap.Bitmap {
	h := value.Hash(v)
	for _, b := range idx.buckets[h] {
		if value.Equal(b.key, v) {
			return b.bitmap
		}
	}
	return bitmap.New()
}

func (idx *hashIndex) Lookup(op Op, rhs value.Data) (*bitmap.Bitmap, error) {
	switch op {
	case predicate.Equal:
		return idx.find(rhs).Clone(), nil
	case predicate.NotEqual:
		match := idx.find(rhs)
		all := idx.allIDs()
		return bitmap.Difference(all, match), nil
	case predicate.In:
		list, ok := rhs.List()
		if !ok {
			return nil, unsupportedOp("hash", op)
		}
		matches := make([]*bitmap.Bitmap, 0, len(list))
		for _, v := range list {
			matches = append(matches, idx.find(v))
		}
		if len(matches) == 0 {
			return bitmap.New(), nil
		}
		return bitmap.Union(matches...), nil
	default:
		return nil, unsupportedOp("hash", op)
	}
}

func (idx *hashIndex) allIDs() *bitmap.Bitmap {
	all := make([]*bitmap.Bitmap, 0)
	for _, bs := range idx.buckets {
		for _, b := range bs {
			all = append(all, b.bitmap)
		}
	}
	if len(all) == 0 {
		return bitmap.New()
	}
	return bitmap.Union(all...)
}

func (idx *hashIndex) Serialize() ([]byte, error) {
	var buf []byte
	for _, bs := range idx.buckets {
		for _, b := range bs {
			keyBytes := value.Encode(nil, b.key)
			buf = appendU32(buf, uint32(len(keyBytes)))
			buf = append(buf, keyBytes...)
			bmBytes, err := b.bitmap.ToBytes()
			if err != nil {
				return nil, err
			}
			buf = appendU32(buf, uint32(len(bmBytes)))
			buf = append(buf, bmBytes...)
		}
	}
	return buf, nil
}

// deserializeHashIndex reconstructs a hashIndex from bytes produced by
// Serialize. next is left at 0 since a deserialized (passive) index
// never accepts further Append calls.
func deserializeHashIndex(buf []byte) (*hashIndex, error) {
	idx := newHashIndex()
	pos := 0
	for pos < len(buf) {
		keyLen, n := readU32(buf[pos:])
		pos += n
		key, _, err := value.Decode(buf[pos : pos+int(keyLen)])
		if err != nil {
			return nil, pkgerrors.NewIndexCorruptionError("hash", err)
		}
		pos += int(keyLen)

		bmLen, n := readU32(buf[pos:])
		pos += n
		bm, err := bitmap.FromBytes(buf[pos : pos+int(bmLen)])
		if err != nil {
			return nil, pkgerrors.NewIndexCorruptionError("hash", err)
		}
		pos += int(bmLen)

		h := value.Hash(key)
		idx.buckets[h] = append(idx.buckets[h], bucket{key: key, bitmap: bm})
	}
	return idx, nil
}
