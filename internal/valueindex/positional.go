package valueindex

import (
	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/value"
)

// positionalIndex indexes list-valued columns element-wise, one hashIndex
// per list position, per §4.5: "a list produces one entry per element,
// tagged by the list position; the row matches has iff any position
// matches."
type positionalIndex struct {
	positions []*hashIndex
	next      uint32
}

func newPositionalIndex() *positionalIndex {
	return &positionalIndex{}
}

func (idx *positionalIndex) Append(v value.Data) {
	id := idx.next
	idx.next++
	list, ok := v.List()
	if !ok {
		return
	}
	for i, elem := range list {
		for len(idx.positions) <= i {
			idx.positions = append(idx.positions, newHashIndex())
		}
		idx.positions[i].add(elem, id)
	}
}

func (idx *positionalIndex) Lookup(op Op, rhs value.Data) (*bitmap.Bitmap, error) {
	if op != predicate.Has {
		return nil, unsupportedOp("positional", op)
	}
	if len(idx.positions) == 0 {
		return bitmap.New(), nil
	}
	matches := make([]*bitmap.Bitmap, 0, len(idx.positions))
	for _, p := range idx.positions {
		matches = append(matches, p.find(rhs))
	}
	return bitmap.Union(matches...), nil
}

func (idx *positionalIndex) Serialize() ([]byte, error) {
	var buf []byte
	buf = appendU32(buf, uint32(len(idx.positions)))
	for _, p := range idx.positions {
		b, err := p.Serialize()
		if err != nil {
			return nil, err
		}
		buf = appendU32(buf, uint32(len(b)))
		buf = append(buf, b...)
	}
	return buf, nil
}

func deserializePositionalIndex(buf []byte) (*positionalIndex, error) {
	idx := newPositionalIndex()
	pos := 0
	count, n := readU32(buf[pos:])
	pos += n
	for i := uint32(0); i < count; i++ {
		l, n := readU32(buf[pos:])
		pos += n
		h, err := deserializeHashIndex(buf[pos : pos+int(l)])
		if err != nil {
			return nil, err
		}
		idx.positions = append(idx.positions, h)
		pos += int(l)
	}
	return idx, nil
}
