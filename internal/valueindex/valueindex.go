// Package valueindex implements the exact, per-column inverted index
// (§3.6, §4.5): unlike a synopsis, a value index never declines to
// decide — lookup always returns the precise set of matching row ids.
package valueindex

import (
	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/value"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

// Op is the shared predicate operator vocabulary.
type Op = predicate.Op

// Index is the per-column exact inverted index contract. Append assigns
// the next row id automatically, advancing past any ids skipped by a
// nil value so a "null" row is simply absent from every bitmap (it only
// ever matches == nil, which valueindex does not itself special-case;
// callers route nil-equality checks around the index entirely).
type Index interface {
	Append(v value.Data)
	Lookup(op Op, rhs value.Data) (*bitmap.Bitmap, error)
	Serialize() ([]byte, error)
}

// New constructs the index variant appropriate for a column's scalar
// kind, per §4.5.
func New(kind schema.Kind) Index {
	switch kind {
	case schema.KindInteger, schema.KindCount, schema.KindReal, schema.KindTime, schema.KindDuration:
		return newBitSlicedIndex(kind)
	case schema.KindList:
		return newPositionalIndex()
	default:
		return newHashIndex()
	}
}

// Deserialize reconstructs the index variant appropriate for kind from
// bytes produced by its Serialize, mirroring New's dispatch.
func Deserialize(kind schema.Kind, buf []byte) (Index, error) {
	switch kind {
	case schema.KindInteger, schema.KindCount, schema.KindReal, schema.KindTime, schema.KindDuration:
		return deserializeBitSlicedIndex(kind, buf)
	case schema.KindList:
		return deserializePositionalIndex(buf)
	default:
		return deserializeHashIndex(buf)
	}
}

func unsupportedOp(kind string, op Op) error {
	return pkgerrors.NewOperatorUnsupportedError(kind, op.String())
}
