package valueindex

import (
	"testing"

	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/stretchr/testify/require"
)

func TestHashIndexEqualAndNotEqual(t *testing.T) {
	idx := New(schema.KindString)
	idx.Append(value.String("a"))
	idx.Append(value.String("b"))
	idx.Append(value.String("a"))

	eq, err := idx.Lookup(predicate.Equal, value.String("a"))
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 2}, eq.ToArray())

	ne, err := idx.Lookup(predicate.NotEqual, value.String("a"))
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, ne.ToArray())
}

func TestHashIndexSkipsNil(t *testing.T) {
	idx := New(schema.KindString)
	idx.Append(value.String("a"))
	idx.Append(value.Nil())
	idx.Append(value.String("a"))

	eq, err := idx.Lookup(predicate.Equal, value.String("a"))
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 2}, eq.ToArray())
}

func TestHashIndexSerializeRoundTrip(t *testing.T) {
	idx := New(schema.KindString).(*hashIndex)
	idx.Append(value.String("x"))
	idx.Append(value.String("y"))

	buf, err := idx.Serialize()
	require.NoError(t, err)

	restored, err := deserializeHashIndex(buf)
	require.NoError(t, err)
	got, err := restored.Lookup(predicate.Equal, value.String("x"))
	require.NoError(t, err)
	require.Equal(t, []uint32{0}, got.ToArray())
}

func TestBitSlicedRangeQueries(t *testing.T) {
	idx := New(schema.KindCount)
	for _, v := range []uint64{5, 10, 15, 20, 25} {
		idx.Append(value.Count(v))
	}

	lt, err := idx.Lookup(predicate.Less, value.Count(15))
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1}, lt.ToArray())

	le, err := idx.Lookup(predicate.LessEqual, value.Count(15))
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1, 2}, le.ToArray())

	gt, err := idx.Lookup(predicate.Greater, value.Count(15))
	require.NoError(t, err)
	require.Equal(t, []uint32{3, 4}, gt.ToArray())

	ge, err := idx.Lookup(predicate.GreaterEqual, value.Count(15))
	require.NoError(t, err)
	require.Equal(t, []uint32{2, 3, 4}, ge.ToArray())

	eq, err := idx.Lookup(predicate.Equal, value.Count(15))
	require.NoError(t, err)
	require.Equal(t, []uint32{2}, eq.ToArray())
}

func TestBitSlicedNegativeIntegers(t *testing.T) {
	idx := New(schema.KindInteger)
	for _, v := range []int64{-10, -1, 0, 1, 10} {
		idx.Append(value.Integer(v))
	}
	lt, err := idx.Lookup(predicate.Less, value.Integer(0))
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1}, lt.ToArray())

	gt, err := idx.Lookup(predicate.Greater, value.Integer(0))
	require.NoError(t, err)
	require.Equal(t, []uint32{3, 4}, gt.ToArray())
}

func TestBitSlicedSerializeRoundTrip(t *testing.T) {
	idx := New(schema.KindReal)
	idx.Append(value.Real(-2.5))
	idx.Append(value.Real(3.5))

	buf, err := idx.Serialize()
	require.NoError(t, err)

	restored, err := Deserialize(schema.KindReal, buf)
	require.NoError(t, err)
	lt, err := restored.Lookup(predicate.Less, value.Real(0))
	require.NoError(t, err)
	require.Equal(t, []uint32{0}, lt.ToArray())
}

func TestPositionalIndexHas(t *testing.T) {
	idx := New(schema.KindList)
	idx.Append(value.List([]value.Data{value.String("a"), value.String("b")}))
	idx.Append(value.List([]value.Data{value.String("c")}))
	idx.Append(value.List([]value.Data{value.String("b")}))

	got, err := idx.Lookup(predicate.Has, value.String("b"))
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 2}, got.ToArray())
}
