package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnionCommutative(t *testing.T) {
	a := FromIds(1, 2, 3)
	b := FromIds(3, 4, 5)
	require.ElementsMatch(t, Union(a, b).ToArray(), Union(b, a).ToArray())
}

func TestIntersectDistributesOverUnion(t *testing.T) {
	a := FromIds(1, 2, 3)
	b := FromIds(2, 3, 4)
	c := FromIds(3, 4, 5)

	lhs := Intersect(a, Union(b, c))
	rhs := Union(Intersect(a, b), Intersect(a, c))
	require.ElementsMatch(t, lhs.ToArray(), rhs.ToArray())
}

func TestRankEqualsCardinalityAtMax(t *testing.T) {
	a := FromIds(1, 5, 9, 20)
	require.Equal(t, a.Cardinality(), a.Rank(20))
}

func TestSerializeRoundTrip(t *testing.T) {
	a := FromIds(1, 2, 100, 1000)
	data, err := a.ToBytes()
	require.NoError(t, err)

	b, err := FromBytes(data)
	require.NoError(t, err)
	require.ElementsMatch(t, a.ToArray(), b.ToArray())
}

func TestDifference(t *testing.T) {
	a := FromIds(1, 2, 3, 4)
	b := FromIds(2, 4)
	require.ElementsMatch(t, []uint32{1, 3}, Difference(a, b).ToArray())
}
