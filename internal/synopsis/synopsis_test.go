package synopsis

import (
	"net/netip"
	"testing"

	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/stretchr/testify/require"
)

func TestBoolSynopsisExactOnUniform(t *testing.T) {
	s := New(schema.KindBool)
	s.Add(value.Bool(true))
	s.Add(value.Bool(true))

	r := s.Lookup(OpEqual, value.Bool(true))
	require.NotNil(t, r)
	require.True(t, *r)

	r = s.Lookup(OpEqual, value.Bool(false))
	require.NotNil(t, r)
	require.False(t, *r)
}

func TestBoolSynopsisDontKnowOnMixed(t *testing.T) {
	s := New(schema.KindBool)
	s.Add(value.Bool(true))
	s.Add(value.Bool(false))
	require.Nil(t, s.Lookup(OpEqual, value.Bool(true)))
}

func TestMinMaxSynopsisRangeSoundness(t *testing.T) {
	s := New(schema.KindCount)
	for _, v := range []uint64{10, 20, 30} {
		s.Add(value.Count(v))
	}

	require.NotNil(t, s.Lookup(OpLess, value.Count(5)))
	require.True(t, *s.Lookup(OpLess, value.Count(5)) == false)

	require.NotNil(t, s.Lookup(OpGreater, value.Count(50)))
	require.False(t, *s.Lookup(OpGreater, value.Count(50)))

	require.Nil(t, s.Lookup(OpEqual, value.Count(25)))
	require.NotNil(t, s.Lookup(OpEqual, value.Count(1)))
	require.False(t, *s.Lookup(OpEqual, value.Count(1)))
}

func TestMinMaxSerializeRoundTrip(t *testing.T) {
	s := New(schema.KindReal)
	s.Add(value.Real(1.5))
	s.Add(value.Real(9.25))

	buf, err := s.Serialize()
	require.NoError(t, err)

	restored, err := Deserialize(schema.KindReal, buf)
	require.NoError(t, err)
	require.Nil(t, restored.Lookup(OpLess, value.Real(5)))
	require.False(t, *restored.Lookup(OpGreater, value.Real(100)))
}

func TestBloomSynopsisNoFalseNegatives(t *testing.T) {
	s := New(schema.KindString)
	members := []string{"alpha", "beta", "gamma", "delta"}
	for _, m := range members {
		s.Add(value.String(m))
	}
	for _, m := range members {
		r := s.Lookup(OpEqual, value.String(m))
		require.Nil(t, r, "bloom must never rule out a true member")
	}
	r := s.Lookup(OpEqual, value.String("definitely-absent-xyz"))
	if r != nil {
		require.False(t, *r)
	}
}

func TestCompositeAddressSynopsis(t *testing.T) {
	s := New(schema.KindAddress)
	addrs := []string{"10.0.0.1", "10.0.0.5", "10.0.0.9"}
	for _, a := range addrs {
		s.Add(value.Address(netip.MustParseAddr(a)))
	}

	outOfRange := value.Address(netip.MustParseAddr("192.168.1.1"))
	r := s.Lookup(OpGreater, outOfRange)
	require.NotNil(t, r)
	require.False(t, *r)

	for _, a := range addrs {
		r := s.Lookup(OpEqual, value.Address(netip.MustParseAddr(a)))
		require.Nil(t, r)
	}
}
