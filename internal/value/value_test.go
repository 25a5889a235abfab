package value

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBinaryRoundTrip(t *testing.T) {
	addr := netip.MustParseAddr("147.32.84.165")
	sub := Subnet{Addr: netip.MustParseAddr("127.0.0.0"), Prefix: 8}
	pat, err := NewPattern("a.*b")
	require.NoError(t, err)

	samples := []Data{
		Nil(),
		Bool(true),
		Bool(false),
		Integer(-42),
		Count(42),
		Real(3.5),
		String("hello"),
		PatternVal(pat),
		Address(addr),
		SubnetVal(sub),
		Time(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
		Duration(90 * time.Second),
		Enum(7),
		List([]Data{Integer(1), Integer(2), String("x")}),
		MapVal(Map{Keys: []Data{String("a")}, Values: []Data{Integer(1)}}),
		RecordVal(Record{Names: []string{"a", "b"}, Values: []Data{Integer(1), String("y")}}),
	}

	for _, v := range samples {
		buf := Encode(nil, v)
		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.True(t, Equal(v, got), "round trip mismatch for %s", v.Print())
	}
}

func TestParsePrintRoundTrip(t *testing.T) {
	cases := []Data{
		Bool(true),
		Integer(-7),
		Count(7),
		Real(1.25),
		String("hello world"),
		Time(time.Date(2011, 8, 12, 13, 0, 36, 349948000, time.UTC)),
		Duration(5 * time.Minute),
		Enum(3),
	}
	for _, v := range cases {
		text := v.Print()
		got, err := ParseAs(v.Tag(), text)
		require.NoError(t, err)
		require.True(t, Equal(v, got), "parse(print(%s)) mismatch: got %s", text, got.Print())
	}
}

func TestAddressEquivalence(t *testing.T) {
	v4 := Address(netip.MustParseAddr("127.0.0.1"))
	v4in6 := Address(netip.MustParseAddr("::ffff:127.0.0.1"))
	require.True(t, Equal(v4, v4in6))
}

func TestSubnetContains(t *testing.T) {
	sub := Subnet{Addr: netip.MustParseAddr("127.0.0.0"), Prefix: 8}
	require.True(t, sub.Contains(netip.MustParseAddr("127.0.0.1")))
	require.False(t, sub.Contains(netip.MustParseAddr("10.0.0.1")))
}

func TestCompareTotalOrder(t *testing.T) {
	a, b, c := Integer(1), Integer(2), Integer(3)
	require.True(t, Compare(a, b) < 0)
	require.True(t, Compare(b, c) < 0)
	require.True(t, Compare(a, c) < 0)
	require.Equal(t, 0, Compare(a, Integer(1)))
}
