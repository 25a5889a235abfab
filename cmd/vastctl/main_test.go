package main

import (
	"testing"

	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/stretchr/testify/require"
)

func TestParseFieldsBuildsRecordType(t *testing.T) {
	rt, err := parseFields("ts:time,addr:address,port:count")
	require.NoError(t, err)

	leaves := schema.Flatten(rt)
	require.Len(t, leaves, 3)
	require.Equal(t, "ts", leaves[0].Path)
	require.Equal(t, schema.KindTime, leaves[0].Type.Kind)
	require.Equal(t, "addr", leaves[1].Path)
	require.Equal(t, schema.KindAddress, leaves[1].Type.Kind)
	require.Equal(t, "port", leaves[2].Path)
	require.Equal(t, schema.KindCount, leaves[2].Type.Kind)
}

func TestParseFieldsRejectsMalformedSpec(t *testing.T) {
	_, err := parseFields("ts")
	require.Error(t, err)

	_, err = parseFields("ts:bogus")
	require.Error(t, err)
}

func TestParseOpRecognizesAllOperators(t *testing.T) {
	cases := map[string]predicate.Op{
		"==": predicate.Equal,
		"!=": predicate.NotEqual,
		"<":  predicate.Less,
		"<=": predicate.LessEqual,
		">":  predicate.Greater,
		">=": predicate.GreaterEqual,
		"in": predicate.In,
		"has": predicate.Has,
	}
	for s, want := range cases {
		got, err := parseOp(s)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := parseOp("???")
	require.Error(t, err)
}

func TestParseValueByType(t *testing.T) {
	v, err := parseValue("count", "1027")
	require.NoError(t, err)
	u, ok := v.Count()
	require.True(t, ok)
	require.Equal(t, uint64(1027), u)

	v, err = parseValue("address", "147.32.84.165")
	require.NoError(t, err)
	a, ok := v.Address()
	require.True(t, ok)
	require.Equal(t, "147.32.84.165", a.String())

	_, err = parseValue("bogus-type", "x")
	require.Error(t, err)
}

func TestParseVerbosityRecognizesAllLevels(t *testing.T) {
	for _, s := range []string{"terse", "info", "detailed", "debug"} {
		_, err := parseVerbosity(s)
		require.NoError(t, err)
	}
	_, err := parseVerbosity("bogus")
	require.Error(t, err)
}
