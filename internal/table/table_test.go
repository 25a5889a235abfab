package table

import (
	"net/netip"
	"testing"
	"time"

	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/stretchr/testify/require"
)

func csvLayout() Layout {
	rt := schema.RecordOf(
		schema.Field{Name: "ts", Type: schema.Scalar(schema.KindTime)},
		schema.Field{Name: "addr", Type: schema.Scalar(schema.KindAddress)},
		schema.Field{Name: "port", Type: schema.Scalar(schema.KindCount)},
	)
	return NewLayout("csv.conn", rt)
}

func TestBuilderFinishAndAt(t *testing.T) {
	layout := csvLayout()
	b := NewBuilder(layout, EncodingNative, 0)

	require.NoError(t, b.Add(value.Time(mustTime(t, "2011-08-12T13:00:36.349948Z"))))
	require.NoError(t, b.Add(value.Address(mustAddr(t, "147.32.84.165"))))
	require.NoError(t, b.Add(value.Count(1027)))

	require.Equal(t, 1, b.Rows())
	slice, err := b.Finish()
	require.NoError(t, err)
	require.Equal(t, 1, slice.Rows())
	require.Equal(t, 3, slice.Columns())
	require.Equal(t, uint64(0), slice.Offset())

	port, err := slice.At(0, 2)
	require.NoError(t, err)
	u, ok := port.Count()
	require.True(t, ok)
	require.Equal(t, uint64(1027), u)

	// Builder resumes offset after Finish.
	require.NoError(t, b.Add(value.Time(mustTime(t, "2011-08-13T13:04:24.640406Z"))))
	require.NoError(t, b.Add(value.Address(mustAddr(t, "147.32.84.165"))))
	require.NoError(t, b.Add(value.Count(1089)))
	slice2, err := b.Finish()
	require.NoError(t, err)
	require.Equal(t, uint64(1), slice2.Offset())
}

func TestBuilderRejectsIncompatibleTag(t *testing.T) {
	layout := csvLayout()
	b := NewBuilder(layout, EncodingNative, 0)
	err := b.Add(value.String("not-a-time"))
	require.Error(t, err)
}

func TestBuilderAllowsNilWidening(t *testing.T) {
	layout := csvLayout()
	b := NewBuilder(layout, EncodingNative, 0)
	require.NoError(t, b.Add(value.Nil()))
	require.NoError(t, b.Add(value.Nil()))
	require.NoError(t, b.Add(value.Nil()))
	slice, err := b.Finish()
	require.NoError(t, err)
	v, err := slice.At(0, 0)
	require.NoError(t, err)
	require.True(t, v.IsNil())
}

func TestSliceSerializeRoundTrip(t *testing.T) {
	layout := csvLayout()
	b := NewBuilder(layout, EncodingNative, 5)
	require.NoError(t, b.Add(value.Time(mustTime(t, "2011-08-12T13:00:36.349948Z"))))
	require.NoError(t, b.Add(value.Address(mustAddr(t, "147.32.84.165"))))
	require.NoError(t, b.Add(value.Count(1027)))
	slice, err := b.Finish()
	require.NoError(t, err)

	data, err := slice.Serialize()
	require.NoError(t, err)

	got, n, err := Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.True(t, slice.Equal(got))
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return tm
}

func mustAddr(t *testing.T, s string) netip.Addr {
	t.Helper()
	a, err := netip.ParseAddr(s)
	require.NoError(t, err)
	return a
}
