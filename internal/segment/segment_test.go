package segment

import (
	"testing"

	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/table"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/stretchr/testify/require"
)

func countLayout() table.Layout {
	rt := schema.RecordOf(
		schema.Field{Name: "n", Type: schema.Scalar(schema.KindCount)},
	)
	return table.NewLayout("counts", rt)
}

func buildSlice(t *testing.T, offset uint64, vals ...uint64) *table.Slice {
	t.Helper()
	layout := countLayout()
	b := table.NewBuilder(layout, table.EncodingNative, offset)
	for _, v := range vals {
		require.NoError(t, b.Add(value.Count(v)))
	}
	slice, err := b.Finish()
	require.NoError(t, err)
	return slice
}

func TestSegmentRoundTrip(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(buildSlice(t, 0, 10, 20, 30)))
	require.NoError(t, b.Add(buildSlice(t, 3, 40, 50)))

	data, id, err := b.Finish()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	seg, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, id, seg.UUID)
	require.Equal(t, uint64(5), seg.RowCount())

	lo, hi, ok := seg.IDRange()
	require.True(t, ok)
	require.Equal(t, uint64(0), lo)
	require.Equal(t, uint64(5), hi)
}

func TestSegmentLookupLinearInMatches(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(buildSlice(t, 0, 1)))
	require.NoError(t, b.Add(buildSlice(t, 1, 2)))
	require.NoError(t, b.Add(buildSlice(t, 2, 3)))
	require.NoError(t, b.Add(buildSlice(t, 3, 4)))

	data, _, err := b.Finish()
	require.NoError(t, err)
	seg, err := Load(data)
	require.NoError(t, err)

	ids := bitmap.FromIds(2)
	slices, err := seg.Lookup(ids)
	require.NoError(t, err)
	require.Len(t, slices, 1)

	v, err := slices[0].At(0, 0)
	require.NoError(t, err)
	n, ok := v.Count()
	require.True(t, ok)
	require.Equal(t, uint64(3), n)
}

func TestSegmentLookupEmpty(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(buildSlice(t, 0, 1)))
	data, _, err := b.Finish()
	require.NoError(t, err)
	seg, err := Load(data)
	require.NoError(t, err)

	slices, err := seg.Lookup(bitmap.New())
	require.NoError(t, err)
	require.Empty(t, slices)
}

func TestBuilderRejectsOverlap(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(buildSlice(t, 0, 1, 2)))
	err := b.Add(buildSlice(t, 1, 3))
	require.Error(t, err)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := Load([]byte("not a segment at all, far too short or wrong"))
	require.Error(t, err)
}

func TestLoadRejectsCRCMismatch(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(buildSlice(t, 0, 1)))
	data, _, err := b.Finish()
	require.NoError(t, err)

	corrupt := make([]byte, len(data))
	copy(corrupt, data)
	corrupt[len(corrupt)-1] ^= 0xFF

	_, err = Load(corrupt)
	require.Error(t, err)
}
