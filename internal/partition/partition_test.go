package partition

import (
	"context"
	"testing"

	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/table"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/solarflare-labs/vastore/internal/vfs"
	"github.com/solarflare-labs/vastore/pkg/logger"
	"github.com/solarflare-labs/vastore/pkg/status"
	"github.com/stretchr/testify/require"
)

func eventLayout() table.Layout {
	rt := schema.RecordOf(
		schema.Field{Name: "uid", Type: schema.Scalar(schema.KindString)},
		schema.Field{Name: "port", Type: schema.Scalar(schema.KindCount)},
	)
	return table.NewLayout("event", rt)
}

func addRow(t *testing.T, a *Active, uid string, port uint64) bool {
	t.Helper()
	b := table.NewBuilder(eventLayout(), table.EncodingNative, a.NextOffset())
	require.NoError(t, b.Add(value.String(uid)))
	require.NoError(t, b.Add(value.Count(port)))
	slice, err := b.Finish()
	require.NoError(t, err)
	sealed, _, err := a.Add(context.Background(), slice)
	require.NoError(t, err)
	return sealed
}

func TestActiveSealsAtCapacity(t *testing.T) {
	dir := t.TempDir()
	fsys := vfs.New(dir, logger.Nop())
	defer fsys.Close()

	a := NewActive(fsys, 2, logger.Nop())
	defer a.Close()

	require.False(t, addRow(t, a, "A", 80))
	sealed := addRow(t, a, "B", 443)
	require.True(t, sealed)

	p, err := Load(context.Background(), fsys, a.UUID())
	require.NoError(t, err)
	require.Equal(t, 2, p.RowCount())

	idx, ok := p.Index("event.uid")
	require.True(t, ok)
	bm, err := idx.Lookup(predicate.Equal, value.String("A"))
	require.NoError(t, err)
	require.Equal(t, []uint32{0}, bm.ToArray())

	syn, ok := p.Synopsis("event.port")
	require.True(t, ok)
	r := syn.Lookup(predicate.Less, value.Count(10))
	require.NotNil(t, r)
	require.False(t, *r)
}

func TestPassiveErase(t *testing.T) {
	dir := t.TempDir()
	fsys := vfs.New(dir, logger.Nop())
	defer fsys.Close()

	a := NewActive(fsys, 1, logger.Nop())
	defer a.Close()
	require.True(t, addRow(t, a, "A", 80))

	p, err := Load(context.Background(), fsys, a.UUID())
	require.NoError(t, err)

	require.NoError(t, p.Erase(context.Background()))
	rec := p.Status(status.Terse)
	r, ok := rec.Record()
	require.True(t, ok)
	s, ok := r.Get("state")
	require.True(t, ok)
	str, _ := s.String()
	require.Equal(t, "erased", str)

	_, ok = p.Index("event.uid")
	require.False(t, ok)
}

func TestActiveRejectsOffsetMismatch(t *testing.T) {
	dir := t.TempDir()
	fsys := vfs.New(dir, logger.Nop())
	defer fsys.Close()

	a := NewActive(fsys, 10, logger.Nop())
	defer a.Close()

	b := table.NewBuilder(eventLayout(), table.EncodingNative, 5)
	require.NoError(t, b.Add(value.String("A")))
	require.NoError(t, b.Add(value.Count(1)))
	slice, err := b.Finish()
	require.NoError(t, err)

	_, _, err = a.Add(context.Background(), slice)
	require.Error(t, err)
}
