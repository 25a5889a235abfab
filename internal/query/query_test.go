package query

import (
	"context"
	"testing"

	"github.com/solarflare-labs/vastore/internal/partition"
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/table"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/solarflare-labs/vastore/internal/vfs"
	"github.com/solarflare-labs/vastore/pkg/logger"
	"github.com/stretchr/testify/require"
)

func connLayout() table.Layout {
	rt := schema.RecordOf(
		schema.Field{Name: "uid", Type: schema.Scalar(schema.KindString)},
		schema.Field{Name: "port", Type: schema.Scalar(schema.KindCount)},
	)
	return table.NewLayout("zeek.conn", rt)
}

func buildPassive(t *testing.T, rows []struct {
	uid  string
	port uint64
}) *partition.Passive {
	t.Helper()
	dir := t.TempDir()
	fsys := vfs.New(dir, logger.Nop())
	t.Cleanup(func() { fsys.Close() })

	a := partition.NewActive(fsys, len(rows)+1, logger.Nop())
	t.Cleanup(func() { a.Close() })

	for _, r := range rows {
		b := table.NewBuilder(connLayout(), table.EncodingNative, a.NextOffset())
		require.NoError(t, b.Add(value.String(r.uid)))
		require.NoError(t, b.Add(value.Count(r.port)))
		slice, err := b.Finish()
		require.NoError(t, err)
		_, _, err = a.Add(context.Background(), slice)
		require.NoError(t, err)
	}
	_, err := a.Seal(context.Background())
	require.NoError(t, err)

	p, err := partition.Load(context.Background(), fsys, a.UUID())
	require.NoError(t, err)
	return p
}

func TestNormalizePushesNegationToLeaves(t *testing.T) {
	e := Not(Conjunction{Exprs: []Expression{
		Predicate{Extractor: FieldExtractor{Path: "port"}, Op: predicate.Greater, Value: value.Count(10)},
		Predicate{Extractor: FieldExtractor{Path: "uid"}, Op: predicate.Equal, Value: value.String("A")},
	}})
	n := Normalize(e)
	dis, ok := n.(Disjunction)
	require.True(t, ok)
	require.Len(t, dis.Exprs, 2)

	p0, ok := dis.Exprs[0].(Predicate)
	require.True(t, ok)
	require.Equal(t, predicate.LessEqual, p0.Op)

	p1, ok := dis.Exprs[1].(Predicate)
	require.True(t, ok)
	require.Equal(t, predicate.NotEqual, p1.Op)
}

func TestNormalizeFlattensNestedConjunctions(t *testing.T) {
	e := Conjunction{Exprs: []Expression{
		Conjunction{Exprs: []Expression{
			Predicate{Extractor: FieldExtractor{Path: "a"}, Op: predicate.Equal, Value: value.Count(1)},
		}},
		Predicate{Extractor: FieldExtractor{Path: "b"}, Op: predicate.Equal, Value: value.Count(2)},
	}}
	n := Normalize(e).(Conjunction)
	require.Len(t, n.Exprs, 2)
}

func TestResolveFieldExtractorAndEvaluate(t *testing.T) {
	p := buildPassive(t, []struct {
		uid  string
		port uint64
	}{{"A", 80}, {"B", 443}, {"C", 22}})

	e := Predicate{Extractor: FieldExtractor{Path: "port"}, Op: predicate.Greater, Value: value.Count(100)}
	resolved := Resolve(Normalize(e), p)
	fp, ok := resolved.(FieldPredicate)
	require.True(t, ok)
	require.Equal(t, "zeek.conn.port", fp.FieldPath)

	ids, err := Evaluate(resolved, p)
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, ids.ToArray())
}

func TestResolveUnknownFieldIsEmptySet(t *testing.T) {
	p := buildPassive(t, []struct {
		uid  string
		port uint64
	}{{"A", 80}})

	e := Predicate{Extractor: FieldExtractor{Path: "nonexistent"}, Op: predicate.Equal, Value: value.Count(1)}
	resolved := Resolve(Normalize(e), p)
	lit, ok := resolved.(Literal)
	require.True(t, ok)
	require.True(t, lit.Bitmap.IsEmpty())
}

func TestResolveTypeExtractorAndMetaType(t *testing.T) {
	p := buildPassive(t, []struct {
		uid  string
		port uint64
	}{{"A", 80}, {"B", 443}})

	typeE := Predicate{Extractor: TypeExtractor{Name: "zeek"}, Op: predicate.Equal, Value: value.String("A")}
	resolved := Resolve(Normalize(typeE), p)
	_, ok := resolved.(Disjunction)
	require.True(t, ok)
	ids, err := Evaluate(resolved, p)
	require.NoError(t, err)
	require.Equal(t, []uint32{0}, ids.ToArray())

	metaE := Predicate{Extractor: MetaExtractor{Name: "type"}, Op: predicate.Equal, Value: value.String("zeek.conn")}
	resolvedMeta := Resolve(Normalize(metaE), p)
	ids2, err := Evaluate(resolvedMeta, p)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1}, ids2.ToArray())
}

func TestPivotCollectsDistinctValues(t *testing.T) {
	p := buildPassive(t, []struct {
		uid  string
		port uint64
	}{{"A", 80}, {"B", 443}, {"A", 22}})

	source := Conjunction{}
	expr, err := Pivot(source, p, "zeek.conn", "uid")
	require.NoError(t, err)

	conj, ok := expr.(Conjunction)
	require.True(t, ok)
	require.Len(t, conj.Exprs, 2)

	inPred, ok := conj.Exprs[1].(Predicate)
	require.True(t, ok)
	list, ok := inPred.Value.List()
	require.True(t, ok)
	require.Len(t, list, 2)
}
