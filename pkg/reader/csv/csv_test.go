package csv

import (
	"context"
	"strings"
	"testing"

	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/table"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
	"github.com/stretchr/testify/require"
)

func connSchema(t *testing.T) *schema.Schema {
	sc := schema.New()
	rt := schema.RecordOf(
		schema.Field{Name: "ts", Type: schema.Scalar(schema.KindTime)},
		schema.Field{Name: "addr", Type: schema.Scalar(schema.KindAddress)},
		schema.Field{Name: "port", Type: schema.Scalar(schema.KindCount)},
	)
	require.NoError(t, sc.Add("conn", rt))
	return sc
}

func TestReadBuildsSliceFromCSV(t *testing.T) {
	input := "ts,addr,port\n" +
		"2011-08-12T13:00:36.349948Z,147.32.84.165,1027\n" +
		"2011-08-13T13:04:24.640406Z,147.32.84.165,1089\n"

	r := New("conn", strings.NewReader(input), nil)
	r.SetSchema(connSchema(t))

	var slices []*table.Slice
	rows, err := r.Read(context.Background(), 100, 100, func(s *table.Slice) error {
		slices = append(slices, s)
		return nil
	})
	require.True(t, err == nil || pkgerrors.IsEndOfInput(err))
	require.Equal(t, 2, rows)
	require.Len(t, slices, 1)

	s := slices[0]
	require.Equal(t, 2, s.Rows())

	port0, err := s.At(0, 2)
	require.NoError(t, err)
	p0, ok := port0.Count()
	require.True(t, ok)
	require.Equal(t, uint64(1027), p0)

	port1, err := s.At(1, 2)
	require.NoError(t, err)
	p1, ok := port1.Count()
	require.True(t, ok)
	require.Equal(t, uint64(1089), p1)

	addr, err := s.At(0, 1)
	require.NoError(t, err)
	a, ok := addr.Address()
	require.True(t, ok)
	require.Equal(t, "147.32.84.165", a.String())
}

func TestReadRejectsHeaderWithUnknownColumn(t *testing.T) {
	input := "ts,addr,bogus\n2011-08-12T13:00:36.349948Z,147.32.84.165,1027\n"
	r := New("conn", strings.NewReader(input), nil)
	r.SetSchema(connSchema(t))

	_, err := r.Read(context.Background(), 10, 10, func(*table.Slice) error { return nil })
	require.Error(t, err)
}

func TestReadRejectsMapValuedColumn(t *testing.T) {
	sc := schema.New()
	rt := schema.RecordOf(
		schema.Field{Name: "ts", Type: schema.Scalar(schema.KindTime)},
		schema.Field{Name: "tags", Type: schema.MapOf(schema.Scalar(schema.KindString), schema.Scalar(schema.KindString))},
	)
	require.NoError(t, sc.Add("withmap", rt))

	input := "ts,tags\n2011-08-12T13:00:36.349948Z,{}\n"
	r := New("withmap", strings.NewReader(input), nil)
	r.SetSchema(sc)

	_, err := r.Read(context.Background(), 10, 10, func(*table.Slice) error { return nil })
	require.Error(t, err)
}

func TestReadBatchesBySliceSize(t *testing.T) {
	input := "ts,addr,port\n" +
		"2011-08-12T13:00:36.349948Z,147.32.84.165,1027\n" +
		"2011-08-13T13:04:24.640406Z,147.32.84.165,1089\n" +
		"2011-08-14T13:04:24.640406Z,147.32.84.165,1090\n"

	r := New("conn", strings.NewReader(input), nil)
	r.SetSchema(connSchema(t))

	var slices []*table.Slice
	rows, err := r.Read(context.Background(), 100, 2, func(s *table.Slice) error {
		slices = append(slices, s)
		return nil
	})
	require.True(t, err == nil || pkgerrors.IsEndOfInput(err))
	require.Equal(t, 3, rows)
	require.Len(t, slices, 2)
	require.Equal(t, 2, slices[0].Rows())
	require.Equal(t, 1, slices[1].Rows())
	require.Equal(t, uint64(0), slices[0].Offset())
	require.Equal(t, uint64(2), slices[1].Offset())
}
