package vfs

import (
	"context"
	"testing"

	"github.com/solarflare-labs/vastore/pkg/logger"
	"github.com/solarflare-labs/vastore/pkg/status"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir, logger.Nop())
	defer fs.Close()

	ctx := context.Background()
	require.NoError(t, fs.Write(ctx, "a/b.bin", []byte("hello")))

	data, err := fs.Read(ctx, "a/b.bin")
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestReadMissingFile(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir, logger.Nop())
	defer fs.Close()

	_, err := fs.Read(context.Background(), "nope.bin")
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir, logger.Nop())
	defer fs.Close()

	ctx := context.Background()
	ok, err := fs.Exists(ctx, "missing.bin")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, fs.Write(ctx, "present.bin", []byte("x")))
	ok, err = fs.Exists(ctx, "present.bin")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStatusCounters(t *testing.T) {
	dir := t.TempDir()
	fs := New(dir, logger.Nop())
	defer fs.Close()

	ctx := context.Background()
	require.NoError(t, fs.Write(ctx, "f.bin", []byte("abc")))
	_, err := fs.Read(ctx, "f.bin")
	require.NoError(t, err)

	rec := fs.Status(status.Terse)
	r, ok := rec.Record()
	require.True(t, ok)
	writes, ok := r.Get("writes")
	require.True(t, ok)
	u, _ := writes.Count()
	require.Equal(t, uint64(1), u)

	// Detailed verbosity adds byte counters not present at terse.
	detailed := fs.Status(status.Detailed)
	dr, _ := detailed.Record()
	_, hasBytes := dr.Get("writeBytes")
	require.True(t, hasBytes)
	_, hasBytesTerse := r.Get("writeBytes")
	require.False(t, hasBytesTerse)
}
