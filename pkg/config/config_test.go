package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	o, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), o)
}

func TestLoadDecodesTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vastore.toml")
	contents := `
data_dir = "/data/vastore"
partition_capacity = 2048
bloom_false_positive_rate = 0.02
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	o, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/vastore", o.DataDir)
	require.Equal(t, 2048, o.PartitionCapacity)
	require.InDelta(t, 0.02, o.BloomFalsePositiveRate, 1e-9)
}

func TestLoadAppliesOverridesAfterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vastore.toml")
	require.NoError(t, os.WriteFile(path, []byte(`data_dir = "/data/vastore"`), 0o644))

	o, err := Load(path, WithDataDir("/override"), WithPartitionCapacity(4096))
	require.NoError(t, err)
	require.Equal(t, "/override", o.DataDir)
	require.Equal(t, 4096, o.PartitionCapacity)
}

func TestWithPartitionCapacityRejectsTooSmall(t *testing.T) {
	o := Default()
	WithPartitionCapacity(1)(&o)
	require.Equal(t, DefaultPartitionCapacity, o.PartitionCapacity)
}

func TestWithBloomFalsePositiveRateRejectsOutOfRange(t *testing.T) {
	o := Default()
	WithBloomFalsePositiveRate(0)(&o)
	require.Equal(t, DefaultBloomFalsePositiveRate, o.BloomFalsePositiveRate)

	WithBloomFalsePositiveRate(0.9)(&o)
	require.Equal(t, DefaultBloomFalsePositiveRate, o.BloomFalsePositiveRate)

	WithBloomFalsePositiveRate(0.05)(&o)
	require.InDelta(t, 0.05, o.BloomFalsePositiveRate, 1e-9)
}

func TestWithDataDirIgnoresBlank(t *testing.T) {
	o := Default()
	WithDataDir("   ")(&o)
	require.Equal(t, DefaultDataDir, o.DataDir)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vastore.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid = = toml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
