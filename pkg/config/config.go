// Package config loads vastore's TOML configuration file into an Options
// struct and applies functional overrides, mirroring the teacher's
// pkg/options shape but re-keyed to this core's knobs: data directory,
// partition capacity, and Bloom false-positive target.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultDataDir is where sealed partitions are written when no
	// override is given.
	DefaultDataDir = "/var/lib/vastore"

	// DefaultPartitionCapacity is the row count at which an active
	// partition auto-seals.
	DefaultPartitionCapacity = 1 << 20

	// DefaultBloomFalsePositiveRate is the target false-positive rate for
	// string/address/pattern/subnet synopses.
	DefaultBloomFalsePositiveRate = 0.01

	// MinPartitionCapacity rejects configurations too small to be useful.
	MinPartitionCapacity = 1024

	// MaxBloomFalsePositiveRate rejects a target so loose the synopsis
	// would rarely rule anything out.
	MaxBloomFalsePositiveRate = 0.5
)

// Options holds vastore's runtime configuration (§ ambient stack:
// "Options struct shaped like the teacher's pkg/options").
type Options struct {
	// DataDir is the base path vfs.FS roots all partition I/O under.
	DataDir string `toml:"data_dir"`

	// PartitionCapacity is the row count at which internal/partition.Active
	// auto-seals into a passive, queryable directory.
	PartitionCapacity int `toml:"partition_capacity"`

	// BloomFalsePositiveRate is the target false-positive rate threaded
	// into internal/synopsis.NewWithBloomFPR for hash-friendly columns.
	BloomFalsePositiveRate float64 `toml:"bloom_false_positive_rate"`
}

// OptionFunc modifies Options, applied in order after defaults and any
// TOML file are loaded.
type OptionFunc func(*Options)

// Default returns the baseline configuration.
func Default() Options {
	return Options{
		DataDir:                DefaultDataDir,
		PartitionCapacity:      DefaultPartitionCapacity,
		BloomFalsePositiveRate: DefaultBloomFalsePositiveRate,
	}
}

// WithDataDir overrides the data directory, ignoring a blank value.
func WithDataDir(dir string) OptionFunc {
	return func(o *Options) {
		dir = strings.TrimSpace(dir)
		if dir != "" {
			o.DataDir = dir
		}
	}
}

// WithPartitionCapacity overrides the auto-seal row capacity, ignoring a
// value below MinPartitionCapacity.
func WithPartitionCapacity(rows int) OptionFunc {
	return func(o *Options) {
		if rows >= MinPartitionCapacity {
			o.PartitionCapacity = rows
		}
	}
}

// WithBloomFalsePositiveRate overrides the Bloom synopsis target rate,
// ignoring a value outside (0, MaxBloomFalsePositiveRate].
func WithBloomFalsePositiveRate(rate float64) OptionFunc {
	return func(o *Options) {
		if rate > 0 && rate <= MaxBloomFalsePositiveRate {
			o.BloomFalsePositiveRate = rate
		}
	}
}

// Load reads a TOML file at path into Options, starting from Default()
// and applying opts in order. A missing path is not an error: Load falls
// back to Default() plus opts, so a deployment can run config-free.
func Load(path string, opts ...OptionFunc) (Options, error) {
	o := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &o); err != nil {
				return Options{}, fmt.Errorf("config: decode %q: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Options{}, fmt.Errorf("config: stat %q: %w", path, err)
		}
	}

	for _, opt := range opts {
		opt(&o)
	}
	return o, nil
}
