// Package engine provides the core coordinator for the storage core: it
// wires the filesystem actor, the query pipeline, and partition
// construction behind one lifecycle, so a caller (cmd/vastctl, or any
// future long-running service) opens one Store instead of assembling
// internal/vfs, internal/partition, and internal/query by hand.
package engine

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solarflare-labs/vastore/internal/partition"
	"github.com/solarflare-labs/vastore/internal/query"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/solarflare-labs/vastore/internal/vfs"
	"github.com/solarflare-labs/vastore/pkg/config"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
	"github.com/solarflare-labs/vastore/pkg/status"
)

// Config holds everything Store needs to start: resolved options and a
// logger, mirroring the teacher's Config{Options, Logger} shape.
type Config struct {
	Options config.Options
	Logger  *zap.SugaredLogger
}

// Store is the coordinator that owns one data directory's filesystem
// actor and query pipeline for the lifetime of the process. Partition
// construction (NewPartition) hands out independent Active actors; Store
// itself holds no partition state, matching §3.8's "active partitions
// hold no back-reference" ownership rule.
type Store struct {
	opts config.Options
	log  *zap.SugaredLogger

	fsys     *vfs.FS
	pipeline *query.Pipeline

	closed atomic.Bool
}

// New opens a Store rooted at cfg.Options.DataDir. Unlike the teacher's
// engine, there is no compaction subsystem to initialize: segments are
// immutable once sealed (§3.7), and merging sealed partitions together is
// out of this core's scope (no SPEC_FULL component names it).
func New(_ context.Context, cfg Config) (*Store, error) {
	fsys := vfs.New(cfg.Options.DataDir, cfg.Logger)
	pipeline := query.NewPipeline(fsys, cfg.Logger)
	return &Store{
		opts:     cfg.Options,
		log:      cfg.Logger,
		fsys:     fsys,
		pipeline: pipeline,
	}, nil
}

// Close gracefully shuts down the query pipeline and filesystem actor.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return pkgerrors.NewValidationError(nil, pkgerrors.ErrorCodeInvalidInput, "store already closed")
	}
	if err := s.pipeline.Close(); err != nil {
		return err
	}
	return s.fsys.Close()
}

// FS exposes the underlying filesystem actor, for components (e.g. a
// reader-driven ingest loop) that need to hand slices directly to a fresh
// partition.Active.
func (s *Store) FS() *vfs.FS { return s.fsys }

// NewPartition starts a fresh active partition using the Store's
// configured row capacity and Bloom false-positive target.
func (s *Store) NewPartition() *partition.Active {
	return partition.NewActiveWithBloomFPR(s.fsys, s.opts.PartitionCapacity, s.opts.BloomFalsePositiveRate, s.log)
}

// Query evaluates expr against the named partition, returning matching
// slices paired with their row masks (§4.7).
func (s *Store) Query(ctx context.Context, partitionID uuid.UUID, expr query.Expression) ([]*query.Result, error) {
	return s.pipeline.Query(ctx, partitionID, expr)
}

// Pivot runs source against the named partition and returns the
// follow-up expression of §4.7's pivot operation; it does not run that
// expression.
func (s *Store) Pivot(ctx context.Context, partitionID uuid.UUID, source query.Expression, target, pivotField string) (query.Expression, error) {
	return s.pipeline.PivotPlan(ctx, partitionID, source, target, pivotField)
}

// Status loads the named partition and reports its status record.
func (s *Store) Status(ctx context.Context, partitionID uuid.UUID, v status.Verbosity) (value.Data, error) {
	p, err := partition.Load(ctx, s.fsys, partitionID)
	if err != nil {
		return value.Data{}, err
	}
	return p.Status(v), nil
}
