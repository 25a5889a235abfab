// Package partition implements the unit of persisted, indexed data
// (§3.7, §4.6): an Active partition accepting table slices and building
// a segment plus per-column synopses and indexes alongside it, sealed
// into a passive, queryable directory once it reaches capacity.
package partition

import (
	"context"
	"path"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/segment"
	"github.com/solarflare-labs/vastore/internal/synopsis"
	"github.com/solarflare-labs/vastore/internal/table"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/solarflare-labs/vastore/internal/valueindex"
	"github.com/solarflare-labs/vastore/internal/vfs"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
	"github.com/solarflare-labs/vastore/pkg/status"
	"go.uber.org/zap"
)

type activeReqKind uint8

const (
	reqAdd activeReqKind = iota
	reqSeal
	reqStatus
)

type activeRequest struct {
	kind   activeReqKind
	slice  *table.Slice
	verb   status.Verbosity
	reply  chan activeResponse
}

type activeResponse struct {
	err    error
	sealed bool
	dir    string
	record value.Data
}

// Active is the filesystem-actor-style component (§5) that accepts table
// slices in offset order, streaming each leaf column's cells into its
// synopsis and value index builders while forwarding the whole slice to
// the segment builder.
type Active struct {
	id       uuid.UUID
	dir      string
	vfs      *vfs.FS
	log      *zap.SugaredLogger
	capacity int
	bloomFPR float64

	mailbox chan activeRequest
	done    chan struct{}
	closed  atomic.Bool

	nextOffset atomic.Uint64

	segBuilder *segment.Builder
	layouts    map[string]table.Layout
	synopses   map[string]synopsis.Synopsis
	indexes    map[string]valueindex.Index
	kinds      map[string]schema.Kind
	rows       int
	sealedDir  string
}

// defaultBloomFPR is used by NewActive; NewActiveWithBloomFPR lets a
// caller thread a configured false-positive target instead (pkg/config).
const defaultBloomFPR = 0.01

// NewActive starts a fresh active partition with its own uuid, persisted
// (once sealed) under "partitions/<uuid>" relative to fsys's root.
func NewActive(fsys *vfs.FS, capacity int, log *zap.SugaredLogger) *Active {
	return NewActiveWithBloomFPR(fsys, capacity, defaultBloomFPR, log)
}

// NewActiveWithBloomFPR is NewActive with an explicit Bloom false-positive
// target for this partition's string/address/pattern/subnet synopses.
func NewActiveWithBloomFPR(fsys *vfs.FS, capacity int, bloomFPR float64, log *zap.SugaredLogger) *Active {
	id := uuid.New()
	a := &Active{
		id:         id,
		dir:        path.Join("partitions", id.String()),
		vfs:        fsys,
		log:        log.Named("partition").With("uuid", id.String()),
		capacity:   capacity,
		bloomFPR:   bloomFPR,
		mailbox:    make(chan activeRequest, 64),
		done:       make(chan struct{}),
		segBuilder: segment.NewBuilderWithID(id),
		layouts:    make(map[string]table.Layout),
		synopses:   make(map[string]synopsis.Synopsis),
		indexes:    make(map[string]valueindex.Index),
		kinds:      make(map[string]schema.Kind),
	}
	go a.run()
	return a
}

func (a *Active) run() {
	defer close(a.done)
	for req := range a.mailbox {
		switch req.kind {
		case reqAdd:
			err := a.add(req.slice)
			sealed := false
			dir := ""
			if err == nil && a.rows >= a.capacity {
				sealErr := a.seal()
				if sealErr != nil {
					err = sealErr
				} else {
					sealed = true
					dir = a.sealedDir
				}
			}
			req.reply <- activeResponse{err: err, sealed: sealed, dir: dir}
		case reqSeal:
			err := a.seal()
			req.reply <- activeResponse{err: err, sealed: err == nil, dir: a.sealedDir}
		case reqStatus:
			req.reply <- activeResponse{record: a.status(req.verb)}
		}
	}
}

// UUID returns the partition's identifier.
func (a *Active) UUID() uuid.UUID { return a.id }

// Close stops accepting new requests and waits for the actor goroutine
// to drain its mailbox, mirroring internal/vfs.FS's shutdown idiom.
func (a *Active) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(a.mailbox)
	<-a.done
	return nil
}

// NextOffset returns the row offset the next added slice must use. Slices
// are immutable once built, so callers read this before constructing the
// table.Builder they will hand to Add.
func (a *Active) NextOffset() uint64 { return a.nextOffset.Load() }

// Add appends one table slice, forwarding it to the segment builder and
// streaming each leaf cell into that column's synopsis and value index.
// Add does not assign offsets: the slice must already start at
// NextOffset, and a slice with any other offset is rejected. If this addition
// reaches the configured row capacity, the partition seals itself before
// returning and `sealed` is true.
func (a *Active) Add(ctx context.Context, slice *table.Slice) (sealed bool, dir string, err error) {
	reply := make(chan activeResponse, 1)
	select {
	case a.mailbox <- activeRequest{kind: reqAdd, slice: slice, reply: reply}:
	case <-ctx.Done():
		return false, "", ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.sealed, resp.dir, resp.err
	case <-ctx.Done():
		return false, "", ctx.Err()
	}
}

func (a *Active) add(slice *table.Slice) error {
	if a.sealedDir != "" {
		return pkgerrors.NewValidationError(nil, pkgerrors.ErrorCodeInvalidInput, "partition already sealed")
	}
	if slice.Offset() != a.nextOffset.Load() {
		return pkgerrors.NewValidationError(
			nil, pkgerrors.ErrorCodeInvalidInput, "slice offset does not match partition's next offset",
		).WithField("offset").WithProvided(slice.Offset())
	}

	layout := slice.Layout()
	if existing, ok := a.layouts[layout.Name]; ok {
		if len(existing.Columns) != len(layout.Columns) {
			return pkgerrors.NewValidationError(
				nil, pkgerrors.ErrorCodeInvalidInput, "layout shape changed mid-partition",
			).WithField(layout.Name)
		}
	} else {
		a.layouts[layout.Name] = layout
	}

	if err := a.segBuilder.Add(slice); err != nil {
		return err
	}

	for col, leaf := range layout.Columns {
		fieldPath := layout.Name + "." + leaf.Path
		kind := leaf.Type.Kind
		syn, ok := a.synopses[fieldPath]
		if !ok {
			syn = synopsis.NewWithBloomFPR(kind, a.bloomFPR)
			a.synopses[fieldPath] = syn
			a.kinds[fieldPath] = kind
		}
		idx, ok := a.indexes[fieldPath]
		if !ok {
			idx = valueindex.New(kind)
			a.indexes[fieldPath] = idx
		}
		for row := 0; row < slice.Rows(); row++ {
			v, err := slice.At(row, col)
			if err != nil {
				return err
			}
			syn.Add(v)
			idx.Append(v)
		}
	}

	a.rows += slice.Rows()
	a.nextOffset.Add(uint64(slice.Rows()))
	return nil
}

func (a *Active) status(v status.Verbosity) value.Data {
	state := "waiting for chunk"
	if a.rows > 0 {
		state = "loading"
	}
	if a.sealedDir != "" {
		state = "ready"
	}
	return status.NewBuilder(v).
		At(status.Terse, "state", value.String(state)).
		At(status.Terse, "rows", value.Count(uint64(a.rows))).
		At(status.Info, "capacity", value.Count(uint64(a.capacity))).
		At(status.Info, "uuid", value.String(a.id.String())).
		Record()
}

// Status reports this partition's current load state and row progress.
func (a *Active) Status(ctx context.Context, v status.Verbosity) (value.Data, error) {
	reply := make(chan activeResponse, 1)
	select {
	case a.mailbox <- activeRequest{kind: reqStatus, verb: v, reply: reply}:
	case <-ctx.Done():
		return value.Data{}, ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.record, nil
	case <-ctx.Done():
		return value.Data{}, ctx.Err()
	}
}

// Seal forces an immediate seal regardless of capacity, used by callers
// that want to flush a partially-filled partition (e.g. on shutdown).
func (a *Active) Seal(ctx context.Context) (dir string, err error) {
	reply := make(chan activeResponse, 1)
	select {
	case a.mailbox <- activeRequest{kind: reqSeal, reply: reply}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.dir, resp.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
