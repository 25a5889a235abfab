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
)

// Passive is a sealed partition loaded on demand by uuid (§4.6): it
// answers column-level synopsis/index lookups and exposes its segment so
// a query pipeline can resolve matching rows, until erased.
type Passive struct {
	id   uuid.UUID
	dir  string
	vfs  *vfs.FS
	meta Meta

	seg      *segment.Segment
	synopses map[string]synopsis.Synopsis
	indexes  map[string]valueindex.Index
	kinds    map[string]schema.Kind

	erased atomic.Bool
}

// Load reads (meta.json, segment.bin, indexes.bin, synopses.bin) for the
// partition named id and reconstructs its in-memory synopses and
// indexes. meta.json's absence means "not a partition" (§4.6).
func Load(ctx context.Context, fsys *vfs.FS, id uuid.UUID) (*Passive, error) {
	dir := path.Join("partitions", id.String())

	metaBytes, err := fsys.Read(ctx, path.Join(dir, metaFile))
	if err != nil {
		return nil, pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "partition has no meta.json").WithPath(dir)
	}
	meta, err := unmarshalMeta(metaBytes)
	if err != nil {
		return nil, err
	}

	segBytes, err := fsys.Read(ctx, path.Join(dir, segmentFile))
	if err != nil {
		return nil, err
	}
	seg, err := segment.Load(segBytes)
	if err != nil {
		return nil, err
	}

	idxBytes, err := fsys.Read(ctx, path.Join(dir, indexesFile))
	if err != nil {
		return nil, err
	}
	idxFrames, err := decodeFrames(idxBytes)
	if err != nil {
		return nil, err
	}

	synBytes, err := fsys.Read(ctx, path.Join(dir, synopsesFile))
	if err != nil {
		return nil, err
	}
	synFrames, err := decodeFrames(synBytes)
	if err != nil {
		return nil, err
	}

	p := &Passive{
		id:       id,
		dir:      dir,
		vfs:      fsys,
		meta:     meta,
		seg:      seg,
		synopses: make(map[string]synopsis.Synopsis, len(synFrames)),
		indexes:  make(map[string]valueindex.Index, len(idxFrames)),
		kinds:    make(map[string]schema.Kind, len(idxFrames)),
	}
	for _, f := range idxFrames {
		kind := schema.Kind(f.kind)
		idx, err := valueindex.Deserialize(kind, f.data)
		if err != nil {
			return nil, err
		}
		p.indexes[f.path] = idx
		p.kinds[f.path] = kind
	}
	for _, f := range synFrames {
		syn, err := synopsis.Deserialize(schema.Kind(f.kind), f.data)
		if err != nil {
			return nil, err
		}
		p.synopses[f.path] = syn
	}
	return p, nil
}

func (p *Passive) checkAlive() error {
	if p.erased.Load() {
		return pkgerrors.NewStorageError(nil, pkgerrors.ErrorCodeInvalidInput, "partition has been erased").WithPath(p.dir)
	}
	return nil
}

func (p *Passive) UUID() uuid.UUID            { return p.id }
func (p *Passive) RowCount() int              { return p.meta.RowCount }
func (p *Passive) IDRange() (lo, hi uint64)    { return p.meta.IDLo, p.meta.IDHi }
func (p *Passive) Layouts() map[string]table.Layout { return p.meta.Layouts }

// Synopsis returns the prefilter summary registered for a field path
// ("<layout>.<leaf path>"), if any.
func (p *Passive) Synopsis(fieldPath string) (synopsis.Synopsis, bool) {
	if p.checkAlive() != nil {
		return nil, false
	}
	s, ok := p.synopses[fieldPath]
	return s, ok
}

// Index returns the exact value index registered for a field path, if
// any.
func (p *Passive) Index(fieldPath string) (valueindex.Index, bool) {
	if p.checkAlive() != nil {
		return nil, false
	}
	idx, ok := p.indexes[fieldPath]
	return idx, ok
}

// Segment exposes the underlying segment so a query pipeline can resolve
// the table slices behind a bitmap of matching ids.
func (p *Passive) Segment() (*segment.Segment, error) {
	if err := p.checkAlive(); err != nil {
		return nil, err
	}
	return p.seg, nil
}

// Erase deletes the partition's directory and transitions it to a
// terminal state; subsequent lookups return an error (§4.6).
func (p *Passive) Erase(ctx context.Context) error {
	if !p.erased.CompareAndSwap(false, true) {
		return nil
	}
	return p.vfs.RemoveAll(ctx, p.dir)
}

// Status reports the partition's load state.
func (p *Passive) Status(v status.Verbosity) value.Data {
	state := "ready"
	if p.erased.Load() {
		state = "erased"
	}
	return status.NewBuilder(v).
		At(status.Terse, "state", value.String(state)).
		At(status.Terse, "rows", value.Count(uint64(p.meta.RowCount))).
		At(status.Info, "uuid", value.String(p.id.String())).
		Record()
}
