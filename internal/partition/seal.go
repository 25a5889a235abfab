package partition

import (
	"context"
	"path"

	"github.com/solarflare-labs/vastore/internal/table"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

// seal writes segment.bin, indexes.bin, synopses.bin, and finally
// meta.json through the filesystem actor (§4.6). meta.json is written
// last so a reader treats its absence as "not a partition"; a failure at
// any step removes whatever partial directory was written so far.
func (a *Active) seal() error {
	if a.sealedDir != "" {
		return nil
	}

	segBytes, segID, err := a.segBuilder.Finish()
	if err != nil {
		return err
	}
	if segID != a.id {
		return pkgerrors.NewStorageError(nil, pkgerrors.ErrorCodeSegmentCorrupted, "segment uuid diverged from partition uuid")
	}

	idxEntries := make([]frameEntry, 0, len(a.indexes))
	for fieldPath, idx := range a.indexes {
		data, err := idx.Serialize()
		if err != nil {
			return a.abortSeal(err)
		}
		idxEntries = append(idxEntries, frameEntry{path: fieldPath, kind: byte(a.kinds[fieldPath]), data: data})
	}

	synEntries := make([]frameEntry, 0, len(a.synopses))
	for fieldPath, syn := range a.synopses {
		data, err := syn.Serialize()
		if err != nil {
			return a.abortSeal(err)
		}
		synEntries = append(synEntries, frameEntry{path: fieldPath, kind: byte(a.kinds[fieldPath]), data: data})
	}

	ctx := context.Background()
	if err := a.vfs.Write(ctx, path.Join(a.dir, segmentFile), segBytes); err != nil {
		return a.abortSeal(err)
	}
	if err := a.vfs.Write(ctx, path.Join(a.dir, indexesFile), encodeFrames(idxEntries)); err != nil {
		return a.abortSeal(err)
	}
	if err := a.vfs.Write(ctx, path.Join(a.dir, synopsesFile), encodeFrames(synEntries)); err != nil {
		return a.abortSeal(err)
	}

	meta := Meta{
		UUID:     a.id.String(),
		Layouts:  a.layouts,
		IDLo:     0,
		IDHi:     a.nextOffset.Load(),
		RowCount: a.rows,
		Encoding: table.EncodingNative,
	}
	metaBytes, err := meta.marshal()
	if err != nil {
		return a.abortSeal(err)
	}
	if err := a.vfs.Write(ctx, path.Join(a.dir, metaFile), metaBytes); err != nil {
		return a.abortSeal(err)
	}

	a.sealedDir = a.dir
	return nil
}

// abortSeal removes whatever partial partition directory was written so
// a half-sealed partition never lingers with a meta.json (§4.6, S5).
func (a *Active) abortSeal(cause error) error {
	_ = a.vfs.RemoveAll(context.Background(), a.dir)
	return cause
}
