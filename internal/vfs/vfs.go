// Package vfs implements the filesystem actor (§4.2, §5): a single
// goroutine with a mailbox channel that serializes all durable I/O rooted
// at one directory, tracking cumulative counters for checks/writes/reads/
// mmaps. It generalizes the teacher's pkg/filesys helpers from a bag of
// free functions into the request-multiplexed actor the design calls for.
package vfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/solarflare-labs/vastore/internal/value"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
	"github.com/solarflare-labs/vastore/pkg/status"
	"go.uber.org/zap"
)

// Chunk is an immutable byte buffer returned by Mmap. This core has no
// pack-attested real mmap(2) library, so Chunk is backed by a full-file
// read rather than a genuine memory mapping (see SPEC_FULL.md §4.2); callers only
// depend on it being an immutable, shareable byte view.
type Chunk struct {
	data []byte
}

func (c Chunk) Bytes() []byte { return c.data }
func (c Chunk) Len() int      { return len(c.data) }

// kind enumerates the actor's request kinds: write, read and mmap from
// §4.2, plus directory removal and status snapshots.
type kind uint8

const (
	kindWrite kind = iota
	kindRead
	kindMmap
	kindRemoveAll
	kindStatus
)

type request struct {
	kind      kind
	relpath   string
	payload   []byte
	verbosity status.Verbosity
	reply     chan response
}

type response struct {
	data   []byte
	status value.Data
	err    error
}

// Counters accumulates cumulative success/failure/byte counts per request
// kind, mutated only inside the actor goroutine (race-free per §5).
// ChecksOK/ChecksFailed count RemoveAll requests; Exists is counted as a
// read.
type Counters struct {
	ChecksOK, ChecksFailed               uint64
	WritesOK, WritesFailed, WriteBytes   uint64
	ReadsOK, ReadsFailed, ReadBytes      uint64
	MmapsOK, MmapsFailed, MmapBytes      uint64
}

// FS is the filesystem actor: a request-multiplexed persistence component
// rooted at a directory.
type FS struct {
	root    string
	log     *zap.SugaredLogger
	mailbox chan request
	closed  atomic.Bool
	done    chan struct{}

	counters Counters
}

// New starts the filesystem actor rooted at root.
func New(root string, log *zap.SugaredLogger) *FS {
	fs := &FS{
		root:    root,
		log:     log.Named("vfs"),
		mailbox: make(chan request, 64),
		done:    make(chan struct{}),
	}
	go fs.run()
	return fs
}

func (fs *FS) run() {
	defer close(fs.done)
	for req := range fs.mailbox {
		fs.handle(req)
	}
}

func (fs *FS) handle(req request) {
	switch req.kind {
	case kindWrite:
		err := fs.doWrite(req.relpath, req.payload)
		if err != nil {
			fs.counters.WritesFailed++
		} else {
			fs.counters.WritesOK++
			fs.counters.WriteBytes += uint64(len(req.payload))
		}
		req.reply <- response{err: err}
	case kindRead:
		data, err := fs.doRead(req.relpath)
		if err != nil {
			fs.counters.ReadsFailed++
		} else {
			fs.counters.ReadsOK++
			fs.counters.ReadBytes += uint64(len(data))
		}
		req.reply <- response{data: data, err: err}
	case kindMmap:
		data, err := fs.doRead(req.relpath)
		if err != nil {
			fs.counters.MmapsFailed++
		} else {
			fs.counters.MmapsOK++
			fs.counters.MmapBytes += uint64(len(data))
		}
		req.reply <- response{data: data, err: err}
	case kindRemoveAll:
		err := os.RemoveAll(fs.resolve(req.relpath))
		if err != nil {
			fs.counters.ChecksFailed++
		} else {
			fs.counters.ChecksOK++
		}
		req.reply <- response{err: err}
	case kindStatus:
		req.reply <- response{status: fs.status(req.verbosity)}
	}
}

// status builds the status record from the actor goroutine's own view of
// counters; only handle (running on the actor goroutine) ever reads or
// writes Counters, so this is race-free without further synchronization.
func (fs *FS) status(verbosity status.Verbosity) value.Data {
	c := fs.counters
	return status.NewBuilder(verbosity).
		At(status.Terse, "root", value.String(fs.root)).
		At(status.Terse, "writes", value.Count(c.WritesOK)).
		At(status.Terse, "reads", value.Count(c.ReadsOK)).
		At(status.Terse, "mmaps", value.Count(c.MmapsOK)).
		At(status.Info, "writesFailed", value.Count(c.WritesFailed)).
		At(status.Info, "readsFailed", value.Count(c.ReadsFailed)).
		At(status.Info, "mmapsFailed", value.Count(c.MmapsFailed)).
		At(status.Detailed, "writeBytes", value.Count(c.WriteBytes)).
		At(status.Detailed, "readBytes", value.Count(c.ReadBytes)).
		At(status.Detailed, "mmapBytes", value.Count(c.MmapBytes)).
		At(status.Debug, "checksOK", value.Count(c.ChecksOK)).
		At(status.Debug, "checksFailed", value.Count(c.ChecksFailed)).
		Record()
}

func (fs *FS) resolve(relpath string) string {
	if filepath.IsAbs(relpath) {
		return relpath
	}
	return filepath.Join(fs.root, relpath)
}

func (fs *FS) doWrite(relpath string, data []byte) error {
	path := fs.resolve(relpath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return pkgerrors.ClassifyDirectoryCreationError(err, filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return pkgerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	return nil
}

func (fs *FS) doRead(relpath string) ([]byte, error) {
	path := fs.resolve(relpath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "no such file").WithPath(path)
		}
		return nil, pkgerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}
	return data, nil
}

func (fs *FS) send(ctx context.Context, req request) response {
	select {
	case fs.mailbox <- req:
	case <-ctx.Done():
		return response{err: ctx.Err()}
	}
	select {
	case resp := <-req.reply:
		return resp
	case <-ctx.Done():
		return response{err: ctx.Err()}
	}
}

// Write persists bytes at relpath (resolved against root unless absolute).
func (fs *FS) Write(ctx context.Context, relpath string, data []byte) error {
	resp := fs.send(ctx, request{kind: kindWrite, relpath: relpath, payload: data, reply: make(chan response, 1)})
	return resp.err
}

// Read returns the full contents of relpath.
func (fs *FS) Read(ctx context.Context, relpath string) ([]byte, error) {
	resp := fs.send(ctx, request{kind: kindRead, relpath: relpath, reply: make(chan response, 1)})
	return resp.data, resp.err
}

// Mmap returns an immutable Chunk view of relpath's contents.
func (fs *FS) Mmap(ctx context.Context, relpath string) (Chunk, error) {
	resp := fs.send(ctx, request{kind: kindMmap, relpath: relpath, reply: make(chan response, 1)})
	if resp.err != nil {
		return Chunk{}, resp.err
	}
	return Chunk{data: resp.data}, nil
}

// Exists checks for relpath's presence by sending a read request through
// the mailbox, so it is counted in the read counters (ReadsOK or
// ReadsFailed), not the check counters. A storage error is reported as
// absence.
func (fs *FS) Exists(ctx context.Context, relpath string) (bool, error) {
	reply := make(chan response, 1)
	select {
	case fs.mailbox <- request{kind: kindRead, relpath: relpath, reply: reply}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	resp := <-reply
	if resp.err != nil {
		if pkgerrors.IsStorageError(resp.err) {
			return false, nil
		}
		return false, resp.err
	}
	return true, nil
}

// RemoveAll deletes relpath and everything beneath it, used by a sealed
// partition's erase() to discard its directory (§4.6).
func (fs *FS) RemoveAll(ctx context.Context, relpath string) error {
	resp := fs.send(ctx, request{kind: kindRemoveAll, relpath: relpath, reply: make(chan response, 1)})
	return resp.err
}

// Status reports cumulative I/O counters at the requested verbosity. Since
// verbosity only ever adds fields (§6), terse returns the root and success
// counts and higher verbosities add failure, byte and check counters. The
// snapshot is taken on the
// actor goroutine via the mailbox, the same as every other request kind,
// so Counters is never read from the caller's goroutine while handle is
// concurrently mutating it.
func (fs *FS) Status(verbosity status.Verbosity) value.Data {
	reply := make(chan response, 1)
	fs.mailbox <- request{kind: kindStatus, verbosity: verbosity, reply: reply}
	resp := <-reply
	return resp.status
}

// Close stops accepting new requests and waits for the actor goroutine to
// drain its mailbox.
func (fs *FS) Close() error {
	if !fs.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(fs.mailbox)
	<-fs.done
	return nil
}

var _ io.Closer = (*FS)(nil)
