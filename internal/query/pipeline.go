package query

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/solarflare-labs/vastore/internal/partition"
	"github.com/solarflare-labs/vastore/internal/vfs"
	"go.uber.org/zap"
)

type reqKind uint8

const (
	reqQuery reqKind = iota
	reqPivot
)

type request struct {
	kind        reqKind
	partitionID uuid.UUID
	expr        Expression
	target      string
	pivotField  string
	reply       chan response
}

type response struct {
	results []*Result
	expr    Expression
	err     error
}

// Pipeline is the query dispatcher actor (§5): a single mailbox serializes
// partition loads so two concurrent queries against the same uuid don't
// race to deserialize it twice. Each request loads the target partition
// fresh; nothing here caches a Passive across requests, since erase() can
// invalidate one at any time and staleness would be worse than a re-read.
type Pipeline struct {
	fsys *vfs.FS
	log  *zap.SugaredLogger

	mailbox chan request
	done    chan struct{}
	closed  atomic.Bool
}

// NewPipeline starts the dispatcher actor against the given filesystem.
func NewPipeline(fsys *vfs.FS, log *zap.SugaredLogger) *Pipeline {
	q := &Pipeline{
		fsys:    fsys,
		log:     log.Named("query"),
		mailbox: make(chan request, 64),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Pipeline) run() {
	defer close(q.done)
	ctx := context.Background()
	for req := range q.mailbox {
		p, err := partition.Load(ctx, q.fsys, req.partitionID)
		if err != nil {
			req.reply <- response{err: err}
			continue
		}
		switch req.kind {
		case reqQuery:
			resolved := Resolve(Normalize(req.expr), p)
			results, err := Slices(resolved, p)
			req.reply <- response{results: results, err: err}
		case reqPivot:
			expr, err := Pivot(req.expr, p, req.target, req.pivotField)
			req.reply <- response{expr: expr, err: err}
		}
	}
}

// Close stops accepting new requests and waits for the actor to drain.
func (q *Pipeline) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(q.mailbox)
	<-q.done
	return nil
}

// Query normalizes, resolves, and evaluates expr against the named
// partition, returning the matching table slices with their row masks.
func (q *Pipeline) Query(ctx context.Context, partitionID uuid.UUID, expr Expression) ([]*Result, error) {
	reply := make(chan response, 1)
	select {
	case q.mailbox <- request{kind: reqQuery, partitionID: partitionID, expr: expr, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.results, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// PivotPlan runs source against the named partition and returns the
// follow-up expression a caller should issue against the partition
// expected to hold rows of target's type (§4.7 pivot).
func (q *Pipeline) PivotPlan(ctx context.Context, partitionID uuid.UUID, source Expression, target, pivotField string) (Expression, error) {
	reply := make(chan response, 1)
	select {
	case q.mailbox <- request{kind: reqPivot, partitionID: partitionID, expr: source, target: target, pivotField: pivotField, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.expr, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
