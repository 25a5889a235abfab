package query

import (
	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/partition"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

// Evaluate walks a resolved expression against a passive partition and
// returns the matching row-id bitmap (§4.7, steps 1-3): the synopsis is
// consulted first so a decisive answer short-circuits without touching
// the value index, and a conjunction stops as soon as a member or the
// running intersection is empty. A disjunction always evaluates every
// member.
func Evaluate(e Expression, p *partition.Passive) (*bitmap.Bitmap, error) {
	switch n := e.(type) {
	case Literal:
		return n.Bitmap, nil
	case FieldPredicate:
		return evalField(n, p)
	case Conjunction:
		if len(n.Exprs) == 0 {
			return fullBitmap(p), nil
		}
		var acc *bitmap.Bitmap
		for _, c := range n.Exprs {
			bm, err := Evaluate(c, p)
			if err != nil {
				return nil, err
			}
			if bm.IsEmpty() {
				return bitmap.New(), nil
			}
			if acc == nil {
				acc = bm
			} else {
				acc = bitmap.Intersect(acc, bm)
				if acc.IsEmpty() {
					return bitmap.New(), nil
				}
			}
		}
		return acc, nil
	case Disjunction:
		if len(n.Exprs) == 0 {
			return bitmap.New(), nil
		}
		parts := make([]*bitmap.Bitmap, 0, len(n.Exprs))
		for _, c := range n.Exprs {
			bm, err := Evaluate(c, p)
			if err != nil {
				return nil, err
			}
			parts = append(parts, bm)
		}
		return bitmap.Union(parts...), nil
	case Negation:
		bm, err := Evaluate(n.Expr, p)
		if err != nil {
			return nil, err
		}
		return bitmap.Difference(fullBitmap(p), bm), nil
	default:
		return nil, pkgerrors.NewQueryError(nil, pkgerrors.ErrorCodeQueryParse, "expression was not resolved before evaluation")
	}
}

func fullBitmap(p *partition.Passive) *bitmap.Bitmap {
	lo, hi := p.IDRange()
	return bitmap.Range(lo, hi)
}

func evalField(n FieldPredicate, p *partition.Passive) (*bitmap.Bitmap, error) {
	if syn, ok := p.Synopsis(n.FieldPath); ok {
		if r := syn.Lookup(n.Op, n.Value); r != nil {
			if *r {
				return fullBitmap(p), nil
			}
			return bitmap.New(), nil
		}
	}
	idx, ok := p.Index(n.FieldPath)
	if !ok {
		return bitmap.New(), nil
	}
	return idx.Lookup(n.Op, n.Value)
}

// Slices hands the final id bitmap to the partition's segment and
// returns the table slices overlapping it (§4.7 step 4).
func Slices(e Expression, p *partition.Passive) ([]*Result, error) {
	ids, err := Evaluate(e, p)
	if err != nil {
		return nil, err
	}
	seg, err := p.Segment()
	if err != nil {
		return nil, err
	}
	slices, err := seg.Lookup(ids)
	if err != nil {
		return nil, err
	}
	out := make([]*Result, len(slices))
	for i, s := range slices {
		out[i] = &Result{slice: s, matched: ids}
	}
	return out, nil
}
