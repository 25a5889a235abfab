package query

import (
	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/partition"
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/schema"
)

// Resolve walks a normalized expression and pins every extractor to the
// concrete field paths registered on p's layouts (§4.7). A FieldExtractor
// resolves to every layout's column with a matching leaf path; a
// TypeExtractor resolves to every column belonging to a matching layout,
// both as a disjunction of FieldPredicates (a single match yields the
// bare FieldPredicate). A MetaExtractor("type") resolves directly to a
// Literal bitmap computed from segment layout membership. Anything with
// no match becomes an empty Literal, per the stated fallback rule.
func Resolve(e Expression, p *partition.Passive) Expression {
	switch n := e.(type) {
	case Predicate:
		return resolvePredicate(n, p)
	case Conjunction:
		out := make([]Expression, len(n.Exprs))
		for i, c := range n.Exprs {
			out[i] = Resolve(c, p)
		}
		return Conjunction{Exprs: out}
	case Disjunction:
		out := make([]Expression, len(n.Exprs))
		for i, c := range n.Exprs {
			out[i] = Resolve(c, p)
		}
		return Disjunction{Exprs: out}
	case Negation:
		return Negation{Expr: Resolve(n.Expr, p)}
	default:
		return e
	}
}

func resolvePredicate(pred Predicate, p *partition.Passive) Expression {
	switch ext := pred.Extractor.(type) {
	case FieldExtractor:
		paths := matchingFieldPaths(p, func(layoutName, leafPath string) bool {
			return leafPath == ext.Path
		})
		return fieldPathsToExpr(paths, pred)
	case TypeExtractor:
		paths := matchingFieldPaths(p, func(layoutName, leafPath string) bool {
			return layoutName == ext.Name || schema.HasPrefix(layoutName, ext.Name)
		})
		return fieldPathsToExpr(paths, pred)
	case MetaExtractor:
		if ext.Name == "type" {
			return Literal{Bitmap: typeBitmap(p, pred)}
		}
		// "time" / "import_time": no wall-clock stamp is plumbed into
		// partition metadata yet, so these resolve like any other
		// extractor with no schema match.
		return Literal{Bitmap: bitmap.New()}
	default:
		return Literal{Bitmap: bitmap.New()}
	}
}

func matchingFieldPaths(p *partition.Passive, match func(layoutName, leafPath string) bool) []string {
	var out []string
	for _, layout := range p.Layouts() {
		for _, col := range layout.Columns {
			if match(layout.Name, col.Path) {
				out = append(out, layout.Name+"."+col.Path)
			}
		}
	}
	return out
}

func fieldPathsToExpr(paths []string, pred Predicate) Expression {
	if len(paths) == 0 {
		return Literal{Bitmap: bitmap.New()}
	}
	if len(paths) == 1 {
		return FieldPredicate{FieldPath: paths[0], Op: pred.Op, Value: pred.Value}
	}
	exprs := make([]Expression, len(paths))
	for i, fp := range paths {
		exprs[i] = FieldPredicate{FieldPath: fp, Op: pred.Op, Value: pred.Value}
	}
	return Disjunction{Exprs: exprs}
}

// typeBitmap answers a MetaExtractor("type") predicate by walking the
// segment's slices and unioning the id ranges of those whose layout name
// matches, since a partition's rows carry their layout only at the slice
// level. Only Equal and NotEqual are meaningful here; any other operator
// answers empty, matching the no-match fallback.
func typeBitmap(p *partition.Passive, pred Predicate) *bitmap.Bitmap {
	target, ok := pred.Value.String()
	if !ok {
		return bitmap.New()
	}
	lo, hi := p.IDRange()
	full := bitmap.Range(lo, hi)

	seg, err := p.Segment()
	if err != nil {
		return bitmap.New()
	}
	slices, err := seg.Lookup(full)
	if err != nil {
		return bitmap.New()
	}

	matched := bitmap.New()
	for _, s := range slices {
		if s.Layout().Name == target {
			matched = bitmap.Union(matched, bitmap.Range(s.Offset(), s.Offset()+uint64(s.Rows())))
		}
	}

	switch pred.Op {
	case predicate.Equal:
		return matched
	case predicate.NotEqual:
		return bitmap.Difference(full, matched)
	default:
		return bitmap.New()
	}
}
