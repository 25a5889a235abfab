package query

import (
	"github.com/solarflare-labs/vastore/internal/partition"
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/value"
)

// pivotCandidates lists field names tried, in order, when a layout
// doesn't carry the caller's requested pivot field (§4.7's documented
// interim heuristic: "common field name such as uid for Zeek, else
// community_id", pending a runtime type registry).
var pivotCandidates = []string{"uid", "community_id"}

// Pivot extracts a designated field from every row matched by source,
// collects its distinct values, and returns the follow-up expression
// `type == target && pivotField in {values}` ready for Resolve/Evaluate
// against the partition expected to hold rows of the target type.
//
// pivotField, when non-empty, is used as-is; otherwise the heuristic in
// pivotCandidates is tried against p's layouts in order, and the first
// name present on any layout wins.
func Pivot(source Expression, p *partition.Passive, target, pivotField string) (Expression, error) {
	resolved := Resolve(Normalize(source), p)
	results, err := Slices(resolved, p)
	if err != nil {
		return nil, err
	}

	field := pivotField
	if field == "" {
		field = choosePivotField(p)
	}

	seen := make([]value.Data, 0)
	for _, r := range results {
		layout := r.Slice().Layout()
		col := layout.ColumnIndex(field)
		if col < 0 {
			continue
		}
		for _, row := range r.Mask() {
			v, err := r.Slice().At(row, col)
			if err != nil {
				return nil, err
			}
			if v.IsNil() {
				continue
			}
			if !containsValue(seen, v) {
				seen = append(seen, v)
			}
		}
	}

	return Conjunction{Exprs: []Expression{
		Predicate{Extractor: MetaExtractor{Name: "type"}, Op: predicate.Equal, Value: value.String(target)},
		Predicate{Extractor: FieldExtractor{Path: field}, Op: predicate.In, Value: value.List(seen)},
	}}, nil
}

func choosePivotField(p *partition.Passive) string {
	for _, candidate := range pivotCandidates {
		for _, layout := range p.Layouts() {
			if layout.ColumnIndex(candidate) >= 0 {
				return candidate
			}
		}
	}
	return pivotCandidates[0]
}

func containsValue(haystack []value.Data, v value.Data) bool {
	for _, h := range haystack {
		if value.Equal(h, v) {
			return true
		}
	}
	return false
}
