package query

import (
	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/table"
)

// Result pairs a decoded table slice with the full matched-id bitmap so a
// caller can derive which of its rows actually satisfied the query (§4.7
// step 4: "possibly with per-slice row masks derived by intersecting the
// id bitmap with each slice's [offset, offset+rows)").
type Result struct {
	slice   *table.Slice
	matched *bitmap.Bitmap
}

// Slice returns the underlying table slice.
func (r *Result) Slice() *table.Slice { return r.slice }

// Mask returns the row indices within this slice that are members of the
// query's matched-id bitmap, in ascending order.
func (r *Result) Mask() []int {
	offset := r.slice.Offset()
	rows := r.slice.Rows()
	var out []int
	for row := 0; row < rows; row++ {
		if r.matched.Contains(uint32(offset) + uint32(row)) {
			out = append(out, row)
		}
	}
	return out
}
