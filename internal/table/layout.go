// Package table implements the columnar table slice — the unit of data
// that flows from readers into segments and back out of query results
// (§3.3, §4.1).
package table

import (
	"fmt"

	"github.com/solarflare-labs/vastore/internal/schema"
)

// Layout is a record type flattened into leaf columns: the schema a
// table.Slice carries. Column order is the row-major cell order used by
// Builder.Add.
type Layout struct {
	Name    string
	Columns []schema.LeafField
}

// NewLayout flattens a named record type from a schema into a Layout.
func NewLayout(name string, recordType schema.Type) Layout {
	return Layout{Name: name, Columns: schema.Flatten(recordType)}
}

// ColumnIndex returns the position of a leaf field path in the layout, or
// -1 if absent.
func (l Layout) ColumnIndex(path string) int {
	for i, c := range l.Columns {
		if c.Path == path {
			return i
		}
	}
	return -1
}

func (l Layout) String() string {
	return fmt.Sprintf("%s(%d cols)", l.Name, len(l.Columns))
}
