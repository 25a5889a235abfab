package table

import (
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/value"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

// Builder accumulates cells for one layout/encoding and produces
// immutable Slices (§4.1). Add fails when a value's tag is incompatible
// with its column's type after applying the permitted widenings: any
// scalar -> nil, count -> count, integer -> integer, and enum text ->
// ordinal.
type Builder struct {
	layout   Layout
	encoding Encoding
	offset   uint64
	cells    []value.Data
	col      int // next column index within the current row
}

// NewBuilder creates a builder for layout, starting at the given offset
// (the id of the first row this builder will produce).
func NewBuilder(layout Layout, encoding Encoding, offset uint64) *Builder {
	return &Builder{layout: layout, encoding: encoding, offset: offset}
}

// Add appends one cell, following row-major column order.
func (b *Builder) Add(v value.Data) error {
	if len(b.layout.Columns) == 0 {
		return pkgerrors.NewValidationError(nil, pkgerrors.ErrorCodeInvalidInput, "layout has no columns").
			WithField("layout")
	}
	col := b.layout.Columns[b.col]
	widened, err := widen(v, col.Type)
	if err != nil {
		return err
	}
	b.cells = append(b.cells, widened)
	b.col++
	if b.col == len(b.layout.Columns) {
		b.col = 0
	}
	return nil
}

// Rows returns the number of complete rows accumulated so far.
func (b *Builder) Rows() int {
	if len(b.layout.Columns) == 0 {
		return 0
	}
	return len(b.cells) / len(b.layout.Columns)
}

// Finish returns an immutable Slice built from the accumulated cells and
// resets the builder to accept a new batch starting at offset+rows.
func (b *Builder) Finish() (*Slice, error) {
	if b.col != 0 {
		return nil, pkgerrors.NewValidationError(
			nil, pkgerrors.ErrorCodeInvalidInput, "finish called mid-row",
		).WithField("col").WithProvided(b.col)
	}
	rows := b.Rows()
	s := &Slice{
		layout:   b.layout,
		offset:   b.offset,
		rows:     rows,
		encoding: b.encoding,
		cells:    b.cells,
	}
	b.offset += uint64(rows)
	b.cells = nil
	return s, nil
}

// widen applies the permitted conversions (§4.1) or reports a
// convert_error for incompatible tag/type combinations.
func widen(v value.Data, colType schema.Type) (value.Data, error) {
	if v.IsNil() {
		return v, nil
	}

	if colType.Kind == schema.KindEnum {
		if s, ok := v.String(); ok {
			for ord, name := range colType.EnumNames {
				if name == s {
					return value.Enum(uint64(ord)), nil
				}
			}
			return value.Data{}, pkgerrors.NewValidationError(
				nil, pkgerrors.ErrorCodeConvert, "unknown enum member",
			).WithField("enum").WithProvided(s)
		}
		if _, ok := v.Enum(); ok {
			return v, nil
		}
	}

	wantTag, scalar := colType.ValueTag()
	if !scalar {
		// Container columns (list/map) accept only an exact-tag value;
		// there is no widening across container shapes.
		if (colType.Kind == schema.KindList && v.Tag() == value.TagList) ||
			(colType.Kind == schema.KindMap && v.Tag() == value.TagMap) {
			return v, nil
		}
		return value.Data{}, pkgerrors.NewValidationError(
			nil, pkgerrors.ErrorCodeConvert, "value tag incompatible with container column",
		).WithField("column").WithProvided(v.Tag().String())
	}

	if v.Tag() == wantTag {
		return v, nil
	}

	return value.Data{}, pkgerrors.NewValidationError(
		nil, pkgerrors.ErrorCodeConvert, "value tag incompatible with column type",
	).WithField("column").WithProvided(v.Tag().String()).WithExpected(wantTag.String())
}
