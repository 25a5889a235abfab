package table

import (
	"github.com/solarflare-labs/vastore/internal/value"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

// Slice is an immutable, columnar batch of events sharing one layout
// (§3.3). Cells are stored row-major; Slice itself never mutates once
// returned from Builder.Finish, so it may be freely shared across
// concurrent readers (§3.8).
type Slice struct {
	layout   Layout
	offset   uint64
	rows     int
	encoding Encoding
	cells    []value.Data // len == rows*len(layout.Columns)
}

func (s *Slice) Rows() int          { return s.rows }
func (s *Slice) Columns() int       { return len(s.layout.Columns) }
func (s *Slice) Layout() Layout     { return s.layout }
func (s *Slice) Offset() uint64     { return s.offset }
func (s *Slice) Encoding() Encoding { return s.encoding }

// At returns the typed value stored at (row, col) exactly as it was
// stored. It takes no expected type and does not reinterpret the cell;
// an out-of-range row or column is reported as an error.
func (s *Slice) At(row, col int) (value.Data, error) {
	if row < 0 || row >= s.rows || col < 0 || col >= len(s.layout.Columns) {
		return value.Data{}, pkgerrors.NewValidationError(
			nil, pkgerrors.ErrorCodeInvalidInput, "row/col out of range",
		).WithField("row,col").WithProvided([2]int{row, col})
	}
	return s.cells[row*len(s.layout.Columns)+col], nil
}

// Equal reports structural equality: same layout name, offset, row count,
// and cell-by-cell value equality.
func (s *Slice) Equal(other *Slice) bool {
	if s.layout.Name != other.layout.Name || s.offset != other.offset || s.rows != other.rows {
		return false
	}
	if len(s.cells) != len(other.cells) {
		return false
	}
	for i := range s.cells {
		if !value.Equal(s.cells[i], other.cells[i]) {
			return false
		}
	}
	return true
}

// Serialize writes the slice in its stored encoding, keyed by the
// encoding tag so a decoder can dispatch without prior knowledge of the
// slice's shape (§4.1, §4.3).
func (s *Slice) Serialize() ([]byte, error) {
	c, ok := encodingRegistry[s.encoding]
	if !ok {
		return nil, pkgerrors.NewFormatError(
			nil, pkgerrors.ErrorCodeFormatMismatch, "unregistered slice encoding",
		).WithDetail("encoding", s.encoding)
	}
	return c.encode(s), nil
}

// Deserialize reads one slice from buf, dispatching on the leading
// encoding tag byte, and returns the slice plus the number of bytes
// consumed.
func Deserialize(buf []byte) (*Slice, int, error) {
	if len(buf) < 1 {
		return nil, 0, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "empty slice buffer")
	}
	enc := Encoding(buf[0])
	c, ok := encodingRegistry[enc]
	if !ok {
		return nil, 0, pkgerrors.NewFormatError(
			nil, pkgerrors.ErrorCodeFormatMismatch, "unknown slice encoding tag",
		).WithDetail("encoding", enc)
	}
	return c.decode(buf)
}
