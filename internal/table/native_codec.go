package table

import (
	"encoding/binary"
	"encoding/json"

	"github.com/solarflare-labs/vastore/internal/value"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

// encodeNative lays out: [tag byte][u32 header_len][json layout header]
// [u64 offset][u32 rows][cells...]. The header is JSON (not a hand-rolled
// binary type codec) since it's written once per slice, not once per
// cell, and Layout/schema.Type are ordinary exported-field structs that
// encoding/json already round-trips correctly.
func encodeNative(s *Slice) []byte {
	header, _ := json.Marshal(s.layout)

	buf := make([]byte, 0, len(header)+32+len(s.cells)*8)
	buf = append(buf, byte(EncodingNative))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(header)))
	buf = append(buf, header...)
	buf = binary.LittleEndian.AppendUint64(buf, s.offset)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(s.rows))
	for _, cell := range s.cells {
		buf = value.Encode(buf, cell)
	}
	return buf
}

func decodeNative(buf []byte) (*Slice, int, error) {
	orig := len(buf)
	if len(buf) < 1 || Encoding(buf[0]) != EncodingNative {
		return nil, 0, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "not a native-encoded slice")
	}
	buf = buf[1:]
	if len(buf) < 4 {
		return nil, 0, shortBuf("header length")
	}
	headerLen := binary.LittleEndian.Uint32(buf)
	buf = buf[4:]
	if len(buf) < int(headerLen) {
		return nil, 0, shortBuf("header body")
	}
	var layout Layout
	if err := json.Unmarshal(buf[:headerLen], &layout); err != nil {
		return nil, 0, pkgerrors.NewFormatError(err, pkgerrors.ErrorCodeFormatMismatch, "malformed slice header")
	}
	buf = buf[headerLen:]

	if len(buf) < 12 {
		return nil, 0, shortBuf("offset/rows")
	}
	offset := binary.LittleEndian.Uint64(buf)
	rows := binary.LittleEndian.Uint32(buf[8:])
	buf = buf[12:]

	ncells := int(rows) * len(layout.Columns)
	cells := make([]value.Data, 0, ncells)
	consumed := orig - len(buf)
	for i := 0; i < ncells; i++ {
		v, n, err := value.Decode(buf)
		if err != nil {
			return nil, 0, err
		}
		cells = append(cells, v)
		buf = buf[n:]
		consumed += n
	}

	return &Slice{
		layout:   layout,
		offset:   offset,
		rows:     int(rows),
		encoding: EncodingNative,
		cells:    cells,
	}, consumed, nil
}

func shortBuf(what string) error {
	return pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "truncated "+what)
}
