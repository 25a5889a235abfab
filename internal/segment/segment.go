// Package segment implements the immutable, self-describing byte
// container that packs many table slices plus an id index (§3.5, §4.3).
package segment

import (
	"encoding/binary"
	"hash/crc32"
	"sort"

	"github.com/google/uuid"
	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/table"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

const (
	magic        = "VSEG"
	frameVersion = uint16(0)
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// indexEntry records where one embedded slice lives in the payload.
type indexEntry struct {
	Offset  uint64
	Rows    uint32
	ByteOff uint32
}

// Segment is a loaded, immutable segment: its uuid, its slice index, and
// the raw payload bytes slices are decoded from lazily.
type Segment struct {
	UUID    uuid.UUID
	entries []indexEntry
	payload []byte
}

// RowCount returns the total row count covered by this segment, the union
// of every embedded slice's [offset, offset+rows) range.
func (s *Segment) RowCount() uint64 {
	var total uint64
	for _, e := range s.entries {
		total += uint64(e.Rows)
	}
	return total
}

// IDRange returns the inclusive low id and exclusive high id covered by
// this segment's slices, assuming entries are already offset-sorted.
func (s *Segment) IDRange() (lo, hi uint64, ok bool) {
	if len(s.entries) == 0 {
		return 0, 0, false
	}
	last := s.entries[len(s.entries)-1]
	return s.entries[0].Offset, last.Offset + uint64(last.Rows), true
}

// Lookup returns the decoded table slices whose [offset, offset+rows)
// range overlaps ids. Entries are stored offset-sorted, so the first
// candidate is located with a binary search and the scan stops at the
// first entry that starts beyond the id set's maximum member; entries in
// between that hold none of the ids are skipped without being decoded.
func (s *Segment) Lookup(ids *bitmap.Bitmap) ([]*table.Slice, error) {
	if ids.IsEmpty() || len(s.entries) == 0 {
		return nil, nil
	}
	arr := ids.ToArray()
	minID, maxID := uint64(arr[0]), uint64(arr[len(arr)-1])

	start := sort.Search(len(s.entries), func(i int) bool {
		e := s.entries[i]
		return e.Offset+uint64(e.Rows) > minID
	})

	var out []*table.Slice
	for i := start; i < len(s.entries); i++ {
		e := s.entries[i]
		if e.Offset > maxID {
			break
		}
		if e.Rows == 0 {
			continue
		}
		before := uint64(0)
		if e.Offset > 0 {
			before = ids.Rank(uint32(e.Offset - 1))
		}
		if ids.Rank(uint32(e.Offset+uint64(e.Rows)-1)) == before {
			continue
		}
		slice, _, err := table.Deserialize(s.payload[e.ByteOff:])
		if err != nil {
			return nil, err
		}
		out = append(out, slice)
	}
	return out, nil
}

// Load parses and validates a segment byte buffer (magic, version, crc)
// and indexes its slices without decoding their payloads.
func Load(data []byte) (*Segment, error) {
	if len(data) < 4+2+16+4 {
		return nil, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "segment too small")
	}
	if string(data[:4]) != magic {
		return nil, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "bad segment magic")
	}
	pos := 4
	version := binary.LittleEndian.Uint16(data[pos:])
	pos += 2
	if version != frameVersion {
		return nil, pkgerrors.NewVersionMismatchError("", version)
	}
	id, err := uuid.FromBytes(data[pos : pos+16])
	if err != nil {
		return nil, pkgerrors.NewFormatError(err, pkgerrors.ErrorCodeFormatMismatch, "malformed segment uuid")
	}
	pos += 16

	headerEnd := pos
	if len(data) < pos+4 {
		return nil, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "truncated segment index")
	}
	nSlices := binary.LittleEndian.Uint32(data[pos:])
	pos += 4
	entries := make([]indexEntry, 0, nSlices)
	for i := uint32(0); i < nSlices; i++ {
		if len(data) < pos+16 {
			return nil, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "truncated segment index entry")
		}
		e := indexEntry{
			Offset:  binary.LittleEndian.Uint64(data[pos:]),
			Rows:    binary.LittleEndian.Uint32(data[pos+8:]),
			ByteOff: binary.LittleEndian.Uint32(data[pos+12:]),
		}
		entries = append(entries, e)
		pos += 16
	}
	indexEnd := pos

	if len(data) < pos+4+4+4 {
		return nil, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "truncated segment trailer")
	}
	// Trailer sits at the very end: payload_len, index_len, crc.
	trailerStart := len(data) - 12
	payloadLen := binary.LittleEndian.Uint32(data[trailerStart:])
	indexLen := binary.LittleEndian.Uint32(data[trailerStart+4:])
	storedCRC := binary.LittleEndian.Uint32(data[trailerStart+8:])

	payloadStart := indexEnd
	payloadEnd := payloadStart + int(payloadLen)
	if payloadEnd != trailerStart {
		return nil, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "payload length mismatch")
	}
	if indexEnd-headerEnd-4 != int(indexLen) {
		return nil, pkgerrors.NewFormatError(nil, pkgerrors.ErrorCodeFormatMismatch, "index length mismatch")
	}

	computed := crc32.Checksum(data[:trailerStart], crcTable)
	if computed != storedCRC {
		return nil, pkgerrors.NewCRCMismatchError("")
	}

	return &Segment{
		UUID:    id,
		entries: entries,
		payload: data[payloadStart:payloadEnd],
	}, nil
}
