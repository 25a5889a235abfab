package segment

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/google/uuid"
	"github.com/solarflare-labs/vastore/internal/table"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
)

// Builder assembles a sealed segment from table slices appended in
// strictly increasing offset order (§4.3: "slices must be added in
// non-decreasing offset order; a slice's [offset, offset+rows) range
// must not overlap any previously added slice").
type Builder struct {
	id      uuid.UUID
	entries []indexEntry
	payload bytes.Buffer
	lastEnd uint64
	started bool
}

func NewBuilder() *Builder {
	return &Builder{id: uuid.New()}
}

// NewBuilderWithID is NewBuilder with a caller-chosen segment uuid, used
// by a partition so its segment carries the partition's own uuid.
func NewBuilderWithID(id uuid.UUID) *Builder {
	return &Builder{id: id}
}

// Add appends one table slice to the segment, enforcing the offset
// monotonicity and non-overlap invariant that backs property P5.
func (b *Builder) Add(slice *table.Slice) error {
	offset := slice.Offset()
	rows := uint32(slice.Rows())

	if b.started && offset < b.lastEnd {
		return pkgerrors.NewValidationError(
			nil, pkgerrors.ErrorCodeInvalidInput, "slice offset overlaps or precedes the previous slice",
		).WithField("offset").WithProvided(offset)
	}

	encoded, err := slice.Serialize()
	if err != nil {
		return err
	}

	// Each slice is length-prefixed in the payload (§4.3/§6's on-disk
	// format), ahead of its own encoded bytes, even though
	// table.Deserialize self-terminates and Lookup delimits slices via
	// ByteOff; the prefix is what makes the payload self-describing to
	// any external reader of the segment format.
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(encoded)))
	b.payload.Write(lenBuf[:])

	b.entries = append(b.entries, indexEntry{
		Offset:  offset,
		Rows:    rows,
		ByteOff: uint32(b.payload.Len()),
	})
	b.payload.Write(encoded)
	b.lastEnd = offset + uint64(rows)
	b.started = true
	return nil
}

// Finish serializes the accumulated slices into one VSEG-framed segment
// and returns its bytes alongside the segment's uuid.
func (b *Builder) Finish() ([]byte, uuid.UUID, error) {
	var buf bytes.Buffer
	buf.WriteString(magic)

	var u16 [2]byte
	binary.LittleEndian.PutUint16(u16[:], frameVersion)
	buf.Write(u16[:])

	idBytes, err := b.id.MarshalBinary()
	if err != nil {
		return nil, uuid.Nil, err
	}
	buf.Write(idBytes)

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(b.entries)))
	buf.Write(u32[:])

	indexStart := buf.Len()
	for _, e := range b.entries {
		var entryBuf [16]byte
		binary.LittleEndian.PutUint64(entryBuf[0:8], e.Offset)
		binary.LittleEndian.PutUint32(entryBuf[8:12], e.Rows)
		binary.LittleEndian.PutUint32(entryBuf[12:16], e.ByteOff)
		buf.Write(entryBuf[:])
	}
	indexLen := buf.Len() - indexStart

	payloadBytes := b.payload.Bytes()
	buf.Write(payloadBytes)

	var trailer [12]byte
	binary.LittleEndian.PutUint32(trailer[0:4], uint32(len(payloadBytes)))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(indexLen))
	crc := crc32.Checksum(buf.Bytes(), crcTable)
	binary.LittleEndian.PutUint32(trailer[8:12], crc)
	buf.Write(trailer[:])

	return buf.Bytes(), b.id, nil
}
