package partition

import "encoding/binary"

// frameEntry is one { field_path, type_tag, bytes } record as named by
// §4.6's seal description, used identically for indexes.bin and
// synopses.bin.
type frameEntry struct {
	path string
	kind byte
	data []byte
}

func encodeFrames(entries []frameEntry) []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(entries)))
	for _, e := range entries {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.path)))
		buf = append(buf, e.path...)
		buf = append(buf, e.kind)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.data)))
		buf = append(buf, e.data...)
	}
	return buf
}

func decodeFrames(buf []byte) ([]frameEntry, error) {
	if len(buf) < 4 {
		return nil, errShortFrame("count")
	}
	count := binary.LittleEndian.Uint32(buf)
	pos := 4
	out := make([]frameEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(buf) < pos+4 {
			return nil, errShortFrame("path length")
		}
		pathLen := int(binary.LittleEndian.Uint32(buf[pos:]))
		pos += 4
		if len(buf) < pos+pathLen+1+4 {
			return nil, errShortFrame("entry header")
		}
		path := string(buf[pos : pos+pathLen])
		pos += pathLen
		kind := buf[pos]
		pos++
		dataLen := int(binary.LittleEndian.Uint32(buf[pos:]))
		pos += 4
		if len(buf) < pos+dataLen {
			return nil, errShortFrame("entry data")
		}
		data := buf[pos : pos+dataLen]
		pos += dataLen
		out = append(out, frameEntry{path: path, kind: kind, data: data})
	}
	return out, nil
}
