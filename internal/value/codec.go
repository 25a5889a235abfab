package value

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strconv"
	"time"
)

// ParseAs parses the textual form produced by Print back into a Data value
// of the given tag (P1). Container tags are not parseable from flat text
// and return an error; table builders construct them directly instead.
func ParseAs(tag Tag, text string) (Data, error) {
	switch tag {
	case TagNil:
		return Nil(), nil
	case TagBool:
		switch text {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return Data{}, fmt.Errorf("parse_error: invalid bool %q", text)
	case TagInteger:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return Integer(i), nil
	case TagCount:
		u, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return Count(u), nil
	case TagReal:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return Real(f), nil
	case TagString:
		return String(text), nil
	case TagPattern:
		src := text
		if len(src) >= 2 && src[0] == '/' && src[len(src)-1] == '/' {
			src = src[1 : len(src)-1]
		}
		p, err := NewPattern(src)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return PatternVal(p), nil
	case TagAddress:
		a, err := netip.ParseAddr(text)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return Address(a), nil
	case TagSubnet:
		pfx, err := netip.ParsePrefix(text)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return SubnetVal(Subnet{Addr: pfx.Addr(), Prefix: uint8(pfx.Bits())}), nil
	case TagTime:
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return Time(t), nil
	case TagDuration:
		d, err := time.ParseDuration(text)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return Duration(d), nil
	case TagEnum:
		u, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Data{}, fmt.Errorf("parse_error: %w", err)
		}
		return Enum(u), nil
	default:
		return Data{}, fmt.Errorf("parse_error: tag %s is not flat-text parseable", tag)
	}
}

// Encode appends the binary encoding of d to buf and returns the result.
// The format is self-describing (leads with the tag byte) so Decode never
// needs external type context.
func Encode(buf []byte, d Data) []byte {
	buf = append(buf, byte(d.tag))
	switch d.tag {
	case TagNil:
	case TagBool:
		if d.b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case TagInteger:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d.i))
	case TagCount:
		buf = binary.LittleEndian.AppendUint64(buf, d.u)
	case TagReal:
		buf = binary.LittleEndian.AppendUint64(buf, mathFloatBits(d.f))
	case TagString:
		buf = appendString(buf, d.s)
	case TagPattern:
		buf = appendString(buf, d.pat.Source)
	case TagAddress:
		sl := d.addr.As16()
		buf = append(buf, sl[:]...)
	case TagSubnet:
		sl := d.sub.Addr.As16()
		buf = append(buf, sl[:]...)
		buf = append(buf, d.sub.Prefix)
	case TagTime:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d.t.UnixNano()))
	case TagDuration:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(d.d)))
	case TagEnum:
		buf = binary.LittleEndian.AppendUint64(buf, d.enum)
	case TagList:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(d.list)))
		for _, v := range d.list {
			buf = Encode(buf, v)
		}
	case TagMap:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(d.mp.Keys)))
		for i := range d.mp.Keys {
			buf = Encode(buf, d.mp.Keys[i])
			buf = Encode(buf, d.mp.Values[i])
		}
	case TagRecord:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(d.rec.Names)))
		for i, n := range d.rec.Names {
			buf = appendString(buf, n)
			buf = Encode(buf, d.rec.Values[i])
		}
	}
	return buf
}

// Decode reads one Data value from buf, returning the value and the
// number of bytes consumed.
func Decode(buf []byte) (Data, int, error) {
	if len(buf) < 1 {
		return Data{}, 0, fmt.Errorf("format_error: empty buffer")
	}
	tag := Tag(buf[0])
	rest := buf[1:]
	n := 1
	switch tag {
	case TagNil:
		return Nil(), n, nil
	case TagBool:
		if len(rest) < 1 {
			return Data{}, 0, errShort("bool")
		}
		return Bool(rest[0] != 0), n + 1, nil
	case TagInteger:
		if len(rest) < 8 {
			return Data{}, 0, errShort("integer")
		}
		return Integer(int64(binary.LittleEndian.Uint64(rest))), n + 8, nil
	case TagCount:
		if len(rest) < 8 {
			return Data{}, 0, errShort("count")
		}
		return Count(binary.LittleEndian.Uint64(rest)), n + 8, nil
	case TagReal:
		if len(rest) < 8 {
			return Data{}, 0, errShort("real")
		}
		return Real(mathFloatFromBits(binary.LittleEndian.Uint64(rest))), n + 8, nil
	case TagString:
		s, consumed, err := readString(rest)
		if err != nil {
			return Data{}, 0, err
		}
		return String(s), n + consumed, nil
	case TagPattern:
		s, consumed, err := readString(rest)
		if err != nil {
			return Data{}, 0, err
		}
		p, err := NewPattern(s)
		if err != nil {
			return Data{}, 0, fmt.Errorf("format_error: %w", err)
		}
		return PatternVal(p), n + consumed, nil
	case TagAddress:
		if len(rest) < 16 {
			return Data{}, 0, errShort("address")
		}
		var raw [16]byte
		copy(raw[:], rest[:16])
		return Address(netip.AddrFrom16(raw)), n + 16, nil
	case TagSubnet:
		if len(rest) < 17 {
			return Data{}, 0, errShort("subnet")
		}
		var raw [16]byte
		copy(raw[:], rest[:16])
		prefix := rest[16]
		return SubnetVal(Subnet{Addr: netip.AddrFrom16(raw), Prefix: prefix}), n + 17, nil
	case TagTime:
		if len(rest) < 8 {
			return Data{}, 0, errShort("time")
		}
		ns := int64(binary.LittleEndian.Uint64(rest))
		return Time(time.Unix(0, ns).UTC()), n + 8, nil
	case TagDuration:
		if len(rest) < 8 {
			return Data{}, 0, errShort("duration")
		}
		return Duration(time.Duration(int64(binary.LittleEndian.Uint64(rest)))), n + 8, nil
	case TagEnum:
		if len(rest) < 8 {
			return Data{}, 0, errShort("enum")
		}
		return Enum(binary.LittleEndian.Uint64(rest)), n + 8, nil
	case TagList:
		if len(rest) < 4 {
			return Data{}, 0, errShort("list length")
		}
		count := binary.LittleEndian.Uint32(rest)
		off := 4
		items := make([]Data, 0, count)
		for i := uint32(0); i < count; i++ {
			v, c, err := Decode(rest[off:])
			if err != nil {
				return Data{}, 0, err
			}
			items = append(items, v)
			off += c
		}
		return List(items), n + off, nil
	case TagMap:
		if len(rest) < 4 {
			return Data{}, 0, errShort("map length")
		}
		count := binary.LittleEndian.Uint32(rest)
		off := 4
		m := Map{Keys: make([]Data, 0, count), Values: make([]Data, 0, count)}
		for i := uint32(0); i < count; i++ {
			k, c, err := Decode(rest[off:])
			if err != nil {
				return Data{}, 0, err
			}
			off += c
			v, c2, err := Decode(rest[off:])
			if err != nil {
				return Data{}, 0, err
			}
			off += c2
			m.Keys = append(m.Keys, k)
			m.Values = append(m.Values, v)
		}
		return MapVal(m), n + off, nil
	case TagRecord:
		if len(rest) < 4 {
			return Data{}, 0, errShort("record length")
		}
		count := binary.LittleEndian.Uint32(rest)
		off := 4
		r := Record{Names: make([]string, 0, count), Values: make([]Data, 0, count)}
		for i := uint32(0); i < count; i++ {
			name, c, err := readString(rest[off:])
			if err != nil {
				return Data{}, 0, err
			}
			off += c
			v, c2, err := Decode(rest[off:])
			if err != nil {
				return Data{}, 0, err
			}
			off += c2
			r.Names = append(r.Names, name)
			r.Values = append(r.Values, v)
		}
		return RecordVal(r), n + off, nil
	default:
		return Data{}, 0, fmt.Errorf("format_error: unknown tag %d", tag)
	}
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func readString(buf []byte) (string, int, error) {
	if len(buf) < 4 {
		return "", 0, errShort("string length")
	}
	l := binary.LittleEndian.Uint32(buf)
	if len(buf) < int(4+l) {
		return "", 0, errShort("string body")
	}
	return string(buf[4 : 4+l]), int(4 + l), nil
}

func errShort(what string) error {
	return fmt.Errorf("format_error: truncated %s", what)
}
