package value

import (
	"bytes"
	"hash/maphash"
)

// Equal implements I1: equality ignores declared schema type and compares
// only the tag plus payload. Address equality is value-based (I4), already
// guaranteed by constructor-time normalization.
func Equal(a, b Data) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagNil:
		return true
	case TagBool:
		return a.b == b.b
	case TagInteger:
		return a.i == b.i
	case TagCount:
		return a.u == b.u
	case TagReal:
		return a.f == b.f
	case TagString:
		return a.s == b.s
	case TagPattern:
		return a.pat.Source == b.pat.Source
	case TagAddress:
		return a.addr == b.addr
	case TagSubnet:
		return a.sub.Addr == b.sub.Addr && a.sub.Prefix == b.sub.Prefix
	case TagTime:
		return a.t.Equal(b.t)
	case TagDuration:
		return a.d == b.d
	case TagEnum:
		return a.enum == b.enum
	case TagList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case TagMap:
		if len(a.mp.Keys) != len(b.mp.Keys) {
			return false
		}
		for i := range a.mp.Keys {
			bv, ok := b.mp.Get(a.mp.Keys[i])
			if !ok || !Equal(a.mp.Values[i], bv) {
				return false
			}
		}
		return true
	case TagRecord:
		if len(a.rec.Names) != len(b.rec.Names) {
			return false
		}
		for i, n := range a.rec.Names {
			bv, ok := b.rec.Get(n)
			if !ok || !Equal(a.rec.Values[i], bv) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare implements I2: a total, deterministic ordering within one tag.
// Values of different tags order by tag number; this is sufficient for
// synopsis min/max tracking and index key ordering, which always operate
// within a single column (a single tag).
func Compare(a, b Data) int {
	if a.tag != b.tag {
		if a.tag < b.tag {
			return -1
		}
		return 1
	}
	switch a.tag {
	case TagNil:
		return 0
	case TagBool:
		return boolCompare(a.b, b.b)
	case TagInteger:
		return int64Compare(a.i, b.i)
	case TagCount:
		return uint64Compare(a.u, b.u)
	case TagReal:
		return float64Compare(a.f, b.f)
	case TagString:
		return bytes.Compare([]byte(a.s), []byte(b.s))
	case TagPattern:
		return bytes.Compare([]byte(a.pat.Source), []byte(b.pat.Source))
	case TagAddress:
		return bytes.Compare(a.addr.AsSlice(), b.addr.AsSlice())
	case TagSubnet:
		if c := bytes.Compare(a.sub.Addr.AsSlice(), b.sub.Addr.AsSlice()); c != 0 {
			return c
		}
		return int(a.sub.Prefix) - int(b.sub.Prefix)
	case TagTime:
		if a.t.Before(b.t) {
			return -1
		}
		if a.t.After(b.t) {
			return 1
		}
		return 0
	case TagDuration:
		return int64Compare(int64(a.d), int64(b.d))
	case TagEnum:
		return uint64Compare(a.enum, b.enum)
	default:
		// Containers have no total order spec'd; compare by print form so
		// Compare is still deterministic for callers that need one.
		return bytes.Compare([]byte(a.Print()), []byte(b.Print()))
	}
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func int64Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func uint64Compare(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func float64Compare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

var hashSeed = maphash.MakeSeed()

// Hash returns a process-local, non-persistent hash of the value. It is
// used by hash-based value indexes (string/address/subnet/pattern); it is
// explicitly not stable across processes or versions, so it is never
// serialized.
func Hash(d Data) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	h.WriteByte(byte(d.tag))
	switch d.tag {
	case TagString:
		h.WriteString(d.s)
	case TagPattern:
		h.WriteString(d.pat.Source)
	case TagAddress:
		h.Write(d.addr.AsSlice())
	case TagSubnet:
		h.Write(d.sub.Addr.AsSlice())
		h.WriteByte(d.sub.Prefix)
	case TagInteger:
		h.Write(encodeU64(uint64(d.i)))
	case TagCount:
		h.Write(encodeU64(d.u))
	case TagEnum:
		h.Write(encodeU64(d.enum))
	case TagBool:
		if d.b {
			h.WriteByte(1)
		} else {
			h.WriteByte(0)
		}
	default:
		h.WriteString(d.Print())
	}
	return h.Sum64()
}

func encodeU64(u uint64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> (8 * i))
	}
	return buf
}
