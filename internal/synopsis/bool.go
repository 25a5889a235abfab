package synopsis

import "github.com/solarflare-labs/vastore/internal/value"

// boolSynopsis tracks whether any true and/or any false value has been
// added, per §4.4's "bool: store two flags" rule.
type boolSynopsis struct {
	anyTrue, anyFalse bool
}

func newBoolSynopsis() *boolSynopsis { return &boolSynopsis{} }

func (s *boolSynopsis) Add(v value.Data) {
	b, ok := v.Bool()
	if !ok {
		return
	}
	if b {
		s.anyTrue = true
	} else {
		s.anyFalse = true
	}
}

func (s *boolSynopsis) Lookup(op Op, rhs value.Data) *bool {
	want, ok := rhs.Bool()
	if !ok || (op != OpEqual && op != OpNotEqual) {
		return nil
	}
	if op == OpNotEqual {
		want = !want
	}
	if want {
		if !s.anyTrue {
			return ptrFalse()
		}
		if !s.anyFalse {
			return ptrTrue()
		}
		return nil
	}
	if !s.anyFalse {
		return ptrFalse()
	}
	if !s.anyTrue {
		return ptrTrue()
	}
	return nil
}

func (s *boolSynopsis) MemUsage() int { return 2 }

func (s *boolSynopsis) Serialize() ([]byte, error) {
	var b byte
	if s.anyTrue {
		b |= 1
	}
	if s.anyFalse {
		b |= 2
	}
	return []byte{b}, nil
}

func deserializeBoolSynopsis(buf []byte) (*boolSynopsis, error) {
	if len(buf) < 1 {
		return &boolSynopsis{}, nil
	}
	return &boolSynopsis{anyTrue: buf[0]&1 != 0, anyFalse: buf[0]&2 != 0}, nil
}
