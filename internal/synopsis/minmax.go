package synopsis

import "github.com/solarflare-labs/vastore/internal/value"

// minMaxSynopsis tracks the smallest and largest value seen per §4.4's
// "ordered scalars: store (min, max)" rule. It operates directly on
// value.Data and leans on value.Compare's total order within a tag, so
// it needs no per-type instantiation despite covering every ordered
// scalar kind (integer, count, real, time, duration, address).
type minMaxSynopsis struct {
	min, max value.Data
	valid    bool
}

func newMinMaxSynopsis() *minMaxSynopsis { return &minMaxSynopsis{} }

func (s *minMaxSynopsis) Add(v value.Data) {
	if v.IsNil() {
		return
	}
	if !s.valid {
		s.min, s.max, s.valid = v, v, true
		return
	}
	if value.Compare(v, s.min) < 0 {
		s.min = v
	}
	if value.Compare(v, s.max) > 0 {
		s.max = v
	}
}

func (s *minMaxSynopsis) Lookup(op Op, rhs value.Data) *bool {
	if !s.valid {
		return ptrFalse()
	}
	switch op {
	case OpEqual:
		if value.Compare(rhs, s.min) < 0 || value.Compare(rhs, s.max) > 0 {
			return ptrFalse()
		}
		return nil
	case OpNotEqual:
		// Column is constant and equals rhs: != is never true.
		if value.Equal(s.min, s.max) && value.Equal(s.min, rhs) {
			return ptrFalse()
		}
		return nil
	case OpLess:
		if value.Compare(s.max, rhs) < 0 {
			return ptrTrue()
		}
		if value.Compare(s.min, rhs) >= 0 {
			return ptrFalse()
		}
		return nil
	case OpLessEqual:
		if value.Compare(s.max, rhs) <= 0 {
			return ptrTrue()
		}
		if value.Compare(s.min, rhs) > 0 {
			return ptrFalse()
		}
		return nil
	case OpGreater:
		if value.Compare(s.min, rhs) > 0 {
			return ptrTrue()
		}
		if value.Compare(s.max, rhs) <= 0 {
			return ptrFalse()
		}
		return nil
	case OpGreaterEqual:
		if value.Compare(s.min, rhs) >= 0 {
			return ptrTrue()
		}
		if value.Compare(s.max, rhs) < 0 {
			return ptrFalse()
		}
		return nil
	default:
		return nil
	}
}

func (s *minMaxSynopsis) MemUsage() int {
	if !s.valid {
		return 0
	}
	enc := value.Encode(nil, s.min)
	return 2 * len(enc)
}

func (s *minMaxSynopsis) Serialize() ([]byte, error) {
	if !s.valid {
		return []byte{0}, nil
	}
	buf := []byte{1}
	buf = value.Encode(buf, s.min)
	buf = value.Encode(buf, s.max)
	return buf, nil
}

func deserializeMinMaxSynopsis(buf []byte) (*minMaxSynopsis, error) {
	if len(buf) < 1 || buf[0] == 0 {
		return &minMaxSynopsis{}, nil
	}
	min, n, err := value.Decode(buf[1:])
	if err != nil {
		return nil, err
	}
	max, _, err := value.Decode(buf[1+n:])
	if err != nil {
		return nil, err
	}
	return &minMaxSynopsis{min: min, max: max, valid: true}, nil
}
