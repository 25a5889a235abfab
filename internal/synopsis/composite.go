package synopsis

import (
	"encoding/binary"

	"github.com/solarflare-labs/vastore/internal/value"
)

// compositeSynopsis layers two synopses over one column, taking whichever
// answer is decisive. Used for address columns, which §4.4 lists under
// both the ordered (min/max range) and Bloom (exact match) rules.
type compositeSynopsis struct {
	ordered *minMaxSynopsis
	bloom   *bloomSynopsis
}

func newCompositeSynopsis(ordered *minMaxSynopsis, bloom *bloomSynopsis) *compositeSynopsis {
	return &compositeSynopsis{ordered: ordered, bloom: bloom}
}

func (s *compositeSynopsis) Add(v value.Data) {
	s.ordered.Add(v)
	s.bloom.Add(v)
}

func (s *compositeSynopsis) Lookup(op Op, rhs value.Data) *bool {
	if r := s.ordered.Lookup(op, rhs); r != nil {
		return r
	}
	return s.bloom.Lookup(op, rhs)
}

func (s *compositeSynopsis) MemUsage() int {
	return s.ordered.MemUsage() + s.bloom.MemUsage()
}

func (s *compositeSynopsis) Serialize() ([]byte, error) {
	o, err := s.ordered.Serialize()
	if err != nil {
		return nil, err
	}
	b, err := s.bloom.Serialize()
	if err != nil {
		return nil, err
	}
	buf := binary.LittleEndian.AppendUint32(nil, uint32(len(o)))
	buf = append(buf, o...)
	buf = append(buf, b...)
	return buf, nil
}

func deserializeCompositeSynopsis(buf []byte, fpr float64) (*compositeSynopsis, error) {
	if len(buf) < 4 {
		return newCompositeSynopsis(newMinMaxSynopsis(), newBloomSynopsis(fpr)), nil
	}
	oLen := binary.LittleEndian.Uint32(buf[:4])
	rest := buf[4:]
	ordered, err := deserializeMinMaxSynopsis(rest[:oLen])
	if err != nil {
		return nil, err
	}
	bloomS, err := deserializeBloomSynopsis(rest[oLen:], fpr)
	if err != nil {
		return nil, err
	}
	return &compositeSynopsis{ordered: ordered, bloom: bloomS}, nil
}
