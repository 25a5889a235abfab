package synopsis

import (
	"bytes"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/solarflare-labs/vastore/internal/value"
)

const defaultBloomFalsePositiveRate = 0.01

const bloomInitialCapacity = 1024

// bloomSynopsis is a fixed false-positive-rate Bloom filter for
// hash-friendly scalar kinds (string, pattern, address, subnet) per
// §4.4: "only == and in are pushable". It wraps
// github.com/bits-and-blooms/bloom/v3, the same library the wider pack
// reaches for when sizing a primary-key filter (see DESIGN.md), rather
// than hand-rolling double hashing over a raw bitset.
//
// The filter is sized once from bloomInitialCapacity and never rebuilt:
// Add must be monotone (§4.4, only expands the accepted set), and an
// overfilled Bloom filter only raises its false-positive rate, never
// producing a false negative for a member actually added. Rebuilding at
// a larger capacity would require re-adding every prior member, which
// this synopsis doesn't retain, so it would silently evict them instead
// of merely degrading precision.
type bloomSynopsis struct {
	filter    *bloom.BloomFilter
	targetFPR float64
}

func newBloomSynopsis(fpr float64) *bloomSynopsis {
	return &bloomSynopsis{
		filter:    bloom.NewWithEstimates(bloomInitialCapacity, fpr),
		targetFPR: fpr,
	}
}

func keyOf(v value.Data) []byte {
	return value.Encode(nil, v)
}

func (s *bloomSynopsis) Add(v value.Data) {
	if v.IsNil() {
		return
	}
	s.filter.Add(keyOf(v))
}

func (s *bloomSynopsis) contains(v value.Data) bool {
	return s.filter.Test(keyOf(v))
}

func (s *bloomSynopsis) Lookup(op Op, rhs value.Data) *bool {
	switch op {
	case OpEqual:
		if !s.contains(rhs) {
			return ptrFalse()
		}
		return nil
	case OpIn:
		list, ok := rhs.List()
		if !ok {
			return nil
		}
		for _, v := range list {
			if s.contains(v) {
				return nil
			}
		}
		return ptrFalse()
	default:
		return nil
	}
}

func (s *bloomSynopsis) MemUsage() int {
	var buf bytes.Buffer
	_, _ = s.filter.WriteTo(&buf)
	return buf.Len()
}

func (s *bloomSynopsis) Serialize() ([]byte, error) {
	return s.filter.MarshalBinary()
}

func deserializeBloomSynopsis(buf []byte, fpr float64) (*bloomSynopsis, error) {
	f := &bloom.BloomFilter{}
	if err := f.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return &bloomSynopsis{filter: f, targetFPR: fpr}, nil
}
