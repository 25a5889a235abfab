// Package synopsis implements the per-column lossy prefilter (§3.6,
// §4.4): a compact summary that can rule a predicate in or out for an
// entire column without visiting the value index, falling through to
// "don't know" whenever the summary is insufficient.
package synopsis

import (
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/value"
)

// Op aliases the shared predicate operator vocabulary (§4.4, §4.5, §4.7).
type Op = predicate.Op

const (
	OpEqual        = predicate.Equal
	OpNotEqual     = predicate.NotEqual
	OpLess         = predicate.Less
	OpLessEqual    = predicate.LessEqual
	OpGreater      = predicate.Greater
	OpGreaterEqual = predicate.GreaterEqual
	OpIn           = predicate.In
	OpHas          = predicate.Has
)

// Synopsis is the per-column lossy summary contract (§3.6). Add is
// monotone: it only ever expands the accepted set. Lookup returns nil
// for "don't know", a pointer to false for "no row in this column can
// satisfy the predicate", and a pointer to true for "every row does".
type Synopsis interface {
	Add(v value.Data)
	Lookup(op Op, rhs value.Data) *bool
	MemUsage() int
	Serialize() ([]byte, error)
}

func ptrTrue() *bool  { b := true; return &b }
func ptrFalse() *bool { b := false; return &b }

// New constructs the synopsis variant appropriate for a column's scalar
// type, per §4.4's concrete rules table, using the package's default
// Bloom false-positive target.
func New(kind schema.Kind) Synopsis {
	return NewWithBloomFPR(kind, defaultBloomFalsePositiveRate)
}

// NewWithBloomFPR is New with an explicit Bloom false-positive target,
// threaded from configuration by callers (e.g. internal/partition.Active)
// that build string/address/pattern/subnet synopses.
func NewWithBloomFPR(kind schema.Kind, bloomFPR float64) Synopsis {
	switch kind {
	case schema.KindBool:
		return newBoolSynopsis()
	case schema.KindInteger, schema.KindCount, schema.KindReal, schema.KindTime, schema.KindDuration:
		return newMinMaxSynopsis()
	case schema.KindAddress:
		// Addresses are both ordered (range predicates against a CIDR-like
		// sweep) and exact-matched (== / in), so they carry both summaries.
		return newCompositeSynopsis(newMinMaxSynopsis(), newBloomSynopsis(bloomFPR))
	case schema.KindString, schema.KindPattern, schema.KindSubnet:
		return newBloomSynopsis(bloomFPR)
	default:
		return newMinMaxSynopsis()
	}
}

// Deserialize reconstructs the synopsis variant appropriate for kind from
// bytes produced by its Serialize, mirroring New's dispatch.
func Deserialize(kind schema.Kind, buf []byte) (Synopsis, error) {
	switch kind {
	case schema.KindBool:
		return deserializeBoolSynopsis(buf)
	case schema.KindInteger, schema.KindCount, schema.KindReal, schema.KindTime, schema.KindDuration:
		return deserializeMinMaxSynopsis(buf)
	case schema.KindAddress:
		return deserializeCompositeSynopsis(buf, defaultBloomFalsePositiveRate)
	case schema.KindString, schema.KindPattern, schema.KindSubnet:
		return deserializeBloomSynopsis(buf, defaultBloomFalsePositiveRate)
	default:
		return deserializeMinMaxSynopsis(buf)
	}
}
