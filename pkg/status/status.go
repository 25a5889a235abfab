// Package status defines the status-reporting contract shared by every
// component that answers a "status(verbosity) -> record" query (§6): the
// filesystem actor, partitions, and (eventually) readers. Verbosity is
// monotonic — each level is a superset of the fields below it — and the
// record itself is expressed in the same data universe as ordinary event
// values (§3.1), so a status reply can be printed, compared, or shipped
// to an external status sink with no separate wire format.
package status

import "github.com/solarflare-labs/vastore/internal/value"

// Verbosity controls how much detail a status reply carries.
type Verbosity uint8

const (
	Terse Verbosity = iota
	Info
	Detailed
	Debug
)

func (v Verbosity) String() string {
	switch v {
	case Terse:
		return "terse"
	case Info:
		return "info"
	case Detailed:
		return "detailed"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// Builder accumulates named fields for one verbosity level and below,
// then renders them as a value.Record.
type Builder struct {
	verbosity Verbosity
	names     []string
	values    []value.Data
}

func NewBuilder(v Verbosity) *Builder {
	return &Builder{verbosity: v}
}

// At adds a field only when the reply's verbosity is >= min, implementing
// the "verbosity monotonically adds fields" rule from §6.
func (b *Builder) At(min Verbosity, name string, v value.Data) *Builder {
	if b.verbosity >= min {
		b.names = append(b.names, name)
		b.values = append(b.values, v)
	}
	return b
}

func (b *Builder) Record() value.Data {
	return value.RecordVal(value.Record{Names: b.names, Values: b.values})
}
