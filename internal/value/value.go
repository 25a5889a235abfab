// Package value implements the canonical data universe described in the
// storage core: a tagged variant of scalar and container values shared by
// every layer above it (tables, segments, synopses, indexes, queries).
//
// A Data value never carries its declared schema type — only its tag. Two
// values compare equal when their tags and payloads match, regardless of
// what type the schema says the column holds (I1 in the design doc).
package value

import (
	"fmt"
	"net/netip"
	"regexp"
	"time"
)

// Tag identifies which variant of the data universe a Data value holds.
type Tag uint8

const (
	TagNil Tag = iota
	TagBool
	TagInteger // signed 64-bit
	TagCount   // unsigned 64-bit
	TagReal    // float64
	TagString
	TagPattern
	TagAddress
	TagSubnet
	TagTime
	TagDuration
	TagEnum
	TagList
	TagMap
	TagRecord
)

func (t Tag) String() string {
	switch t {
	case TagNil:
		return "nil"
	case TagBool:
		return "bool"
	case TagInteger:
		return "integer"
	case TagCount:
		return "count"
	case TagReal:
		return "real"
	case TagString:
		return "string"
	case TagPattern:
		return "pattern"
	case TagAddress:
		return "address"
	case TagSubnet:
		return "subnet"
	case TagTime:
		return "time"
	case TagDuration:
		return "duration"
	case TagEnum:
		return "enumeration"
	case TagList:
		return "list"
	case TagMap:
		return "map"
	case TagRecord:
		return "record"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Pattern wraps a compiled regular expression together with its source
// text, since regexp.Regexp has no useful equality or serialization story
// of its own.
type Pattern struct {
	Source   string
	compiled *regexp.Regexp
}

func NewPattern(src string) (Pattern, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Source: src, compiled: re}, nil
}

func (p Pattern) Regexp() *regexp.Regexp { return p.compiled }
func (p Pattern) MatchString(s string) bool {
	if p.compiled == nil {
		return false
	}
	return p.compiled.MatchString(s)
}

// Subnet is an address plus a prefix length. SubnetVal stores a
// v4-mapped-v6 address in its plain v4 form, the same normalization
// Address applies, so I4's v4/v4-mapped-v6 equivalence holds.
type Subnet struct {
	Addr   netip.Addr
	Prefix uint8
}

func (s Subnet) Contains(a netip.Addr) bool {
	pfx := netip.PrefixFrom(normalizeAddr(s.Addr), int(s.Prefix))
	return pfx.Contains(normalizeAddr(a))
}

func (s Subnet) String() string {
	return fmt.Sprintf("%s/%d", s.Addr.String(), s.Prefix)
}

// normalizeAddr canonicalizes v4-mapped-v6 addresses to plain v4 so that
// equality and containment checks are value-based rather than
// representation-based (I4).
func normalizeAddr(a netip.Addr) netip.Addr {
	if a.Is4In6() {
		return a.Unmap()
	}
	return a
}

// Record is an ordered sequence of uniquely named fields. Order is
// significant for layout (column position) but not for equality, which
// compares as an unordered name->value association (I1, I3).
type Record struct {
	Names  []string
	Values []Data
}

func (r Record) Get(name string) (Data, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return Data{}, false
}

// Map is an ordered association of unique keys to values. It is
// represented with parallel slices, not a Go map, so that insertion order
// is preserved (I3) while keys remain comparable Data values.
type Map struct {
	Keys   []Data
	Values []Data
}

func (m Map) Get(key Data) (Data, bool) {
	for i, k := range m.Keys {
		if Equal(k, key) {
			return m.Values[i], true
		}
	}
	return Data{}, false
}

// Data is the tagged-variant scalar/container value. The payload fields
// below are intentionally sparse: only the field matching Tag is live. A
// Data is immutable after construction.
type Data struct {
	tag Tag

	b   bool
	i   int64
	u   uint64
	f   float64
	s   string
	pat Pattern
	addr netip.Addr
	sub  Subnet
	t    time.Time
	d    time.Duration
	enum uint64

	list []Data
	mp   Map
	rec  Record
}

func Nil() Data                       { return Data{tag: TagNil} }
func Bool(b bool) Data                { return Data{tag: TagBool, b: b} }
func Integer(i int64) Data            { return Data{tag: TagInteger, i: i} }
func Count(u uint64) Data             { return Data{tag: TagCount, u: u} }
func Real(f float64) Data             { return Data{tag: TagReal, f: f} }
func String(s string) Data            { return Data{tag: TagString, s: s} }
func PatternVal(p Pattern) Data       { return Data{tag: TagPattern, pat: p} }
func Address(a netip.Addr) Data       { return Data{tag: TagAddress, addr: normalizeAddr(a)} }
func SubnetVal(s Subnet) Data         { return Data{tag: TagSubnet, sub: Subnet{Addr: normalizeAddr(s.Addr), Prefix: s.Prefix}} }
func Time(t time.Time) Data           { return Data{tag: TagTime, t: t.Round(time.Nanosecond)} }
func Duration(d time.Duration) Data   { return Data{tag: TagDuration, d: d} }
func Enum(ord uint64) Data            { return Data{tag: TagEnum, enum: ord} }
func List(items []Data) Data          { return Data{tag: TagList, list: items} }
func MapVal(m Map) Data               { return Data{tag: TagMap, mp: m} }
func RecordVal(r Record) Data         { return Data{tag: TagRecord, rec: r} }

func (d Data) Tag() Tag { return d.tag }
func (d Data) IsNil() bool { return d.tag == TagNil }

func (d Data) Bool() (bool, bool)             { return d.b, d.tag == TagBool }
func (d Data) Integer() (int64, bool)         { return d.i, d.tag == TagInteger }
func (d Data) Count() (uint64, bool)          { return d.u, d.tag == TagCount }
func (d Data) Real() (float64, bool)          { return d.f, d.tag == TagReal }
func (d Data) String() (string, bool) {
	if d.tag != TagString {
		return "", false
	}
	return d.s, true
}
func (d Data) Pattern() (Pattern, bool)       { return d.pat, d.tag == TagPattern }
func (d Data) Address() (netip.Addr, bool)    { return d.addr, d.tag == TagAddress }
func (d Data) Subnet() (Subnet, bool)         { return d.sub, d.tag == TagSubnet }
func (d Data) Time() (time.Time, bool)        { return d.t, d.tag == TagTime }
func (d Data) Duration() (time.Duration, bool){ return d.d, d.tag == TagDuration }
func (d Data) Enum() (uint64, bool)           { return d.enum, d.tag == TagEnum }
func (d Data) List() ([]Data, bool)           { return d.list, d.tag == TagList }
func (d Data) Map() (Map, bool)               { return d.mp, d.tag == TagMap }
func (d Data) Record() (Record, bool)         { return d.rec, d.tag == TagRecord }

// Print renders a value in its canonical textual form, the inverse of
// ParseAs for a given tag (P1: ParseAs(tag, Print(v)) == v).
func (d Data) Print() string {
	switch d.tag {
	case TagNil:
		return "nil"
	case TagBool:
		if d.b {
			return "true"
		}
		return "false"
	case TagInteger:
		return fmt.Sprintf("%d", d.i)
	case TagCount:
		return fmt.Sprintf("%d", d.u)
	case TagReal:
		return fmt.Sprintf("%g", d.f)
	case TagString:
		return d.s
	case TagPattern:
		return "/" + d.pat.Source + "/"
	case TagAddress:
		return d.addr.String()
	case TagSubnet:
		return d.sub.String()
	case TagTime:
		return d.t.UTC().Format(time.RFC3339Nano)
	case TagDuration:
		return d.d.String()
	case TagEnum:
		return fmt.Sprintf("%d", d.enum)
	case TagList:
		out := "["
		for i, v := range d.list {
			if i > 0 {
				out += ", "
			}
			out += v.Print()
		}
		return out + "]"
	case TagMap:
		out := "{"
		for i := range d.mp.Keys {
			if i > 0 {
				out += ", "
			}
			out += d.mp.Keys[i].Print() + ": " + d.mp.Values[i].Print()
		}
		return out + "}"
	case TagRecord:
		out := "<"
		for i, n := range d.rec.Names {
			if i > 0 {
				out += ", "
			}
			out += n + ": " + d.rec.Values[i].Print()
		}
		return out + ">"
	default:
		return "?"
	}
}
