// Package schema defines the type model (§3.1-3.2) layered on top of
// internal/value's data universe: record layouts, field paths, and the
// named collection of record types a reader attaches to the slices it
// produces.
package schema

import (
	"fmt"
	"strings"

	"github.com/solarflare-labs/vastore/internal/value"
)

// Kind mirrors value.Tag so a schema Type can describe, rather than hold,
// a value's shape. Container kinds carry nested Type information that
// value.Data itself does not.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInteger
	KindCount
	KindReal
	KindString
	KindPattern
	KindAddress
	KindSubnet
	KindTime
	KindDuration
	KindEnum
	KindList
	KindMap
	KindRecord
	KindAlias
)

// Type describes the shape of a column or field. Attributes carry
// name->value string metadata (e.g. "key" on a record field).
type Type struct {
	Kind Kind

	// Alias name, valid only when Kind == KindAlias.
	AliasName string

	// List element type, valid only when Kind == KindList.
	Elem *Type

	// Map key/value types, valid only when Kind == KindMap.
	MapKey   *Type
	MapValue *Type

	// Record fields, valid only when Kind == KindRecord.
	Fields []Field

	// Enum member names, valid only when Kind == KindEnum.
	EnumNames []string

	Attributes map[string]string
}

// Field is one named member of a record type.
type Field struct {
	Name string
	Type Type
}

func (t Type) Attr(name string) (string, bool) {
	v, ok := t.Attributes[name]
	return v, ok
}

// IsKey reports whether this field is marked as the key field used when
// converting a list-of-records into a map (§3.1).
func (f Field) IsKey() bool {
	_, ok := f.Type.Attr("key")
	return ok
}

// ValueTag returns the value.Tag that corresponds to this type's Kind, for
// scalar kinds. Containers and alias types return TagNil and false.
func (t Type) ValueTag() (value.Tag, bool) {
	switch t.Kind {
	case KindNil:
		return value.TagNil, true
	case KindBool:
		return value.TagBool, true
	case KindInteger:
		return value.TagInteger, true
	case KindCount:
		return value.TagCount, true
	case KindReal:
		return value.TagReal, true
	case KindString:
		return value.TagString, true
	case KindPattern:
		return value.TagPattern, true
	case KindAddress:
		return value.TagAddress, true
	case KindSubnet:
		return value.TagSubnet, true
	case KindTime:
		return value.TagTime, true
	case KindDuration:
		return value.TagDuration, true
	case KindEnum:
		return value.TagEnum, true
	default:
		return value.TagNil, false
	}
}

// LeafField is one flattened (leaf-scalar) column of a record type,
// addressed by its dotted path ("a.b.c").
type LeafField struct {
	Path string
	Type Type
}

// Flatten walks a record type depth-first and returns every leaf (scalar,
// list, or map field — anything that isn't itself a nested record) with
// its dotted field path. This is the column layout table.Layout uses.
func Flatten(t Type) []LeafField {
	return flatten("", t)
}

func flatten(prefix string, t Type) []LeafField {
	if t.Kind != KindRecord {
		path := prefix
		return []LeafField{{Path: path, Type: t}}
	}
	var out []LeafField
	for _, f := range t.Fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		out = append(out, flatten(path, f.Type)...)
	}
	return out
}

// RecordType declares a named record type. Within one Schema, names are
// unique (§3.2).
type RecordType struct {
	Name string
	Type Type
}

// Schema is a set of named record types supplied to readers and attached
// to every table slice they produce.
type Schema struct {
	types map[string]Type
	order []string
}

func New() *Schema {
	return &Schema{types: make(map[string]Type)}
}

// Add registers a record type under name. It is an error to redefine an
// existing name with a different type.
func (s *Schema) Add(name string, t Type) error {
	if existing, ok := s.types[name]; ok {
		if !sameShape(existing, t) {
			return fmt.Errorf("type_clash: %q already registered with a different shape", name)
		}
		return nil
	}
	s.types[name] = t
	s.order = append(s.order, name)
	return nil
}

// Lookup resolves a type name, following a single alias hop. Conversion
// through more than one alias hop is a type error per §3.1.
func (s *Schema) Lookup(name string) (Type, error) {
	t, ok := s.types[name]
	if !ok {
		return Type{}, fmt.Errorf("type_clash: unknown type %q", name)
	}
	if t.Kind == KindAlias {
		target, ok := s.types[t.AliasName]
		if !ok {
			return Type{}, fmt.Errorf("type_clash: alias %q refers to unknown type %q", name, t.AliasName)
		}
		if target.Kind == KindAlias {
			return Type{}, fmt.Errorf("type_clash: alias %q chains through another alias", name)
		}
		return target, nil
	}
	return t, nil
}

// Names returns all registered type names in registration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func sameShape(a, b Type) bool {
	// A shallow structural check sufficient for this core: same kind and,
	// for records, same flattened leaf paths/types.
	if a.Kind != b.Kind {
		return false
	}
	af, bf := Flatten(a), Flatten(b)
	if len(af) != len(bf) {
		return false
	}
	for i := range af {
		if af[i].Path != bf[i].Path || af[i].Type.Kind != bf[i].Type.Kind {
			return false
		}
	}
	return true
}

// HasPrefix reports whether a leaf field path begins with a given record
// type name, used by the query layer's "type:<name>" extractor rewriting.
func HasPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+".")
}

// Scalar type constructors, used throughout tests and builders.
func Scalar(k Kind) Type                { return Type{Kind: k} }
func ListOf(elem Type) Type             { return Type{Kind: KindList, Elem: &elem} }
func MapOf(key, val Type) Type          { return Type{Kind: KindMap, MapKey: &key, MapValue: &val} }
func RecordOf(fields ...Field) Type     { return Type{Kind: KindRecord, Fields: fields} }
func Alias(name string) Type            { return Type{Kind: KindAlias, AliasName: name} }
func EnumOf(names ...string) Type       { return Type{Kind: KindEnum, EnumNames: names} }
func WithAttr(t Type, k, v string) Type {
	if t.Attributes == nil {
		t.Attributes = make(map[string]string)
	}
	t.Attributes[k] = v
	return t
}
