// Package query implements the expression tree, normalization, pushdown,
// and pivot operation that turn a boolean expression over fields into
// matching table slices (§4.7).
package query

import (
	"github.com/solarflare-labs/vastore/internal/bitmap"
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/value"
)

// Expression is a node in the query's boolean tree: a leaf predicate, a
// conjunction/disjunction of sub-expressions, or a negation.
type Expression interface {
	isExpression()
}

// FieldExtractor names a dotted leaf column path ("a.b.c"), matched
// against every registered layout's flattened columns regardless of
// which record type carries it.
type FieldExtractor struct{ Path string }

// MetaExtractor names a partition-level reference rather than a field:
// "type" compares against the layout name a row belongs to; "time" and
// "import_time" are accepted syntactically but, absent a wall-clock
// timestamp plumbed into partition metadata, currently resolve to "no
// match" like any other unresolvable extractor.
type MetaExtractor struct{ Name string }

// TypeExtractor names a record type ("conn", "zeek.http"); Resolve
// rewrites a predicate using it into a disjunction of field predicates
// over every column whose layout matches.
type TypeExtractor struct{ Name string }

// Predicate is a leaf test built directly from user input: extractor,
// operator, operand. Resolve against a partition's schema turns this into
// a tree of FieldPredicate, Literal, Conjunction, and Disjunction nodes.
type Predicate struct {
	Extractor Extractor
	Op        predicate.Op
	Value     value.Data
}

// Extractor is the sum type FieldExtractor | MetaExtractor | TypeExtractor.
type Extractor interface{ isExtractor() }

func (FieldExtractor) isExtractor() {}
func (MetaExtractor) isExtractor()  {}
func (TypeExtractor) isExtractor()  {}

// FieldPredicate is a Predicate after Resolve has pinned its extractor to
// one concrete registered field path ("<layout>.<leaf path>").
type FieldPredicate struct {
	FieldPath string
	Op        predicate.Op
	Value     value.Data
}

// Conjunction is the logical AND of its members; an empty Conjunction is
// the identity "true".
type Conjunction struct{ Exprs []Expression }

// Disjunction is the logical OR of its members; an empty Disjunction is
// the identity "false".
type Disjunction struct{ Exprs []Expression }

// Negation is the logical NOT of its member.
type Negation struct{ Expr Expression }

// Literal is a precomputed answer: used by Resolve for extractors with no
// schema match (empty set, per §4.7's stated fallback) and for meta "type"
// predicates, which are answered directly from segment layout membership
// rather than from a synopsis or value index.
type Literal struct{ Bitmap *bitmap.Bitmap }

func (Predicate) isExpression()      {}
func (FieldPredicate) isExpression() {}
func (Conjunction) isExpression()    {}
func (Disjunction) isExpression()    {}
func (Negation) isExpression()       {}
func (Literal) isExpression()        {}

// And is a small convenience constructor; members are kept as given
// (Normalize does the flattening).
func And(exprs ...Expression) Expression { return Conjunction{Exprs: exprs} }

// Or is a small convenience constructor.
func Or(exprs ...Expression) Expression { return Disjunction{Exprs: exprs} }

// Not negates an expression.
func Not(e Expression) Expression { return Negation{Expr: e} }
