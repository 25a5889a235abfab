package query

import "github.com/solarflare-labs/vastore/internal/predicate"

func isUnnegatable(op predicate.Op) bool {
	return op == predicate.In || op == predicate.Has
}

// Normalize pushes negations down to leaves (De Morgan) and flattens
// nested conjunctions/disjunctions of the same kind (§4.7). It operates
// structurally, before Resolve pins extractors to concrete field paths,
// so it has no partition dependency.
func Normalize(e Expression) Expression {
	return flatten(pushNegations(e, false))
}

// pushNegations rewrites e under an outstanding negation (neg) without
// emitting a surrounding Negation node wherever the operator has a clean
// complement. Predicate.Op.In and .Has have no single negated operator in
// this vocabulary (§4.7's predicate/index contract), so a negated
// in/has predicate keeps its explicit Negation wrapper; Evaluate answers
// it as the full-id set minus the unnegated result.
func pushNegations(e Expression, neg bool) Expression {
	switch n := e.(type) {
	case Predicate:
		if !neg {
			return n
		}
		if isUnnegatable(n.Op) {
			return Negation{Expr: n}
		}
		return Predicate{Extractor: n.Extractor, Op: n.Op.Negate(), Value: n.Value}
	case FieldPredicate:
		if !neg {
			return n
		}
		if isUnnegatable(n.Op) {
			return Negation{Expr: n}
		}
		return FieldPredicate{FieldPath: n.FieldPath, Op: n.Op.Negate(), Value: n.Value}
	case Conjunction:
		children := make([]Expression, len(n.Exprs))
		for i, c := range n.Exprs {
			children[i] = pushNegations(c, neg)
		}
		if neg {
			return Disjunction{Exprs: children}
		}
		return Conjunction{Exprs: children}
	case Disjunction:
		children := make([]Expression, len(n.Exprs))
		for i, c := range n.Exprs {
			children[i] = pushNegations(c, neg)
		}
		if neg {
			return Conjunction{Exprs: children}
		}
		return Disjunction{Exprs: children}
	case Negation:
		return pushNegations(n.Expr, !neg)
	case Literal:
		if neg {
			return Negation{Expr: n}
		}
		return n
	default:
		return e
	}
}

// flatten merges a Conjunction containing Conjunction children (and
// likewise for Disjunction) into one flat list, recursively.
func flatten(e Expression) Expression {
	switch n := e.(type) {
	case Conjunction:
		var out []Expression
		for _, c := range n.Exprs {
			flat := flatten(c)
			if sub, ok := flat.(Conjunction); ok {
				out = append(out, sub.Exprs...)
				continue
			}
			out = append(out, flat)
		}
		return Conjunction{Exprs: out}
	case Disjunction:
		var out []Expression
		for _, c := range n.Exprs {
			flat := flatten(c)
			if sub, ok := flat.(Disjunction); ok {
				out = append(out, sub.Exprs...)
				continue
			}
			out = append(out, flat)
		}
		return Disjunction{Exprs: out}
	case Negation:
		return Negation{Expr: flatten(n.Expr)}
	default:
		return e
	}
}
