package templify

import "strings"

// ExprNode is a node of the expression AST.
type ExprNode interface {
	Eval(scope *Scope) *Value
}

// LiteralNode holds a parsed string/integer/decimal/bool literal.
type LiteralNode struct {
	Val *Value
}

func (n *LiteralNode) Eval(*Scope) *Value { return n.Val }

// PathNode is a path reference (the `path` production).
type PathNode struct {
	Path *Path
}

func (n *PathNode) Eval(scope *Scope) *Value { return ResolvePath(scope, n.Path) }

// NotNode implements unary `not`.
type NotNode struct {
	X ExprNode
}

func (n *NotNode) Eval(scope *Scope) *Value { return NewBool(!n.X.Eval(scope).IsTrue()) }

// AndNode implements short-circuiting `and`.
type AndNode struct {
	L, R ExprNode
}

func (n *AndNode) Eval(scope *Scope) *Value {
	if !n.L.Eval(scope).IsTrue() {
		return NewBool(false)
	}
	return NewBool(n.R.Eval(scope).IsTrue())
}

// OrNode implements short-circuiting `or`.
type OrNode struct {
	L, R ExprNode
}

func (n *OrNode) Eval(scope *Scope) *Value {
	if n.L.Eval(scope).IsTrue() {
		return NewBool(true)
	}
	return NewBool(n.R.Eval(scope).IsTrue())
}

// CompareNode implements the comparison operators {=, ==, !=, <, <=, >, >=}.
type CompareNode struct {
	Op   string
	L, R ExprNode
}

func (n *CompareNode) Eval(scope *Scope) *Value {
	l := n.L.Eval(scope)
	r := n.R.Eval(scope)
	return evalCompare(n.Op, l, r)
}

// evalCompare implements the engine's comparison semantics: case-sensitive
// string equality, numeric widening across Integer/Decimal, and "otherwise
// evaluate false" for any comparison that isn't unambiguously numeric or
// string.
func evalCompare(op string, l, r *Value) *Value {
	switch op {
	case "=", "==":
		return NewBool(l.EqualValueTo(r))
	case "!=":
		return NewBool(!l.EqualValueTo(r))
	case "<", "<=", ">", ">=":
		if l.IsNumeric() && r.IsNumeric() {
			cmp, _ := numericCompare(l, r)
			return NewBool(applyOrdering(op, cmp))
		}
		if l.IsString() && r.IsString() {
			cmp := strings.Compare(l.AsString(), r.AsString())
			return NewBool(applyOrdering(op, cmp))
		}
		if (l.IsNumeric() && r.IsString()) || (l.IsString() && r.IsNumeric()) {
			if da, db, ok := coerceToDecimalPair(l, r); ok {
				return NewBool(applyOrdering(op, da.Compare(db)))
			}
		}
		return NewBool(false)
	default:
		return NewBool(false)
	}
}

func applyOrdering(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}
