// Package sig implements the Signature Parser (spec §4.1): it scans a
// docstring for its first signature-shaped paragraph and yields a
// structured Signature — the function designator, its positional/optional/
// vararg parameter tree, its return-value patterns, and the parameter-name
// to type-expression mapping.
//
// This package never consults the predicate registry; resolving a TypeName
// leaf against a registry happens later, when fsa builds NFAs (spec's
// stated invariant: a missing registry entry is a build-time failure at
// NFA-construction time, never a parse-time failure).
package sig

import "strings"

// TypeName is an identifier naming either a primitive or user-defined
// predicate, matching `[A-Za-z_][A-Za-z0-9_]*`.
type TypeName string

// TypeExpr is the regex-like algebra parsed from return clauses and vararg
// mappings (spec §3 "TypeExpr").
type TypeExpr interface {
	typeExpr()
}

// Name is a TypeExpr leaf naming one type.
type Name struct {
	Value TypeName
}

// Seq is an ordered concatenation of two or more TypeExprs.
type Seq struct {
	Items []TypeExpr
}

// Alt is an alternation of one or more TypeExprs. A single-child Alt
// collapses to its child during construction (see parser.go), in both the
// full type-expression grammar and a named-parameter mapping's restricted
// grammar; Alt values reachable from a parsed Signature always have
// len(Items) >= 2.
type Alt struct {
	Items []TypeExpr
}

// Star is zero-or-more repetition of Elem.
type Star struct {
	Elem TypeExpr
}

// Opt is zero-or-one of Elem.
type Opt struct {
	Elem TypeExpr
}

func (Name) typeExpr() {}
func (Seq) typeExpr()  {}
func (Alt) typeExpr()  {}
func (Star) typeExpr() {}
func (Opt) typeExpr()  {}

// ParamNode is an element of the positional parameter list (spec §3
// "ParamNode").
type ParamNode interface {
	paramNode()
}

// Named is a single required parameter identified by name. Its type is
// looked up in the owning Signature's ParamTypes map; if absent, the name
// itself is treated as a direct type name (spec §4.1 fallback rule).
type Named struct {
	Ident string
}

// Group is a nested, bracketed optional subsequence of parameter items.
type Group struct {
	Children []ParamNode
}

// Vararg is the final parameter-list item only: an arbitrary TypeExpr that
// may itself repeat.
type Vararg struct {
	Type TypeExpr
}

func (Named) paramNode()  {}
func (Group) paramNode()  {}
func (Vararg) paramNode() {}

// Designator is the dotted path naming the function, optionally terminated
// by `:identifier` to mark it a method (spec §3 "designator").
type Designator struct {
	Segments []string
	IsMethod bool
	// MethodName is the identifier after ':' when IsMethod is true; it is
	// not part of Segments. For a method designator `obj.sub:call`,
	// Segments is ["obj", "sub"] and MethodName is "call".
	MethodName string
}

// String renders the designator with its method separator (if any)
// normalized to '.', as spec §6 specifies for the error-message prefix:
// a method `m.o:f` appears as `m.o.f`.
func (d Designator) String() string {
	parts := append([]string{}, d.Segments...)
	if d.IsMethod {
		parts = append(parts, d.MethodName)
	}
	return strings.Join(parts, ".")
}

// Signature is the structured result of parsing a docstring's signature
// paragraph (spec §3 "Signature").
type Signature struct {
	Designator Designator
	IsMethod   bool
	Params     []ParamNode
	Returns    []TypeExpr
	ParamTypes map[string]TypeExpr
	RawText    string
}
