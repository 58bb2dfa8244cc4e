package fsa

import (
	"github.com/typesig/typesig/predicate"
	"github.com/typesig/typesig/sig"
)

// selfParamName is the synthetic parameter name prepended to a method
// signature's parameter list before assembly (spec §4.3).
const selfParamName = "self"

// Assemble walks a Signature's parameter-list tree and joins the
// per-parameter NFAs into one NFA representing the full argument language
// (spec §4.3). If the signature is a method, a synthetic "self" parameter
// is prepended first.
func Assemble(s *sig.Signature, reg *predicate.Registry) (*NFA, error) {
	params := s.Params
	if s.IsMethod {
		params = append([]sig.ParamNode{sig.Named{Ident: selfParamName}}, params...)
	}

	b := newBuilder()
	consumed := make(map[string]bool)

	if len(params) == 0 {
		only := b.newState()
		return b.finish(only, only, fragFlags{}), nil
	}

	acc, accFlags, err := assembleNode(b, params[0], s, reg, consumed)
	if err != nil {
		return nil, err
	}
	for _, p := range params[1:] {
		next, nextFlags, err := assembleNode(b, p, s, reg, consumed)
		if err != nil {
			return nil, err
		}
		if accFlags.isNonlinear && nextFlags.hasUserType {
			accFlags.needsBacktracking = true
		}
		b.addEdge(acc.accept, nil, next.start)
		acc.accept = next.accept
		accFlags = accFlags.or(nextFlags)
	}
	return b.finish(acc.start, acc.accept, accFlags), nil
}

func assembleNode(b *builder, node sig.ParamNode, s *sig.Signature, reg *predicate.Registry, consumed map[string]bool) (fragment, fragFlags, error) {
	switch v := node.(type) {
	case sig.Named:
		return assembleNamed(b, v.Ident, s, reg, consumed)
	case sig.Group:
		return assembleGroup(b, v, s, reg, consumed)
	case sig.Vararg:
		return buildExpr(b, v.Type, reg)
	default:
		panic("fsa: unknown ParamNode kind")
	}
}

func assembleNamed(b *builder, id string, s *sig.Signature, reg *predicate.Registry, consumed map[string]bool) (fragment, fragFlags, error) {
	if consumed[id] {
		return fragment{}, fragFlags{}, &DuplicateParamUseError{Name: id}
	}
	consumed[id] = true

	expr, err := resolveParamType(id, s, reg)
	if err != nil {
		return fragment{}, fragFlags{}, err
	}
	return buildExpr(b, expr, reg)
}

// resolveParamType resolves a named parameter's TypeExpr: an explicit
// mapping entry wins; otherwise, for "self", the default-injection rule of
// spec §4.1 applies; otherwise the name itself is treated as a type name
// (spec §4.1's "name:name" fallback).
func resolveParamType(id string, s *sig.Signature, reg *predicate.Registry) (sig.TypeExpr, error) {
	if t, ok := s.ParamTypes[id]; ok {
		return t, nil
	}
	if id == selfParamName {
		return defaultSelfType(reg), nil
	}
	return sig.Name{Value: sig.TypeName(id)}, nil
}

// defaultSelfType implements spec §4.1's injected default mapping for an
// unmapped "self": object if registered, else userdata/table if both are
// registered, else fall back to treating "self" as a literal (almost
// certainly unregistered) type name.
func defaultSelfType(reg *predicate.Registry) sig.TypeExpr {
	if reg.Has("object") {
		return sig.Name{Value: "object"}
	}
	if reg.Has("userdata") && reg.Has("table") {
		return sig.Alt{Items: []sig.TypeExpr{
			sig.Name{Value: "userdata"},
			sig.Name{Value: "table"},
		}}
	}
	return sig.Name{Value: selfParamName}
}

// assembleGroup builds the group's children as a sequence, then marks the
// whole thing optional (spec §4.3: "recurse to build the children's
// sequence NFA, then mark it optional").
func assembleGroup(b *builder, g sig.Group, s *sig.Signature, reg *predicate.Registry, consumed map[string]bool) (fragment, fragFlags, error) {
	if len(g.Children) == 0 {
		only := b.newState()
		return fragment{start: only, accept: only}, fragFlags{}, nil
	}

	acc, accFlags, err := assembleNode(b, g.Children[0], s, reg, consumed)
	if err != nil {
		return fragment{}, fragFlags{}, err
	}
	for _, child := range g.Children[1:] {
		next, nextFlags, err := assembleNode(b, child, s, reg, consumed)
		if err != nil {
			return fragment{}, fragFlags{}, err
		}
		if accFlags.isNonlinear && nextFlags.hasUserType {
			accFlags.needsBacktracking = true
		}
		b.addEdge(acc.accept, nil, next.start)
		acc.accept = next.accept
		accFlags = accFlags.or(nextFlags)
	}

	b.addEdge(acc.start, nil, acc.accept) // Opt: the whole group may be skipped
	accFlags.isNonlinear = true
	if accFlags.hasUserType {
		accFlags.needsBacktracking = true
	}
	return acc, accFlags, nil
}

// AssembleReturns builds the NFA for a signature's return-value pattern:
// semantically an Alt of every entry in Returns (spec §3: "returns: list of
// TypeExpr, each element is a distinct alternative return shape").
// NoReturnClauseError is returned if the signature declared no "=>" clause.
func AssembleReturns(s *sig.Signature, reg *predicate.Registry) (*NFA, error) {
	if len(s.Returns) == 0 {
		return nil, &NoReturnClauseError{}
	}
	if len(s.Returns) == 1 {
		return Build(s.Returns[0], reg)
	}
	return Build(sig.Alt{Items: s.Returns}, reg)
}

// NoReturnClauseError indicates a signature has no "=>" return clause, so
// no return-value checker can be built for it.
type NoReturnClauseError struct{}

func (e *NoReturnClauseError) Error() string {
	return "fsa: signature declares no return clause"
}
