package fsa

import (
	"github.com/typesig/typesig/predicate"
	"github.com/typesig/typesig/sig"
)

// buildExpr translates a TypeExpr into an NFA fragment within b, resolving
// every Name leaf against reg (spec §4.2). It implements the five
// structural-recursion rules verbatim, including the conservative
// needs_backtracking heuristic spec §9 says to preserve as-is.
func buildExpr(b *builder, e sig.TypeExpr, reg *predicate.Registry) (fragment, fragFlags, error) {
	switch v := e.(type) {
	case sig.Name:
		return buildName(b, v, reg)
	case sig.Seq:
		return buildSeq(b, v, reg)
	case sig.Alt:
		return buildAlt(b, v, reg)
	case sig.Opt:
		return buildOpt(b, v, reg)
	case sig.Star:
		return buildStar(b, v, reg)
	default:
		panic("fsa: unknown TypeExpr node kind")
	}
}

func buildName(b *builder, v sig.Name, reg *predicate.Registry) (fragment, fragFlags, error) {
	entry, ok := reg.Lookup(string(v.Value))
	if !ok {
		return fragment{}, fragFlags{}, &UndefinedTypeError{
			Name:       string(v.Value),
			Suggestion: reg.Suggest(string(v.Value)),
		}
	}
	s1 := b.newState()
	s2 := b.newState()
	b.addEdge(s1, &Label{Name: v.Value, Handle: entry.Handle, Pred: entry.Fn}, s2)
	return fragment{start: s1, accept: s2}, fragFlags{hasUserType: !entry.Builtin}, nil
}

// buildSeq concatenates two or more sub-fragments with epsilon edges. The
// needs_backtracking heuristic fires when an already-branching
// accumulated fragment is followed by a user-typed fragment (spec §4.2).
func buildSeq(b *builder, v sig.Seq, reg *predicate.Registry) (fragment, fragFlags, error) {
	acc, accFlags, err := buildExpr(b, v.Items[0], reg)
	if err != nil {
		return fragment{}, fragFlags{}, err
	}
	for _, item := range v.Items[1:] {
		next, nextFlags, err := buildExpr(b, item, reg)
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
	return acc, accFlags, nil
}

// buildAlt splices each sub-fragment between a new common start and accept.
func buildAlt(b *builder, v sig.Alt, reg *predicate.Registry) (fragment, fragFlags, error) {
	start := b.newState()
	accept := b.newState()
	var out fragFlags
	for _, item := range v.Items {
		f, fl, err := buildExpr(b, item, reg)
		if err != nil {
			return fragment{}, fragFlags{}, err
		}
		b.addEdge(start, nil, f.start)
		b.addEdge(f.accept, nil, accept)
		out = out.or(fl)
	}
	out.isNonlinear = true
	if out.hasUserType {
		out.needsBacktracking = true
	}
	return fragment{start: start, accept: accept}, out, nil
}

// buildOpt adds an epsilon edge from the fragment's start directly to its
// accept, allowing zero occurrences.
func buildOpt(b *builder, v sig.Opt, reg *predicate.Registry) (fragment, fragFlags, error) {
	f, fl, err := buildExpr(b, v.Elem, reg)
	if err != nil {
		return fragment{}, fragFlags{}, err
	}
	b.addEdge(f.start, nil, f.accept)
	fl.isNonlinear = true
	if fl.hasUserType {
		fl.needsBacktracking = true
	}
	return f, fl, nil
}

// buildStar implements "one or more, made optional": loop the fragment's
// accept back to its start, add a fresh accept reachable from the old
// accept, then apply Opt to the whole (spec §4.2).
func buildStar(b *builder, v sig.Star, reg *predicate.Registry) (fragment, fragFlags, error) {
	f, fl, err := buildExpr(b, v.Elem, reg)
	if err != nil {
		return fragment{}, fragFlags{}, err
	}
	b.addEdge(f.accept, nil, f.start) // loop back: one more repetition

	freshAccept := b.newState()
	b.addEdge(f.accept, nil, freshAccept) // exit after >= 1 repetitions
	f.accept = freshAccept

	b.addEdge(f.start, nil, f.accept) // Opt: allow zero repetitions

	fl.isNonlinear = true
	if fl.hasUserType {
		fl.needsBacktracking = true
	}
	return f, fl, nil
}

// Build translates a single TypeExpr into a standalone NFA (used for
// return-value patterns, which don't participate in the parameter-list
// assembly of §4.3; a vararg's type is built inside Assemble).
func Build(e sig.TypeExpr, reg *predicate.Registry) (*NFA, error) {
	b := newBuilder()
	f, fl, err := buildExpr(b, e, reg)
	if err != nil {
		return nil, err
	}
	return b.finish(f.start, f.accept, fl), nil
}
