// Package fsa implements the Pattern→NFA Builder, the Argument-list
// Assembler, and the Subset Constructor (spec §4.2-§4.4): translating a
// TypeExpr (or a Signature's whole parameter tree) into an NFA over value
// predicates, then powerset-constructing that NFA into a DFA.
//
// Construction follows the teacher's (github.com/coregx/coregex) Thompson
// NFA builder: states live in one incrementally-growing table and fragments
// are spliced together with epsilon edges, rather than being built in
// isolation and renumbered afterward — the same technique nfa.Builder uses
// for byte-range automata, applied here to an alphabet of value predicates
// instead of bytes.
package fsa

import (
	"github.com/google/uuid"

	"github.com/typesig/typesig/sig"
)

// StateID identifies a state within an NFA or DFA's state table.
type StateID int

// InvalidState is never a valid StateID produced by a Builder.
const InvalidState StateID = -1

// Label identifies one labeled (non-epsilon) transition. Two labels with
// the same Name but different Handle are distinct transitions (spec §9:
// "distinct predicate values must compare unequal even if they share a
// type-name"); Handle, not Name or the predicate func value, is what keys
// DFA transitions.
type Label struct {
	Name   sig.TypeName
	Handle uuid.UUID
	Pred   func(value any) bool
}

// Transition is one edge out of an NFA state. A nil Label is an
// epsilon-transition.
type Transition struct {
	To    StateID
	Label *Label
}

// NFA is a Thompson-construction automaton over value predicates, using
// the spec's fixed-start/single-accept convention: Start has no incoming
// edges from outside its own fragment and Accept has no outgoing edges.
type NFA struct {
	trans  [][]Transition // trans[s] = outgoing edges of state s
	Start  StateID
	Accept StateID

	HasUserType       bool
	IsNonlinear       bool
	NeedsBacktracking bool
}

// NumStates returns the number of states in the NFA.
func (n *NFA) NumStates() int { return len(n.trans) }

// Out returns the outgoing transitions of state s.
func (n *NFA) Out(s StateID) []Transition { return n.trans[s] }

// builder incrementally constructs a single NFA's state table. A fragment
// is a (start, accept) pair of StateIDs into the shared table.
type builder struct {
	trans [][]Transition
}

type fragment struct {
	start, accept StateID
}

func newBuilder() *builder {
	return &builder{}
}

func (b *builder) newState() StateID {
	b.trans = append(b.trans, nil)
	return StateID(len(b.trans) - 1)
}

func (b *builder) addEdge(from StateID, label *Label, to StateID) {
	b.trans[from] = append(b.trans[from], Transition{To: to, Label: label})
}

func (b *builder) finish(start, accept StateID, f fragFlags) *NFA {
	return &NFA{
		trans:             b.trans,
		Start:             start,
		Accept:            accept,
		HasUserType:       f.hasUserType,
		IsNonlinear:       f.isNonlinear,
		NeedsBacktracking: f.needsBacktracking,
	}
}

// fragFlags mirrors the three per-NFA construction flags of spec §3,
// computed bottom-up per fragment rather than globally, since §4.2's Seq
// rule needs the accumulated fragment's own is_nonlinear value as it
// folds, not just the final OR of everybody's flags.
type fragFlags struct {
	hasUserType       bool
	isNonlinear       bool
	needsBacktracking bool
}

func (a fragFlags) or(b fragFlags) fragFlags {
	return fragFlags{
		hasUserType:       a.hasUserType || b.hasUserType,
		isNonlinear:       a.isNonlinear || b.isNonlinear,
		needsBacktracking: a.needsBacktracking || b.needsBacktracking,
	}
}
