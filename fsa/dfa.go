package fsa

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/typesig/typesig/internal/conv"
	"github.com/typesig/typesig/internal/sparse"
)

// DTransition is one outgoing, predicate-labeled edge of a DFA state.
type DTransition struct {
	To    StateID
	Label Label
}

// DFA is the powerset construction of an NFA (spec §4.4): a deterministic
// automaton whose states are sets of NFA states, reached by grouping each
// NFA state-set's outgoing labeled edges by predicate handle.
type DFA struct {
	trans             [][]DTransition
	Start             StateID
	accept            map[StateID]bool
	NeedsBacktracking bool
}

// NumStates returns the number of states in the DFA.
func (d *DFA) NumStates() int { return len(d.trans) }

// Out returns state s's outgoing transitions, in the order their source
// alternatives were written in the signature (the order needed for a
// deterministic, user-legible "expected a/b/c" listing; see ToDFA).
func (d *DFA) Out(s StateID) []DTransition { return d.trans[s] }

// IsAccept reports whether s is an accepting state.
func (d *DFA) IsAccept(s StateID) bool { return d.accept[s] }

// epsilonClosure extends set with every state reachable from it by
// epsilon-only transitions, using a sparse set as the worklist's
// membership test (teacher-grounded: the same SparseSet nfa.Builder's
// lazy DFA uses for state-set bookkeeping during determinization).
func epsilonClosure(n *NFA, set *sparse.SparseSet) {
	stack := append([]uint32(nil), set.Values()...)
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, tr := range n.Out(StateID(s)) {
			if tr.Label != nil {
				continue
			}
			if !set.Contains(uint32(tr.To)) {
				set.Insert(uint32(tr.To))
				stack = append(stack, uint32(tr.To))
			}
		}
	}
}

// move returns the set of NFA states reachable from any state in `from` by
// a single transition whose handle matches h.
func move(n *NFA, from *sparse.SparseSet, h uuid.UUID, capacity uint32) *sparse.SparseSet {
	out := sparse.NewSparseSet(capacity)
	from.Iter(func(s uint32) {
		for _, tr := range n.Out(StateID(s)) {
			if tr.Label != nil && tr.Label.Handle == h {
				out.Insert(uint32(tr.To))
			}
		}
	})
	return out
}

// canonicalKey renders a sparse set's contents as a sorted, comma-joined
// string: Dstates' map key, so that two state-sets with the same members
// (regardless of discovery order) map to the same DFA state.
func canonicalKey(set *sparse.SparseSet) string {
	vals := append([]uint32(nil), set.Values()...)
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}

// dstate is one record of the subset-construction worklist (Dragon-book
// algorithm 3.20's Dstates table, grounded on dekarrin-tunaq's automaton.ToDFA).
type dstate struct {
	id     StateID
	nfaSet *sparse.SparseSet
}

// ToDFA powerset-constructs n into a DFA (spec §4.4). Each DFA state's
// outgoing edges are grouped by predicate handle: two NFA edges sharing a
// handle collapse to one DFA edge even if they carry different Name
// strings (impossible in practice, since a handle is minted per registry
// entry, but the grouping is keyed on Handle regardless to honor spec §9's
// identity rule).
func ToDFA(n *NFA) *DFA {
	capacity := conv.IntToUint32(n.NumStates())

	startSet := sparse.NewSparseSet(capacity)
	startSet.Insert(uint32(n.Start))
	epsilonClosure(n, startSet)

	d := &DFA{
		accept:            make(map[StateID]bool),
		NeedsBacktracking: n.NeedsBacktracking,
	}

	states := []*dstate{{id: 0, nfaSet: startSet}}
	byKey := map[string]StateID{canonicalKey(startSet): 0}
	d.trans = append(d.trans, nil)

	for i := 0; i < len(states); i++ {
		cur := states[i]

		if cur.nfaSet.Contains(uint32(n.Accept)) {
			d.accept[cur.id] = true
		}

		labels := collectLabels(n, cur.nfaSet)
		var edges []DTransition
		for _, lbl := range labels {
			targetSet := move(n, cur.nfaSet, lbl.Handle, capacity)
			if targetSet.IsEmpty() {
				continue
			}
			epsilonClosure(n, targetSet)

			key := canonicalKey(targetSet)
			to, ok := byKey[key]
			if !ok {
				to = StateID(len(states))
				byKey[key] = to
				states = append(states, &dstate{id: to, nfaSet: targetSet})
				d.trans = append(d.trans, nil)
			}
			edges = append(edges, DTransition{To: to, Label: lbl})
		}
		d.trans[cur.id] = edges
	}

	return d
}

// collectLabels gathers the distinct predicate labels (deduplicated by
// handle) reachable by a single labeled edge from any state in set, in
// first-seen order. First-seen order, not a lexicographic sort, is what
// keeps a hand-written `n : number/boolean` mapping reporting "expected
// number/boolean" rather than alphabetizing it to "boolean/number" — spec
// §9 treats the emitted wording as a frozen contract, and a dictionary
// sort would silently reorder it.
func collectLabels(n *NFA, set *sparse.SparseSet) []Label {
	var out []Label
	seen := make(map[uuid.UUID]bool)
	set.Iter(func(s uint32) {
		for _, tr := range n.Out(StateID(s)) {
			if tr.Label == nil {
				continue
			}
			if !seen[tr.Label.Handle] {
				seen[tr.Label.Handle] = true
				out = append(out, *tr.Label)
			}
		}
	})
	return out
}

// String renders the DFA's transition table for debugging (supplemented
// feature: spec.md has no such operation, but a human-readable dump is
// standard practice alongside an automaton type — see SPEC_FULL.md).
func (d *DFA) String() string {
	var b strings.Builder
	for s := 0; s < len(d.trans); s++ {
		marker := " "
		if StateID(s) == d.Start {
			marker = ">"
		}
		accept := ""
		if d.accept[StateID(s)] {
			accept = "*"
		}
		fmt.Fprintf(&b, "%s%d%s:\n", marker, s, accept)
		for _, tr := range d.trans[s] {
			fmt.Fprintf(&b, "    %s -> %d\n", tr.Label.Name, tr.To)
		}
	}
	return b.String()
}
