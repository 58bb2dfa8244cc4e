package check

import (
	"github.com/typesig/typesig/fsa"
)

// Checker is the compiled, pure validation function for one DFA: an
// argument-list checker or a return-value checker (spec §3 "Checker").
// index_offset and error_stack_offset are the two position-accounting
// parameters of spec §4.5; ErrorStackOffset is carried through unused by
// the core itself (spec: "the core treats it as a carried constant"),
// for a host integration to consult when raising the returned error.
type Checker struct {
	dfa              *fsa.DFA
	kind             Kind
	prefix           string
	indexOffset      int
	ErrorStackOffset int
}

// New builds a Checker over d. prefix is the signature's error-message
// prefix (spec §6: the designator with ':' normalized to '.'). indexOffset
// shifts reported positions — 1 for a method's implicit self, 0 otherwise.
func New(d *fsa.DFA, kind Kind, prefix string, indexOffset, errorStackOffset int) *Checker {
	return &Checker{
		dfa:              d,
		kind:             kind,
		prefix:           prefix,
		indexOffset:      indexOffset,
		ErrorStackOffset: errorStackOffset,
	}
}

// Check validates values against the DFA and, on success, returns them
// unchanged (the Checker is a pass-through on accept, per spec §3).
func (c *Checker) Check(values []any) ([]any, error) {
	if c.dfa.NeedsBacktracking {
		return c.checkBacktracking(values)
	}
	return c.checkLinear(values)
}

// checkLinear implements spec §4.5's linear mode: commit to the first
// matching transition at each step, no retrying.
func (c *Checker) checkLinear(values []any) ([]any, error) {
	state := c.dfa.Start
	for i, v := range values {
		next, ok := firstMatch(c.dfa, state, v)
		if !ok {
			return nil, &CheckError{Prefix: c.prefix, Message: c.unexpectedMessage(state, i, v)}
		}
		state = next
	}
	if c.dfa.IsAccept(state) {
		return values, nil
	}
	return nil, &CheckError{Prefix: c.prefix, Message: c.missingMessage(state, len(values))}
}

func firstMatch(d *fsa.DFA, s fsa.StateID, v any) (fsa.StateID, bool) {
	for _, tr := range d.Out(s) {
		if tr.Label.Pred(v) {
			return tr.To, true
		}
	}
	return fsa.InvalidState, false
}
