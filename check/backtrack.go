package check

import (
	"strings"

	"github.com/typesig/typesig/fsa"
)

// checkBacktracking implements spec §4.5's backtracking mode: a first pass
// computes only the accept/reject boolean by depth-first trial over every
// matching transition at each step; on reject, a second pass collects the
// "expected vs got" message at every exploration point and joins them with
// " , or " into one disjunctive message, since any explored path could
// have been the one the caller intended.
func (c *Checker) checkBacktracking(values []any) ([]any, error) {
	if tryPath(c.dfa, c.dfa.Start, 0, values) {
		return values, nil
	}

	var msgs []string
	c.collectPath(c.dfa.Start, 0, values, &msgs)
	return nil, &CheckError{Prefix: c.prefix, Message: strings.Join(msgs, " , or ")}
}

// tryPath is the boolean-only first pass.
func tryPath(d *fsa.DFA, s fsa.StateID, pos int, values []any) bool {
	if pos == len(values) {
		return d.IsAccept(s)
	}
	v := values[pos]
	for _, tr := range d.Out(s) {
		if tr.Label.Pred(v) && tryPath(d, tr.To, pos+1, values) {
			return true
		}
	}
	return false
}

// collectPath is the message-collecting second pass: it explores every
// branch (not just the first matching one) and records a failure message
// at each dead end it finds.
func (c *Checker) collectPath(s fsa.StateID, pos int, values []any, msgs *[]string) {
	if pos == len(values) {
		if !c.dfa.IsAccept(s) {
			*msgs = append(*msgs, c.missingMessage(s, pos))
		}
		return
	}

	v := values[pos]
	matched := false
	for _, tr := range c.dfa.Out(s) {
		if tr.Label.Pred(v) {
			matched = true
			c.collectPath(tr.To, pos+1, values, msgs)
		}
	}
	if !matched {
		*msgs = append(*msgs, c.unexpectedMessage(s, pos, v))
	}
}
