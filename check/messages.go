package check

import (
	"fmt"
	"strings"

	"github.com/typesig/typesig/fsa"
	"github.com/typesig/typesig/predicate"
)

// expectedNames lists the type names of a state's outgoing transitions, in
// the DFA's own (first-seen, not alphabetized) order — see fsa.DFA.Out.
func expectedNames(d *fsa.DFA, s fsa.StateID) []string {
	out := d.Out(s)
	names := make([]string, len(out))
	for i, tr := range out {
		names[i] = string(tr.Label.Name)
	}
	return names
}

// missingMessage renders the MissingValues clause of spec §4.5: the
// checker ran out of input before reaching an accepting state.
func (c *Checker) missingMessage(s fsa.StateID, numConsumed int) string {
	pos := numConsumed + 1 - c.indexOffset
	names := expectedNames(c.dfa, s)
	return fmt.Sprintf("missing %s at index %d (expected %s)", c.kind.plural(), pos, strings.Join(names, "/"))
}

// unexpectedMessage renders the UnexpectedValue clause, optionally
// appended with a TooMany clause when s is also accepting (spec §4.5,
// §8 property 7).
func (c *Checker) unexpectedMessage(s fsa.StateID, numConsumed int, v any) string {
	rawPos := numConsumed + 1
	pos := rawPos - c.indexOffset
	names := expectedNames(c.dfa, s)

	accept := c.dfa.IsAccept(s)
	tooManyLimit := rawPos - 1 - c.indexOffset
	tooMany := fmt.Sprintf("too many %s (expected %d)", c.kind.pluralTooMany(), tooManyLimit)

	if len(names) == 0 {
		// Nothing further can match at all: an accepting state with no
		// outgoing edges rejecting surplus input. No "expected ... got"
		// clause makes sense without any expected names to list.
		if accept {
			return tooMany
		}
		return fmt.Sprintf("unexpected %s (got %s)", c.kind.singular(), predicate.KindOf(v))
	}

	unexpected := fmt.Sprintf("%s expected for %s no. %d (got %s)", strings.Join(names, "/"), c.kind.singular(), pos, predicate.KindOf(v))
	if accept {
		return unexpected + " or " + tooMany
	}
	return unexpected
}
