// Package check implements the Checker Emitter (spec §4.5): turning a DFA
// into a pure function over positional values, in either of the two modes
// spec §4.5 calls linear and backtracking.
package check

import "fmt"

// Kind distinguishes an argument-list checker from a return-value checker;
// it only changes the wording of emitted messages (spec §7: "argument vs
// return-value" is one of the things a CheckError carries).
type Kind int

const (
	Argument Kind = iota
	Return
)

func (k Kind) singular() string {
	if k == Return {
		return "return value"
	}
	return "argument"
}

func (k Kind) plural() string {
	if k == Return {
		return "return value(s)"
	}
	return "argument(s)"
}

func (k Kind) pluralTooMany() string {
	if k == Return {
		return "return values"
	}
	return "arguments"
}

// CheckError is what a Checker returns on rejection (spec §3 "Checker",
// §7 "check-time errors"). Message is the fully composed body text (no
// leading prefix, no trailing period); Error() renders the frozen template
// of spec §6: "{signature-prefix}: {message}.".
type CheckError struct {
	Prefix  string
	Message string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %s.", e.Prefix, e.Message)
}
