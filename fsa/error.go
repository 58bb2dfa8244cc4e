package fsa

import "fmt"

// UndefinedTypeError indicates a TypeName referenced by a signature has no
// entry in the predicate registry at NFA-build time (spec §3 invariant:
// this is always a build-time failure, never a checker-time one).
type UndefinedTypeError struct {
	Name       string
	Suggestion []string
}

func (e *UndefinedTypeError) Error() string {
	msg := fmt.Sprintf("fsa: type %q is not registered", e.Name)
	if len(e.Suggestion) > 0 {
		msg += " (did you mean: "
		for i, s := range e.Suggestion {
			if i > 0 {
				msg += ", "
			}
			msg += s
		}
		msg += "?)"
	}
	return msg
}

// DuplicateParamUseError indicates the same parameter name was consumed
// twice while walking a signature's parameter-list tree (spec §4.3).
type DuplicateParamUseError struct {
	Name string
}

func (e *DuplicateParamUseError) Error() string {
	return fmt.Sprintf("fsa: parameter %q used more than once in the parameter list", e.Name)
}
