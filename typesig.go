// Package typesig turns a docstring's signature paragraph into a runtime
// argument/return-value checker and wraps a callable with it (spec §4).
//
// The pipeline is fully synchronous and has four stages, one package each:
//   - sig parses the docstring into a Signature (§4.1).
//   - fsa builds an NFA from the Signature's types, assembles the
//     parameter list into one argument NFA, and powerset-constructs the
//     result into a DFA (§4.2-§4.4).
//   - check compiles the DFA into a pure checker function (§4.5).
//   - typesig (this package) composes a checker pair around a callable
//     (§4.6).
//
// Basic usage:
//
//	reg := predicate.DefaultRegistry()
//	wrapped, err := typesig.Decorate(myFunc, docstring, reg, typesig.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
package typesig

import (
	"github.com/typesig/typesig/check"
	"github.com/typesig/typesig/fsa"
	"github.com/typesig/typesig/predicate"
	"github.com/typesig/typesig/sig"
)

// Func is the core's abstraction of "the underlying value f" (spec §4.6):
// a callable taking and returning a host's dynamically-typed value list.
// It stands in for whatever the embedding host's callable type actually
// is (e.g. a Lua closure); Decorate only ever calls it this way.
type Func func(args ...any) []any

// Config controls decoration (spec §4.6, §9 "Global configuration"): pass
// it explicitly to Decorate rather than consulting global state, though a
// process-wide default built once via DefaultConfig and copied is fine.
type Config struct {
	// Enabled, if false, makes Decorate a no-op: f is returned unwrapped.
	Enabled bool
	// CheckArguments and CheckReturns selectively suppress the argument-
	// or return-checker half of the pair.
	CheckArguments bool
	CheckReturns   bool
	// OnBuildError is invoked if the signature is absent or malformed, or
	// a referenced type is undefined. The default elevates the error to
	// fatal (panics); a caller that wants degraded decoration instead of
	// a fatal error should install a callback that just records err.
	OnBuildError func(err error)
	// ErrorStackOffset is carried, opaque, into every Checker this
	// decoration builds (spec §4.5's error_stack_offset); the core never
	// interprets it itself.
	ErrorStackOffset int
}

// DefaultConfig returns the spec's default configuration: decoration
// enabled, both checkers built, and build errors fatal.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		CheckArguments: true,
		CheckReturns:   true,
		OnBuildError:   func(err error) { panic(err) },
	}
}

func (c Config) onBuildError(err error) {
	if c.OnBuildError != nil {
		c.OnBuildError(err)
		return
	}
	panic(err)
}

// isNoReturnClause reports whether err is fsa's signal that a signature
// simply declared no "=>" clause at all, as opposed to a malformed or
// unresolvable one.
func isNoReturnClause(err error) bool {
	_, ok := err.(*fsa.NoReturnClauseError)
	return ok
}

// CheckArgs stand-alone-builds the argument-list checker for docstring
// (spec §6: "used by tests"). reg resolves every type name the signature's
// parameter list references.
func CheckArgs(docstring string, reg *predicate.Registry) (*check.Checker, error) {
	s, err := sig.Parse(docstring)
	if err != nil {
		return nil, err
	}
	n, err := fsa.Assemble(s, reg)
	if err != nil {
		return nil, err
	}
	offset := 0
	if s.IsMethod {
		offset = 1
	}
	return check.New(fsa.ToDFA(n), check.Argument, s.Designator.String(), offset, 0), nil
}

// CheckRets stand-alone-builds the return-value checker for docstring
// (spec §6). Unlike CheckArgs, a signature without a "=>" clause is a
// build error here (fsa.NoReturnClauseError), since there is nothing to
// assemble a checker from.
func CheckRets(docstring string, reg *predicate.Registry) (*check.Checker, error) {
	s, err := sig.Parse(docstring)
	if err != nil {
		return nil, err
	}
	n, err := fsa.AssembleReturns(s, reg)
	if err != nil {
		return nil, err
	}
	return check.New(fsa.ToDFA(n), check.Return, s.Designator.String(), 0, 0), nil
}

// Decorate is the pipeline's entry point (spec §4.6, §6). It parses
// docstring, builds whichever of the argument/return checkers cfg asks
// for, and returns f wrapped so that a call flows: accept(A) -> call f ->
// accept(R), rejecting with a *check.CheckError (raised via panic, the
// closest Go analogue to "the host's error mechanism") at either gate.
//
// A non-nil error return mirrors whatever was (or would have been, had
// cfg.OnBuildError not already consumed it) passed to OnBuildError; wrapped
// is always usable, degrading to fewer checkers or none per spec §7's
// propagation policy.
func Decorate(f Func, docstring string, reg *predicate.Registry, cfg Config) (Func, error) {
	if !cfg.Enabled {
		return f, nil
	}

	var argChecker, retChecker *check.Checker
	var firstErr error

	if cfg.CheckArguments {
		c, err := CheckArgs(docstring, reg)
		if err != nil {
			cfg.onBuildError(err)
			firstErr = err
		} else {
			c.ErrorStackOffset = cfg.ErrorStackOffset
			argChecker = c
		}
	}
	if cfg.CheckReturns {
		c, err := CheckRets(docstring, reg)
		switch {
		case err == nil:
			c.ErrorStackOffset = cfg.ErrorStackOffset
			retChecker = c
		case isNoReturnClause(err):
			// Spec §4.1 permits zero return clauses; that is not a build
			// failure, just nothing for Decorate to check on the way out.
		default:
			cfg.onBuildError(err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return compose(f, argChecker, retChecker), firstErr
}

// compose implements spec §4.6's four decoration cases.
func compose(f Func, a, r *check.Checker) Func {
	switch {
	case a != nil && r != nil:
		return func(args ...any) []any {
			checked, err := a.Check(args)
			if err != nil {
				panic(err)
			}
			rets := f(checked...)
			checkedRets, err := r.Check(rets)
			if err != nil {
				panic(err)
			}
			return checkedRets
		}
	case a != nil:
		return func(args ...any) []any {
			checked, err := a.Check(args)
			if err != nil {
				panic(err)
			}
			return f(checked...)
		}
	case r != nil:
		return func(args ...any) []any {
			rets := f(args...)
			checkedRets, err := r.Check(rets)
			if err != nil {
				panic(err)
			}
			return checkedRets
		}
	default:
		return f
	}
}
