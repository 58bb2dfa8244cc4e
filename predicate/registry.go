// Package predicate implements the named mapping from type-name to
// value-predicate that the rest of the pipeline resolves TypeExpr leaves
// against (spec §3, "Predicate Registry").
//
// A Predicate is a pure, side-effect-free test on one value. Two predicates
// registered under the same type name are never treated as the same
// transition target: each Register call mints its own stable handle, and
// DFA transitions key on that handle rather than on the type-name text or
// the func value's identity.
package predicate

import (
	"regexp"
	"sync"

	"github.com/coregx/ahocorasick"
	"github.com/google/uuid"
)

// Predicate is a pure, side-effect-free test on one value.
type Predicate func(value any) bool

// nameGrammar is the identifier grammar for type names (spec §3).
var nameGrammar = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Entry is a registered predicate together with its stable identity.
//
// Handle is what DFA transitions and checkers key on. It is distinct per
// Register call, so re-registering a name (or registering two different
// funcs that happen to be `==`-equal as Go values, which predicate funcs
// never are anyway) never collapses two transitions into one.
type Entry struct {
	Name    string
	Handle  uuid.UUID
	Fn      Predicate
	Builtin bool
}

// Registry is a named mapping from type-name to Entry. The zero value is
// not usable; construct one with New or DefaultRegistry.
//
// Registry is safe for concurrent use under the single-writer/many-readers
// discipline of spec §5: all Register calls should happen during an
// initialization phase before any signature referencing them is parsed.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string // registration order, for deterministic Names()

	acDirty bool
	ac      *ahocorasick.Automaton
	acNames []string // patterns backing ac, same index as ac's pattern ids
}

// New returns an empty Registry with no predicates registered.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// InvalidNameError reports that a name passed to Register does not match
// the type-name identifier grammar.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return "predicate: invalid type name " + quote(e.Name)
}

func quote(s string) string { return "\"" + s + "\"" }

// Register adds or replaces the predicate for name. It returns an
// *InvalidNameError if name does not match the identifier grammar
// `[A-Za-z_][A-Za-z0-9_]*`.
//
// Example:
//
//	reg := predicate.New()
//	err := reg.Register("number", func(v any) bool {
//	    switch v.(type) {
//	    case int, int64, float64:
//	        return true
//	    }
//	    return false
//	})
func (r *Registry) Register(name string, fn Predicate) error {
	if !nameGrammar.MatchString(name) {
		return &InvalidNameError{Name: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = Entry{
		Name:   name,
		Handle: uuid.New(),
		Fn:     fn,
	}
	r.acDirty = true
	return nil
}

// registerBuiltin is like Register but marks the entry as core-defined
// (spec §3: "some names are primitive"). Used only by DefaultRegistry.
func (r *Registry) registerBuiltin(name string, fn Predicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = Entry{Name: name, Handle: uuid.New(), Fn: fn, Builtin: true}
	r.acDirty = true
}

// Lookup resolves name to its registered Entry. ok is false if name has
// never been registered.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Has reports whether name is currently registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns all registered type names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
