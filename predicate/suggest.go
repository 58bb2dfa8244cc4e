package predicate

import (
	"sort"

	"github.com/coregx/ahocorasick"
)

// ensureAutomaton (re)builds the Aho-Corasick automaton over all registered
// names if it is stale. Mirrors the teacher's buildStrategyEngines, which
// builds an ahocorasick.Automaton over literal alternatives as a prefilter
// in front of the exact matching engine (meta/compile.go).
//
// Callers must not hold r.mu: this method takes the read lock itself, and
// the write lock when it rebuilds.
func (r *Registry) ensureAutomaton() *ahocorasick.Automaton {
	r.mu.RLock()
	if !r.acDirty && r.ac != nil {
		ac := r.ac
		r.mu.RUnlock()
		return ac
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.acDirty && r.ac != nil {
		return r.ac
	}

	builder := ahocorasick.NewBuilder()
	names := make([]string, 0, len(r.entries))
	for _, n := range r.order {
		names = append(names, n)
		builder.AddPattern([]byte(n))
	}
	auto, err := builder.Build()
	if err != nil {
		// Degrade gracefully: no prefilter, callers fall back to exact lookup.
		r.ac = nil
		r.acNames = nil
		r.acDirty = false
		return nil
	}
	r.ac = auto
	r.acNames = names
	r.acDirty = false
	return r.ac
}

// ScanKnownNames returns every registered type name that occurs anywhere in
// text, sorted. It is a fast linear-time prefilter (one pass over text
// regardless of registry size) a signature parser could use to decide,
// before running the exact recursive-descent type-expression grammar on a
// parameter-mapping line, whether that line mentions any registered name
// at all.
func (r *Registry) ScanKnownNames(text string) []string {
	ac := r.ensureAutomaton()
	if ac == nil {
		return nil
	}

	haystack := []byte(text)
	seen := make(map[string]bool)
	var found []string
	at := 0
	for at <= len(haystack) {
		m := ac.Find(haystack, at)
		if m == nil {
			break
		}
		name := string(haystack[m.Start:m.End])
		if !seen[name] {
			seen[name] = true
			found = append(found, name)
		}
		at = m.Start + 1
	}
	sort.Strings(found)
	return found
}

// Suggest returns registered names that share a substring overlap with an
// unresolved name, for use in UndefinedTypeError's "did you mean" clause.
// It never affects whether a build succeeds; it only enriches the message
// (spec §9 treats the error formatter as a frozen contract only for the
// literal scenarios of §8, none of which exercise UndefinedType's exact
// text).
func (r *Registry) Suggest(name string) []string {
	ac := r.ensureAutomaton()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string

	// A registered name occurring as a substring of the unresolved name
	// (e.g. "tabel" contains no registered name, but "mystring2" contains
	// "string") is the cheap, Aho-Corasick-backed half of the search.
	if ac != nil {
		haystack := []byte(name)
		at := 0
		for at <= len(haystack) {
			m := ac.Find(haystack, at)
			if m == nil {
				break
			}
			found := string(haystack[m.Start:m.End])
			if found != name {
				out = append(out, found)
			}
			at = m.Start + 1
		}
	}

	// The other direction (the unresolved name occurring inside a
	// registered name, e.g. "tab" -> "table") needs a direct scan since it
	// is the registered names, not text, being searched.
	for _, n := range r.order {
		if n != name && len(name) >= 3 && containsSubstr(n, name) {
			out = append(out, n)
		}
	}

	sort.Strings(out)
	return dedup(out)
}

func containsSubstr(haystack, needle string) bool {
	if len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func dedup(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
