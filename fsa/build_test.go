package fsa

import (
	"testing"

	"github.com/typesig/typesig/predicate"
	"github.com/typesig/typesig/sig"
)

func numBoolRegistry() *predicate.Registry {
	r := predicate.New()
	r.Register("number", func(v any) bool { _, ok := v.(int); return ok })
	r.Register("boolean", func(v any) bool { _, ok := v.(bool); return ok })
	r.Register("string", func(v any) bool { _, ok := v.(string); return ok })
	return r
}

func TestBuild_Name(t *testing.T) {
	reg := predicate.DefaultRegistry()
	n, err := Build(sig.Name{Value: "number"}, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n.NumStates() != 2 {
		t.Errorf("NumStates = %d, want 2", n.NumStates())
	}
	out := n.Out(n.Start)
	if len(out) != 1 || out[0].Label == nil || out[0].Label.Name != "number" {
		t.Errorf("Out(Start) = %#v, want single 'number' edge", out)
	}
	if n.HasUserType {
		t.Error("builtin type should not set HasUserType")
	}
}

func TestBuild_UndefinedType(t *testing.T) {
	reg := predicate.New()
	_, err := Build(sig.Name{Value: "nope"}, reg)
	if err == nil {
		t.Fatal("expected UndefinedTypeError")
	}
	if ue, ok := err.(*UndefinedTypeError); !ok {
		t.Errorf("error type = %T, want *UndefinedTypeError", err)
	} else if ue.Name != "nope" {
		t.Errorf("Name = %q, want %q", ue.Name, "nope")
	}
}

func TestBuild_Seq(t *testing.T) {
	reg := numBoolRegistry()
	expr := sig.Seq{Items: []sig.TypeExpr{
		sig.Name{Value: "number"},
		sig.Name{Value: "string"},
	}}
	n, err := Build(expr, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n.IsNonlinear {
		t.Error("a plain Seq of Names should not be nonlinear")
	}
	if n.NeedsBacktracking {
		t.Error("a plain Seq of Names should not need backtracking")
	}
}

func TestBuild_Alt_MarksNonlinear(t *testing.T) {
	reg := numBoolRegistry()
	expr := sig.Alt{Items: []sig.TypeExpr{
		sig.Name{Value: "number"},
		sig.Name{Value: "boolean"},
	}}
	n, err := Build(expr, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !n.IsNonlinear {
		t.Error("Alt should mark IsNonlinear")
	}
	out := n.Out(n.Start)
	if len(out) != 2 {
		t.Fatalf("Start should have 2 epsilon branches, got %d", len(out))
	}
}

func TestBuild_Alt_WithUserTypeNeedsBacktracking(t *testing.T) {
	reg := numBoolRegistry()
	reg.Register("mytable", func(any) bool { return true })
	expr := sig.Alt{Items: []sig.TypeExpr{
		sig.Name{Value: "number"},
		sig.Name{Value: "mytable"},
	}}
	n, err := Build(expr, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !n.NeedsBacktracking {
		t.Error("Alt containing a user type should need backtracking")
	}
}

func TestBuild_Opt(t *testing.T) {
	reg := numBoolRegistry()
	expr := sig.Opt{Elem: sig.Name{Value: "number"}}
	n, err := Build(expr, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !n.IsNonlinear {
		t.Error("Opt should mark IsNonlinear")
	}
	// Start should have both a labeled edge into the body and an epsilon
	// edge straight to accept (zero-occurrence path).
	hasEpsilonToAccept := false
	for _, tr := range n.Out(n.Start) {
		if tr.Label == nil && tr.To == n.Accept {
			hasEpsilonToAccept = true
		}
	}
	if !hasEpsilonToAccept {
		t.Error("Opt should have an epsilon edge from start directly to accept")
	}
}

func TestBuild_Star(t *testing.T) {
	reg := numBoolRegistry()
	expr := sig.Star{Elem: sig.Name{Value: "number"}}
	n, err := Build(expr, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !n.IsNonlinear {
		t.Error("Star should mark IsNonlinear")
	}
	hasEpsilonToAccept := false
	for _, tr := range n.Out(n.Start) {
		if tr.Label == nil && tr.To == n.Accept {
			hasEpsilonToAccept = true
		}
	}
	if !hasEpsilonToAccept {
		t.Error("Star should allow zero occurrences via an epsilon edge to accept")
	}
}

func TestBuild_SeqAfterNonlinearNeedsBacktracking(t *testing.T) {
	reg := numBoolRegistry()
	reg.Register("mytable", func(any) bool { return true })
	// (number/boolean), mytable: an already-nonlinear accumulated fragment
	// followed by a user-typed fragment must flip needs_backtracking.
	expr := sig.Seq{Items: []sig.TypeExpr{
		sig.Alt{Items: []sig.TypeExpr{
			sig.Name{Value: "number"},
			sig.Name{Value: "boolean"},
		}},
		sig.Name{Value: "mytable"},
	}}
	n, err := Build(expr, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !n.NeedsBacktracking {
		t.Error("nonlinear-then-user-type Seq should need backtracking")
	}
}

func TestBuild_DistinctHandlesNotCollapsed(t *testing.T) {
	// Re-registering a name mints a new handle; a Name built afterwards
	// must carry the current handle, not the first registration's.
	reg := predicate.New()
	reg.Register("mytable", func(any) bool { return true })
	first, _ := reg.Lookup("mytable")
	reg.Register("mytable", func(any) bool { return false })

	expr := sig.Name{Value: "mytable"}
	n, err := Build(expr, reg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := n.Out(n.Start)
	if len(out) != 1 || out[0].Label.Handle == first.Handle {
		t.Error("Build should resolve against the CURRENT registration, not a stale handle")
	}
}
