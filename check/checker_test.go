package check

import (
	"strings"
	"testing"

	"github.com/typesig/typesig/fsa"
	"github.com/typesig/typesig/predicate"
	"github.com/typesig/typesig/sig"
)

// userdataVal marks v as implementing predicate.Userdata for S3/S4-style
// scenarios ("handle" in the spec's scenario text).
type userdataVal struct{}

func (userdataVal) IsUserdata() {}

func buildChecker(t *testing.T, reg *predicate.Registry, docstring string, kind Kind, indexOffset int) *Checker {
	t.Helper()
	s, err := sig.Parse(docstring)
	if err != nil {
		t.Fatalf("sig.Parse: %v", err)
	}

	var n *fsa.NFA
	if kind == Return {
		n, err = fsa.AssembleReturns(s, reg)
	} else {
		n, err = fsa.Assemble(s, reg)
	}
	if err != nil {
		t.Fatalf("fsa assemble/build: %v", err)
	}
	d := fsa.ToDFA(n)
	return New(d, kind, s.Designator.String(), indexOffset, 0)
}

// --- S1 ---

func s1Registry() *predicate.Registry {
	r := predicate.New()
	r.Register("number", func(v any) bool { _, ok := v.(int); return ok })
	r.Register("boolean", func(v any) bool { _, ok := v.(bool); return ok })
	return r
}

const s1Doc = "func( n )\n\nn : number/boolean"

func TestS1_AcceptsNumber(t *testing.T) {
	c := buildChecker(t, s1Registry(), s1Doc, Argument, 0)
	out, err := c.Check([]any{12})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(out) != 1 || out[0] != 12 {
		t.Errorf("out = %v, want [12]", out)
	}
}

func TestS1_AcceptsBoolean(t *testing.T) {
	c := buildChecker(t, s1Registry(), s1Doc, Argument, 0)
	if _, err := c.Check([]any{false}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS1_TooManyArguments(t *testing.T) {
	c := buildChecker(t, s1Registry(), s1Doc, Argument, 0)
	_, err := c.Check([]any{12, 13})
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "too many arguments (expected 1)") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "too many arguments (expected 1)")
	}
}

func TestS1_MissingArgument(t *testing.T) {
	c := buildChecker(t, s1Registry(), s1Doc, Argument, 0)
	_, err := c.Check([]any{})
	if err == nil {
		t.Fatal("expected rejection")
	}
	ce, ok := err.(*CheckError)
	if !ok {
		t.Fatalf("error type = %T, want *CheckError", err)
	}
	if ce.Message != "missing argument(s) at index 1 (expected number/boolean)" {
		t.Errorf("Message = %q", ce.Message)
	}
}

func TestS1_UnexpectedKind(t *testing.T) {
	c := buildChecker(t, s1Registry(), s1Doc, Argument, 0)
	_, err := c.Check([]any{"x"})
	if err == nil {
		t.Fatal("expected rejection")
	}
	ce, ok := err.(*CheckError)
	if !ok {
		t.Fatalf("error type = %T, want *CheckError", err)
	}
	if ce.Message != "number/boolean expected for argument no. 1 (got string)" {
		t.Errorf("Message = %q", ce.Message)
	}
}

// --- S2 ---

func s2Registry() *predicate.Registry {
	r := predicate.New()
	r.Register("number", func(v any) bool { _, ok := v.(int); return ok })
	r.Register("string", func(v any) bool { _, ok := v.(string); return ok })
	return r
}

const s2Doc = "func( s ) ==> number/string, string\n\ns : string"

func TestS2_AcceptsNumberThenString(t *testing.T) {
	c := buildChecker(t, s2Registry(), s2Doc, Return, 0)
	if _, err := c.Check([]any{1, "nix"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS2_AcceptsStringThenString(t *testing.T) {
	c := buildChecker(t, s2Registry(), s2Doc, Return, 0)
	if _, err := c.Check([]any{"nix", "da"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS2_TooManyReturnValues(t *testing.T) {
	c := buildChecker(t, s2Registry(), s2Doc, Return, 0)
	_, err := c.Check([]any{1, "nix", 2})
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "too many return values") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "too many return values")
	}
}

func TestS2_MissingReturnValues(t *testing.T) {
	c := buildChecker(t, s2Registry(), s2Doc, Return, 0)
	_, err := c.Check([]any{})
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "missing return value(s)") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "missing return value(s)")
	}
}

func TestS2_WrongFirstReturnValue(t *testing.T) {
	c := buildChecker(t, s2Registry(), s2Doc, Return, 0)
	_, err := c.Check([]any{false})
	if err == nil {
		t.Fatal("expected rejection")
	}
	ce, ok := err.(*CheckError)
	if !ok {
		t.Fatalf("error type = %T, want *CheckError", err)
	}
	if ce.Message != "number/string expected for return value no. 1 (got boolean)" {
		t.Errorf("Message = %q", ce.Message)
	}
}

// --- S3 ---

func s3Registry() *predicate.Registry {
	r := predicate.New()
	r.Register("string", func(v any) bool { _, ok := v.(string); return ok })
	r.Register("userdata", func(v any) bool { _, ok := v.(predicate.Userdata); return ok })
	r.Register("boolean", func(v any) bool { _, ok := v.(bool); return ok })
	r.Register("number", func(v any) bool { _, ok := v.(int); return ok })
	r.Register("table", func(v any) bool { _, ok := v.(predicate.Table); return ok })
	return r
}

const s3Doc = "func( [s [, u] [, b],] [n,] ... )\n\ns : string\nu : userdata\nb : boolean\nn : number\n\n... : ((table, string/number) / boolean)*"

func TestS3_AcceptsEmpty(t *testing.T) {
	c := buildChecker(t, s3Registry(), s3Doc, Argument, 0)
	if _, err := c.Check([]any{}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS3_AcceptsStringHandleBoolean(t *testing.T) {
	c := buildChecker(t, s3Registry(), s3Doc, Argument, 0)
	if _, err := c.Check([]any{"a", userdataVal{}, true}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS3_AcceptsFullVarargSequence(t *testing.T) {
	c := buildChecker(t, s3Registry(), s3Doc, Argument, 0)
	values := []any{12, predicate.Table{}, "b", false, true, predicate.Table{}, 13}
	if _, err := c.Check(values); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS3_HandleAloneMentionsUserdataAndTooMany(t *testing.T) {
	c := buildChecker(t, s3Registry(), s3Doc, Argument, 0)
	_, err := c.Check([]any{userdataVal{}})
	if err == nil {
		t.Fatal("expected rejection")
	}
	msg := err.Error()
	if !strings.Contains(msg, "got userdata") {
		t.Errorf("error = %q, want it to contain %q", msg, "got userdata")
	}
	if !strings.Contains(msg, "too many arguments") {
		t.Errorf("error = %q, want it to contain %q", msg, "too many arguments")
	}
}

// --- S4 ---

func s4Registry() *predicate.Registry {
	r := predicate.New()
	r.Register("number", func(v any) bool { _, ok := v.(int); return ok })
	// "object" stands in for a real runtime receiver: anything non-nil that
	// is not itself a plain number, so a bare 12 can't masquerade as self.
	r.Register("object", func(v any) bool {
		if v == nil {
			return false
		}
		_, isNumber := v.(int)
		return !isNumber
	})
	return r
}

const s4Doc = "obj:method( number )"

func TestS4_MethodWithReceiverAndNumber(t *testing.T) {
	c := buildChecker(t, s4Registry(), s4Doc, Argument, 1)
	if _, err := c.Check([]any{userdataVal{}, 12}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS4_MethodReceiverOnlyMissingAtIndexOne(t *testing.T) {
	c := buildChecker(t, s4Registry(), s4Doc, Argument, 1)
	_, err := c.Check([]any{userdataVal{}})
	if err == nil {
		t.Fatal("expected rejection")
	}
	ce, ok := err.(*CheckError)
	if !ok {
		t.Fatalf("error type = %T, want *CheckError", err)
	}
	if !strings.Contains(ce.Message, "index 1") {
		t.Errorf("Message = %q, want it to mention index 1", ce.Message)
	}
}

func TestS4_CalledAsFunctionRejectsAtPositionZero(t *testing.T) {
	c := buildChecker(t, s4Registry(), s4Doc, Argument, 1)
	_, err := c.Check([]any{12})
	if err == nil {
		t.Fatal("expected rejection")
	}
	ce, ok := err.(*CheckError)
	if !ok {
		t.Fatalf("error type = %T, want *CheckError", err)
	}
	if !strings.Contains(ce.Message, "got number") {
		t.Errorf("Message = %q, want it to contain %q", ce.Message, "got number")
	}
	if !strings.Contains(ce.Message, "no. 0") {
		t.Errorf("Message = %q, want it to mention position no. 0", ce.Message)
	}
}

// --- S5 ---

type myTable struct{ isMytable bool }

func s5Registry() *predicate.Registry {
	r := predicate.New()
	r.Register("number", func(v any) bool { _, ok := v.(int); return ok })
	r.Register("table", func(v any) bool { _, ok := v.(predicate.Table); return ok })
	r.Register("boolean", func(v any) bool { _, ok := v.(bool); return ok })
	r.Register("mytable", func(v any) bool {
		mt, ok := v.(myTable)
		return ok && mt.isMytable
	})
	return r
}

const s5Doc = "func( n, [t,] m )\n\nn : number\nt : table\nm : mytable"

func TestS5_AcceptsWithOptionalTable(t *testing.T) {
	c := buildChecker(t, s5Registry(), s5Doc, Argument, 0)
	if _, err := c.Check([]any{1, predicate.Table{}, myTable{isMytable: true}}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS5_AcceptsWithoutOptionalTable(t *testing.T) {
	c := buildChecker(t, s5Registry(), s5Doc, Argument, 0)
	if _, err := c.Check([]any{1, myTable{isMytable: true}}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestS5_RejectsExtraTableAfterMytable(t *testing.T) {
	// Spec S5 exercises the same shape: number, optional table, required
	// mytable, then a surplus value. The surplus triggers a too-many
	// clause regardless of which earlier branch (table-present or
	// table-skipped) the accepted prefix took.
	c := buildChecker(t, s5Registry(), s5Doc, Argument, 0)
	_, err := c.Check([]any{2, myTable{isMytable: true}, predicate.Table{}})
	if err == nil {
		t.Fatal("expected rejection")
	}
	msg := err.Error()
	if !strings.Contains(msg, "too many arguments") {
		t.Errorf("error = %q, want it to contain %q", msg, "too many arguments")
	}
}

const s5ReturnDoc = "func( n ) => (table, boolean) / (mytable, number)\n\nn : number"

func TestS5_ReturnAlternatives(t *testing.T) {
	c := buildChecker(t, s5Registry(), s5ReturnDoc, Return, 0)
	if _, err := c.Check([]any{predicate.Table{}, true}); err != nil {
		t.Fatalf("Check first alternative: %v", err)
	}
	c2 := buildChecker(t, s5Registry(), s5ReturnDoc, Return, 0)
	if _, err := c2.Check([]any{myTable{isMytable: true}, 3}); err != nil {
		t.Fatalf("Check second alternative: %v", err)
	}
}
