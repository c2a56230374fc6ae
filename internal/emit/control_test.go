package emit

import (
	"strings"
	"testing"

	"github.com/ugbasic/ugbc/internal/model"
)

func TestIf_NoElse_LandsAtElseLabel(t *testing.T) {
	em := newTestEmitter(t)
	c := em.BeginIf()
	if err := em.EndIf(); err != nil {
		t.Fatalf("EndIf: %v", err)
	}
	if !em.Env.Conditionals.Empty() {
		t.Errorf("expected the conditional stack to be empty after EndIf")
	}
	if !strings.Contains(em.Sink.String(), c.ElseLabel+":") {
		t.Errorf("expected %s: landing label, got %q", c.ElseLabel, em.Sink.String())
	}
}

func TestIf_WithElse_TwoBranchesConverge(t *testing.T) {
	em := newTestEmitter(t)
	c := em.BeginIf()
	if err := em.Else(); err != nil {
		t.Fatalf("Else: %v", err)
	}
	if err := em.EndIf(); err != nil {
		t.Fatalf("EndIf: %v", err)
	}
	out := em.Sink.String()
	if !strings.Contains(out, c.ElseLabel+":") || !strings.Contains(out, c.EndLabel+":") {
		t.Errorf("expected both else and end labels landed, got %q", out)
	}
	if !em.Env.Conditionals.Empty() {
		t.Errorf("conditional stack should be empty at end")
	}
}

func TestEndIf_WithoutBeginIsError(t *testing.T) {
	em := newTestEmitter(t)
	if err := em.EndIf(); err == nil {
		t.Fatal("expected an error closing an IF that was never opened")
	}
}

func TestElse_WithoutBeginIsError(t *testing.T) {
	em := newTestEmitter(t)
	if err := em.Else(); err == nil {
		t.Fatal("expected an error for a stray ELSE")
	}
}

func TestDoLoop_JumpsBackToTop(t *testing.T) {
	em := newTestEmitter(t)
	l := em.BeginDo()
	if err := em.EndLoop(); err != nil {
		t.Fatalf("EndLoop: %v", err)
	}
	out := em.Sink.String()
	if !strings.Contains(out, "jmp "+l.BeginLabel) {
		t.Errorf("expected a jmp back to %s, got %q", l.BeginLabel, out)
	}
}

func TestForNext_NestedExitTargetsCorrectLoop(t *testing.T) {
	em := newTestEmitter(t)
	idxOuter := numVar("i", model.Byte)
	outer := em.BeginFor(idxOuter, "10", "", int64Ptr(1))
	idxInner := numVar("j", model.Byte)
	inner := em.BeginFor(idxInner, "20", "", int64Ptr(1))

	if err := em.Exit(1); err != nil {
		t.Fatalf("Exit(1): %v", err)
	}
	if err := em.Exit(2); err != nil {
		t.Fatalf("Exit(2): %v", err)
	}

	out := em.Sink.String()
	if !strings.Contains(out, "jmp "+inner.ExitLabel) {
		t.Errorf("EXIT 1 should jump to the inner loop's exit label %s, got %q", inner.ExitLabel, out)
	}
	if !strings.Contains(out, "jmp "+outer.ExitLabel) {
		t.Errorf("EXIT 2 should jump to the outer loop's exit label %s, got %q", outer.ExitLabel, out)
	}

	if err := em.EndFor(); err != nil {
		t.Fatalf("EndFor (inner): %v", err)
	}
	if err := em.EndFor(); err != nil {
		t.Fatalf("EndFor (outer): %v", err)
	}
	if !em.Env.Loops.Empty() {
		t.Error("loop stack should be empty once both FOR/NEXT pairs are closed")
	}
}

func TestExit_PastBottomOfStackIsError(t *testing.T) {
	em := newTestEmitter(t)
	em.BeginDo()
	if err := em.Exit(2); err == nil {
		t.Fatal("expected an error for EXIT 2 with only one loop open")
	}
}

func TestRepeatUntil_LIFO(t *testing.T) {
	em := newTestEmitter(t)
	l := em.BeginRepeat()
	top, err := em.RepeatTarget()
	if err != nil {
		t.Fatalf("RepeatTarget: %v", err)
	}
	if top != l {
		t.Errorf("RepeatTarget should return the just-opened record")
	}
	if err := em.EndRepeat(); err != nil {
		t.Fatalf("EndRepeat: %v", err)
	}
	if !em.Env.Loops.Empty() {
		t.Error("loop stack should be empty after EndRepeat")
	}
}

func int64Ptr(v int64) *int64 { return &v }
