package emit

import (
	"strings"
	"testing"

	"github.com/ugbasic/ugbc/internal/model"
)

func TestGosubReturnPop(t *testing.T) {
	em := newTestEmitter(t)
	em.Gosub("sub1")
	em.Return()
	em.Pop()
	out := em.Sink.String()
	for _, want := range []string{"jsr sub1", "rts", "pla"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in emitted text, got %q", want, out)
		}
	}
}

func TestOnGoto_OneBranchPerLabel(t *testing.T) {
	em := newTestEmitter(t)
	idx := numVar("i", model.Byte)
	em.OnGoto(idx, []string{"L1", "L2", "L3"})
	out := em.Sink.String()
	for _, label := range []string{"L1", "L2", "L3"} {
		if !strings.Contains(out, label) {
			t.Errorf("expected a branch referencing %s, got %q", label, out)
		}
	}
}

func TestOnGosub_CallsEachLabelConditionally(t *testing.T) {
	em := newTestEmitter(t)
	idx := numVar("i", model.Byte)
	em.OnGosub(idx, []string{"S1", "S2"})
	out := em.Sink.String()
	if strings.Count(out, "jsr S1") != 1 || strings.Count(out, "jsr S2") != 1 {
		t.Errorf("expected exactly one call per label, got %q", out)
	}
}

func TestEvery_InstallsHandlerState(t *testing.T) {
	em := newTestEmitter(t)
	em.Every(50, "tick_handler")
	if !em.Env.Every.Installed || em.Env.Every.Ticks != 50 || em.Env.Every.Label != "tick_handler" || !em.Env.Every.On {
		t.Errorf("unexpected EveryState: %+v", em.Env.Every)
	}
	em.EveryOff()
	if em.Env.Every.On {
		t.Error("EveryOff should clear the On flag")
	}
}

func TestGameLoop_SetsFlagAndClosesLIFO(t *testing.T) {
	em := newTestEmitter(t)
	em.BeginGameLoop()
	if !em.Env.HasGameLoop {
		t.Error("expected HasGameLoop to be set")
	}
	if err := em.EndGameLoop(); err != nil {
		t.Fatalf("EndGameLoop: %v", err)
	}
	if !em.Env.Loops.Empty() {
		t.Error("loop stack should be empty after EndGameLoop")
	}
}

func TestAssign_NarrowingWarns(t *testing.T) {
	em := newTestEmitter(t)
	dst := numVar("b", model.Byte)
	src := numVar("w", model.Word)
	if err := em.Assign(dst, src); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if !strings.Contains(em.Sink.String(), "W002") {
		t.Errorf("expected a W002 narrowing warning, got %q", em.Sink.String())
	}
}

func TestAssign_StringToNumberIsError(t *testing.T) {
	em := newTestEmitter(t)
	dst := numVar("b", model.Byte)
	src := strVar("s", model.DynamicStr)
	if err := em.Assign(dst, src); err == nil {
		t.Fatal("expected E009 assigning a string into a numeric variable")
	}
}

func TestAssignSplice_UnknownFormIsError(t *testing.T) {
	em := newTestEmitter(t)
	dst := strVar("s", model.DynamicStr)
	value := strVar("v", model.DynamicStr)
	if err := em.AssignSplice("NOPE", dst, value); err == nil {
		t.Fatal("expected an error for an unrecognized splice form")
	}
}

func TestAssignSplice_Left(t *testing.T) {
	em := newTestEmitter(t)
	dst := strVar("s", model.DynamicStr)
	value := strVar("v", model.DynamicStr)
	if err := em.AssignSplice("LEFT", dst, value); err != nil {
		t.Fatalf("AssignSplice: %v", err)
	}
	if !strings.Contains(em.Sink.String(), "str_splice_left") {
		t.Errorf("expected a call to str_splice_left, got %q", em.Sink.String())
	}
}

func TestPrint_SuppressesNewlineOnTrailingSemicolon(t *testing.T) {
	em := newTestEmitter(t)
	args := []*model.Variable{numVar("x", model.Byte)}
	if err := em.Print(args, true); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if strings.Contains(em.Sink.String(), "dprint_newline") {
		t.Errorf("a trailing semicolon should suppress the newline call, got %q", em.Sink.String())
	}
}

func TestPrint_EmitsNewlineByDefault(t *testing.T) {
	em := newTestEmitter(t)
	args := []*model.Variable{numVar("x", model.Byte)}
	if err := em.Print(args, false); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !strings.Contains(em.Sink.String(), "dprint_newline") {
		t.Errorf("expected a newline call, got %q", em.Sink.String())
	}
}
