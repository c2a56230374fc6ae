package parser

import (
	"path/filepath"
	"testing"

	"github.com/ugbasic/ugbc/internal/deploy"
	"github.com/ugbasic/ugbc/internal/emit"
	"github.com/ugbasic/ugbc/internal/lexer"
	"github.com/ugbasic/ugbc/internal/model"
	"github.com/ugbasic/ugbc/internal/sink"
	"github.com/ugbasic/ugbc/internal/target/c64"
)

// run tokenizes and parses src to completion against a fresh Emitter,
// returning the emitted assembly text for assertion.
func run(t *testing.T, src string) (*emit.Emitter, string) {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	s, err := sink.Create(filepath.Join(t.TempDir(), "out.asm"), false)
	if err != nil {
		t.Fatalf("sink.Create: %v", err)
	}
	env := model.New("x.bas", "x.asm", "", true)
	dm := deploy.New(func(name string) (string, error) {
		return "; " + name + " body\n", nil
	})
	em := emit.New(env, s, c64.Backend{}, dm)
	if err := New(toks, em).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return em, em.Sink.String()
}

func TestRun_DoneStopsParsing(t *testing.T) {
	_, out := run(t, "HALT\nDONE\nHALT\n")
	if got := countHalts(out); got != 1 {
		t.Errorf("expected exactly one HALT label emitted before DONE, got %d in %q", got, out)
	}
}

func countHalts(s string) int {
	n := 0
	for i := 0; i+4 <= len(s); i++ {
		if s[i:i+4] == "halt" {
			n++
		}
	}
	return n / 2 // label + jump both mention "halt"
}

func TestRun_NumericAndNamedLabels(t *testing.T) {
	_, out := run(t, "100: GOTO fin\nfin:\nDONE\n")
	if !containsAll(out, "line_100:", "fin:") {
		t.Errorf("expected both numeric and named label landings, got %q", out)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestVarAndAssign(t *testing.T) {
	em, out := run(t, "BANK vars AS VARIABLES\nVAR score AS BYTE ON vars\nscore = 5\nDONE\n")
	if _, ok := em.Env.LookupVariable("score"); !ok {
		t.Fatal("expected score to be defined")
	}
	if !contains(out, "lda") && !contains(out, "ld a") {
		t.Errorf("expected an assignment move instruction, got %q", out)
	}
}

func TestIfThenElseEndif(t *testing.T) {
	_, out := run(t, `BANK vars AS VARIABLES
VAR a AS BYTE ON vars
VAR b AS BYTE ON vars
IF a = b THEN
HALT
ELSE
HALT
ENDIF
DONE
`)
	if !contains(out, "if_else") || !contains(out, "if_end") {
		t.Errorf("expected both if_else and if_end labels, got %q", out)
	}
}

func TestForNextLoop(t *testing.T) {
	_, out := run(t, `BANK vars AS VARIABLES
VAR i AS BYTE ON vars
FOR i = 1 TO 10 STEP 2
HALT
NEXT i
DONE
`)
	if !contains(out, "for_") || !contains(out, "for_exit") {
		t.Errorf("expected for/for_exit labels, got %q", out)
	}
}

func TestWhileWend(t *testing.T) {
	_, out := run(t, `BANK vars AS VARIABLES
VAR a AS BYTE ON vars
VAR b AS BYTE ON vars
WHILE a <> b
HALT
WEND
DONE
`)
	if !contains(out, "while_") {
		t.Errorf("expected while labels, got %q", out)
	}
}

func TestRepeatUntil(t *testing.T) {
	_, out := run(t, `BANK vars AS VARIABLES
VAR a AS BYTE ON vars
VAR b AS BYTE ON vars
REPEAT
HALT
UNTIL a = b
DONE
`)
	if !contains(out, "repeat_") {
		t.Errorf("expected repeat labels, got %q", out)
	}
}

func TestExitIf(t *testing.T) {
	_, out := run(t, `BANK vars AS VARIABLES
VAR a AS BYTE ON vars
VAR b AS BYTE ON vars
DO
EXIT IF a = b
LOOP
DONE
`)
	if !contains(out, "exit_skip") {
		t.Errorf("expected an exit_skip label guarding the conditional EXIT, got %q", out)
	}
}

func TestGameLoop(t *testing.T) {
	em, out := run(t, "BEGIN GAMELOOP\nHALT\nEND GAMELOOP\nDONE\n")
	if !em.Env.HasGameLoop {
		t.Error("expected HasGameLoop to be set")
	}
	if !contains(out, "gameloop") {
		t.Errorf("expected gameloop labels, got %q", out)
	}
}

func TestProcDefinitionAndCall(t *testing.T) {
	em, out := run(t, `PROC greet
PARAM n AS BYTE
HALT
END PROC
BANK vars AS VARIABLES
VAR x AS BYTE ON vars
greet(x)
DONE
`)
	if _, ok := em.Env.LookupProcedure("greet"); !ok {
		t.Fatal("expected greet to be defined")
	}
	if !contains(out, "proc_greet:") {
		t.Errorf("expected a proc_greet label, got %q", out)
	}
	if !contains(out, "call proc_greet") && !contains(out, "jsr proc_greet") {
		t.Errorf("expected a call to proc_greet, got %q", out)
	}
}

func TestProcNestedIsError(t *testing.T) {
	toks, err := lexer.Tokenize("PROC a\nPROC b\nEND PROC\nEND PROC\nDONE\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	s, err := sink.Create(filepath.Join(t.TempDir(), "out.asm"), false)
	if err != nil {
		t.Fatalf("sink.Create: %v", err)
	}
	env := model.New("x.bas", "x.asm", "", true)
	dm := deploy.New(func(name string) (string, error) { return "", nil })
	em := emit.New(env, s, c64.Backend{}, dm)
	if err := New(toks, em).Run(); err == nil {
		t.Fatal("expected an error for a nested PROC definition")
	}
}

func TestSharedOutsideProcIsError(t *testing.T) {
	toks, err := lexer.Tokenize("SHARED foo\nDONE\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	s, err := sink.Create(filepath.Join(t.TempDir(), "out.asm"), false)
	if err != nil {
		t.Fatalf("sink.Create: %v", err)
	}
	env := model.New("x.bas", "x.asm", "", true)
	dm := deploy.New(func(name string) (string, error) { return "", nil })
	em := emit.New(env, s, c64.Backend{}, dm)
	if err := New(toks, em).Run(); err == nil {
		t.Fatal("expected an error for SHARED outside a PROCEDURE")
	}
}

func TestGlobalInsideProcIsError(t *testing.T) {
	toks, err := lexer.Tokenize("PROC a\nGLOBAL foo\nEND PROC\nDONE\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	s, err := sink.Create(filepath.Join(t.TempDir(), "out.asm"), false)
	if err != nil {
		t.Fatalf("sink.Create: %v", err)
	}
	env := model.New("x.bas", "x.asm", "", true)
	dm := deploy.New(func(name string) (string, error) { return "", nil })
	em := emit.New(env, s, c64.Backend{}, dm)
	if err := New(toks, em).Run(); err == nil {
		t.Fatal("expected an error for GLOBAL inside a PROCEDURE")
	}
}

func TestPrintTrailingSemicolonSuppressesNewline(t *testing.T) {
	_, withSemi := run(t, `BANK vars AS VARIABLES
VAR a AS BYTE ON vars
PRINT a;
DONE
`)
	_, withoutSemi := run(t, `BANK vars AS VARIABLES
VAR a AS BYTE ON vars
PRINT a
DONE
`)
	if !contains(withSemi, "dprint") {
		t.Errorf("expected a dprint call, got %q", withSemi)
	}
	if contains(withSemi, "dprint_newline") {
		t.Errorf("trailing semicolon should suppress the newline call, got %q", withSemi)
	}
	if !contains(withoutSemi, "dprint_newline") {
		t.Errorf("no trailing semicolon should emit the newline call, got %q", withoutSemi)
	}
}

func TestOnGotoDispatch(t *testing.T) {
	_, out := run(t, `BANK vars AS VARIABLES
VAR i AS BYTE ON vars
ON i GOTO first, second
first:
HALT
second:
HALT
DONE
`)
	if !contains(out, "first") || !contains(out, "second") {
		t.Errorf("expected both ON GOTO targets to appear, got %q", out)
	}
}

func TestEveryOnOff(t *testing.T) {
	em, _ := run(t, `EVERY 50 TICKS GOSUB tick
tick:
RETURN
EVERY OFF
DONE
`)
	if em.Env.Every.On {
		t.Error("expected EVERY OFF to clear the on flag")
	}
	if em.Env.Every.Label != "tick" || em.Env.Every.Ticks != 50 {
		t.Errorf("unexpected Every state: %+v", em.Env.Every)
	}
}
