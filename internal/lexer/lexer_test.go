package lexer

import (
	"testing"

	"github.com/ugbasic/ugbc/internal/token"
)

func TestIntegerLiteralForms_Produce255(t *testing.T) {
	tests := []string{"255", "$FF", "%11111111", "0xFF"}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			toks, err := Tokenize(src)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", src, err)
			}
			if len(toks) < 1 || toks[0].Kind != token.IntLit {
				t.Fatalf("Tokenize(%q) = %v, want a leading IntLit", src, toks)
			}
			if toks[0].Value != 255 {
				t.Errorf("Tokenize(%q) value = %d, want 255", src, toks[0].Value)
			}
		})
	}
}

func TestHashDirectInteger(t *testing.T) {
	toks, err := Tokenize("#123")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Kind != token.Hash {
		t.Fatalf("expected Hash token first, got %v", toks[0])
	}
	if toks[1].Kind != token.IntLit || toks[1].Value != 123 {
		t.Fatalf("expected IntLit(123) second, got %v", toks[1])
	}
}

func TestBareIntegerIsIntLit(t *testing.T) {
	toks, err := Tokenize("123")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Kind != token.IntLit || toks[0].Value != 123 {
		t.Fatalf("got %v, want IntLit(123)", toks[0])
	}
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	for _, spelling := range []string{"if", "IF", "If", "iF"} {
		toks, err := Tokenize(spelling)
		if err != nil {
			t.Fatalf("Tokenize(%q) error: %v", spelling, err)
		}
		if toks[0].Kind != token.Keyword || toks[0].Text != "IF" {
			t.Errorf("Tokenize(%q)[0] = %v, want Keyword(IF)", spelling, toks[0])
		}
	}
}

func TestIdentifierNotKeyword(t *testing.T) {
	toks, err := Tokenize("SCORE")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Kind != token.Ident || toks[0].Text != "SCORE" {
		t.Fatalf("got %v, want Ident(SCORE)", toks[0])
	}
}

func TestStringDollarSuffixIdent(t *testing.T) {
	toks, err := Tokenize("NAME$")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Kind != token.Ident || toks[0].Text != "NAME$" {
		t.Fatalf("got %v, want Ident(NAME$)", toks[0])
	}
}

func TestStringLiteralEscapedQuote(t *testing.T) {
	toks, err := Tokenize(`"say \"hi\""`)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Kind != token.StringLit || toks[0].Text != `say "hi"` {
		t.Fatalf("got %v, want StringLit(say \"hi\")", toks[0])
	}
}

func TestRemarkKeywordForm(t *testing.T) {
	toks, err := Tokenize("REM this is a comment\nX = 1")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Kind != token.Remark || toks[0].Text != "this is a comment" {
		t.Fatalf("got %v, want Remark(this is a comment)", toks[0])
	}
}

func TestRemarkApostropheForm(t *testing.T) {
	toks, err := Tokenize("' leading apostrophe remark\n")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[0].Kind != token.Remark || toks[0].Text != "leading apostrophe remark" {
		t.Fatalf("got %v, want Remark", toks[0])
	}
}

func TestColonSeparator(t *testing.T) {
	toks, err := Tokenize("X = 1 : Y = 2")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	var sawColon bool
	for _, tk := range toks {
		if tk.Kind == token.Colon {
			sawColon = true
		}
	}
	if !sawColon {
		t.Errorf("expected a Colon token among %v", toks)
	}
}

func TestLineNumberTracking(t *testing.T) {
	toks, err := Tokenize("X = 1\nY = 2\n")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	var yLine int
	for _, tk := range toks {
		if tk.Kind == token.Ident && tk.Text == "Y" {
			yLine = tk.Line
		}
	}
	if yLine != 2 {
		t.Errorf("Y identifier line = %d, want 2", yLine)
	}
}

func TestComparisonOperators(t *testing.T) {
	toks, err := Tokenize("<= >= <> = < >")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := []string{"<=", ">=", "<>", "=", "<", ">"}
	for i, w := range want {
		if toks[i].Text != w {
			t.Errorf("toks[%d] = %q, want %q", i, toks[i].Text, w)
		}
	}
}
