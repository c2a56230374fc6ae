package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSink_LineIndentsWithTab(t *testing.T) {
	dir := t.TempDir()
	s, err := Create(filepath.Join(dir, "out.asm"), false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Line("lda #0")
	if got := s.String(); got != "\tlda #0\n" {
		t.Errorf("Line output = %q, want %q", got, "\tlda #0\n")
	}
}

func TestSink_LabelUnindented(t *testing.T) {
	dir := t.TempDir()
	s, err := Create(filepath.Join(dir, "out.asm"), false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Label("loop_1")
	if got := s.String(); got != "loop_1:\n" {
		t.Errorf("Label output = %q, want %q", got, "loop_1:\n")
	}
}

func TestSink_CloseWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.asm")
	s, err := Create(path, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Line("org 32768")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "org 32768") {
		t.Errorf("file content = %q, want it to contain %q", data, "org 32768")
	}
}

func TestSink_TidyDoesNotLoseContentOnFormatFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.asm")
	s, err := Create(path, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Line("lda #$ff")
	s.Label("start")
	s.Line("sta $d020")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("expected non-empty output even if asmfmt could not parse 6502 mnemonics")
	}
}
