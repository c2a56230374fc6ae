// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/ugbasic/ugbc/internal/target/c64"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.bas")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRun_NoConfigEmitsOrg(t *testing.T) {
	src := writeSource(t, "REM hello\nDONE\n")
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	if err := Run(Config{SourcePath: src, AsmPath: asmPath, Target: "c64"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, err := os.ReadFile(asmPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(out), "org 32768") {
		t.Errorf("expected an org directive, got %q", out)
	}
}

func TestRun_WithConfigEmitsSegmentAndLinkerMap(t *testing.T) {
	src := writeSource(t, "REM hello\nDONE\n")
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	cfgPath := filepath.Join(t.TempDir(), "out.cfg")
	if err := Run(Config{SourcePath: src, AsmPath: asmPath, ConfigPath: cfgPath, Target: "c64"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	asmOut, err := os.ReadFile(asmPath)
	if err != nil {
		t.Fatalf("ReadFile asm: %v", err)
	}
	if !strings.Contains(string(asmOut), `.segment "CODE"`) {
		t.Errorf("expected a .segment CODE directive, got %q", asmOut)
	}
	cfgOut, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("ReadFile cfg: %v", err)
	}
	if !strings.Contains(string(cfgOut), "VARIABLES") || !strings.Contains(string(cfgOut), "STRINGS") {
		t.Errorf("expected the link map to name the default banks, got %q", cfgOut)
	}
}

func TestRun_VarDefinitionGetsStorage(t *testing.T) {
	src := writeSource(t, "BANK vars AS VARIABLES\nVAR x AS BYTE ON vars\nx = 3\nDONE\n")
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	if err := Run(Config{SourcePath: src, AsmPath: asmPath, Target: "c64"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, err := os.ReadFile(asmPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(out), "x:") || !strings.Contains(string(out), ".res 1,0") {
		t.Errorf("expected a storage reservation for x, got %q", out)
	}
}

func TestRun_TemporaryGetsStorage(t *testing.T) {
	src := writeSource(t, "BANK vars AS VARIABLES\nVAR a AS BYTE ON vars\nVAR b AS BYTE ON vars\nVAR c AS BYTE ON vars\nc = a + b\nDONE\n")
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	if err := Run(Config{SourcePath: src, AsmPath: asmPath, Target: "c64"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, err := os.ReadFile(asmPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(out), "tmp_") {
		t.Errorf("expected a temporary's storage reservation, got %q", out)
	}
}

func TestRun_StringLiteralGetsPoolEntry(t *testing.T) {
	src := writeSource(t, "PRINT \"HI\"\nDONE\n")
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	if err := Run(Config{SourcePath: src, AsmPath: asmPath, Target: "c64"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, err := os.ReadFile(asmPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(out), "cstring0:") {
		t.Errorf("expected a cstring0 label, got %q", out)
	}
}

func TestRun_UnknownTargetIsError(t *testing.T) {
	src := writeSource(t, "DONE\n")
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	if err := Run(Config{SourcePath: src, AsmPath: asmPath, Target: "nope"}); err == nil {
		t.Fatal("expected an error for an unregistered target")
	}
}

func TestRun_MissingSourceIsError(t *testing.T) {
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	if err := Run(Config{SourcePath: filepath.Join(t.TempDir(), "missing.bas"), AsmPath: asmPath, Target: "c64"}); err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}

func TestRun_UnclosedGameLoopWarns(t *testing.T) {
	src := writeSource(t, "BEGIN GAMELOOP\nHALT\nDONE\n")
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	if err := Run(Config{SourcePath: src, AsmPath: asmPath, Target: "c64", Warnings: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_UnclosedLoopIsError(t *testing.T) {
	src := writeSource(t, "DO\nHALT\nDONE\n")
	asmPath := filepath.Join(t.TempDir(), "out.asm")
	if err := Run(Config{SourcePath: src, AsmPath: asmPath, Target: "c64"}); err == nil {
		t.Fatal("expected an error for a DO never closed by LOOP")
	}
}
